// Package espeak drives the espeak-ng (or classic espeak) command line
// synthesizer.
package espeak

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/dgnsrekt/readaloud/internal/speech"
)

// Name is the engine name.
const Name = "espeak"

// Normal espeak speed (words per minute) and pitch (0-99), scaled by
// Request.Rate and Request.Pitch.
const (
	defaultSpeed = 175
	defaultPitch = 50
)

// DataDirs are the usual espeak-ng data locations.
var DataDirs = []string{
	"/usr/share/espeak-ng-data",
	"/usr/lib/x86_64-linux-gnu/espeak-ng-data",
	"/usr/lib/aarch64-linux-gnu/espeak-ng-data",
	"/usr/local/share/espeak-ng-data",
	"/opt/homebrew/share/espeak-ng-data",
}

// Config holds espeak engine settings.
type Config struct {
	Binary  string // espeak-ng or espeak; empty tries both
	DataDir string // espeak-ng-data directory; empty tries DataDirs
	Watch   bool   // Watch the voices directory for changes
}

// Engine implements speech.Host on top of espeak-ng.
type Engine struct {
	*speech.Runner
	binary  string
	watcher *speech.Watcher

	mu  sync.Mutex
	ids map[string]string // voice name -> -v identifier
}

// New locates the binary and starts watching the voices directory.
func New(cfg Config) (*Engine, error) {
	bin, err := findBinary(cfg.Binary)
	if err != nil {
		return nil, speech.Wrap(Name, "init", err)
	}

	e := &Engine{binary: bin, ids: make(map[string]string)}
	e.Runner = speech.NewRunner(Name, e.speak)

	if !cfg.Watch {
		return e, nil
	}
	dirs := DataDirs
	if cfg.DataDir != "" {
		dirs = []string{cfg.DataDir}
	}
	watch := make([]string, 0, len(dirs))
	for _, d := range dirs {
		watch = append(watch, filepath.Join(d, "voices"))
	}
	e.watcher, err = speech.Watch(watch, speech.DefaultWatchInterval, func(ctx context.Context) {
		e.EmitContext(ctx, speech.VoicesChanged{})
	})
	if err != nil {
		return nil, speech.Wrap(Name, "watch", err)
	}
	return e, nil
}

func findBinary(name string) (string, error) {
	if name != "" {
		return speech.FindBinary(name)
	}
	if bin, err := speech.FindBinary("espeak-ng"); err == nil {
		return bin, nil
	}
	return speech.FindBinary("espeak")
}

// Name implements speech.Host.
func (e *Engine) Name() string { return Name }

// IsAvailable implements speech.Host.
func (e *Engine) IsAvailable() bool { return e.binary != "" }

// ListVoices implements speech.Host.
func (e *Engine) ListVoices(ctx context.Context) ([]speech.Voice, error) {
	out, err := speech.Run(ctx, nil, e.binary, "--voices")
	if err != nil {
		return nil, speech.Wrap(Name, "list voices", err)
	}
	entries := ParseVoices(out)

	ids := make(map[string]string, len(entries))
	voices := make([]speech.Voice, 0, len(entries))
	for _, en := range entries {
		ids[en.Voice.Name] = en.Identifier
		voices = append(voices, en.Voice)
	}

	e.mu.Lock()
	e.ids = ids
	e.mu.Unlock()
	return voices, nil
}

func (e *Engine) speak(ctx context.Context, req speech.Request) error {
	e.mu.Lock()
	id, ok := e.ids[req.Voice]
	e.mu.Unlock()
	if !ok {
		// espeak also accepts voice names directly.
		id = req.Voice
	}

	rate, pitch := req.Rate, req.Pitch
	if rate <= 0 {
		rate = 1
	}
	if pitch <= 0 {
		pitch = 1
	}
	args := []string{
		"-v", id,
		"-s", fmt.Sprintf("%.0f", defaultSpeed*rate),
		"-p", fmt.Sprintf("%.0f", min(defaultPitch*pitch, 99)),
		"--", req.Text,
	}
	_, err := speech.Run(ctx, nil, e.binary, args...)
	return err
}

// Close implements speech.Host.
func (e *Engine) Close() error {
	_ = e.watcher.Close()
	return e.Runner.Close()
}

// Entry is one row of `espeak-ng --voices`.
type Entry struct {
	Voice      speech.Voice
	Identifier string // value passed to -v
}

// ParseVoices parses the table printed by `espeak-ng --voices`:
//
//	Pty Language       Age/Gender VoiceName          File                 Other Languages
//	 5  af              --/M      Afrikaans          gmw/af
//	 2  en-us           --/M      English_(America)  gmw/en-US            (en 3)
//
// Underscores in voice names stand for spaces.
func ParseVoices(out []byte) []Entry {
	var entries []Entry
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 4 || fields[0] == "Pty" {
			continue
		}
		lang, name := fields[1], strings.ReplaceAll(fields[3], "_", " ")
		entries = append(entries, Entry{
			Voice:      speech.Voice{Name: name, Language: lang},
			Identifier: lang,
		})
	}
	return entries
}
