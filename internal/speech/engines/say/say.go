// Package say drives the macOS say(1) command.
package say

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/dgnsrekt/readaloud/internal/speech"
)

// Name is the engine name.
const Name = "say"

// defaultWordsPerMinute is say's normal rate, used to scale Request.Rate.
const defaultWordsPerMinute = 175

// VoiceDirs are the system and user voice locations watched for changes.
var VoiceDirs = []string{
	"/System/Library/Speech/Voices",
	"/Library/Speech/Voices",
	"~/Library/Speech/Voices",
}

// Config holds say engine settings.
type Config struct {
	Binary string   // Path or name of the say binary
	Watch  []string // Directories to watch for voice changes
}

// Engine implements speech.Host on top of say.
type Engine struct {
	*speech.Runner
	binary  string
	watcher *speech.Watcher
}

// New locates the say binary and starts watching the voice directories.
func New(cfg Config) (*Engine, error) {
	if cfg.Binary == "" {
		cfg.Binary = "say"
	}
	bin, err := speech.FindBinary(cfg.Binary, "/usr/bin/say")
	if err != nil {
		return nil, speech.Wrap(Name, "init", err)
	}

	e := &Engine{binary: bin}
	e.Runner = speech.NewRunner(Name, e.speak)

	e.watcher, err = speech.Watch(cfg.Watch, speech.DefaultWatchInterval, func(ctx context.Context) {
		e.EmitContext(ctx, speech.VoicesChanged{})
	})
	if err != nil {
		return nil, speech.Wrap(Name, "watch", err)
	}
	return e, nil
}

// Name implements speech.Host.
func (e *Engine) Name() string { return Name }

// IsAvailable implements speech.Host.
func (e *Engine) IsAvailable() bool { return e.binary != "" }

// ListVoices implements speech.Host.
func (e *Engine) ListVoices(ctx context.Context) ([]speech.Voice, error) {
	out, err := speech.Run(ctx, nil, e.binary, "-v", "?")
	if err != nil {
		return nil, speech.Wrap(Name, "list voices", err)
	}
	return ParseVoices(out), nil
}

func (e *Engine) speak(ctx context.Context, req speech.Request) error {
	args := []string{"-v", req.Voice}
	if req.Rate > 0 && req.Rate != 1 {
		args = append(args, "-r", fmt.Sprintf("%.0f", defaultWordsPerMinute*req.Rate))
	}
	// say has no pitch flag; Request.Pitch is always 1 here anyway.
	args = append(args, "--", req.Text)
	_, err := speech.Run(ctx, nil, e.binary, args...)
	return err
}

// Close implements speech.Host.
func (e *Engine) Close() error {
	_ = e.watcher.Close()
	return e.Runner.Close()
}

// voiceLine matches one line of `say -v ?`, e.g.
//
//	Alex                en_US    # Most people recognize me by my voice.
//	Eddy (English (US)) en_US    # Hello! My name is Eddy.
var voiceLine = regexp.MustCompile(`^(.+?)\s+([A-Za-z]{2,3}(?:[_-][A-Za-z0-9]+)*)\s+#`)

// ParseVoices parses the output of `say -v ?`. Underscores in locale names
// are turned into hyphens so tags read "en-US".
func ParseVoices(out []byte) []speech.Voice {
	var voices []speech.Voice
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		m := voiceLine.FindStringSubmatch(strings.TrimSpace(sc.Text()))
		if m == nil {
			continue
		}
		voices = append(voices, speech.Voice{
			Name:     strings.TrimSpace(m[1]),
			Language: strings.ReplaceAll(m[2], "_", "-"),
		})
	}
	return voices
}
