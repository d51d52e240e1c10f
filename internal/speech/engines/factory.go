// Package engines selects and constructs speech hosts.
package engines

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/readaloud/internal/speech"
	"github.com/dgnsrekt/readaloud/internal/speech/engines/espeak"
	"github.com/dgnsrekt/readaloud/internal/speech/engines/mock"
	"github.com/dgnsrekt/readaloud/internal/speech/engines/piper"
	"github.com/dgnsrekt/readaloud/internal/speech/engines/say"
)

// Auto selects the first engine that works on this system.
const Auto = "auto"

// ErrUnknownEngine is returned for an engine name that is not supported.
var ErrUnknownEngine = errors.New("unknown speech engine")

// Names lists the selectable engine names.
var Names = []string{Auto, say.Name, espeak.Name, piper.Name, mock.Name}

// Config holds the settings of every engine.
type Config struct {
	Engine string
	Watch  bool // Watch voice directories for changes

	SayBinary      string
	EspeakBinary   string
	EspeakDataDir  string
	PiperBinary    string
	PiperModelDirs []string
	PiperCacheSize int64
	PiperTimeout   time.Duration
	MockWPM        int
}

// Validate checks the engine name.
func Validate(name string) error {
	for _, n := range Names {
		if strings.EqualFold(name, n) {
			return nil
		}
	}
	return fmt.Errorf("%w %q (choose one of %s)", ErrUnknownEngine, name, strings.Join(Names, ", "))
}

// autoOrder returns the engines tried by Auto on goos.
func autoOrder(goos string) []string {
	if goos == "darwin" {
		return []string{say.Name, piper.Name, espeak.Name}
	}
	return []string{espeak.Name, piper.Name}
}

// New constructs the configured engine. When the engine cannot be set up
// the returned host is a speech.Unsupported explaining why, so callers can
// still start and show the unsupported state; the error is returned only
// for configuration mistakes.
func New(cfg Config) (speech.Host, error) {
	name := strings.ToLower(cfg.Engine)
	if name == "" {
		name = Auto
	}
	if err := Validate(name); err != nil {
		return nil, err
	}

	if name != Auto {
		h, err := build(name, cfg)
		if err != nil {
			log.Warn("Speech engine unavailable", "engine", name, "err", err)
			return speech.NewUnsupported(err), nil
		}
		log.Info("Speech engine selected", "engine", name, "reason", "configured")
		return h, nil
	}

	var errs []error
	for _, n := range autoOrder(runtime.GOOS) {
		h, err := build(n, cfg)
		if err != nil {
			log.Debug("speech engine skipped", "engine", n, "err", err)
			errs = append(errs, err)
			continue
		}
		log.Info("Speech engine selected", "engine", n, "reason", "auto")
		return h, nil
	}
	return speech.NewUnsupported(errors.Join(errs...)), nil
}

func build(name string, cfg Config) (speech.Host, error) {
	switch name {
	case say.Name:
		c := say.Config{Binary: cfg.SayBinary}
		if cfg.Watch {
			c.Watch = say.VoiceDirs
		}
		e, err := say.New(c)
		if err != nil {
			return nil, err
		}
		return e, nil
	case espeak.Name:
		c := espeak.Config{Binary: cfg.EspeakBinary, DataDir: cfg.EspeakDataDir, Watch: cfg.Watch}
		e, err := espeak.New(c)
		if err != nil {
			return nil, err
		}
		return e, nil
	case piper.Name:
		e, err := piper.New(piper.Config{
			Binary:    cfg.PiperBinary,
			ModelDirs: cfg.PiperModelDirs,
			CacheSize: cfg.PiperCacheSize,
			Timeout:   cfg.PiperTimeout,
			Watch:     cfg.Watch,
		})
		if err != nil {
			return nil, err
		}
		return e, nil
	case mock.Name:
		return mock.New(mock.WithWordsPerMinute(cfg.MockWPM)), nil
	}
	return nil, fmt.Errorf("%w %q", ErrUnknownEngine, name)
}
