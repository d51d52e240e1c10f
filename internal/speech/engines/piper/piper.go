// Package piper drives the piper neural TTS binary. Voices are the ONNX
// models found in the models directories; synthesized PCM is played through
// the system audio device.
package piper

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/readaloud/internal/cache"
	"github.com/dgnsrekt/readaloud/internal/speech"
	"github.com/mitchellh/go-homedir"
)

// Name is the engine name.
const Name = "piper"

// DefaultSampleRate is used when a model config does not specify one.
const DefaultSampleRate = 22050

// ModelDirs are the usual voice model locations.
var ModelDirs = []string{
	"~/.local/share/piper-voices",
	"~/.config/piper/voices",
	"/usr/share/piper-voices",
	"/usr/local/share/piper-voices",
	"/opt/piper/voices",
}

var binaryFallbacks = []string{
	"/usr/local/bin/piper",
	"/usr/bin/piper",
	"/opt/piper/piper",
	"~/.local/bin/piper",
	"~/bin/piper",
}

// Config holds piper engine settings.
type Config struct {
	Binary    string
	ModelDirs []string      // Empty uses ModelDirs
	CacheSize int64         // Compressed bytes of synthesized audio to keep; 0 disables
	Timeout   time.Duration // Synthesis timeout; 0 means none
	Watch     bool          // Watch the model directories for changes
}

// Model is one installed voice model.
type Model struct {
	Voice      speech.Voice
	Path       string // .onnx file
	ConfigPath string // .onnx.json file
	SampleRate int
}

// Engine implements speech.Host on top of piper.
type Engine struct {
	*speech.Runner
	binary  string
	dirs    []string
	timeout time.Duration
	player  *speech.Player
	cache   *cache.AudioCache
	watcher *speech.Watcher

	mu     sync.Mutex
	models map[string]Model
}

// New locates the piper binary and starts watching the model directories.
func New(cfg Config) (*Engine, error) {
	if cfg.Binary == "" {
		cfg.Binary = "piper"
	}
	bin, err := speech.FindBinary(cfg.Binary, binaryFallbacks...)
	if err != nil {
		return nil, speech.Wrap(Name, "init", err)
	}

	dirs := cfg.ModelDirs
	if len(dirs) == 0 {
		dirs = ModelDirs
	}
	expanded := make([]string, 0, len(dirs))
	for _, d := range dirs {
		if p, err := homedir.Expand(d); err == nil {
			expanded = append(expanded, p)
		}
	}

	e := &Engine{
		binary:  bin,
		dirs:    expanded,
		timeout: cfg.Timeout,
		player:  speech.NewPlayer(),
		models:  make(map[string]Model),
	}
	if cfg.CacheSize > 0 {
		if e.cache, err = cache.New(cfg.CacheSize); err != nil {
			return nil, speech.Wrap(Name, "init", err)
		}
	}
	e.Runner = speech.NewRunner(Name, e.speak)

	if !cfg.Watch {
		return e, nil
	}
	e.watcher, err = speech.Watch(expanded, speech.DefaultWatchInterval, func(ctx context.Context) {
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
func (e *Engine) ListVoices(context.Context) ([]speech.Voice, error) {
	models, err := FindModels(e.dirs)
	if err != nil {
		return nil, speech.Wrap(Name, "list voices", err)
	}

	byName := make(map[string]Model, len(models))
	voices := make([]speech.Voice, 0, len(models))
	for _, m := range models {
		if _, dup := byName[m.Voice.Name]; dup {
			continue
		}
		byName[m.Voice.Name] = m
		voices = append(voices, m.Voice)
	}

	e.mu.Lock()
	e.models = byName
	e.mu.Unlock()
	return voices, nil
}

func (e *Engine) speak(ctx context.Context, req speech.Request) error {
	e.mu.Lock()
	m, ok := e.models[req.Voice]
	e.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", speech.ErrUnknownVoice, req.Voice)
	}

	pcm, err := e.synthesize(ctx, m, req)
	if err != nil {
		return err
	}
	return e.player.Play(ctx, pcm, m.SampleRate)
}

func (e *Engine) synthesize(ctx context.Context, m Model, req speech.Request) ([]byte, error) {
	key := cache.Key(fmt.Sprintf("%s@%.2f", m.Path, req.Rate), req.Text)
	if e.cache != nil {
		if pcm, ok := e.cache.Get(key); ok {
			log.Debug("piper cache hit", "voice", m.Voice.Name, "bytes", len(pcm))
			return pcm, nil
		}
	}

	args := []string{"--model", m.Path, "--output-raw"}
	if m.ConfigPath != "" {
		args = append(args, "--config", m.ConfigPath)
	}
	// length_scale is the inverse of speed: 2.0 speaks at half speed.
	if req.Rate > 0 && req.Rate != 1 {
		args = append(args, "--length_scale", fmt.Sprintf("%.2f", 1/req.Rate))
	}

	synthCtx := ctx
	if e.timeout > 0 {
		var cancel context.CancelFunc
		synthCtx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	start := time.Now()
	pcm, err := speech.Run(synthCtx, strings.NewReader(req.Text), e.binary, args...)
	if err != nil {
		return nil, err
	}
	log.Debug("piper synthesis completed", "voice", m.Voice.Name, "bytes", len(pcm), "duration", time.Since(start))

	if e.cache != nil {
		if err := e.cache.Put(key, pcm); err != nil {
			log.Debug("piper cache put skipped", "err", err)
		}
	}
	return pcm, nil
}

// Close implements speech.Host.
func (e *Engine) Close() error {
	_ = e.watcher.Close()
	return e.Runner.Close()
}

// modelConfig is the subset of a piper .onnx.json file we read.
type modelConfig struct {
	Audio struct {
		SampleRate int `json:"sample_rate"`
	} `json:"audio"`
	Language struct {
		Code string `json:"code"`
	} `json:"language"`
}

// FindModels returns the models in dirs (searched recursively), sorted by
// name. Directories that do not exist are skipped.
func FindModels(dirs []string) ([]Model, error) {
	var models []Model
	for _, dir := range dirs {
		if _, err := os.Stat(dir); err != nil {
			continue
		}
		err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if d.IsDir() || !strings.HasSuffix(path, ".onnx") {
				return nil
			}
			models = append(models, LoadModel(path))
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	sort.SliceStable(models, func(i, j int) bool {
		return models[i].Voice.Name < models[j].Voice.Name
	})
	return models, nil
}

// LoadModel describes the model at path, reading its sibling config when
// present. Without a config the language is taken from the file name
// ("en_US-lessac-medium" is en-US).
func LoadModel(path string) Model {
	name := strings.TrimSuffix(filepath.Base(path), ".onnx")
	m := Model{
		Voice:      speech.Voice{Name: name},
		Path:       path,
		SampleRate: DefaultSampleRate,
	}

	lang := name
	if i := strings.IndexByte(name, '-'); i > 0 {
		lang = name[:i]
	}

	cfgPath := path + ".json"
	if b, err := os.ReadFile(cfgPath); err == nil {
		m.ConfigPath = cfgPath
		var cfg modelConfig
		if err := json.Unmarshal(b, &cfg); err != nil {
			log.Warn("Could not parse piper model config", "path", cfgPath, "err", err)
		} else {
			if cfg.Language.Code != "" {
				lang = cfg.Language.Code
			}
			if cfg.Audio.SampleRate > 0 {
				m.SampleRate = cfg.Audio.SampleRate
			}
		}
	}

	m.Voice.Language = strings.ReplaceAll(lang, "_", "-")
	return m
}
