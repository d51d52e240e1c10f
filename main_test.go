package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dgnsrekt/readaloud/internal/playback"
	"github.com/dgnsrekt/readaloud/internal/speech"
	"github.com/dgnsrekt/readaloud/internal/speech/engines/mock"
	"github.com/dgnsrekt/readaloud/internal/voice"
	"github.com/spf13/viper"
)

var testVoices = []speech.Voice{
	{Name: "Alex", Language: "en-US"},
	{Name: "Daniel", Language: "en-GB"},
	{Name: "Amélie", Language: "fr-CA"},
	{Name: "Karen", Language: "en-AU"},
}

func TestEngineConfig(t *testing.T) {
	viper.Set("piper.cache_size", "2MB")
	viper.Set("piper.models_dir", "/a/voices:/b/voices")
	viper.Set("piper.timeout", "45s")
	viper.Set("mock.words_per_minute", 300)
	t.Cleanup(viper.Reset)

	cfg := engineConfig()
	if cfg.PiperCacheSize != 2<<20 {
		t.Errorf("expected cache size %d, got %d", 2<<20, cfg.PiperCacheSize)
	}
	if len(cfg.PiperModelDirs) != 2 || cfg.PiperModelDirs[1] != "/b/voices" {
		t.Errorf("unexpected model dirs: %v", cfg.PiperModelDirs)
	}
	if cfg.PiperTimeout != 45*time.Second {
		t.Errorf("expected 45s timeout, got %v", cfg.PiperTimeout)
	}
	if cfg.MockWPM != 300 {
		t.Errorf("expected 300 wpm, got %d", cfg.MockWPM)
	}
}

func TestLoadTextFromFlag(t *testing.T) {
	if err := rootCmd.Flags().Set("text", "Hello world"); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		text = ""
		rootCmd.Flags().Lookup("text").Changed = false
	})

	s, piped, err := loadText(rootCmd, nil)
	if err != nil {
		t.Fatalf("loadText failed: %v", err)
	}
	if s != "Hello world" || piped {
		t.Errorf("expected flag text, got %q (piped=%v)", s, piped)
	}
}

func TestMatchVoices(t *testing.T) {
	tests := []struct {
		query string
		want  []string
	}{
		{"alex", []string{"Alex"}},
		{"dan", []string{"Daniel"}},
		{"zzz", nil},
	}
	for _, tc := range tests {
		t.Run(tc.query, func(t *testing.T) {
			got := matchVoices(testVoices, tc.query)
			if len(got) != len(tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
			for i, v := range got {
				if v.Name != tc.want[i] {
					t.Errorf("match %d: expected %q, got %q", i, tc.want[i], v.Name)
				}
			}
		})
	}
}

func TestWritePlain(t *testing.T) {
	var buf bytes.Buffer
	if err := writePlain(&buf, voice.Filter(testVoices, "en")); err != nil {
		t.Fatal(err)
	}
	want := "Alex    en-US\nDaniel  en-GB\nKaren   en-AU\n"
	if buf.String() != want {
		t.Errorf("expected:\n%s\ngot:\n%s", want, buf.String())
	}
}

func TestVoiceTable(t *testing.T) {
	md := voiceTable([]speech.Voice{{Name: "A|B", Language: "en-US"}}, 1200)
	if !strings.Contains(md, `| A\|B | en-US | American English |`) {
		t.Errorf("unexpected table row:\n%s", md)
	}
	if !strings.Contains(md, "1 of 1,200 voices") {
		t.Errorf("expected count footer, got:\n%s", md)
	}

	if md := voiceTable(nil, 3); !strings.Contains(md, "No matching voices.") {
		t.Errorf("expected empty message, got:\n%s", md)
	}
}

func TestSpeakText(t *testing.T) {
	tests := []struct {
		name    string
		host    func() speech.Host
		voice   string
		wantErr error
		wantOut string
	}{
		{
			name:    "default voice",
			host:    func() speech.Host { return mock.New(mock.WithVoices(testVoices...), mock.WithWordsPerMinute(60000)) },
			wantOut: playback.MsgDone,
		},
		{
			name:    "chosen voice",
			host:    func() speech.Host { return mock.New(mock.WithVoices(testVoices...), mock.WithWordsPerMinute(60000)) },
			voice:   "Karen",
			wantOut: playback.MsgDone,
		},
		{
			name:    "unknown voice",
			host:    func() speech.Host { return mock.New(mock.WithVoices(testVoices...)) },
			voice:   "Amélie",
			wantErr: voice.ErrVoiceNotFound,
			wantOut: playback.MsgVoiceNotFound,
		},
		{
			name:    "no voices",
			host:    func() speech.Host { return mock.New(mock.WithVoices()) },
			wantErr: playback.ErrNoVoicesAvailable,
		},
		{
			name:    "unsupported",
			host:    func() speech.Host { return speech.NewUnsupported(nil) },
			wantErr: playback.ErrUnsupportedPlatform,
			wantOut: playback.MsgUnsupported,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			host := tc.host()
			defer host.Close() //nolint:errcheck

			var buf bytes.Buffer
			err := speakText(context.Background(), host, "Hello there", tc.voice, &buf)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected error %v, got %v", tc.wantErr, err)
			}
			if !strings.Contains(buf.String(), tc.wantOut) {
				t.Errorf("expected output to contain %q, got %q", tc.wantOut, buf.String())
			}
		})
	}
}

func TestSpeakTextInterrupted(t *testing.T) {
	host := mock.New(mock.WithVoices(testVoices...), mock.Manual())
	defer host.Close() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	var buf bytes.Buffer
	go func() { done <- speakText(ctx, host, "A long story", "", &buf) }()

	deadline := time.After(2 * time.Second)
	for host.Current() == "" {
		select {
		case <-deadline:
			t.Fatal("speech never started")
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("expected a clean stop, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("speakText did not return after cancellation")
	}
	if host.Cancels() == 0 {
		t.Error("expected the host to be cancelled")
	}
}
