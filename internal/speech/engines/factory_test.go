package engines

import (
	"errors"
	"reflect"
	"testing"

	"github.com/dgnsrekt/readaloud/internal/speech"
	"github.com/dgnsrekt/readaloud/internal/speech/engines/mock"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{"auto", false},
		{"say", false},
		{"espeak", false},
		{"piper", false},
		{"mock", false},
		{"MOCK", false},
		{"festival", true},
		{"", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.name)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrUnknownEngine) {
				t.Errorf("expected ErrUnknownEngine, got %v", err)
			}
		})
	}
}

func TestAutoOrder(t *testing.T) {
	if got := autoOrder("darwin"); !reflect.DeepEqual(got, []string{"say", "piper", "espeak"}) {
		t.Errorf("unexpected darwin order %v", got)
	}
	if got := autoOrder("linux"); !reflect.DeepEqual(got, []string{"espeak", "piper"}) {
		t.Errorf("unexpected linux order %v", got)
	}
}

func TestNewMock(t *testing.T) {
	h, err := New(Config{Engine: "mock"})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer h.Close()

	if _, ok := h.(*mock.Engine); !ok {
		t.Fatalf("expected *mock.Engine, got %T", h)
	}
	if !h.IsAvailable() {
		t.Error("expected mock engine to be available")
	}
}

func TestNewUnknown(t *testing.T) {
	if _, err := New(Config{Engine: "festival"}); !errors.Is(err, ErrUnknownEngine) {
		t.Errorf("expected ErrUnknownEngine, got %v", err)
	}
}

func TestNewUnavailableEngine(t *testing.T) {
	h, err := New(Config{Engine: "piper", PiperBinary: "/nonexistent/piper-binary"})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer h.Close()

	if h.IsAvailable() {
		t.Error("expected an unavailable host")
	}
	if _, err := h.Speak(speech.Request{Text: "Hello"}); !errors.Is(err, speech.ErrNotAvailable) {
		t.Errorf("expected ErrNotAvailable, got %v", err)
	}
}
