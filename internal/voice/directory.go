package voice

import (
	"errors"
	"strings"
	"sync"

	"github.com/dgnsrekt/readaloud/internal/speech"
)

// ErrVoiceNotFound is returned when a voice name does not resolve against
// the current directory contents.
var ErrVoiceNotFound = errors.New("voice not found")

// Directory is the ordered list of voices whose language tag starts with a
// prefix. Every Refresh replaces the contents.
type Directory struct {
	prefix string

	mu     sync.RWMutex
	voices []speech.Voice
}

// NewDirectory creates an empty directory keeping voices whose language
// starts with prefix. The match is case-sensitive.
func NewDirectory(prefix string) *Directory {
	return &Directory{prefix: prefix}
}

// Prefix returns the language prefix.
func (d *Directory) Prefix() string { return d.prefix }

// Refresh replaces the directory with the entries of all that match the
// prefix, in the order given, and returns them.
func (d *Directory) Refresh(all []speech.Voice) []speech.Voice {
	filtered := Filter(all, d.prefix)

	d.mu.Lock()
	d.voices = filtered
	d.mu.Unlock()

	return append([]speech.Voice(nil), filtered...)
}

// Voices returns a copy of the directory contents.
func (d *Directory) Voices() []speech.Voice {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]speech.Voice(nil), d.voices...)
}

// Len returns the number of voices.
func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.voices)
}

// Empty reports whether no voice is available.
func (d *Directory) Empty() bool { return d.Len() == 0 }

// Lookup resolves name by exact match.
func (d *Directory) Lookup(name string) (speech.Voice, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, v := range d.voices {
		if v.Name == name {
			return v, nil
		}
	}
	return speech.Voice{}, ErrVoiceNotFound
}

// Filter returns the voices whose language starts with prefix, preserving
// order. An empty prefix keeps everything.
func Filter(all []speech.Voice, prefix string) []speech.Voice {
	out := make([]speech.Voice, 0, len(all))
	for _, v := range all {
		if strings.HasPrefix(v.Language, prefix) {
			out = append(out, v)
		}
	}
	return out
}
