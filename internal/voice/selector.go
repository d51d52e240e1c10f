package voice

import (
	"sync"

	"github.com/dgnsrekt/readaloud/internal/speech"
)

// Selector is the single-choice selection bound to a Directory. The choice
// is a name; it is resolved against the directory only when asked.
type Selector struct {
	dir *Directory

	mu     sync.Mutex
	chosen string
}

// NewSelector binds a selector to dir.
func NewSelector(dir *Directory) *Selector {
	return &Selector{dir: dir}
}

// Choose records name as the current choice.
func (s *Selector) Choose(name string) {
	s.mu.Lock()
	s.chosen = name
	s.mu.Unlock()
}

// Chosen returns the chosen name, or "" if nothing is chosen.
func (s *Selector) Chosen() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.chosen
}

// Sync is called after the directory was refreshed. With no choice yet the
// first voice becomes the choice. A choice that disappeared is kept so that
// Resolve reports it.
func (s *Selector) Sync() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.chosen != "" {
		return
	}
	if voices := s.dir.Voices(); len(voices) > 0 {
		s.chosen = voices[0].Name
	}
}

// Resolve looks the chosen name up in the directory.
func (s *Selector) Resolve() (speech.Voice, error) {
	name := s.Chosen()
	if name == "" {
		return speech.Voice{}, ErrVoiceNotFound
	}
	return s.dir.Lookup(name)
}
