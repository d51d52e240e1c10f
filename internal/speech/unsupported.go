package speech

import (
	"context"
	"sync"
)

// Unsupported is the Host used when no speech engine could be found. It
// reports itself unavailable and refuses every request.
type Unsupported struct {
	Reason error
	events chan Event
	once   sync.Once
}

// NewUnsupported returns an unavailable host; reason explains why.
func NewUnsupported(reason error) *Unsupported {
	return &Unsupported{Reason: reason, events: make(chan Event)}
}

func (u *Unsupported) Name() string                                { return "none" }
func (u *Unsupported) IsAvailable() bool                           { return false }
func (u *Unsupported) ListVoices(context.Context) ([]Voice, error) { return nil, ErrNotAvailable }
func (u *Unsupported) Speak(Request) (UtteranceID, error)          { return "", ErrNotAvailable }
func (u *Unsupported) Cancel() error                               { return nil }
func (u *Unsupported) IsSpeaking() bool                            { return false }
func (u *Unsupported) Events() <-chan Event                        { return u.events }

// Close closes the (always silent) event channel.
func (u *Unsupported) Close() error {
	u.once.Do(func() { close(u.events) })
	return nil
}
