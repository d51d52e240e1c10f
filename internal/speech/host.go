// Package speech defines the host speech capability readaloud drives: voice
// enumeration, fire-and-forget speak/cancel requests and the asynchronous
// notifications that report their outcome.
package speech

import (
	"context"
)

// Voice identifies one selectable synthetic voice as reported by a host.
type Voice struct {
	Name     string // Identifying name, unique within a host's list
	Language string // BCP 47-ish language tag, e.g. "en-US"
}

// UtteranceID identifies one outstanding speak request.
type UtteranceID string

// Request bundles everything needed for a single speak invocation.
type Request struct {
	Text  string
	Voice string  // Voice.Name
	Rate  float64 // 1 is the engine's normal rate
	Pitch float64 // 1 is the engine's normal pitch
}

// Host is the platform-provided speech capability.
//
// Speak and Cancel never block on audio: the outcome of an utterance is
// reported later through Events as an UtteranceEnd or UtteranceError.
type Host interface {
	// Name returns the engine name, e.g. "say" or "piper".
	Name() string

	// IsAvailable reports whether the capability can be used at all.
	IsAvailable() bool

	// ListVoices returns the voices the host currently reports. The list
	// may be empty before the host has finished initializing.
	ListVoices(ctx context.Context) ([]Voice, error)

	// Speak starts speaking req and returns the new utterance's id.
	Speak(req Request) (UtteranceID, error)

	// Cancel stops any in-flight utterance. It is a no-op when idle.
	Cancel() error

	// IsSpeaking reports whether an utterance is in flight.
	IsSpeaking() bool

	// Events delivers host notifications.
	Events() <-chan Event

	// Close releases the host's resources and closes Events.
	Close() error
}

// Event is a notification delivered by a Host.
type Event interface {
	speechEvent()
}

// VoicesChanged signals that ListVoices may now return a different list.
type VoicesChanged struct{}

// UtteranceEnd signals that an utterance finished speaking.
type UtteranceEnd struct {
	ID UtteranceID
}

// UtteranceError signals that an utterance failed or was interrupted.
type UtteranceError struct {
	ID  UtteranceID
	Err error
}

func (VoicesChanged) speechEvent()  {}
func (UtteranceEnd) speechEvent()   {}
func (UtteranceError) speechEvent() {}

// Error returns the host-supplied detail.
func (e UtteranceError) Error() string {
	if e.Err == nil {
		return "unknown error"
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e UtteranceError) Unwrap() error {
	return e.Err
}
