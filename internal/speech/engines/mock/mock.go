// Package mock provides an in-memory speech engine for testing and demos.
package mock

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/readaloud/internal/speech"
)

// Name is the engine name.
const Name = "mock"

// DefaultVoices is the voice list a new mock engine reports.
var DefaultVoices = []speech.Voice{
	{Name: "Mock Voice 1", Language: "en-US"},
	{Name: "Mock Voice 2", Language: "en-GB"},
	{Name: "Mock Voix", Language: "fr-FR"},
}

// Engine implements speech.Host in memory. In automatic mode (the default)
// utterances end after a words-per-minute estimate; in manual mode nothing
// happens until the test calls Finish or Fail.
type Engine struct {
	mu        sync.Mutex
	voices    []speech.Voice
	available bool
	manual    bool
	wpm       int

	listErr  error
	speakErr error

	requests []speech.Request
	cancels  int
	dropped  int
	seq      int
	current  speech.UtteranceID
	stop     context.CancelFunc

	events chan speech.Event
	closed bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithVoices sets the initial voice list.
func WithVoices(voices ...speech.Voice) Option {
	return func(e *Engine) { e.voices = voices }
}

// WithWordsPerMinute sets the speaking rate used in automatic mode.
func WithWordsPerMinute(wpm int) Option {
	return func(e *Engine) {
		if wpm > 0 {
			e.wpm = wpm
		}
	}
}

// Manual disables automatic completion of utterances.
func Manual() Option {
	return func(e *Engine) { e.manual = true }
}

// Unavailable makes IsAvailable report false.
func Unavailable() Option {
	return func(e *Engine) { e.available = false }
}

// New creates a mock engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		voices:    append([]speech.Voice(nil), DefaultVoices...),
		available: true,
		wpm:       150,
		events:    make(chan speech.Event, 64),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name implements speech.Host.
func (e *Engine) Name() string { return Name }

// IsAvailable implements speech.Host.
func (e *Engine) IsAvailable() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.available
}

// ListVoices implements speech.Host.
func (e *Engine) ListVoices(context.Context) ([]speech.Voice, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.listErr != nil {
		return nil, e.listErr
	}
	return append([]speech.Voice(nil), e.voices...), nil
}

// Speak implements speech.Host.
func (e *Engine) Speak(req speech.Request) (speech.UtteranceID, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return "", speech.ErrClosed
	}
	e.requests = append(e.requests, req)
	if e.speakErr != nil {
		return "", e.speakErr
	}
	if strings.TrimSpace(req.Text) == "" {
		return "", speech.ErrEmptyText
	}

	e.seq++
	id := speech.UtteranceID(fmt.Sprintf("mock-%d", e.seq))
	e.current = id

	if !e.manual {
		ctx, cancel := context.WithCancel(context.Background())
		e.stop = cancel
		go e.autoFinish(ctx, id, e.estimateDuration(req.Text))
	}
	return id, nil
}

func (e *Engine) autoFinish(ctx context.Context, id speech.UtteranceID, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
		e.mu.Lock()
		defer e.mu.Unlock()
		if e.current == id {
			e.current = ""
			e.emit(speech.UtteranceEnd{ID: id})
		}
	}
}

// Cancel implements speech.Host. Cancelling an utterance reports it as
// interrupted, as browser hosts do.
func (e *Engine) Cancel() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.cancels++
	if e.stop != nil {
		e.stop()
		e.stop = nil
	}
	if e.current != "" {
		e.emit(speech.UtteranceError{ID: e.current, Err: speech.ErrInterrupted})
		e.current = ""
	}
	return nil
}

// IsSpeaking implements speech.Host.
func (e *Engine) IsSpeaking() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current != ""
}

// Events implements speech.Host.
func (e *Engine) Events() <-chan speech.Event {
	return e.events
}

// Close implements speech.Host.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true
	if e.stop != nil {
		e.stop()
	}
	close(e.events)
	return nil
}

// must be called with lock held
func (e *Engine) emit(ev speech.Event) {
	if e.closed {
		return
	}
	select {
	case e.events <- ev:
	default:
		e.dropped++
		log.Warn("Mock engine dropped an event, nobody is reading", "event", fmt.Sprintf("%T", ev), "dropped", e.dropped)
	}
}

func (e *Engine) estimateDuration(text string) time.Duration {
	words := len(strings.Fields(text))
	if words < 1 {
		words = 1
	}
	return time.Duration(float64(words) * 60 / float64(e.wpm) * float64(time.Second))
}

// Test control methods

// SetVoices replaces the voice list and emits VoicesChanged.
func (e *Engine) SetVoices(voices ...speech.Voice) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.voices = voices
	e.emit(speech.VoicesChanged{})
}

// SetListError makes ListVoices fail with err.
func (e *Engine) SetListError(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listErr = err
}

// SetSpeakError makes Speak fail with err.
func (e *Engine) SetSpeakError(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.speakErr = err
}

// SetSpeaking forces the IsSpeaking result without a request.
func (e *Engine) SetSpeaking(id speech.UtteranceID) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.current = id
}

// Requests returns every request passed to Speak.
func (e *Engine) Requests() []speech.Request {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]speech.Request(nil), e.requests...)
}

// Cancels returns the number of Cancel calls.
func (e *Engine) Cancels() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cancels
}

// Current returns the in-flight utterance id, or "".
func (e *Engine) Current() speech.UtteranceID {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current
}

// Dropped returns the number of events lost to a full event buffer.
func (e *Engine) Dropped() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dropped
}

// Finish ends the current utterance. The UtteranceEnd is delivered on
// Events only.
func (e *Engine) Finish() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.emit(speech.UtteranceEnd{ID: e.current})
	e.current = ""
}

// Fail fails the current utterance with err. The UtteranceError is
// delivered on Events only.
func (e *Engine) Fail(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.emit(speech.UtteranceError{ID: e.current, Err: err})
	e.current = ""
}
