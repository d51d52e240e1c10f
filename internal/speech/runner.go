package speech

import (
	"context"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// SpeakFunc speaks one request, blocking until the audio has finished or ctx
// is cancelled.
type SpeakFunc func(ctx context.Context, req Request) error

// Runner turns a blocking SpeakFunc into the fire-and-forget Speak/Cancel
// half of a Host. Each utterance runs in its own goroutine and its outcome is
// delivered on Events. At most one utterance is in flight: a new Speak
// cancels the previous one.
type Runner struct {
	engine string
	speak  SpeakFunc

	mu      sync.Mutex
	current UtteranceID
	cancel  context.CancelFunc
	closed  bool

	events    chan Event
	quit      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewRunner creates a runner for the named engine.
func NewRunner(engine string, speak SpeakFunc) *Runner {
	return &Runner{
		engine: engine,
		speak:  speak,
		events: make(chan Event, 16),
		quit:   make(chan struct{}),
	}
}

// Speak starts req in the background and returns its id.
func (r *Runner) Speak(req Request) (UtteranceID, error) {
	if strings.TrimSpace(req.Text) == "" {
		return "", ErrEmptyText
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return "", ErrClosed
	}
	if r.cancel != nil {
		r.cancel()
	}

	id := UtteranceID(uuid.NewString())
	ctx, cancel := context.WithCancel(context.Background())
	r.current = id
	r.cancel = cancel

	log.Debug("utterance started", "engine", r.engine, "id", id, "voice", req.Voice, "chars", len(req.Text))

	r.wg.Add(1)
	go r.run(ctx, cancel, id, req)
	return id, nil
}

func (r *Runner) run(ctx context.Context, cancel context.CancelFunc, id UtteranceID, req Request) {
	defer r.wg.Done()
	defer cancel()

	err := r.speak(ctx, req)

	r.mu.Lock()
	if r.current == id {
		r.current = ""
		r.cancel = nil
	}
	r.mu.Unlock()

	switch {
	case ctx.Err() != nil:
		log.Debug("utterance interrupted", "engine", r.engine, "id", id)
		r.Emit(UtteranceError{ID: id, Err: ErrInterrupted})
	case err != nil:
		log.Debug("utterance failed", "engine", r.engine, "id", id, "err", err)
		r.Emit(UtteranceError{ID: id, Err: Wrap(r.engine, "speak", err)})
	default:
		log.Debug("utterance finished", "engine", r.engine, "id", id)
		r.Emit(UtteranceEnd{ID: id})
	}
}

// Cancel stops the in-flight utterance, if any.
func (r *Runner) Cancel() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		r.cancel()
	}
	return nil
}

// IsSpeaking reports whether an utterance goroutine is still running.
func (r *Runner) IsSpeaking() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current != ""
}

// Events returns the notification channel.
func (r *Runner) Events() <-chan Event {
	return r.events
}

// Emit delivers ev unless the runner is closing.
func (r *Runner) Emit(ev Event) {
	r.EmitContext(context.Background(), ev)
}

// EmitContext is Emit that also gives up when ctx is done.
func (r *Runner) EmitContext(ctx context.Context, ev Event) {
	select {
	case r.events <- ev:
	case <-r.quit:
	case <-ctx.Done():
	}
}

// Close cancels any utterance, waits for it to wind down and closes Events.
// Anything else that calls Emit must be stopped before Close.
func (r *Runner) Close() error {
	r.closeOnce.Do(func() {
		r.mu.Lock()
		r.closed = true
		if r.cancel != nil {
			r.cancel()
		}
		r.mu.Unlock()

		close(r.quit)
		r.wg.Wait()
		close(r.events)
	})
	return nil
}
