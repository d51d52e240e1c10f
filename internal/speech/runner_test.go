package speech

import (
	"context"
	"errors"
	"testing"
	"time"
)

func nextEvent(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return nil
	}
}

func TestRunnerEmitsEnd(t *testing.T) {
	r := NewRunner("test", func(context.Context, Request) error { return nil })
	defer r.Close()

	id, err := r.Speak(Request{Text: "Hello", Voice: "Alex", Rate: 1, Pitch: 1})
	if err != nil {
		t.Fatalf("Speak failed: %v", err)
	}
	if id == "" {
		t.Fatal("expected a non-empty utterance id")
	}

	ev, ok := nextEvent(t, r.Events()).(UtteranceEnd)
	if !ok {
		t.Fatalf("expected UtteranceEnd, got %T", ev)
	}
	if ev.ID != id {
		t.Errorf("expected id %q, got %q", id, ev.ID)
	}
}

func TestRunnerEmitsError(t *testing.T) {
	boom := errors.New("audio device busy")
	r := NewRunner("test", func(context.Context, Request) error { return boom })
	defer r.Close()

	id, _ := r.Speak(Request{Text: "Hello"})
	ev, ok := nextEvent(t, r.Events()).(UtteranceError)
	if !ok {
		t.Fatalf("expected UtteranceError, got %T", ev)
	}
	if ev.ID != id {
		t.Errorf("expected id %q, got %q", id, ev.ID)
	}
	if !errors.Is(ev, boom) {
		t.Errorf("expected error to wrap %v, got %v", boom, ev.Err)
	}
	var ee *EngineError
	if !errors.As(ev.Err, &ee) || ee.Engine != "test" {
		t.Errorf("expected EngineError for engine test, got %v", ev.Err)
	}
}

func TestRunnerCancel(t *testing.T) {
	started := make(chan struct{})
	r := NewRunner("test", func(ctx context.Context, _ Request) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	})
	defer r.Close()

	if err := r.Cancel(); err != nil {
		t.Fatalf("Cancel while idle failed: %v", err)
	}

	id, _ := r.Speak(Request{Text: "Hello"})
	<-started
	if !r.IsSpeaking() {
		t.Error("expected IsSpeaking while the utterance runs")
	}

	_ = r.Cancel()
	ev, ok := nextEvent(t, r.Events()).(UtteranceError)
	if !ok {
		t.Fatalf("expected UtteranceError, got %T", ev)
	}
	if ev.ID != id || !errors.Is(ev, ErrInterrupted) {
		t.Errorf("expected interrupted error for %q, got %+v", id, ev)
	}
	if r.IsSpeaking() {
		t.Error("expected IsSpeaking to be false after the utterance ended")
	}
}

func TestRunnerRejectsEmptyText(t *testing.T) {
	called := false
	r := NewRunner("test", func(context.Context, Request) error {
		called = true
		return nil
	})
	defer r.Close()

	for _, text := range []string{"", "   ", "\n\t"} {
		if _, err := r.Speak(Request{Text: text}); !errors.Is(err, ErrEmptyText) {
			t.Errorf("Speak(%q): expected ErrEmptyText, got %v", text, err)
		}
	}
	if called {
		t.Error("speak func should not be called for empty text")
	}
}

func TestRunnerClose(t *testing.T) {
	r := NewRunner("test", func(ctx context.Context, _ Request) error {
		<-ctx.Done()
		return nil
	})
	_, _ = r.Speak(Request{Text: "Hello"})

	done := make(chan struct{})
	go func() {
		_ = r.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Close did not return")
	}

	if _, err := r.Speak(Request{Text: "Again"}); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed after Close, got %v", err)
	}
	// Events must be closed.
	for range r.Events() {
	}
	// Close is idempotent.
	_ = r.Close()
}

func TestRunnerEmitContextFullBuffer(t *testing.T) {
	r := NewRunner("test", func(context.Context, Request) error { return nil })
	defer r.Close()

	// Fill the buffer without a reader.
	for i := 0; i < cap(r.events); i++ {
		r.Emit(VoicesChanged{})
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.EmitContext(ctx, VoicesChanged{})
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("EmitContext did not return after cancellation")
	}
}
