package mock

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dgnsrekt/readaloud/internal/speech"
)

func TestAutoFinish(t *testing.T) {
	e := New(WithWordsPerMinute(6000))
	defer e.Close()

	id, err := e.Speak(speech.Request{Text: "Hello world"})
	if err != nil {
		t.Fatalf("Speak failed: %v", err)
	}

	select {
	case ev := <-e.Events():
		end, ok := ev.(speech.UtteranceEnd)
		if !ok || end.ID != id {
			t.Errorf("expected UtteranceEnd for %q, got %#v", id, ev)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for UtteranceEnd")
	}
	if e.IsSpeaking() {
		t.Error("expected IsSpeaking false after the utterance ended")
	}
}

func TestManualCancel(t *testing.T) {
	e := New(Manual())
	defer e.Close()

	id, _ := e.Speak(speech.Request{Text: "Hello"})
	if !e.IsSpeaking() || e.Current() != id {
		t.Fatalf("expected %q in flight", id)
	}

	_ = e.Cancel()
	ev := <-e.Events()
	uerr, ok := ev.(speech.UtteranceError)
	if !ok || uerr.ID != id || !errors.Is(uerr, speech.ErrInterrupted) {
		t.Errorf("expected interrupted error for %q, got %#v", id, ev)
	}
	if e.Cancels() != 1 {
		t.Errorf("expected 1 cancel, got %d", e.Cancels())
	}
}

func TestControls(t *testing.T) {
	e := New(Manual())
	defer e.Close()

	e.SetListError(errors.New("boom"))
	if _, err := e.ListVoices(context.Background()); err == nil {
		t.Error("expected list error")
	}
	e.SetListError(nil)

	e.SetVoices(speech.Voice{Name: "Alex", Language: "en-US"})
	if _, ok := (<-e.Events()).(speech.VoicesChanged); !ok {
		t.Error("expected VoicesChanged after SetVoices")
	}
	voices, _ := e.ListVoices(context.Background())
	if len(voices) != 1 || voices[0].Name != "Alex" {
		t.Errorf("unexpected voices %+v", voices)
	}

	e.SetSpeakError(errors.New("no audio"))
	if _, err := e.Speak(speech.Request{Text: "Hi"}); err == nil {
		t.Error("expected speak error")
	}
	if n := len(e.Requests()); n != 1 {
		t.Errorf("expected failed request to be recorded, got %d", n)
	}
}

func TestClose(t *testing.T) {
	e := New()
	_ = e.Close()
	_ = e.Close()
	if _, err := e.Speak(speech.Request{Text: "Hi"}); !errors.Is(err, speech.ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
}

func TestFinishDeliversOnce(t *testing.T) {
	tests := []struct {
		name  string
		end   func(e *Engine)
		check func(ev speech.Event, id speech.UtteranceID) bool
	}{
		{
			name: "finish",
			end:  func(e *Engine) { e.Finish() },
			check: func(ev speech.Event, id speech.UtteranceID) bool {
				end, ok := ev.(speech.UtteranceEnd)
				return ok && end.ID == id
			},
		},
		{
			name: "fail",
			end:  func(e *Engine) { e.Fail(errors.New("no audio")) },
			check: func(ev speech.Event, id speech.UtteranceID) bool {
				uerr, ok := ev.(speech.UtteranceError)
				return ok && uerr.ID == id && uerr.Err.Error() == "no audio"
			},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e := New(Manual())
			defer e.Close()

			id, _ := e.Speak(speech.Request{Text: "Hello"})
			tc.end(e)

			if ev := <-e.Events(); !tc.check(ev, id) {
				t.Errorf("unexpected event %#v for %q", ev, id)
			}
			select {
			case ev := <-e.Events():
				t.Errorf("expected a single event, got extra %#v", ev)
			default:
			}
			if e.IsSpeaking() {
				t.Error("expected IsSpeaking false")
			}
		})
	}
}

func TestDroppedEvents(t *testing.T) {
	e := New(Manual())
	defer e.Close()

	for i := 0; i < cap(e.events); i++ {
		e.SetVoices(DefaultVoices...)
	}
	if n := e.Dropped(); n != 0 {
		t.Fatalf("expected no drops while the buffer has room, got %d", n)
	}
	e.SetVoices(DefaultVoices...)
	if n := e.Dropped(); n != 1 {
		t.Errorf("expected 1 dropped event, got %d", n)
	}
}
