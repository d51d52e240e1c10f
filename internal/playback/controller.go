// Package playback implements the speak/stop state machine that sits between
// the user interface and a speech host.
package playback

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/readaloud/internal/speech"
	"github.com/dgnsrekt/readaloud/internal/voice"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Rate and pitch of every utterance.
const (
	DefaultRate  = 1.0
	DefaultPitch = 1.0
)

// Status messages.
const (
	MsgUnsupported   = "Speech synthesis is not supported on this system."
	MsgVoicesLoaded  = "Voices loaded successfully!"
	MsgEmptyInput    = "Please enter some text to speak."
	MsgVoiceNotFound = "Selected voice not found."
	MsgSpeaking      = "Speaking..."
	MsgStopped       = "Speech stopped."
	MsgDone          = "Done speaking."
)

// ErrorMessage is the status shown for a host error.
func ErrorMessage(err error) string {
	return "An error occurred: " + err.Error()
}

// Options configures a Controller.
type Options struct {
	Layout      Layout
	ListTimeout time.Duration // Per voice listing; 0 uses DefaultListTimeout
}

// Controller owns the playback state. All of its methods must be called
// from a single goroutine (the Bubble Tea event loop); Update is the one
// entry point for user commands and host notifications.
type Controller struct {
	host speech.Host
	dir  *voice.Directory
	sel  *voice.Selector
	ui   Binding
	opts Options

	sm        *StateMachine
	current   speech.UtteranceID
	supported bool
	started   bool
	status    Status
}

// New creates a controller in Idle. Call Start before anything else.
func New(host speech.Host, dir *voice.Directory, sel *voice.Selector, ui Binding, opts Options) *Controller {
	if opts.Layout == "" {
		opts.Layout = LayoutSplit
	}
	c := &Controller{
		host: host,
		dir:  dir,
		sel:  sel,
		ui:   ui,
		opts: opts,
		sm:   NewStateMachine(),
	}
	c.sm.OnEnter(Idle, c.refreshControls)
	c.sm.OnEnter(Speaking, c.refreshControls)
	return c
}

// Start detects whether the host is usable. If it is, the returned command
// loads the voice list and starts listening for host events; if not, every
// control is disabled and the host is never touched again.
func (c *Controller) Start() tea.Cmd {
	c.started = true
	c.supported = c.host.IsAvailable()
	c.refreshControls()
	if !c.supported {
		log.Warn("Speech engine unavailable", "engine", c.host.Name())
		c.setStatus(LevelError, MsgUnsupported)
		return nil
	}
	log.Debug("playback started", "engine", c.host.Name(), "layout", c.opts.Layout)
	return tea.Batch(c.listVoices(), WaitForEvent(c.host))
}

// Update dispatches msg. Host event messages re-arm the event listener.
func (c *Controller) Update(msg tea.Msg) tea.Cmd {
	if !c.supported {
		return nil
	}

	switch msg := msg.(type) {
	case SpeakMsg:
		_ = c.Speak(msg.Text)
	case StopMsg:
		_ = c.Stop()
	case ToggleMsg:
		_ = c.Toggle(msg.Text)
	case ChooseVoiceMsg:
		c.Choose(msg.Name)
	case VoicesListedMsg:
		c.SetVoices(msg.Voices, msg.Err)

	case speech.VoicesChanged:
		return tea.Batch(c.listVoices(), WaitForEvent(c.host))
	case speech.UtteranceEnd:
		c.End(msg.ID)
		return WaitForEvent(c.host)
	case speech.UtteranceError:
		c.Fail(msg.ID, msg)
		return WaitForEvent(c.host)
	case HostClosedMsg:
		log.Debug("speech host closed")
	}
	return nil
}

// Speak starts reading text aloud with the selected voice. While Speaking
// the request is ignored and ErrBusy is returned.
func (c *Controller) Speak(text string) error {
	if !c.supported {
		return ErrUnsupportedPlatform
	}
	if c.sm.Current() == Speaking {
		log.Debug("speak ignored while speaking", "id", c.current)
		return ErrBusy
	}
	if strings.TrimSpace(text) == "" {
		c.setStatus(LevelInfo, MsgEmptyInput)
		return ErrEmptyInput
	}
	if c.dir.Empty() {
		c.setStatus(LevelError, c.noVoicesMessage())
		return ErrNoVoicesAvailable
	}
	v, err := c.sel.Resolve()
	if err != nil {
		c.setStatus(LevelError, MsgVoiceNotFound)
		return err
	}

	// A cancelled utterance may still be draining.
	if c.host.IsSpeaking() {
		_ = c.host.Cancel()
	}

	id, err := c.host.Speak(speech.Request{
		Text:  text,
		Voice: v.Name,
		Rate:  DefaultRate,
		Pitch: DefaultPitch,
	})
	if err != nil {
		log.Error("Speak request failed", "voice", v.Name, "err", err)
		c.setStatus(LevelError, ErrorMessage(err))
		return err
	}

	log.Debug("speaking", "voice", v.Name, "id", id, "chars", len(text))
	c.current = id
	c.setStatus(LevelInfo, MsgSpeaking)
	c.sm.Transition(Speaking)
	return nil
}

// Stop cancels the current utterance. It is a no-op while Idle.
func (c *Controller) Stop() error {
	if c.sm.Current() != Speaking {
		return nil
	}
	err := c.host.Cancel()
	if err != nil {
		log.Warn("Cancel failed", "id", c.current, "err", err)
	}
	log.Debug("stopped", "id", c.current)
	c.current = ""
	c.setStatus(LevelInfo, MsgStopped)
	c.sm.Transition(Idle)
	return err
}

// Toggle is the single button of the toggle layout: Stop while Speaking,
// Speak otherwise.
func (c *Controller) Toggle(text string) error {
	if c.sm.Current() == Speaking {
		return c.Stop()
	}
	return c.Speak(text)
}

// Choose records the user's voice selection.
func (c *Controller) Choose(name string) {
	c.sel.Choose(name)
}

// End handles the host's end notification for id. Notifications for an
// utterance that is not the current one are ignored.
func (c *Controller) End(id speech.UtteranceID) bool {
	if !c.tracking(id) {
		log.Debug("stale utterance end ignored", "id", id)
		return false
	}
	c.current = ""
	c.setStatus(LevelInfo, MsgDone)
	c.sm.Transition(Idle)
	return true
}

// Fail handles the host's error notification for id.
func (c *Controller) Fail(id speech.UtteranceID, err error) bool {
	if !c.tracking(id) {
		log.Debug("stale utterance error ignored", "id", id, "err", err)
		return false
	}
	log.Warn("Utterance failed", "id", id, "err", err)
	c.current = ""
	c.setStatus(LevelError, ErrorMessage(err))
	c.sm.Transition(Idle)
	return true
}

func (c *Controller) tracking(id speech.UtteranceID) bool {
	return c.sm.Current() == Speaking && id == c.current
}

// SetVoices replaces the directory with the host's voice list and repopulates
// the selection. A listing error is treated as an empty list.
func (c *Controller) SetVoices(all []speech.Voice, err error) {
	if err != nil {
		log.Warn("Could not list voices", "engine", c.host.Name(), "err", err)
		all = nil
	}

	voices := c.dir.Refresh(all)
	c.sel.Sync()
	c.ui.SetVoices(voices, c.sel.Chosen())
	log.Debug("voices refreshed", "reported", len(all), "kept", len(voices), "prefix", c.dir.Prefix())

	// An utterance in flight keeps its status.
	if c.sm.Current() == Idle {
		switch {
		case err != nil:
			c.setStatus(LevelError, ErrorMessage(err))
		case len(voices) == 0:
			c.setStatus(LevelError, c.noVoicesMessage())
		default:
			c.setStatus(LevelInfo, MsgVoicesLoaded)
		}
	}
	c.refreshControls()
}

// State returns the playback state.
func (c *Controller) State() State { return c.sm.Current() }

// Status returns the current status message.
func (c *Controller) Status() Status { return c.status }

// Current returns the id of the utterance in flight, or "".
func (c *Controller) Current() speech.UtteranceID { return c.current }

// Supported reports whether the host passed feature detection.
func (c *Controller) Supported() bool { return c.supported }

// Layout returns the control layout.
func (c *Controller) Layout() Layout { return c.opts.Layout }

func (c *Controller) listVoices() tea.Cmd {
	return ListVoicesCmd(c.host, c.opts.ListTimeout)
}

func (c *Controller) setStatus(level Level, text string) {
	c.status = Status{Text: text, Level: level}
	c.ui.SetStatus(c.status)
}

// refreshControls derives every affordance from the state.
func (c *Controller) refreshControls() {
	if !c.started {
		return
	}
	speaking := c.sm.Current() == Speaking
	ready := c.supported && !c.dir.Empty()

	switch c.opts.Layout {
	case LayoutToggle:
		label := LabelSpeak
		if speaking {
			label = LabelStop
		}
		c.ui.SetSpeakLabel(label)
		c.ui.SetSpeakEnabled(speaking || ready)
		c.ui.SetStopEnabled(false)
	default:
		c.ui.SetSpeakLabel(LabelSpeak)
		c.ui.SetSpeakEnabled(ready && !speaking)
		c.ui.SetStopEnabled(speaking)
	}
}

func (c *Controller) noVoicesMessage() string {
	return fmt.Sprintf("No %s voices found. Your system might not support this.", languageName(c.dir.Prefix()))
}

// languageName returns the English name of a language prefix such as "en".
func languageName(prefix string) string {
	if prefix == "" {
		return "usable"
	}
	if base, err := language.ParseBase(prefix); err == nil {
		if name := display.English.Languages().Name(base); name != "" {
			return name
		}
	}
	return fmt.Sprintf("%q", prefix)
}
