package playback

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dgnsrekt/readaloud/internal/speech"
)

// DefaultListTimeout bounds a single voice listing.
const DefaultListTimeout = 10 * time.Second

// SpeakMsg asks the controller to speak Text.
type SpeakMsg struct {
	Text string
}

// StopMsg asks the controller to stop speaking.
type StopMsg struct{}

// ToggleMsg is a press of the single button in the toggle layout.
type ToggleMsg struct {
	Text string
}

// ChooseVoiceMsg records the user's voice selection.
type ChooseVoiceMsg struct {
	Name string
}

// VoicesListedMsg carries the result of ListVoicesCmd.
type VoicesListedMsg struct {
	Voices []speech.Voice
	Err    error
}

// HostClosedMsg is delivered when the host's event channel is closed.
type HostClosedMsg struct{}

// Speak returns a command that sends a SpeakMsg.
func Speak(text string) tea.Cmd {
	return func() tea.Msg { return SpeakMsg{Text: text} }
}

// Stop returns a command that sends a StopMsg.
func Stop() tea.Cmd {
	return func() tea.Msg { return StopMsg{} }
}

// Toggle returns a command that sends a ToggleMsg.
func Toggle(text string) tea.Cmd {
	return func() tea.Msg { return ToggleMsg{Text: text} }
}

// ChooseVoice returns a command that sends a ChooseVoiceMsg.
func ChooseVoice(name string) tea.Cmd {
	return func() tea.Msg { return ChooseVoiceMsg{Name: name} }
}

// ListVoicesCmd lists the host's voices off the event loop.
func ListVoicesCmd(host speech.Host, timeout time.Duration) tea.Cmd {
	if timeout <= 0 {
		timeout = DefaultListTimeout
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		voices, err := host.ListVoices(ctx)
		return VoicesListedMsg{Voices: voices, Err: err}
	}
}

// WaitForEvent waits for the next host event and delivers it as a message.
// It must be re-issued after every event.
func WaitForEvent(host speech.Host) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-host.Events()
		if !ok {
			return HostClosedMsg{}
		}
		return ev
	}
}
