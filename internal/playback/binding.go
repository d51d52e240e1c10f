package playback

import (
	"fmt"
	"strings"

	"github.com/dgnsrekt/readaloud/internal/speech"
)

// Layout selects how the speak and stop controls are presented.
type Layout string

const (
	// LayoutSplit shows separate Speak and Stop buttons.
	LayoutSplit Layout = "split"
	// LayoutToggle shows one button whose label flips between Speak and Stop.
	LayoutToggle Layout = "toggle"
)

// Layouts lists the valid layouts.
var Layouts = []Layout{LayoutSplit, LayoutToggle}

// ParseLayout parses a layout name. An empty name is LayoutSplit.
func ParseLayout(s string) (Layout, error) {
	switch Layout(strings.ToLower(strings.TrimSpace(s))) {
	case "", LayoutSplit:
		return LayoutSplit, nil
	case LayoutToggle:
		return LayoutToggle, nil
	}
	return "", fmt.Errorf("invalid layout %q (choose split or toggle)", s)
}

// Level classifies a status message.
type Level int

const (
	LevelInfo Level = iota
	LevelError
)

// Status is the text shown in the status region.
type Status struct {
	Text  string
	Level Level
}

// Binding is the user interface the controller drives. Implementations only
// render; they never change playback state themselves.
type Binding interface {
	// SetStatus replaces the status message.
	SetStatus(Status)
	// SetVoices replaces the voice options; chosen is the selected name.
	SetVoices(voices []speech.Voice, chosen string)
	SetSpeakEnabled(bool)
	SetStopEnabled(bool)
	// SetSpeakLabel sets the speak button label ("Speak" or "Stop" in the
	// toggle layout).
	SetSpeakLabel(string)
}

// Button labels.
const (
	LabelSpeak = "Speak"
	LabelStop  = "Stop"
)
