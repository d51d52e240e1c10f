package ui

import (
	"github.com/dgnsrekt/readaloud/internal/playback"
	"github.com/dgnsrekt/readaloud/internal/speech"
)

// controls is the TUI side of playback.Binding. The controller writes it;
// the model copies it into the widgets after every dispatch.
type controls struct {
	status       playback.Status
	voices       []speech.Voice
	chosen       string
	voicesDirty  bool
	speakEnabled bool
	stopEnabled  bool
	speakLabel   string
}

var _ playback.Binding = (*controls)(nil)

func (c *controls) SetStatus(s playback.Status) { c.status = s }

func (c *controls) SetVoices(voices []speech.Voice, chosen string) {
	c.voices = voices
	c.chosen = chosen
	c.voicesDirty = true
}

func (c *controls) SetSpeakEnabled(b bool) { c.speakEnabled = b }
func (c *controls) SetStopEnabled(b bool) { c.stopEnabled = b }
func (c *controls) SetSpeakLabel(l string) { c.speakLabel = l }
