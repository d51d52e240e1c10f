// Package voice holds the filtered voice directory and the user's voice
// selection.
package voice

import (
	"fmt"

	"github.com/dgnsrekt/readaloud/internal/speech"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// DefaultPrefix is the language tag prefix kept by a Directory.
const DefaultPrefix = "en"

// Label renders a voice the way the selection list shows it.
func Label(v speech.Voice) string {
	return fmt.Sprintf("%s (%s)", v.Name, v.Language)
}

// Describe returns the English display name of the voice's language, e.g.
// "American English" for en-US. Tags that do not parse are returned as is.
func Describe(v speech.Voice) string {
	tag, err := language.Parse(v.Language)
	if err != nil {
		return v.Language
	}
	if name := display.English.Tags().Name(tag); name != "" {
		return name
	}
	return v.Language
}
