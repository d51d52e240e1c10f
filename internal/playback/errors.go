package playback

import "errors"

// Conditions reported by the controller. The user sees them only through the
// status message; they are returned for callers that need to react.
var (
	ErrUnsupportedPlatform = errors.New("speech synthesis is not supported")
	ErrNoVoicesAvailable   = errors.New("no voices available")
	ErrEmptyInput          = errors.New("no text to speak")
	ErrBusy                = errors.New("already speaking")
)
