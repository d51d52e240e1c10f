package speech

import (
	"errors"
	"fmt"
)

// Common errors for speech hosts.
var (
	ErrNotAvailable = errors.New("speech engine is not available")
	ErrClosed       = errors.New("speech engine has been closed")
	ErrInterrupted  = errors.New("interrupted")
	ErrEmptyText    = errors.New("empty text")
	ErrUnknownVoice = errors.New("unknown voice")
)

// EngineError reports a failure inside a specific engine.
type EngineError struct {
	Engine string
	Op     string
	Err    error
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Engine, e.Op, e.Err)
}

func (e *EngineError) Unwrap() error {
	return e.Err
}

// Wrap returns err wrapped in an EngineError, or nil when err is nil.
func Wrap(engine, op string, err error) error {
	if err == nil {
		return nil
	}
	return &EngineError{Engine: engine, Op: op, Err: err}
}
