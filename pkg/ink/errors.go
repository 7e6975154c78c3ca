// Package ink is the public embedding surface for running a compiled
// ink story: load a story, drive it forward line by line, answer
// choices, and save/restore its state.
package ink

import (
	"errors"
	"fmt"

	"github.com/funvibe/inkgo/internal/ink"
)

// ErrorHandler receives every error and warning a Story produces while
// continuing, in place of the aggregate error Continue returns when no
// handler is installed.
type ErrorHandler func(message string, severity Severity)

// Severity distinguishes a fatal error from a recoverable warning.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "WARNING"
	}
	return "ERROR"
}

// StoryError wraps one of the three underlying error kinds with the
// session id of the Story that raised it, so a host logging many
// concurrent stories can tell them apart.
type StoryError struct {
	SessionID string
	Kind ErrorKind
	Err error
}

func (e *StoryError) Error() string {
	return fmt.Sprintf("[%s] %s: %v", e.SessionID, e.Kind, e.Err)
}

func (e *StoryError) Unwrap() error { return e.Err }

// ErrorKind classifies a StoryError into one of three broad kinds,
// independent of the internal error type carrying it.
type ErrorKind int

const (
	KindBadJson ErrorKind = iota
	KindInvalidStoryState
	KindBadArgument
	KindUnknown
)

func (k ErrorKind) String() string {
	switch k {
	case KindBadJson:
		return "BadJson"
	case KindInvalidStoryState:
		return "InvalidStoryState"
	case KindBadArgument:
		return "BadArgument"
	default:
		return "Unknown"
	}
}

func classify(err error) ErrorKind {
	var badJson *ink.BadJsonError
	var invalidState *ink.InvalidStoryStateError
	var badArg *ink.BadArgumentError
	switch {
	case errors.As(err, &badJson):
		return KindBadJson
	case errors.As(err, &invalidState):
		return KindInvalidStoryState
	case errors.As(err, &badArg):
		return KindBadArgument
	default:
		return KindUnknown
	}
}

func (s *Story) wrapError(err error) error {
	if err == nil {
		return nil
	}
	return &StoryError{SessionID: s.sessionID, Kind: classify(err), Err: err}
}
