package ink

import (
	"log"
	"os"

	"github.com/google/uuid"
)

// Logger is the narrow slice of the stdlib log.Logger interface a Story
// needs; satisfied directly by *log.Logger, and easy to stub in tests.
type Logger interface {
	Printf(format string, args ...any)
}

var defaultLogger Logger = log.New(os.Stderr, "ink: ", log.LstdFlags)

// SetDefaultLogger replaces the package-wide logger new Stories pick up
// when none is supplied explicitly via WithLogger.
func SetDefaultLogger(l Logger) {
	if l == nil {
		return
	}
	defaultLogger = l
}

func (s *Story) logf(format string, args ...any) {
	if s.logger == nil {
		return
	}
	s.logger.Printf("session=%s "+format, append([]any{s.sessionID}, args...)...)
}

func newSessionID() string { return uuid.NewString() }
