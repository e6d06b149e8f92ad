package negotiation

import (
	"errors"
	"strings"
)

var (
	ErrGameOver  = errors.New("negotiation already ended")
	ErrTurnLimit = errors.New("turn limit reached")
)

// TransitionError is returned when a turn cannot be applied. Message is safe
// to show to the player.
type TransitionError struct {
	Err     error
	Message string
}

func (e *TransitionError) Error() string { return "invalid transition: " + e.Err.Error() }

func (e *TransitionError) Unwrap() error { return e.Err }

// MismatchError reports a persisted record that cannot be resumed.
type MismatchError struct {
	Fields []string
}

func (e *MismatchError) Error() string {
	return "record mismatch: " + strings.Join(e.Fields, ", ")
}

// IsMismatch reports whether err is a deserialization mismatch.
func IsMismatch(err error) bool {
	var m *MismatchError
	return errors.As(err, &m)
}
