package suspect

import (
	"errors"
	"fmt"
)

// ErrorKind classifies generator failures. Both kinds are recovered with a
// fallback reply.
type ErrorKind string

const (
	KindUnavailable ErrorKind = "unavailable"
	KindMalformed   ErrorKind = "malformed"
)

var ErrNoAPIKey = errors.New("no API key configured")

// GeneratorError wraps a failed dialogue generation.
type GeneratorError struct {
	Kind ErrorKind
	Err  error
}

func (e *GeneratorError) Error() string {
	return fmt.Sprintf("generator %s: %v", e.Kind, e.Err)
}

func (e *GeneratorError) Unwrap() error { return e.Err }

func unavailable(err error) error { return &GeneratorError{Kind: KindUnavailable, Err: err} }
func malformed(err error) error   { return &GeneratorError{Kind: KindMalformed, Err: err} }

// KindOf returns the kind of a generator error, or "" for other errors.
func KindOf(err error) ErrorKind {
	var ge *GeneratorError
	if errors.As(err, &ge) {
		return ge.Kind
	}
	return ""
}
