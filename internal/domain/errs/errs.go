package errs

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by usecases. Adapters map them with errors.Is.
var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidState = errors.New("invalid state")
	ErrValidation   = errors.New("validation failed")
)

func NotFound(what string) error { return fmt.Errorf("%w: %s", ErrNotFound, what) }

func Forbidden(msg string) error { return fmt.Errorf("%w: %s", ErrForbidden, msg) }

func InvalidState(msg string) error { return fmt.Errorf("%w: %s", ErrInvalidState, msg) }

func Validation(msg string) error { return fmt.Errorf("%w: %s", ErrValidation, msg) }

// Message strips the kind prefix, leaving the caller-facing text.
func Message(err error) string {
	var msg string
	for _, kind := range []error{ErrNotFound, ErrForbidden, ErrInvalidState, ErrValidation} {
		if errors.Is(err, kind) {
			msg = err.Error()
			prefix := kind.Error() + ": "
			if len(msg) > len(prefix) && msg[:len(prefix)] == prefix {
				return msg[len(prefix):]
			}
			return msg
		}
	}
	return err.Error()
}
