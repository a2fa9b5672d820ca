package repl

import "errors"

var (
	// ErrOutOfBounds is returned for a history index past either end.
	ErrOutOfBounds = errors.New("history index out of range")
	// ErrEditDeclined is returned when the user declines to fix placeholder
	// YAML that failed to decode.
	ErrEditDeclined = errors.New("placeholder edit declined")
)
