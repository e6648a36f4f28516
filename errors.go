package impulse

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidValue is returned when a mass, moment, radius or setting is
	// outside its valid range.
	ErrInvalidValue = errors.New("impulse: invalid value")

	// ErrInvalidShape is returned for degenerate geometry.
	ErrInvalidShape = errors.New("impulse: invalid shape")

	// ErrDisposed is returned when a disposed body or constraint is handed to a World.
	ErrDisposed = errors.New("impulse: object is disposed")

	// ErrForeign is returned when an object already belongs to another World.
	ErrForeign = errors.New("impulse: object belongs to another world")
)

var errNilBody = fmt.Errorf("%w: nil body", ErrInvalidValue)
