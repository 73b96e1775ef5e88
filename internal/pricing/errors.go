package pricing

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput covers any required numeric field that is non-positive
	// where positivity is required, or a direction outside the two variants.
	ErrInvalidInput = errors.New("invalid input")

	// ErrDivisionInvalid is the subtype raised when a computation would divide
	// by a zero or non-positive denominator.
	ErrDivisionInvalid = fmt.Errorf("%w: non-positive divisor", ErrInvalidInput)
)

// InputError carries the offending field so callers can report or recover a
// single input instead of aborting a whole recompute pass.
type InputError struct {
	Field string
	Err   error
}

func (e *InputError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *InputError) Unwrap() error {
	return e.Err
}

func divisionField(field string) error {
	return &InputError{Field: field, Err: ErrDivisionInvalid}
}
