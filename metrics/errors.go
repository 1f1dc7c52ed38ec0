/*
errors.go - Error kinds returned by the calculators

ERROR CATEGORIES:
  1. Missing input   - a field the calculation needs was absent
  2. Invalid interval - check-out precedes check-in
  3. Division by zero - a performance record with a zero sales target
  4. Invalid value    - a NaN or infinite number handed in by a Go caller,
                        or a result that overflows float64

All of them are input errors: the record is malformed, the process is fine.
Callers decide how to show them. The calculators never log or retry.

USAGE:
  if errors.Is(err, metrics.ErrMissingInput) {
      var missing *metrics.MissingInputError
      errors.As(err, &missing) // missing.Field == "policyEndDate"
  }
*/
package metrics

import (
	"errors"
	"fmt"
	"time"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrMissingInput is returned when a field required by the calculation is absent.
	ErrMissingInput = errors.New("missing input")

	// ErrInvalidInterval is returned when check-out is earlier than check-in.
	ErrInvalidInterval = errors.New("invalid interval: check-out before check-in")

	// ErrDivisionByZero is returned when the sales target is zero.
	ErrDivisionByZero = errors.New("division by zero: sales target is zero")

	// ErrInvalidValue is returned for NaN or infinite numeric inputs, and for
	// results too large to fit in a float64.
	ErrInvalidValue = errors.New("invalid value")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// MissingInputError names the absent field.
type MissingInputError struct {
	Field string
}

func (e *MissingInputError) Error() string {
	return fmt.Sprintf("missing input: %s", e.Field)
}

func (e *MissingInputError) Unwrap() error {
	return ErrMissingInput
}

// IntervalError carries the two timestamps of a reversed attendance interval.
type IntervalError struct {
	CheckIn  time.Time
	CheckOut time.Time
}

func (e *IntervalError) Error() string {
	return fmt.Sprintf("invalid interval: check-out %s is before check-in %s",
		e.CheckOut.Format(time.RFC3339), e.CheckIn.Format(time.RFC3339))
}

func (e *IntervalError) Unwrap() error {
	return ErrInvalidInterval
}

// InvalidValueError names a numeric field, input or result, that is not a finite number.
type InvalidValueError struct {
	Field string
	Value float64
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("invalid value for %s: %v", e.Field, e.Value)
}

func (e *InvalidValueError) Unwrap() error {
	return ErrInvalidValue
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsInputError returns true if err was caused by a malformed record.
func IsInputError(err error) bool {
	return errors.Is(err, ErrMissingInput) ||
		errors.Is(err, ErrInvalidInterval) ||
		errors.Is(err, ErrDivisionByZero) ||
		errors.Is(err, ErrInvalidValue)
}
