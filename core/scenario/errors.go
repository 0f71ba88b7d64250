package scenario

import (
	"fmt"
	"strings"
)

// MissingFieldError reports a required scenario field that was not supplied.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("scenario: missing required field %q", e.Field)
}

// RangeError reports a numeric parameter outside its declared bound.
type RangeError struct {
	Field   string
	Value   float64
	Min     float64
	Max     float64
	Message string
}

func (e *RangeError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("scenario: %s: %s (got %v)", e.Field, e.Message, e.Value)
	}
	return fmt.Sprintf("scenario: %s out of range [%v, %v]: got %v", e.Field, e.Min, e.Max, e.Value)
}

// MissingDataError reports a table lookup that cannot be satisfied, typically
// an empty price table.
type MissingDataError struct {
	Table string
	Year  int
}

func (e *MissingDataError) Error() string {
	return fmt.Sprintf("scenario: no data in table %q for year %d", e.Table, e.Year)
}

// ValidationError aggregates every rule violation found during Validate so
// callers can report them all at once.
type ValidationError struct {
	Errs []error
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Errs))
	for i, err := range e.Errs {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("scenario validation failed: %s", strings.Join(msgs, "; "))
}

// Unwrap exposes the individual violations to errors.Is/As.
func (e *ValidationError) Unwrap() []error { return e.Errs }
