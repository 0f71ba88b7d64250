package tco

import "fmt"

// CalculationError attaches vehicle, component and year context to a failure
// inside the per-year cost assembly. The whole Calculate call aborts; no
// partial tables are ever returned.
type CalculationError struct {
	Vehicle   string
	Component Component
	Year      int
	Err       error
}

func (e *CalculationError) Error() string {
	return fmt.Sprintf("tco: %s %s in year %d: %v", e.Vehicle, e.Component, e.Year, e.Err)
}

func (e *CalculationError) Unwrap() error { return e.Err }
