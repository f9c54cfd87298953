package model

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidParameter is wrapped by every ParamError so callers can test with errors.Is.
var ErrInvalidParameter = errors.New("INVALID_PARAMETER")

// ParamError reports an input that violates a documented constraint.
// These are caller bugs and are never silently clamped.
type ParamError struct {
	Field   string
	Message string
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func (e *ParamError) Unwrap() error { return ErrInvalidParameter }

func invalid(field, format string, args ...any) error {
	return &ParamError{Field: field, Message: fmt.Sprintf(format, args...)}
}

func checkFinite(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return invalid(field, "must be a finite number, got %g", v)
	}
	return nil
}

// CheckEfficiency validates that eff is in (0, 1].
func CheckEfficiency(field string, eff float64) error {
	if err := checkFinite(field, eff); err != nil {
		return err
	}
	if eff <= 0 || eff > 1 {
		return invalid(field, "must be in (0, 1], got %g", eff)
	}
	return nil
}

// CheckNonNegative validates that v >= 0.
func CheckNonNegative(field string, v float64) error {
	if err := checkFinite(field, v); err != nil {
		return err
	}
	if v < 0 {
		return invalid(field, "must be >= 0, got %g", v)
	}
	return nil
}

// CheckPositive validates that v > 0.
func CheckPositive(field string, v float64) error {
	if err := checkFinite(field, v); err != nil {
		return err
	}
	if v <= 0 {
		return invalid(field, "must be > 0, got %g", v)
	}
	return nil
}

// CheckFraction validates that v is in [0, 1).
func CheckFraction(field string, v float64) error {
	if err := checkFinite(field, v); err != nil {
		return err
	}
	if v < 0 || v >= 1 {
		return invalid(field, "must be in [0, 1), got %g", v)
	}
	return nil
}
