package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidDemand is returned for negative or non-numeric demand or a negative spare percentage.
	ErrInvalidDemand = errors.New("invalid demand")
	// ErrCapacityExceeded is returned when normalized demand exceeds the base unit point ceiling.
	ErrCapacityExceeded = errors.New("capacity exceeded")
	// ErrNoFeasibleCombination is returned by batch solves when a row has no feasible configuration.
	ErrNoFeasibleCombination = errors.New("no feasible combination")
	// ErrPriceSourceUnavailable is reported when the external price list cannot be used.
	ErrPriceSourceUnavailable = errors.New("price source unavailable")
	// ErrUnknownModule is returned when a module name is not in the catalog or has the wrong role.
	ErrUnknownModule = errors.New("unknown module")
	// ErrSearchSpaceTooLarge is returned when the enumeration would exceed the configured cap.
	ErrSearchSpaceTooLarge = errors.New("search space too large")
)

// CapacityError describes a demand that does not fit the base unit ceiling.
type CapacityError struct {
	Base     string
	Ceiling  int
	Required int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("%s has a point limit of %d, but %d points are required", e.Base, e.Ceiling, e.Required)
}

func (e *CapacityError) Unwrap() error { return ErrCapacityExceeded }

// RowError ties a batch failure to the row that caused it.
type RowError struct {
	Row string
	Err error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %q: %v", e.Row, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

// CapacityExceededRowsError lists every batch row above the base unit ceiling.
type CapacityExceededRowsError struct {
	Base    string
	Ceiling int
	Rows    []string
}

func (e *CapacityExceededRowsError) Error() string {
	return fmt.Sprintf("systems exceeding %s capacity of %d points: %s", e.Base, e.Ceiling, strings.Join(e.Rows, ", "))
}

func (e *CapacityExceededRowsError) Unwrap() error { return ErrCapacityExceeded }
