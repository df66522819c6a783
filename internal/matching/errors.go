package matching

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidOrder is returned for a non-positive price or quantity.
	// The book is untouched when this is returned.
	ErrInvalidOrder = errors.New("invalid order")

	// ErrInvariantViolation means the book was found in a state matching
	// should never produce. It indicates a bug; the call that detects it
	// commits nothing.
	ErrInvariantViolation = errors.New("book invariant violation")

	// ErrOrderNotFound is returned by ledger lookups for unknown ids
	ErrOrderNotFound = errors.New("order not found")
)

// InvalidOrderError carries the rejected field for the caller's error message
type InvalidOrderError struct {
	Field  string
	Reason string
}

func (e *InvalidOrderError) Error() string {
	return fmt.Sprintf("invalid order: %s %s", e.Field, e.Reason)
}

func (e *InvalidOrderError) Unwrap() error {
	return ErrInvalidOrder
}

// InvariantError describes what matching found broken
type InvariantError struct {
	Detail string
}

func (e *InvariantError) Error() string {
	return "book invariant violation: " + e.Detail
}

func (e *InvariantError) Unwrap() error {
	return ErrInvariantViolation
}
