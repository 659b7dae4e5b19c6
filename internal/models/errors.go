package models

import (
	"errors"
	"fmt"
)

// Error kinds. Callers classify failures with errors.Is.
var (
	// ErrValidation marks malformed input such as a missing user id.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound marks a lookup of an entity that does not exist.
	ErrNotFound = errors.New("not found")

	// ErrStore marks a connectivity or query failure of the graph store.
	ErrStore = errors.New("store failure")
)

// StoreError wraps a failed store operation.
type StoreError struct {
	Op  string
	Err error
}

// NewStoreError wraps err as a failure of op. Returns nil when err is nil.
func NewStoreError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Err: err}
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// Is matches ErrStore so that every StoreError is classified as a store failure.
func (e *StoreError) Is(target error) bool {
	return target == ErrStore
}
