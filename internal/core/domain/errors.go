// internal/core/domain/errors.go
package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedSnapshot is returned when the data file exists but cannot be decoded
	ErrMalformedSnapshot = errors.New("malformed inventory snapshot")

	// ErrSnapshotIO is returned when the data file cannot be read or written
	ErrSnapshotIO = errors.New("inventory snapshot I/O failure")

	// ErrInvalidItem is returned when user input fails validation
	ErrInvalidItem = errors.New("invalid inventory item")
)

// StoreError represents a record store failure
type StoreError struct {
	Op   string
	Path string
	Kind error
	Err  error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s %s: %v: %v", e.Op, e.Path, e.Kind, e.Err)
}

// Unwrap exposes both the error kind and the underlying cause to errors.Is/As
func (e *StoreError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

// NewStoreError wraps err with an operation, a path and one of the snapshot error kinds
func NewStoreError(op, path string, kind, err error) *StoreError {
	return &StoreError{Op: op, Path: path, Kind: kind, Err: err}
}
