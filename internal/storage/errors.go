package storage

import "errors"

// Errors shared by every store implementation.
var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateKey is returned when a record with the same key was already
	// stored. Runs are immutable once written.
	ErrDuplicateKey = errors.New("duplicate key: runs are immutable")

	// ErrInvalidInput is returned when a record fails validation before storage.
	ErrInvalidInput = errors.New("invalid input")
)
