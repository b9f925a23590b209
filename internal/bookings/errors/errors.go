package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrInvalidID = errors.New("invalid booking ID format")

	// ErrDateConflict is raised by the store when an active booking already
	// holds the same stay, normally via the partial unique index.
	ErrDateConflict = errors.New("stay overlaps an active booking")

	ErrVersionConflict = errors.New("booking was modified concurrently")
)
