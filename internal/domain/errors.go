package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotPermitted is returned when the CanEdit gate refuses an operation.
	// Callers are expected to drop it silently rather than alert the user.
	ErrNotPermitted = errors.New("operation not permitted")

	// ErrNotFound is returned when a link id does not resolve.
	ErrNotFound = errors.New("link not found")

	// ErrCrossCollectionMove rejects reordering across layers or owners.
	ErrCrossCollectionMove = errors.New("can only reorder within the same layer")
)

// ValidationError is a user-correctable problem with a draft. Its message is
// meant to be shown verbatim.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// FormatError rejects an import payload whose shape is not recognized.
type FormatError struct {
	Reason string
}

func (e *FormatError) Error() string {
	if e.Reason == "" {
		return "Invalid JSON format."
	}
	return fmt.Sprintf("Invalid JSON format: %s", e.Reason)
}

// PersistenceError wraps an adapter failure for one collection.
type PersistenceError struct {
	Op  string // "read" or "write"
	Key string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to %s %s: %v", e.Op, e.Key, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
