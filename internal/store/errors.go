package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested document does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when a create would violate a unique key:
	// an existing document ID or a unique field such as an account email.
	ErrDuplicate = errors.New("entity already exists")

	// ErrRevisionConflict is returned by a conditioned write when the
	// document changed after it was read.
	ErrRevisionConflict = errors.New("document revision conflict")

	// ErrUnavailable is returned when the backing store could not be reached
	// or did not answer in time. Callers may retry.
	ErrUnavailable = errors.New("store unavailable")

	// ErrInvalidEntity is returned when a document body is not a JSON object
	// or fails a storage constraint.
	ErrInvalidEntity = errors.New("invalid entity")

	// Entity-specific "not found" errors

	// ErrAccountNotFound indicates that the requested account does not exist.
	ErrAccountNotFound = fmt.Errorf("%w: account", ErrNotFound)

	// ErrCompetitionNotFound indicates that the requested competition does not exist.
	ErrCompetitionNotFound = fmt.Errorf("%w: competition", ErrNotFound)

	// ErrListNotFound indicates that the document holding a list does not exist.
	ErrListNotFound = fmt.Errorf("%w: list document", ErrNotFound)
)

// IsNotFoundError checks if the error is any kind of "not found" error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateError checks if the error is a unique key violation.
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}

// IsTransient reports whether err is worth retrying: a revision conflict or
// an unavailable store.
func IsTransient(err error) bool {
	return errors.Is(err, ErrRevisionConflict) || errors.Is(err, ErrUnavailable)
}

// StoreError is a custom error type for store-specific errors with additional context.
type StoreError struct {
	Collection string // The collection (e.g., "competitions")
	ID         string // Document ID, empty for collection-wide operations
	Operation  string // The operation that failed (e.g., "replace")
	Err        error  // Original error
}

// Error implements the error interface for StoreError.
func (e *StoreError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s on %s failed: %v", e.Operation, e.Collection, e.Err)
	}
	return fmt.Sprintf("%s on %s/%s failed: %v", e.Operation, e.Collection, e.ID, e.Err)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError for the given document and operation.
func NewStoreError(collection, id, operation string, err error) *StoreError {
	return &StoreError{
		Collection: collection,
		ID:         id,
		Operation:  operation,
		Err:        err,
	}
}
