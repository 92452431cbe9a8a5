package domain

import (
	"errors"
	"fmt"
)

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity or request fails validation.
	// This is usually wrapped by a ValidationError naming the offending field.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or empty.
	ErrInvalidID = errors.New("invalid ID")

	// ErrAlreadyRegistered is returned when a uniqueness-constrained key
	// (username, email, participant, subscriber) is already present.
	ErrAlreadyRegistered = errors.New("already registered")

	// ErrNotAMember is returned when removing a key that is not in the list.
	ErrNotAMember = errors.New("not a member")

	// ErrConflictRetryExhausted is returned when an optimistic write kept
	// losing against concurrent writers until the attempt budget ran out.
	ErrConflictRetryExhausted = errors.New("concurrent modification retries exhausted")

	// ErrUpstreamUnavailable is returned when the document store could not be
	// reached or timed out on every attempt.
	ErrUpstreamUnavailable = errors.New("document store unavailable")

	// ErrInvalidCredentials is returned when a login does not match an account.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// ValidationError describes a single invalid field.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// NewValidationError creates a ValidationError wrapping err, which defaults
// to ErrValidation when nil.
func NewValidationError(field, message string, err error) *ValidationError {
	if err == nil {
		err = ErrValidation
	}
	return &ValidationError{Field: field, Message: message, Err: err}
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

// Unwrap returns the wrapped sentinel so errors.Is works against ErrValidation.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Is reports ErrValidation for every ValidationError, whatever it wraps.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
