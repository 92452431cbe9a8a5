package service

import "errors"

// Common service errors - sentinel errors used across service implementations.
// The API layer maps them to HTTP status codes with errors.Is.
var (
	// ErrNoCompetitionsForUser indicates that a user neither organizes nor
	// takes part in any competition. API layer should map this to 404.
	ErrNoCompetitionsForUser = errors.New("no competitions for user")
)
