package auth

import "errors"

var (
	// ErrInvalidToken covers malformed tokens, bad signatures and tokens
	// without an account id.
	ErrInvalidToken = errors.New("invalid authentication token")

	ErrExpiredToken = errors.New("authentication token has expired")

	// ErrTokenNotYetValid is returned while the nbf claim is still in the future.
	ErrTokenNotYetValid = errors.New("authentication token not yet valid")

	// ErrMissingToken is returned for an empty token and when a protected
	// handler runs without an authenticated account.
	ErrMissingToken = errors.New("authentication token is missing")

	// ErrPasswordMismatch is returned by PasswordHasher.Compare, including for
	// stored values that are not bcrypt hashes.
	ErrPasswordMismatch = errors.New("password does not match")
)
