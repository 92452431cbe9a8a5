package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/competehub/compete-api/internal/api/shared"
	"github.com/competehub/compete-api/internal/domain"
	"github.com/competehub/compete-api/internal/service"
	"github.com/competehub/compete-api/internal/service/auth"
	"github.com/competehub/compete-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to HTTP status codes. Only
// sentinels are inspected; error strings never influence the status.
func MapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized

	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	case errors.Is(err, domain.ErrAlreadyRegistered),
		errors.Is(err, domain.ErrNotAMember),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	case errors.Is(err, domain.ErrConflictRetryExhausted),
		errors.Is(err, domain.ErrUpstreamUnavailable),
		errors.Is(err, store.ErrUnavailable):
		return http.StatusServiceUnavailable

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a client-facing message for err. Internal
// details such as SQL, hosts or stored values never appear in it.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	var validationErr *domain.ValidationError
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken):
		return "Invalid token"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "Invalid credentials"

	case errors.Is(err, service.ErrNoCompetitionsForUser):
		return "No competitions found for this user"
	case errors.Is(err, store.ErrAccountNotFound):
		return "User not found"
	case errors.Is(err, store.ErrCompetitionNotFound):
		return "Competition not found"
	case errors.Is(err, store.ErrNotFound):
		return "Not found"

	case errors.As(err, &validationErr):
		return capitalize(validationErr.Error())
	case errors.Is(err, domain.ErrAlreadyRegistered):
		return "Already registered"
	case errors.Is(err, domain.ErrNotAMember):
		return "User is not registered for this event"
	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"

	case errors.Is(err, domain.ErrConflictRetryExhausted):
		return "Too many concurrent updates, please try again"
	case errors.Is(err, domain.ErrUpstreamUnavailable),
		errors.Is(err, store.ErrUnavailable):
		return "Service temporarily unavailable, please try again"

	default:
		return "An unexpected error occurred"
	}
}

// HandleAPIError writes the error response for err. A non-empty message
// replaces the default safe message; attrs are added to the error log.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, message string, attrs ...slog.Attr) {
	status := MapErrorToStatusCode(err)
	if message == "" {
		message = GetSafeErrorMessage(err)
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err, shared.WithLogAttrs(attrs...))
}

// SanitizeValidationError turns a validator error into a short message
// naming the first failing field.
func SanitizeValidationError(err error) string {
	errMsg := err.Error()

	// "Key: 'LoginRequest.Email' Error:Field validation for 'Email' failed on the 'required' tag"
	if strings.Contains(errMsg, "Field validation") {
		parts := strings.Split(errMsg, "Error:")
		if len(parts) >= 2 {
			fieldParts := strings.Split(parts[1], "'")
			if len(fieldParts) >= 3 {
				field := fieldParts[1]
				var tag string
				if len(fieldParts) >= 5 {
					tag = fieldParts[3]
				}
				if tag != "" {
					return fmt.Sprintf("Invalid %s: %s", field, getValidationTagMessage(tag))
				}
				return fmt.Sprintf("Invalid %s", field)
			}
		}
	}

	return "Validation error"
}

func getValidationTagMessage(tag string) string {
	switch tag {
	case "required", "required_without":
		return "required field"
	case "email":
		return "invalid email format"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "gte":
		return "too small"
	case "oneof":
		return "invalid value"
	default:
		return "validation failed"
	}
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
