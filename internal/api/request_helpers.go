package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/competehub/compete-api/internal/api/shared"
	"github.com/competehub/compete-api/internal/domain"
	"github.com/competehub/compete-api/internal/platform/logger"
)

// decodeAndValidate reads the JSON body into v and validates it. On failure
// it writes a 400 response and returns false.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := shared.DecodeJSON(w, r, v); err != nil {
		message := "Invalid request format"
		if errors.Is(err, shared.ErrEmptyBody) {
			message = "Request body is required"
		}
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, message, err)
		return false
	}
	if err := shared.ValidateRequest(v); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return false
	}
	return true
}

// getPathParam extracts a required, non-blank URL path parameter.
func getPathParam(r *http.Request, paramName string) (string, error) {
	value := strings.TrimSpace(chi.URLParam(r, paramName))
	if value == "" {
		return "", domain.NewValidationError(paramName, "is required", domain.ErrInvalidID)
	}
	return value, nil
}

// requirePathParam is getPathParam that writes the 400 response itself.
func requirePathParam(w http.ResponseWriter, r *http.Request, paramName string) (string, bool) {
	value, err := getPathParam(r, paramName)
	if err != nil {
		logger.FromContextOrDefault(r.Context(), slog.Default()).
			Warn("invalid path parameter", slog.String("param_name", paramName))
		HandleAPIError(w, r, err, "")
		return "", false
	}
	return value, true
}
