package shared_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/competehub/compete-api/internal/api/shared"
	"github.com/competehub/compete-api/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requestWithTrace(t *testing.T) (*http.Request, *logger.TestLogBuffer) {
	t.Helper()
	log, buf := logger.GetTestLogger(t)
	ctx := context.WithValue(context.Background(), shared.TraceIDKey, "test-trace-id")
	ctx = logger.WithLogger(ctx, log)
	return httptest.NewRequest(http.MethodPost, "/participate/c1", nil).WithContext(ctx), buf
}

func TestRespondWithJSON(t *testing.T) {
	t.Parallel()

	r, _ := requestWithTrace(t)
	w := httptest.NewRecorder()
	shared.RespondWithJSON(w, r, http.StatusCreated, map[string]string{"id": "c1"})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"id":"c1"}`, w.Body.String())
}

func TestRespondWithJSONEncodingError(t *testing.T) {
	t.Parallel()

	r, buf := requestWithTrace(t)
	w := httptest.NewRecorder()
	shared.RespondWithJSON(w, r, http.StatusOK, map[string]interface{}{"ch": make(chan int)})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, buf.String(), "failed to encode JSON response")
}

func TestRespondWithMessage(t *testing.T) {
	t.Parallel()

	r, _ := requestWithTrace(t)
	w := httptest.NewRecorder()
	shared.RespondWithMessage(w, r, "Registered")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Registered"}`, w.Body.String())
}

func TestRespondWithError(t *testing.T) {
	t.Parallel()

	r, _ := requestWithTrace(t)
	w := httptest.NewRecorder()
	shared.RespondWithError(w, r, http.StatusNotFound, "Competition not found")

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Competition not found", resp["error"])
	assert.Equal(t, "test-trace-id", resp["trace_id"])
	assert.NotContains(t, resp, "Code")
}

func TestRespondWithErrorNoTraceID(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	shared.RespondWithError(w, r, http.StatusUnauthorized, "Unauthorized")

	assert.JSONEq(t, `{"error":"Unauthorized"}`, w.Body.String())
}

func TestRespondWithErrorAndLog(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		status    int
		elevate   bool
		wantLevel string
	}{
		{name: "server error", status: http.StatusServiceUnavailable, wantLevel: "ERROR"},
		{name: "client error", status: http.StatusBadRequest, wantLevel: "DEBUG"},
		{name: "elevated client error", status: http.StatusUnauthorized, elevate: true, wantLevel: "WARN"},
		{name: "rate limited", status: http.StatusTooManyRequests, wantLevel: "WARN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r, buf := requestWithTrace(t)
			w := httptest.NewRecorder()
			cause := errors.New("lookup of alice@example.com failed")
			opts := []shared.ResponseOption{
				shared.WithLogAttrs(slog.String("competition_id", "c1"), slog.String("operation", "participate")),
			}
			if tt.elevate {
				opts = append(opts, shared.WithElevatedLogLevel())
			}
			shared.RespondWithErrorAndLog(w, r, tt.status, "Something went wrong", cause, opts...)

			assert.Equal(t, tt.status, w.Code)
			assert.NotContains(t, w.Body.String(), "alice@example.com")

			entries, err := buf.GetLogEntries()
			require.NoError(t, err)
			require.Len(t, entries, 1)
			entry := entries[0]
			assert.Equal(t, tt.wantLevel, entry["level"])
			assert.Equal(t, "test-trace-id", entry["trace_id"])
			assert.Equal(t, "c1", entry["competition_id"])
			assert.Equal(t, "participate", entry["operation"])
			assert.NotContains(t, entry["error"], "alice@example.com")
			assert.Contains(t, entry["error"], "[REDACTED_EMAIL]")
		})
	}
}
