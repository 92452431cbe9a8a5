package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/competehub/compete-api/internal/api"
	"github.com/competehub/compete-api/internal/api/middleware"
	"github.com/competehub/compete-api/internal/config"
	"github.com/competehub/compete-api/internal/domain"
	"github.com/competehub/compete-api/internal/platform/logger"
	"github.com/competehub/compete-api/internal/platform/memory"
	"github.com/competehub/compete-api/internal/service"
	"github.com/competehub/compete-api/internal/service/auth"
	"github.com/competehub/compete-api/internal/service/registration"
	"github.com/competehub/compete-api/internal/store"
)

const testJWTSecret = "test-secret-test-secret-test-secret-0001"

type testAPI struct {
	server       *httptest.Server
	docs         *memory.DocumentStore
	competitions service.CompetitionService
	jwt          auth.JWTService
	logs         *logger.TestLogBuffer
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	log, logs := logger.GetTestLogger(t)
	docs := memory.NewDocumentStore(
		memory.WithUniqueFields(store.CollectionAccounts, "username", "email", "phone_number"),
	)
	registrar, err := registration.NewService(docs, registration.Config{
		MaxAttempts:      30,
		BaseDelay:        time.Millisecond,
		MaxDelay:         2 * time.Millisecond,
		OperationTimeout: time.Second,
	}, log)
	require.NoError(t, err)

	accounts, err := service.NewAccountService(docs, auth.NewBcryptHasher(bcrypt.MinCost), log)
	require.NoError(t, err)
	competitions, err := service.NewCompetitionService(docs, registrar, log)
	require.NoError(t, err)
	community, err := service.NewCommunityService(docs, registrar, log)
	require.NoError(t, err)
	require.NoError(t, community.EnsureDocuments(context.Background()))

	jwtService, err := auth.NewJWTService(config.AuthConfig{JWTSecret: testJWTSecret, TokenLifetimeMinutes: 60})
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Use(middleware.TraceMiddleware(log))
	api.Handlers{
		Accounts:     api.NewAccountHandler(accounts, jwtService, log),
		Competitions: api.NewCompetitionHandler(competitions, log),
		Community:    api.NewCommunityHandler(community, log),
		Auth:         middleware.NewAuthMiddleware(jwtService),
	}.Routes(r)

	server := httptest.NewServer(r)
	t.Cleanup(server.Close)

	return &testAPI{server: server, docs: docs, competitions: competitions, jwt: jwtService, logs: logs}
}

type apiResponse struct {
	Status int
	Body   []byte
}

func (a *testAPI) do(t *testing.T, method, path string, body interface{}, headers ...string) apiResponse {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, a.server.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	resp, err := a.server.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	return apiResponse{Status: resp.StatusCode, Body: buf.Bytes()}
}

func (r apiResponse) decode(t *testing.T, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(r.Body, v), string(r.Body))
}

func (r apiResponse) errorMessage(t *testing.T) string {
	t.Helper()
	var body struct {
		Error   string `json:"error"`
		TraceID string `json:"trace_id"`
	}
	r.decode(t, &body)
	require.NotEmpty(t, body.TraceID)
	return body.Error
}

func (a *testAPI) createCompetition(t *testing.T, title, organizerID string) string {
	t.Helper()
	c, err := a.competitions.Create(context.Background(), domain.Competition{Title: title, UserID: organizerID})
	require.NoError(t, err)
	return c.ID
}
