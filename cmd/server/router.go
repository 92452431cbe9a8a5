package main

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/competehub/compete-api/internal/api"
	apiMiddleware "github.com/competehub/compete-api/internal/api/middleware"
	"github.com/competehub/compete-api/internal/api/shared"
	"github.com/competehub/compete-api/internal/platform/metrics"
)

// setupRouter creates the router with the global middleware chain, the
// operational endpoints and every API route.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware(app.logger))
	r.Use(app.metrics.Middleware)

	r.Get("/health", app.health)
	r.Handle("/metrics", metrics.Handler(app.registry))

	api.Handlers{
		Accounts:     api.NewAccountHandler(app.accounts, app.jwtService, app.logger),
		Competitions: api.NewCompetitionHandler(app.competitions, app.logger),
		Community:    api.NewCommunityHandler(app.community, app.logger),
		Auth:         apiMiddleware.NewAuthMiddleware(app.jwtService),
	}.Routes(r)

	return r
}

// health reports liveness and whether the document store answers.
func (app *application) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := app.docs.Ping(ctx); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusServiceUnavailable, "Document store unavailable", err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}
