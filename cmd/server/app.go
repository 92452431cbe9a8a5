package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/competehub/compete-api/internal/config"
	"github.com/competehub/compete-api/internal/platform/metrics"
	"github.com/competehub/compete-api/internal/service"
	"github.com/competehub/compete-api/internal/service/auth"
	"github.com/competehub/compete-api/internal/service/registration"
	"github.com/competehub/compete-api/internal/store"
)

// application holds the shared dependencies of the server and releases
// them on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger

	// db is nil for the memory driver.
	db   *sqlx.DB
	docs store.DocumentStore

	metrics  *metrics.Collector
	registry *prometheus.Registry

	jwtService   auth.JWTService
	accounts     service.AccountService
	competitions service.CompetitionService
	community    service.CommunityService
}

// newApplication opens the document store and builds every service on top
// of it. The newsletter and reviews documents are created when absent.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	docs, db, err := openDocumentStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	app, err := newApplicationWithStore(ctx, cfg, logger, docs)
	if err != nil {
		if db != nil {
			_ = db.Close()
		}
		return nil, err
	}
	app.db = db
	return app, nil
}

func newApplicationWithStore(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	docs store.DocumentStore,
) (*application, error) {
	app := &application{
		config:  cfg,
		logger:  logger,
		docs:    docs,
		metrics: metrics.NewCollector(),
	}
	app.registry = metrics.NewRegistry(app.metrics)

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	registrar, err := registration.NewService(docs, registration.ConfigFrom(cfg.Registration), logger,
		registration.WithRecorder(app.metrics))
	if err != nil {
		return nil, fmt.Errorf("failed to create registration service: %w", err)
	}

	app.accounts, err = service.NewAccountService(docs, auth.NewBcryptHasher(cfg.Auth.BCryptCost), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create account service: %w", err)
	}
	app.competitions, err = service.NewCompetitionService(docs, registrar, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create competition service: %w", err)
	}
	app.community, err = service.NewCommunityService(docs, registrar, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create community service: %w", err)
	}

	if err := app.community.EnsureDocuments(ctx); err != nil {
		return nil, fmt.Errorf("failed to create list documents: %w", err)
	}

	logger.Info("application initialized successfully")
	return app, nil
}

// Run serves HTTP until ctx is canceled, then shuts down gracefully.
func (app *application) Run(ctx context.Context) error {
	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup releases the database pool.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", "error", err)
		}
	}
	app.logger.Info("application shutdown completed")
}
