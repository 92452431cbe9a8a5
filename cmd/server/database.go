package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"

	"github.com/competehub/compete-api/internal/config"
	"github.com/competehub/compete-api/internal/platform/memory"
	"github.com/competehub/compete-api/internal/platform/postgres"
	"github.com/competehub/compete-api/internal/redact"
	"github.com/competehub/compete-api/internal/store"
)

// Database drivers accepted in database.driver.
const (
	driverPostgres = "postgres"
	driverMemory   = "memory"
)

// setupAppDatabase opens the Postgres pool through the pgx stdlib driver and
// checks that it answers.
func setupAppDatabase(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*sqlx.DB, error) {
	db, err := sql.Open("pgx", cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %s", redact.Error(err))
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %s", redact.Error(err))
	}

	logger.Info("database connection established", "url", redact.String(cfg.Database.URL))
	return sqlx.NewDb(db, "pgx"), nil
}

// openDocumentStore builds the configured DocumentStore. For Postgres it
// also returns the pool so the caller can close it, and applies migrations
// when database.auto_migrate is set.
func openDocumentStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (store.DocumentStore, *sqlx.DB, error) {
	switch cfg.Database.Driver {
	case driverMemory:
		logger.Warn("using in-memory document store; data is lost on restart")
		return newMemoryStore(), nil, nil

	case driverPostgres:
		db, err := setupAppDatabase(ctx, cfg, logger)
		if err != nil {
			return nil, nil, err
		}
		if cfg.Database.AutoMigrate {
			if err := runMigrations(ctx, db.DB, "up", logger); err != nil {
				_ = db.Close()
				return nil, nil, err
			}
		}
		return postgres.NewPostgresDocumentStore(db, logger), db, nil

	default:
		return nil, nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
}

// newMemoryStore mirrors the unique indexes of the Postgres schema.
func newMemoryStore() *memory.DocumentStore {
	return memory.NewDocumentStore(
		memory.WithUniqueFields(store.CollectionAccounts, "username", "email", "phone_number"),
	)
}
