// Package main implements the entry point for the compete-api server,
// which serves account, competition, participation and newsletter endpoints.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/competehub/compete-api/internal/config"
	"github.com/competehub/compete-api/internal/platform/logger"
)

// cliOptions are the command-line flags of the server binary.
type cliOptions struct {
	// MigrateCmd runs a goose command (up, down, status, version, reset)
	// against the configured database and exits instead of serving.
	MigrateCmd string
}

func parseFlags(args []string, output io.Writer) (cliOptions, error) {
	var opts cliOptions
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.StringVar(&opts.MigrateCmd, "migrate", "", "run a migration command (up|down|status|version|reset) and exit")
	if err := fs.Parse(args); err != nil {
		return cliOptions{}, err
	}
	if opts.MigrateCmd != "" && !isMigrationCommand(opts.MigrateCmd) {
		return cliOptions{}, fmt.Errorf("unknown migration command %q", opts.MigrateCmd)
	}
	return opts, nil
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		slog.Error("compete-api exited with error", "error", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	opts, err := parseFlags(args, os.Stderr)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}
	log.Info("server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"database_driver", cfg.Database.Driver)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if opts.MigrateCmd != "" {
		return migrateStandalone(ctx, cfg, opts.MigrateCmd, log)
	}

	app, err := newApplication(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	return app.Run(ctx)
}
