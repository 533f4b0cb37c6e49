// Command backlot-admin provides operational helpers for the marketplace:
// applying migrations and seeding a development database.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/backlot/backlot-api/config"
	"github.com/backlot/backlot-api/internal/bootstrap"
	"github.com/backlot/backlot-api/internal/devseed"
	"github.com/backlot/backlot-api/internal/migrate"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2) //nolint:forbidigo // CLI usage error.
	}

	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1) //nolint:forbidigo // Main entrypoint should exit with non-zero status on fatal errors.
	}
	logger := bootstrap.InitLogger(cfg.SlogLevel())

	ctx := context.Background()
	if err := run(ctx, os.Args[1], &cfg, logger); err != nil {
		logger.ErrorContext(ctx, "command failed", "command", os.Args[1], "error", err)
		os.Exit(1) //nolint:forbidigo // Main entrypoint should exit with non-zero status on fatal errors.
	}
}

func run(ctx context.Context, command string, cfg *config.AppConfig, logger *slog.Logger) error {
	switch command {
	case "migrate":
		return runMigrate(ctx, cfg, logger)
	case "seed":
		return runSeed(ctx, cfg, logger)
	default:
		usage()
		return fmt.Errorf("unknown command %q", command)
	}
}

func runMigrate(ctx context.Context, cfg *config.AppConfig, logger *slog.Logger) error {
	// ConnectDB would apply migrations itself when RunMigrationsOnStart is
	// set; disable that so this command is the only writer.
	dbCfg := cfg.Postgres
	dbCfg.RunMigrationsOnStart = false

	db, err := bootstrap.ConnectDB(ctx, bootstrap.DatabaseConfig{DBConfig: dbCfg, Logger: logger})
	if err != nil {
		return err
	}
	defer closeQuietly(db.Close, logger)

	return migrate.Run(ctx, db)
}

func runSeed(ctx context.Context, cfg *config.AppConfig, logger *slog.Logger) error {
	if !cfg.IsDev {
		return fmt.Errorf("seed is restricted to dev mode; set DEV=true")
	}

	db, err := bootstrap.ConnectDB(ctx, bootstrap.DatabaseConfig{DBConfig: cfg.Postgres, Logger: logger})
	if err != nil {
		return err
	}
	defer closeQuietly(db.Close, logger)

	return devseed.Run(ctx, devseed.NewServices(db, logger), logger)
}

func closeQuietly(closeFn func() error, logger *slog.Logger) {
	if err := closeFn(); err != nil {
		logger.Error("close database failed", "error", err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: backlot-admin <command>

commands:
  migrate   apply pending database migrations
  seed      populate a development database (requires DEV=true)`)
}
