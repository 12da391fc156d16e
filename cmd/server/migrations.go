package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lernkarte/lernkarte/internal/config"
	"github.com/lernkarte/lernkarte/migrations"
	"github.com/pressly/goose/v3"
)

// runMigrations executes the given goose command against the configured
// database and returns.
func runMigrations(cfg *config.Config, command string, logger *slog.Logger) error {
	db, err := setupDatabase(context.Background(), cfg.Database.URL, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}

	logger.Info("running migrations", "command", command)
	switch command {
	case "up":
		return goose.Up(db, ".")
	case "down":
		return goose.Down(db, ".")
	case "status":
		return goose.Status(db, ".")
	default:
		return fmt.Errorf("unknown migration command %q", command)
	}
}
