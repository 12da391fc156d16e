// Package main is the entry point for the lernkarte server: the study
// session engine with its HTTP channel adapter.
package main

import (
	"context"
	"flag"
	"log"

	"github.com/lernkarte/lernkarte/internal/config"
	"github.com/lernkarte/lernkarte/internal/platform/logger"
)

func main() {
	migrateCmd := flag.String("migrate", "", "run a migration command (up, down, status) and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logg := logger.Setup(cfg.Server.LogLevel)

	if *migrateCmd != "" {
		if err := runMigrations(cfg, *migrateCmd, logg); err != nil {
			log.Fatalf("migration failed: %v", err)
		}
		return
	}

	app, err := newApplication(context.Background(), cfg, logg)
	if err != nil {
		log.Fatalf("failed to initialize application: %v", err)
	}

	if err := app.run(context.Background()); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
