package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/lernkarte/lernkarte/internal/config"
	"github.com/lernkarte/lernkarte/internal/domain/srs"
	"github.com/lernkarte/lernkarte/internal/events"
	"github.com/lernkarte/lernkarte/internal/generation"
	"github.com/lernkarte/lernkarte/internal/platform/gemini"
	"github.com/lernkarte/lernkarte/internal/platform/postgres"
	"github.com/lernkarte/lernkarte/internal/store"
	"github.com/lernkarte/lernkarte/internal/study"
	"github.com/lernkarte/lernkarte/internal/task"
)

// application holds the wired components for the server's lifetime.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	bus         *events.Bus
	outbox      *study.Outbox
	coordinator *task.Coordinator

	cardStore store.CardStore
	viewStore store.ViewStore
	userStore store.UserStore
}

// newApplication wires the stores, the scheduler, the collaborators and
// the event handlers.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	db, err := setupDatabase(ctx, cfg.Database.URL, logger)
	if err != nil {
		return nil, err
	}

	cardStore := postgres.NewCardStore(db, logger)
	viewStore := postgres.NewViewStore(db, logger)
	userStore := postgres.NewUserStore(db, logger)

	params := srs.NewDefaultParams()
	params.DesiredRetention = cfg.SRS.DesiredRetention
	params.MaxIntervalDays = cfg.SRS.MaxIntervalDays
	params.AgainReviewMinutes = cfg.SRS.AgainReviewMinutes
	params.EnableFuzz = cfg.SRS.EnableFuzz
	params.LeechLapseLimit = cfg.SRS.LeechLapseLimit
	scheduler, err := srs.NewService(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	bus := events.NewBus(logger)
	outbox := study.NewOutbox()
	outbox.RegisterHandlers(bus)

	translator, imageGen, err := setupGemini(ctx, cfg.Gemini, logger)
	if err != nil {
		return nil, err
	}

	app := &application{
		config:    cfg,
		logger:    logger,
		db:        db,
		bus:       bus,
		outbox:    outbox,
		cardStore: cardStore,
		viewStore: viewStore,
		userStore: userStore,
	}

	var images study.ImageRequester
	if imageGen != nil {
		coordCfg := task.DefaultCoordinatorConfig()
		coordCfg.TargetLanguage = cfg.Study.TargetLanguage
		app.coordinator = task.NewCoordinator(
			cardStore, translator, imageGen, bus, coordCfg, logger)
		images = app.coordinator
	}

	studyService := study.NewService(
		store.NewTxRunner(db),
		cardStore,
		viewStore,
		scheduler,
		translator,
		images,
		bus,
		study.Config{
			NewCardsPerSession: cfg.Study.NewCardsPerSession,
			TargetLanguage:     cfg.Study.TargetLanguage,
			DueCardLimit:       cfg.Study.DueCardLimit,
		},
		logger,
	)
	studyService.RegisterHandlers(bus)

	return app, nil
}

// setupGemini creates the translation and image collaborators. An empty
// API key disables both; the session loop degrades gracefully.
func setupGemini(ctx context.Context, cfg config.GeminiConfig, logger *slog.Logger) (generation.Translator, generation.ImageGenerator, error) {
	if cfg.APIKey == "" {
		logger.Warn("gemini API key not set, translation and illustrations disabled")
		return nil, nil, nil
	}

	client, err := gemini.NewClient(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	var translator generation.Translator
	if cfg.TextModel != "" {
		translator, err = gemini.NewTranslator(client, cfg.TextModel, logger)
		if err != nil {
			return nil, nil, err
		}
	}

	var imageGen generation.ImageGenerator
	if cfg.ImageModel != "" && cfg.ImageDir != "" {
		imageGen, err = gemini.NewImageGenerator(client, cfg.ImageModel, cfg.ImageDir, logger)
		if err != nil {
			return nil, nil, err
		}
	}

	return translator, imageGen, nil
}

// run starts the background workers and the HTTP server, then blocks
// until shutdown completes.
func (app *application) run(ctx context.Context) error {
	if app.coordinator != nil {
		app.coordinator.Start(ctx)
	}
	return app.startHTTPServer(ctx, app.setupRouter())
}

// cleanup releases resources during shutdown.
func (app *application) cleanup() {
	if app.coordinator != nil {
		app.coordinator.Stop()
	}
	app.bus.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error("failed to close database", "error", err)
	}
}

// shutdownTimeout bounds graceful HTTP shutdown.
const shutdownTimeout = 10 * time.Second
