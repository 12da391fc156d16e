package main

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/lernkarte/lernkarte/internal/api"
	"github.com/lernkarte/lernkarte/internal/platform/logger"
)

// setupRouter configures the routes and middleware of the channel
// adapter edge.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(app.requestLogger)

	userHandler := api.NewUserHandler(app.userStore)
	cardHandler := api.NewCardHandler(app.cardStore)
	studyHandler := api.NewStudyHandler(app.bus, app.outbox)

	r.Route("/api", func(r chi.Router) {
		r.Post("/users", userHandler.Create)
		r.Get("/users/{id}", userHandler.Get)

		r.Post("/cards", cardHandler.Create)

		r.Post("/study/next", studyHandler.Next)
		r.Post("/cards/{id}/answer", studyHandler.Answer)
		r.Post("/views/{id}/grade", studyHandler.Grade)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			logger.FromContextOrDefault(r.Context(), app.logger).
				Error("failed to write health check response", "error", err)
		}
	})

	return r
}

// requestLogger stores a request-scoped logger in the context so the
// handlers and the transaction helper correlate their lines by request id.
func (app *application) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := app.logger.With(slog.String("request_id", middleware.GetReqID(r.Context())))
		next.ServeHTTP(w, r.WithContext(logger.WithLogger(r.Context(), log)))
	})
}
