package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/lernkarte/lernkarte/internal/domain"
	"github.com/lernkarte/lernkarte/internal/platform/logger"
	"github.com/lernkarte/lernkarte/internal/store"
)

// DecodeJSON decodes the request body into v.
func DecodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

// RespondWithJSON writes a JSON response with the given status code.
func RespondWithJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.FromContext(r.Context()).Error("failed to encode JSON response",
			"error", err, "path", r.URL.Path)
	}
}

// RespondWithError writes a JSON error response with the given status
// code and message.
func RespondWithError(w http.ResponseWriter, r *http.Request, status int, message string) {
	RespondWithJSON(w, r, status, ErrorResponse{Error: message, Code: status})
}

// getPathUUID extracts and parses a UUID path parameter.
func getPathUUID(r *http.Request, paramName string) (uuid.UUID, error) {
	pathParam := chi.URLParam(r, paramName)
	if pathParam == "" {
		return uuid.Nil, domain.ErrValidation
	}
	id, err := uuid.Parse(pathParam)
	if err != nil {
		return uuid.Nil, domain.ErrValidation
	}
	return id, nil
}

// respondStudyError maps study-loop error sentinels to HTTP status codes.
// Unknown errors are logged and hidden behind a 500.
func respondStudyError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, store.ErrCardNotFound):
		RespondWithError(w, r, http.StatusNotFound, "Card not found")
	case errors.Is(err, store.ErrViewNotFound):
		RespondWithError(w, r, http.StatusNotFound, "View not found")
	case errors.Is(err, store.ErrUserNotFound):
		RespondWithError(w, r, http.StatusNotFound, "User not found")
	case errors.Is(err, store.ErrAlreadyGraded):
		RespondWithError(w, r, http.StatusConflict, "View already graded")
	case errors.Is(err, domain.ErrInvalidGrade):
		RespondWithError(w, r, http.StatusBadRequest, "Invalid grade")
	case store.IsNotFoundError(err):
		// Other not-found variants without a dedicated message.
		RespondWithError(w, r, http.StatusNotFound, "Not found")
	default:
		logger.FromContext(r.Context()).Error("study operation failed",
			"error", err, "path", r.URL.Path)
		RespondWithError(w, r, http.StatusInternalServerError, "Internal server error")
	}
}
