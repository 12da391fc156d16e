package api

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/lernkarte/lernkarte/internal/events"
	"github.com/lernkarte/lernkarte/internal/study"
)

// StudyHandler drives the study session over HTTP. Each endpoint
// publishes the corresponding inbound event; the sync handlers leave the
// reply in the outbox before Publish returns.
type StudyHandler struct {
	publisher events.Publisher
	outbox    *study.Outbox
	validator *validator.Validate
}

// NewStudyHandler creates a new StudyHandler.
func NewStudyHandler(publisher events.Publisher, outbox *study.Outbox) *StudyHandler {
	return &StudyHandler{
		publisher: publisher,
		outbox:    outbox,
		validator: validator.New(),
	}
}

// Next handles POST /api/study/next: start or resume a session.
func (h *StudyHandler) Next(w http.ResponseWriter, r *http.Request) {
	var req SessionRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	err := h.publisher.Publish(r.Context(), events.StudySessionRequested{UserID: req.UserID})
	if err != nil {
		respondStudyError(w, r, err)
		return
	}
	h.respondFromOutbox(w, r, req)
}

// Answer handles POST /api/cards/{id}/answer: reveal the card back.
func (h *StudyHandler) Answer(w http.ResponseWriter, r *http.Request) {
	cardID, err := getPathUUID(r, "id")
	if err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Invalid card ID")
		return
	}

	var req SessionRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	err = h.publisher.Publish(r.Context(), events.CardAnswerRequested{
		UserID: req.UserID,
		CardID: cardID,
	})
	if err != nil {
		respondStudyError(w, r, err)
		return
	}
	h.respondFromOutbox(w, r, req)
}

// Grade handles POST /api/views/{id}/grade: record the grade.
func (h *StudyHandler) Grade(w http.ResponseWriter, r *http.Request) {
	viewID, err := getPathUUID(r, "id")
	if err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Invalid view ID")
		return
	}

	var req GradeRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	err = h.publisher.Publish(r.Context(), events.CardGradeSelected{
		UserID: req.UserID,
		ViewID: viewID,
		Grade:  req.Grade,
	})
	if err != nil {
		respondStudyError(w, r, err)
		return
	}
	h.respondFromOutbox(w, r, SessionRequest{UserID: req.UserID})
}

func (h *StudyHandler) respondFromOutbox(w http.ResponseWriter, r *http.Request, req SessionRequest) {
	msg, ok := h.outbox.Latest(req.UserID)
	if !ok {
		// The handlers always leave a message behind on success.
		RespondWithError(w, r, http.StatusInternalServerError, "No message produced")
		return
	}
	RespondWithJSON(w, r, http.StatusOK, MessageResponse{Message: msg})
}
