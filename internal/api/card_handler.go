package api

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/lernkarte/lernkarte/internal/domain"
	"github.com/lernkarte/lernkarte/internal/platform/logger"
	"github.com/lernkarte/lernkarte/internal/store"
)

// CardHandler handles card intake. Cards normally arrive from an external
// source; this endpoint exists so a deployment without one can still be
// filled.
type CardHandler struct {
	cardStore store.CardStore
	validator *validator.Validate
}

// NewCardHandler creates a new CardHandler.
func NewCardHandler(cardStore store.CardStore) *CardHandler {
	return &CardHandler{
		cardStore: cardStore,
		validator: validator.New(),
	}
}

// Create handles POST /api/cards.
func (h *CardHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateCardRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	card, err := domain.NewCard(req.UserID, req.Front, req.Back)
	if err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Invalid card data: "+err.Error())
		return
	}

	if err := h.cardStore.Create(r.Context(), card); err != nil {
		logger.FromContext(r.Context()).Error("failed to create card", "error", err)
		RespondWithError(w, r, http.StatusInternalServerError, "Failed to create card")
		return
	}

	RespondWithJSON(w, r, http.StatusCreated, CardResponse{
		CardID: card.ID,
		Front:  card.Front,
		Back:   card.Back,
	})
}
