package api

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/lernkarte/lernkarte/internal/domain"
	"github.com/lernkarte/lernkarte/internal/platform/logger"
	"github.com/lernkarte/lernkarte/internal/store"
)

// UserHandler handles account endpoints.
type UserHandler struct {
	userStore store.UserStore
	validator *validator.Validate
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userStore store.UserStore) *UserHandler {
	return &UserHandler{
		userStore: userStore,
		validator: validator.New(),
	}
}

// Create handles POST /api/users.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	user, err := domain.NewUser(req.Email, req.Password)
	if err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Invalid user data: "+err.Error())
		return
	}

	if err := h.userStore.Create(r.Context(), user); err != nil {
		if store.IsDuplicateError(err) {
			RespondWithError(w, r, http.StatusConflict, "Email already exists")
			return
		}
		logger.FromContext(r.Context()).Error("failed to create user", "error", err)
		RespondWithError(w, r, http.StatusInternalServerError, "Failed to create user")
		return
	}

	RespondWithJSON(w, r, http.StatusCreated, UserResponse{
		UserID: user.ID,
		Email:  user.Email,
	})
}

// Get handles GET /api/users/{id}.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Invalid user ID")
		return
	}

	user, err := h.userStore.GetByID(r.Context(), id)
	if err != nil {
		respondStudyError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, UserResponse{
		UserID: user.ID,
		Email:  user.Email,
	})
}
