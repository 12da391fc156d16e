package api

import (
	"github.com/google/uuid"
	"github.com/lernkarte/lernkarte/internal/study"
)

// Common request/response structures

// CreateUserRequest defines the payload for the user creation endpoint.
type CreateUserRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=12,max=72"`
}

// UserResponse defines the successful response for user endpoints.
type UserResponse struct {
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
}

// CreateCardRequest defines the payload for the card creation endpoint.
type CreateCardRequest struct {
	UserID uuid.UUID `json:"user_id" validate:"required"`
	Front  string    `json:"front"   validate:"required"`
	Back   string    `json:"back"    validate:"required"`
}

// CardResponse defines the successful response for card creation.
type CardResponse struct {
	CardID uuid.UUID `json:"card_id"`
	Front  string    `json:"front"`
	Back   string    `json:"back"`
}

// SessionRequest identifies the studying user. The channel performs its
// own authentication before reaching this surface.
type SessionRequest struct {
	UserID uuid.UUID `json:"user_id" validate:"required"`
}

// GradeRequest defines the payload for the grading endpoint.
type GradeRequest struct {
	UserID uuid.UUID `json:"user_id" validate:"required"`
	Grade  string    `json:"grade"   validate:"required,oneof=again hard good easy"`
}

// MessageResponse wraps the outbound message the session produced for
// the user.
type MessageResponse struct {
	Message study.Message `json:"message"`
}

// ErrorResponse is the common error payload.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}
