package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// View-specific validation errors
var (
	// ErrViewIDEmpty is returned when a view ID is empty or nil.
	ErrViewIDEmpty = errors.New("view ID cannot be empty")

	// ErrViewCardIDEmpty is returned when a view's card ID is empty or nil.
	ErrViewCardIDEmpty = errors.New("view card ID cannot be empty")

	// ErrViewUserIDEmpty is returned when a view's user ID is empty or nil.
	ErrViewUserIDEmpty = errors.New("view user ID cannot be empty")

	// ErrViewAlreadyGraded is returned when grading a view that already
	// carries a grade. The first grading outcome stands; the view is
	// immutable afterwards.
	ErrViewAlreadyGraded = errors.New("view already graded")
)

// View is one presentation-and-grading instance of a card. It is created
// when the user asks for the answer and mutated exactly once when the
// grade is recorded; any further grading attempt fails.
type View struct {
	ID     uuid.UUID `json:"id"`
	CardID uuid.UUID `json:"card_id"`
	UserID uuid.UUID `json:"user_id"`

	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`

	// Memory state written at grading time: the stability, difficulty and
	// due date the scheduler produced for this answer.
	Stability  float64   `json:"stability"`
	Difficulty float64   `json:"difficulty"`
	DueAt      time.Time `json:"due_at"`

	Grade  Grade `json:"grade,omitempty"`
	Graded bool  `json:"graded"`
}

// NewView opens a review record for the given card, started now.
func NewView(cardID, userID uuid.UUID) (*View, error) {
	view := &View{
		ID:        uuid.New(),
		CardID:    cardID,
		UserID:    userID,
		StartedAt: time.Now().UTC(),
	}

	if err := view.Validate(); err != nil {
		return nil, err
	}

	return view, nil
}

// Validate checks if the View has valid data.
func (v *View) Validate() error {
	if v.ID == uuid.Nil {
		return ErrViewIDEmpty
	}
	if v.CardID == uuid.Nil {
		return ErrViewCardIDEmpty
	}
	if v.UserID == uuid.Nil {
		return ErrViewUserIDEmpty
	}
	if v.Graded && !v.Grade.IsValid() {
		return ErrInvalidGrade
	}
	return nil
}

// RecordGrade applies the grading outcome to the view. It fails with
// ErrViewAlreadyGraded if a grade was recorded before, leaving the view
// untouched. The persisted test-and-set in the store is authoritative;
// this method guards the in-memory object the same way.
func (v *View) RecordGrade(grade Grade, stability, difficulty float64, dueAt, now time.Time) error {
	if v.Graded {
		return ErrViewAlreadyGraded
	}
	if !grade.IsValid() {
		return ErrInvalidGrade
	}

	finished := now.UTC()
	v.Grade = grade
	v.Graded = true
	v.FinishedAt = &finished
	v.Stability = stability
	v.Difficulty = difficulty
	v.DueAt = dueAt
	return nil
}

// Duration returns how long the user took to answer, zero if ungraded.
func (v *View) Duration() time.Duration {
	if v.FinishedAt == nil {
		return 0
	}
	return v.FinishedAt.Sub(v.StartedAt)
}
