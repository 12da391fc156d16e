package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Card-specific validation errors
var (
	// ErrCardIDEmpty is returned when a card ID is empty or nil.
	ErrCardIDEmpty = errors.New("card ID cannot be empty")

	// ErrCardUserIDEmpty is returned when a card's user ID is empty or nil.
	ErrCardUserIDEmpty = errors.New("card user ID cannot be empty")

	// ErrCardFrontEmpty is returned when a card's front content is empty.
	ErrCardFrontEmpty = errors.New("card front cannot be empty")

	// ErrCardBackEmpty is returned when a card's back content is empty.
	ErrCardBackEmpty = errors.New("card back cannot be empty")
)

// Maturity classifies how established a card is in the user's memory.
type Maturity string

// Maturity levels.
const (
	MaturityNew    Maturity = "new"    // never reviewed
	MaturityYoung  Maturity = "young"  // reviewed, interval below the mature threshold
	MaturityMature Maturity = "mature" // interval at or above the mature threshold
)

// Card represents a vocabulary card with its front/back presentation and
// its memory state. Stability, difficulty and last-review are nil/zero
// before the first grading; the scheduler owns their values afterwards.
type Card struct {
	ID     uuid.UUID `json:"id"`
	UserID uuid.UUID `json:"user_id"`
	Front  string    `json:"front"`
	Back   string    `json:"back"`

	// Memory state, unknown before the first review.
	Stability  *float64 `json:"stability,omitempty"`
	Difficulty *float64 `json:"difficulty,omitempty"`

	LastReviewAt *time.Time `json:"last_review_at,omitempty"`
	DueAt        time.Time  `json:"due_at"`

	// LapseStreak counts consecutive low grades; Leech is set once the
	// streak reaches the configured limit and is never cleared here.
	LapseStreak int  `json:"lapse_streak"`
	Leech       bool `json:"leech"`

	// ImageRef points at the generated illustration for leech cards,
	// nil until one exists.
	ImageRef *string `json:"image_ref,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewCard creates a new Card owned by the given user, due immediately.
// Returns an error if validation fails.
func NewCard(userID uuid.UUID, front, back string) (*Card, error) {
	now := time.Now().UTC()
	card := &Card{
		ID:        uuid.New(),
		UserID:    userID,
		Front:     front,
		Back:      back,
		DueAt:     now,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := card.Validate(); err != nil {
		return nil, err
	}

	return card, nil
}

// Validate checks if the Card has valid data.
func (c *Card) Validate() error {
	if c.ID == uuid.Nil {
		return ErrCardIDEmpty
	}
	if c.UserID == uuid.Nil {
		return ErrCardUserIDEmpty
	}
	if strings.TrimSpace(c.Front) == "" {
		return ErrCardFrontEmpty
	}
	if strings.TrimSpace(c.Back) == "" {
		return ErrCardBackEmpty
	}
	return nil
}

// Maturity classifies the card given the mature-interval threshold in days.
// A card is New until its first review; afterwards it is Mature once the
// current scheduling interval reaches the threshold.
func (c *Card) Maturity(matureThresholdDays int) Maturity {
	if c.LastReviewAt == nil {
		return MaturityNew
	}
	interval := c.DueAt.Sub(*c.LastReviewAt)
	if interval >= time.Duration(matureThresholdDays)*24*time.Hour {
		return MaturityMature
	}
	return MaturityYoung
}

// HasImage reports whether an illustration already exists for the card.
func (c *Card) HasImage() bool {
	return c.ImageRef != nil && *c.ImageRef != ""
}

// IsProse reports whether text reads as a prose explanation rather than a
// single word or short phrase. Prose sides get translated before being
// shown; single words are presented as-is.
func IsProse(text string) bool {
	return len(strings.Fields(text)) >= 4
}
