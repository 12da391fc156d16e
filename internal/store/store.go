package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/lernkarte/lernkarte/internal/domain"
)

// CardStore persists cards and their memory state.
type CardStore interface {
	// Create saves a new card.
	Create(ctx context.Context, card *domain.Card) error

	// GetByID retrieves a card by its unique ID.
	// Returns ErrCardNotFound if the card does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Card, error)

	// GetDueCards returns the user's cards with due-at before the horizon,
	// ordered by ascending due-at and tie-broken by creation order.
	GetDueCards(ctx context.Context, userID uuid.UUID, horizon time.Time, limit int) ([]*domain.Card, error)

	// UpdateScheduling persists the card's memory state: stability,
	// difficulty, last-review, due-at, lapse streak and leech flag.
	// Returns ErrCardNotFound if the card does not exist.
	UpdateScheduling(ctx context.Context, card *domain.Card) error

	// SetImageRef annotates the card with a generated image reference.
	// Returns ErrCardNotFound if the card does not exist.
	SetImageRef(ctx context.Context, cardID uuid.UUID, ref string) error

	// CountNewStudied counts cards whose first graded view started after
	// the given time, for the per-session new-card budget.
	CountNewStudied(ctx context.Context, userID uuid.UUID, since time.Time) (int, error)

	// WithTx returns a CardStore bound to the given transaction.
	WithTx(tx *sql.Tx) CardStore
}

// ViewStore persists review records.
type ViewStore interface {
	// Create opens a review record. Any previously open (ungraded) view
	// of the same user is superseded in the same transaction, preserving
	// the at-most-one-open-view invariant.
	Create(ctx context.Context, view *domain.View) error

	// GetByID retrieves a view by its unique ID.
	// Returns ErrViewNotFound if the view does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.View, error)

	// RecordGrade writes the grading outcome with an atomic test-and-set
	// on the graded flag. Returns ErrAlreadyGraded, without side effects,
	// if the view was graded before; returns ErrViewNotFound if the view
	// does not exist.
	RecordGrade(ctx context.Context, view *domain.View) error

	// WithTx returns a ViewStore bound to the given transaction.
	WithTx(tx *sql.Tx) ViewStore
}

// UserStore persists accounts.
type UserStore interface {
	// Create saves a new user. Returns ErrEmailExists if the email is
	// already in use.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by ID.
	// Returns ErrUserNotFound if the user does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// WithTx returns a UserStore bound to the given transaction.
	WithTx(tx *sql.Tx) UserStore
}
