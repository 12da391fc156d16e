package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/lernkarte/lernkarte/internal/domain"
	"github.com/lernkarte/lernkarte/internal/store"
)

// CardStore implements store.CardStore on PostgreSQL.
type CardStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewCardStore creates a PostgreSQL card store. The db handle is managed
// by the caller.
func NewCardStore(db store.DBTX, logger *slog.Logger) *CardStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CardStore{
		db:     db,
		logger: logger.With(slog.String("component", "card_store")),
	}
}

var _ store.CardStore = (*CardStore)(nil)

const cardColumns = `id, user_id, front, back, stability, difficulty,
	last_review_at, due_at, lapse_streak, leech, image_ref, created_at, updated_at`

// Create implements store.CardStore.Create.
func (s *CardStore) Create(ctx context.Context, card *domain.Card) error {
	if err := card.Validate(); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO cards (`+cardColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		card.ID, card.UserID, card.Front, card.Back,
		card.Stability, card.Difficulty, card.LastReviewAt, card.DueAt,
		card.LapseStreak, card.Leech, card.ImageRef, card.CreatedAt, card.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrDuplicate
		}
		return fmt.Errorf("failed to create card: %w", err)
	}
	return nil
}

// GetByID implements store.CardStore.GetByID.
func (s *CardStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Card, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+cardColumns+` FROM cards WHERE id = $1`, id)

	card, err := scanCard(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrCardNotFound
		}
		return nil, fmt.Errorf("failed to get card: %w", err)
	}
	return card, nil
}

// GetDueCards implements store.CardStore.GetDueCards. Cards are ordered
// by ascending due-at, tie-broken by creation order.
func (s *CardStore) GetDueCards(
	ctx context.Context,
	userID uuid.UUID,
	horizon time.Time,
	limit int,
) ([]*domain.Card, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+cardColumns+` FROM cards
		WHERE user_id = $1 AND due_at < $2
		ORDER BY due_at ASC, created_at ASC, id ASC
		LIMIT $3`,
		userID, horizon, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query due cards: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			s.logger.Error("failed to close rows", "error", closeErr)
		}
	}()

	var cards []*domain.Card
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan card: %w", err)
		}
		cards = append(cards, card)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate due cards: %w", err)
	}
	return cards, nil
}

// UpdateScheduling implements store.CardStore.UpdateScheduling.
func (s *CardStore) UpdateScheduling(ctx context.Context, card *domain.Card) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE cards
		SET stability = $2, difficulty = $3, last_review_at = $4, due_at = $5,
		    lapse_streak = $6, leech = $7, updated_at = $8
		WHERE id = $1`,
		card.ID, card.Stability, card.Difficulty, card.LastReviewAt,
		card.DueAt, card.LapseStreak, card.Leech, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to update card scheduling: %w", err)
	}
	return requireRow(res, store.ErrCardNotFound)
}

// SetImageRef implements store.CardStore.SetImageRef.
func (s *CardStore) SetImageRef(ctx context.Context, cardID uuid.UUID, ref string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE cards SET image_ref = $2, updated_at = $3 WHERE id = $1`,
		cardID, ref, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to set card image: %w", err)
	}
	return requireRow(res, store.ErrCardNotFound)
}

// CountNewStudied implements store.CardStore.CountNewStudied. A card was
// studied for the first time when its earliest graded view started after
// the cutoff.
func (s *CardStore) CountNewStudied(
	ctx context.Context,
	userID uuid.UUID,
	since time.Time,
) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM (
			SELECT v.card_id
			FROM views v
			JOIN cards c ON c.id = v.card_id
			WHERE c.user_id = $1 AND v.graded
			GROUP BY v.card_id
			HAVING MIN(v.started_at) > $2
		) first_studied`,
		userID, since).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count new cards studied: %w", err)
	}
	return count, nil
}

// WithTx implements store.CardStore.WithTx.
func (s *CardStore) WithTx(tx *sql.Tx) store.CardStore {
	return &CardStore{db: tx, logger: s.logger}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCard(row rowScanner) (*domain.Card, error) {
	var card domain.Card
	err := row.Scan(
		&card.ID, &card.UserID, &card.Front, &card.Back,
		&card.Stability, &card.Difficulty, &card.LastReviewAt, &card.DueAt,
		&card.LapseStreak, &card.Leech, &card.ImageRef,
		&card.CreatedAt, &card.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &card, nil
}

func requireRow(res sql.Result, missing error) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return missing
	}
	return nil
}
