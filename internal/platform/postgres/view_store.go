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

// ViewStore implements store.ViewStore on PostgreSQL.
type ViewStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewViewStore creates a PostgreSQL view store.
func NewViewStore(db store.DBTX, logger *slog.Logger) *ViewStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ViewStore{
		db:     db,
		logger: logger.With(slog.String("component", "view_store")),
	}
}

var _ store.ViewStore = (*ViewStore)(nil)

const viewColumns = `id, card_id, user_id, started_at, finished_at,
	stability, difficulty, due_at, grade, graded`

// Create implements store.ViewStore.Create. A user abandons any open view
// by starting a new one; the delete and insert share the statement's
// transaction so the one-open-view invariant holds.
func (v *ViewStore) Create(ctx context.Context, view *domain.View) error {
	if err := view.Validate(); err != nil {
		return err
	}

	if _, err := v.db.ExecContext(ctx, `
		DELETE FROM views WHERE user_id = $1 AND NOT graded`,
		view.UserID); err != nil {
		return fmt.Errorf("failed to supersede open view: %w", err)
	}

	_, err := v.db.ExecContext(ctx, `
		INSERT INTO views (`+viewColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		view.ID, view.CardID, view.UserID, view.StartedAt, view.FinishedAt,
		view.Stability, view.Difficulty, nullableTime(view.DueAt),
		nullableGrade(view.Grade), view.Graded,
	)
	if err != nil {
		return fmt.Errorf("failed to create view: %w", err)
	}
	return nil
}

// GetByID implements store.ViewStore.GetByID.
func (v *ViewStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.View, error) {
	row := v.db.QueryRowContext(ctx, `
		SELECT `+viewColumns+` FROM views WHERE id = $1`, id)

	var view domain.View
	var grade sql.NullString
	var dueAt sql.NullTime
	err := row.Scan(
		&view.ID, &view.CardID, &view.UserID, &view.StartedAt, &view.FinishedAt,
		&view.Stability, &view.Difficulty, &dueAt, &grade, &view.Graded,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrViewNotFound
		}
		return nil, fmt.Errorf("failed to get view: %w", err)
	}
	if grade.Valid {
		view.Grade = domain.Grade(grade.String)
	}
	if dueAt.Valid {
		view.DueAt = dueAt.Time
	}
	return &view, nil
}

// RecordGrade implements store.ViewStore.RecordGrade. The graded flag
// transition is a conditional write: the update matches only the ungraded
// row, so a duplicated or replayed grade cannot double-apply.
func (v *ViewStore) RecordGrade(ctx context.Context, view *domain.View) error {
	res, err := v.db.ExecContext(ctx, `
		UPDATE views
		SET finished_at = $2, stability = $3, difficulty = $4, due_at = $5,
		    grade = $6, graded = TRUE
		WHERE id = $1 AND NOT graded`,
		view.ID, view.FinishedAt, view.Stability, view.Difficulty,
		view.DueAt, string(view.Grade),
	)
	if err != nil {
		return fmt.Errorf("failed to record grade: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		// Distinguish a missing view from a lost race on the graded flag.
		var graded bool
		err := v.db.QueryRowContext(ctx,
			`SELECT graded FROM views WHERE id = $1`, view.ID).Scan(&graded)
		if errors.Is(err, sql.ErrNoRows) {
			return store.ErrViewNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to check view state: %w", err)
		}
		return store.ErrAlreadyGraded
	}
	return nil
}

// WithTx implements store.ViewStore.WithTx.
func (v *ViewStore) WithTx(tx *sql.Tx) store.ViewStore {
	return &ViewStore{db: tx, logger: v.logger}
}

func nullableGrade(g domain.Grade) any {
	if g == "" {
		return nil
	}
	return string(g)
}

func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
