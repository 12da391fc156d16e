package mocks

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lernkarte/lernkarte/internal/domain"
	"github.com/lernkarte/lernkarte/internal/store"
)

// MockCardStore implements store.CardStore in memory.
type MockCardStore struct {
	// Function fields for customizable behavior
	CreateFn           func(ctx context.Context, card *domain.Card) error
	GetByIDFn          func(ctx context.Context, id uuid.UUID) (*domain.Card, error)
	GetDueCardsFn      func(ctx context.Context, userID uuid.UUID, horizon time.Time, limit int) ([]*domain.Card, error)
	UpdateSchedulingFn func(ctx context.Context, card *domain.Card) error
	SetImageRefFn      func(ctx context.Context, cardID uuid.UUID, ref string) error
	CountNewStudiedFn  func(ctx context.Context, userID uuid.UUID, since time.Time) (int, error)

	mu    sync.Mutex
	Cards map[uuid.UUID]*domain.Card

	// NewStudied is the count CountNewStudied reports by default.
	NewStudied int
}

// NewMockCardStore creates an empty in-memory card store.
func NewMockCardStore() *MockCardStore {
	return &MockCardStore{Cards: make(map[uuid.UUID]*domain.Card)}
}

var _ store.CardStore = (*MockCardStore)(nil)

// Create implements the CardStore interface.
func (m *MockCardStore) Create(ctx context.Context, card *domain.Card) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, card)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.Cards[card.ID]; exists {
		return store.ErrDuplicate
	}
	copied := *card
	m.Cards[card.ID] = &copied
	return nil
}

// GetByID implements the CardStore interface.
func (m *MockCardStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Card, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	card, exists := m.Cards[id]
	if !exists {
		return nil, store.ErrCardNotFound
	}
	copied := *card
	return &copied, nil
}

// GetDueCards implements the CardStore interface, replicating the query
// ordering: ascending due-at, creation time, then id.
func (m *MockCardStore) GetDueCards(ctx context.Context, userID uuid.UUID, horizon time.Time, limit int) ([]*domain.Card, error) {
	if m.GetDueCardsFn != nil {
		return m.GetDueCardsFn(ctx, userID, horizon, limit)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	var due []*domain.Card
	for _, card := range m.Cards {
		if card.UserID == userID && card.DueAt.Before(horizon) {
			copied := *card
			due = append(due, &copied)
		}
	}
	sort.Slice(due, func(i, j int) bool {
		if !due[i].DueAt.Equal(due[j].DueAt) {
			return due[i].DueAt.Before(due[j].DueAt)
		}
		if !due[i].CreatedAt.Equal(due[j].CreatedAt) {
			return due[i].CreatedAt.Before(due[j].CreatedAt)
		}
		return due[i].ID.String() < due[j].ID.String()
	})
	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}
	return due, nil
}

// UpdateScheduling implements the CardStore interface.
func (m *MockCardStore) UpdateScheduling(ctx context.Context, card *domain.Card) error {
	if m.UpdateSchedulingFn != nil {
		return m.UpdateSchedulingFn(ctx, card)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.Cards[card.ID]; !exists {
		return store.ErrCardNotFound
	}
	copied := *card
	m.Cards[card.ID] = &copied
	return nil
}

// SetImageRef implements the CardStore interface.
func (m *MockCardStore) SetImageRef(ctx context.Context, cardID uuid.UUID, ref string) error {
	if m.SetImageRefFn != nil {
		return m.SetImageRefFn(ctx, cardID, ref)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	card, exists := m.Cards[cardID]
	if !exists {
		return store.ErrCardNotFound
	}
	card.ImageRef = &ref
	return nil
}

// CountNewStudied implements the CardStore interface.
func (m *MockCardStore) CountNewStudied(ctx context.Context, userID uuid.UUID, since time.Time) (int, error) {
	if m.CountNewStudiedFn != nil {
		return m.CountNewStudiedFn(ctx, userID, since)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.NewStudied, nil
}

// WithTx implements the CardStore interface; the mock has no transaction
// boundary, so it returns itself.
func (m *MockCardStore) WithTx(tx *sql.Tx) store.CardStore {
	return m
}
