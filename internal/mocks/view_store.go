package mocks

import (
	"context"
	"database/sql"
	"sync"

	"github.com/google/uuid"
	"github.com/lernkarte/lernkarte/internal/domain"
	"github.com/lernkarte/lernkarte/internal/store"
)

// MockViewStore implements store.ViewStore in memory.
type MockViewStore struct {
	// Function fields for customizable behavior
	CreateFn      func(ctx context.Context, view *domain.View) error
	GetByIDFn     func(ctx context.Context, id uuid.UUID) (*domain.View, error)
	RecordGradeFn func(ctx context.Context, view *domain.View) error

	mu    sync.Mutex
	Views map[uuid.UUID]*domain.View
}

// NewMockViewStore creates an empty in-memory view store.
func NewMockViewStore() *MockViewStore {
	return &MockViewStore{Views: make(map[uuid.UUID]*domain.View)}
}

var _ store.ViewStore = (*MockViewStore)(nil)

// Create implements the ViewStore interface, superseding any open view of
// the same user like the real store does.
func (m *MockViewStore) Create(ctx context.Context, view *domain.View) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, view)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, existing := range m.Views {
		if existing.UserID == view.UserID && !existing.Graded {
			delete(m.Views, id)
		}
	}
	copied := *view
	m.Views[view.ID] = &copied
	return nil
}

// GetByID implements the ViewStore interface.
func (m *MockViewStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.View, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	view, exists := m.Views[id]
	if !exists {
		return nil, store.ErrViewNotFound
	}
	copied := *view
	return &copied, nil
}

// RecordGrade implements the ViewStore interface with the same
// test-and-set semantics as the real store.
func (m *MockViewStore) RecordGrade(ctx context.Context, view *domain.View) error {
	if m.RecordGradeFn != nil {
		return m.RecordGradeFn(ctx, view)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, exists := m.Views[view.ID]
	if !exists {
		return store.ErrViewNotFound
	}
	if existing.Graded {
		return store.ErrAlreadyGraded
	}
	copied := *view
	m.Views[view.ID] = &copied
	return nil
}

// WithTx implements the ViewStore interface; the mock has no transaction
// boundary, so it returns itself.
func (m *MockViewStore) WithTx(tx *sql.Tx) store.ViewStore {
	return m
}
