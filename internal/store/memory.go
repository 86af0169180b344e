package store

import (
	"context"
	"fmt"
	"sync"
)

// MemoryStore keeps records in process memory. History is lost on restart.
type MemoryStore struct {
	mu     sync.RWMutex
	byID   map[string]Record
	byUser map[string][]string // record IDs in insertion order
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:   make(map[string]Record),
		byUser: make(map[string][]string),
	}
}

// Save implements Store.
func (m *MemoryStore) Save(_ context.Context, r Record) error {
	if err := r.validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.byID[r.ID]; exists {
		return fmt.Errorf("%w: duplicate id %s", ErrInvalidRecord, r.ID)
	}
	m.byID[r.ID] = r
	m.byUser[r.UserID] = append(m.byUser[r.UserID], r.ID)
	return nil
}

// Get implements Store.
func (m *MemoryStore) Get(_ context.Context, id string) (Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.byID[id]
	if !ok {
		return Record{}, ErrNotFound
	}
	return r, nil
}

// List implements Store. Records with equal timestamps are returned in
// reverse insertion order.
func (m *MemoryStore) List(_ context.Context, userID string, limit int) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if limit <= 0 {
		return []Record{}, nil
	}

	ids := m.byUser[userID]
	out := make([]Record, 0, len(ids))
	for i := len(ids) - 1; i >= 0; i-- {
		out = append(out, m.byID[ids[i]])
	}
	sortNewestFirst(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	return nil
}
