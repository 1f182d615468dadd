package store

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore keeps plans in process memory. Used by tests and by the
// API server when no MongoDB is configured.
type MemoryStore struct {
	mu    sync.RWMutex
	plans map[uuid.UUID]*StoredPlan
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{plans: make(map[uuid.UUID]*StoredPlan)}
}

// Insert persists a plan record.
func (s *MemoryStore) Insert(ctx context.Context, p *StoredPlan) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plans[p.ID] = p
	return nil
}

// Get retrieves a plan by id.
func (s *MemoryStore) Get(ctx context.Context, id uuid.UUID) (*StoredPlan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.plans[id], nil
}

// List returns the most recent records, newest first.
func (s *MemoryStore) List(ctx context.Context, limit int) ([]*StoredPlan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*StoredPlan, 0, len(s.plans))
	for _, p := range s.plans {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Close does nothing for the memory store.
func (s *MemoryStore) Close(ctx context.Context) error { return nil }

var _ Store = (*MemoryStore)(nil)
