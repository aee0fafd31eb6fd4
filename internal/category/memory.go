package category

import (
	"context"
	"sync"

	"github.com/finlens/backend/internal/model"
)

// MemoryStore is a process-local cache used when no database path is
// configured, and as the default in tests.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]model.Category
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]model.Category)}
}

func (s *MemoryStore) Get(_ context.Context, key string) (model.Category, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.entries[key]
	return c, ok, nil
}

func (s *MemoryStore) Put(_ context.Context, key string, category model.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = category
	return nil
}

func (s *MemoryStore) Len(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries), nil
}

func (s *MemoryStore) Close() error { return nil }
