package suppression

import (
	"context"
	"sync"

	"wxrmessenger/internal/types"
)

// MemoryStore is a process-local Store for APP_ENV=local and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]types.SuppressionRecord
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]types.SuppressionRecord)}
}

func (s *MemoryStore) Get(_ context.Context, email string) (*types.SuppressionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[email]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (s *MemoryStore) Put(_ context.Context, rec types.SuppressionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.EmailAddress] = rec
	return nil
}

var _ Store = (*MemoryStore)(nil)
