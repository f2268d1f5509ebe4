package ledger

import (
	"context"
	"sync"

	"github.com/quikeats/Vouchy/internal/domain"
)

// MemoryStore is an in-process LedgerStore. Used by tests and as a scratch
// backend; nothing survives a restart.
type MemoryStore struct {
	mu     sync.Mutex
	totals map[string]int64
}

var _ domain.LedgerStore = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{totals: make(map[string]int64)}
}

func (s *MemoryStore) Load(_ context.Context) (map[string]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]int64, len(s.totals))
	for k, v := range s.totals {
		out[k] = v
	}
	return out, nil
}

func (s *MemoryStore) Save(_ context.Context, totals map[string]int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.totals = make(map[string]int64, len(totals))
	for k, v := range totals {
		s.totals[k] = v
	}
	return nil
}

func (s *MemoryStore) Close() error { return nil }
