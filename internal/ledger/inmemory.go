package ledger

import (
	"context"
	"sort"
	"sync"
)

type inMemoryStore struct {
	mu      sync.RWMutex
	byOwner map[string][]Entry
}

// NewInMemory creates a concurrency-safe in-memory store useful for unit tests
// and local runs.
func NewInMemory() Store {
	return &inMemoryStore{byOwner: make(map[string][]Entry)}
}

func (s *inMemoryStore) Add(_ context.Context, entry Entry) error {
	if entry.OwnerID == "" {
		return ErrUnknownOwner
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byOwner[entry.OwnerID] = append(s.byOwner[entry.OwnerID], entry)
	return nil
}

func (s *inMemoryStore) ListByOwner(_ context.Context, ownerID string) ([]Entry, error) {
	s.mu.RLock()
	out := make([]Entry, len(s.byOwner[ownerID]))
	copy(out, s.byOwner[ownerID])
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool { return newestFirst(out[i], out[j]) })
	return out, nil
}
