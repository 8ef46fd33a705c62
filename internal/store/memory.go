package store

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore keeps runs in process memory. Safe for concurrent use.
type MemoryStore struct {
	mu    sync.RWMutex
	runs  map[uuid.UUID]Run
	order []uuid.UUID // insertion order, oldest first
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{runs: make(map[uuid.UUID]Run)}
}

// Save implements RunStore. Saving an existing ID replaces it.
func (s *MemoryStore) Save(_ context.Context, run Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.runs[run.ID]; !exists {
		s.order = append(s.order, run.ID)
	}
	s.runs[run.ID] = cloneRun(run)
	return nil
}

// Get implements RunStore.
func (s *MemoryStore) Get(_ context.Context, id uuid.UUID) (Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[id]
	if !ok {
		return Run{}, ErrRunNotFound
	}
	return cloneRun(run), nil
}

// List implements RunStore.
func (s *MemoryStore) List(_ context.Context, limit int) ([]Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	limit = normalizeLimit(limit)
	result := make([]Run, 0, min(limit, len(s.order)))
	for i := len(s.order) - 1; i >= 0 && len(result) < limit; i-- {
		result = append(result, cloneRun(s.runs[s.order[i]]))
	}
	return result, nil
}

func cloneRun(r Run) Run {
	r.Errors = slices.Clone(r.Errors)
	r.Warnings = slices.Clone(r.Warnings)
	return r
}
