package workflow

import (
	"context"
	"sort"
	"sync"
)

// MemStore is an in-memory RunStore for tests and database-less CLI use.
// Runs are stored by value, so callers never share mutable state with the
// store.
type MemStore struct {
	mu   sync.RWMutex
	runs map[string]Run
}

// NewMemStore creates an empty in-memory run store.
func NewMemStore() *MemStore {
	return &MemStore{runs: make(map[string]Run)}
}

func (s *MemStore) CreateRun(_ context.Context, run *Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[run.ID] = *run
	return nil
}

func (s *MemStore) GetRun(_ context.Context, id string) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, ok := s.runs[id]
	if !ok {
		return nil, &UnknownRunError{RunID: id}
	}
	return &run, nil
}

func (s *MemStore) UpdateRun(_ context.Context, run *Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.runs[run.ID]; !ok {
		return &UnknownRunError{RunID: run.ID}
	}
	s.runs[run.ID] = *run
	return nil
}

// ListRuns returns all runs, newest first.
func (s *MemStore) ListRuns(_ context.Context) ([]Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Run, 0, len(s.runs))
	for _, run := range s.runs {
		out = append(out, run)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
