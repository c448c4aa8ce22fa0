// Package memory implements an in-memory RunStore, used directly in tests
// and embedded by the durable drivers for their working state.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"psephos/pkg/domain"
)

// Store implements domain.RunStore backed by process memory.
type Store struct {
	mu   sync.RWMutex
	runs map[string]domain.RunRecord
}

// NewStore returns an empty in-memory run store.
func NewStore() *Store {
	return &Store{runs: make(map[string]domain.RunRecord)}
}

// SaveRun stores a new immutable run record.
func (s *Store) SaveRun(_ context.Context, rec domain.RunRecord) error {
	if rec.ID == "" {
		return fmt.Errorf("run id required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.runs[rec.ID]; exists {
		return fmt.Errorf("run %s already exists", rec.ID)
	}
	s.runs[rec.ID] = rec
	return nil
}

// GetRun returns the record with the given ID when present.
func (s *Store) GetRun(_ context.Context, id string) (domain.RunRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.runs[id]
	return rec, ok, nil
}

// ListRuns returns all records ordered by creation time ascending.
func (s *Store) ListRuns(_ context.Context) ([]domain.RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	recs := make([]domain.RunRecord, 0, len(s.runs))
	for _, rec := range s.runs {
		recs = append(recs, rec)
	}
	sort.Slice(recs, func(i, j int) bool {
		if recs[i].CreatedAt.Equal(recs[j].CreatedAt) {
			return recs[i].ID < recs[j].ID
		}
		return recs[i].CreatedAt.Before(recs[j].CreatedAt)
	})
	return recs, nil
}

// Close is a no-op for the in-memory store.
func (s *Store) Close() error { return nil }

// Import loads records into the store, replacing existing state. Durable
// drivers use it to hydrate from their backing tables at open.
func (s *Store) Import(recs []domain.RunRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs = make(map[string]domain.RunRecord, len(recs))
	for _, rec := range recs {
		s.runs[rec.ID] = rec
	}
}

var _ domain.RunStore = (*Store)(nil)
