package memory

import (
	"context"
	"sort"
	"sync"

	"sales-kpi-lab/internal/domain"
	"sales-kpi-lab/internal/storage"
)

// RankingRunStore is an in-memory implementation of storage.RankingRunStore.
type RankingRunStore struct {
	mu   sync.RWMutex
	data map[string]*domain.RankingRun // keyed by run_id
}

// NewRankingRunStore creates a new in-memory ranking run store.
func NewRankingRunStore() *RankingRunStore {
	return &RankingRunStore{
		data: make(map[string]*domain.RankingRun),
	}
}

// Insert adds a new run. Returns ErrDuplicateKey if run_id exists.
func (s *RankingRunStore) Insert(_ context.Context, r *domain.RankingRun) error {
	if r == nil || r.RunID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[r.RunID]; exists {
		return storage.ErrDuplicateKey
	}

	s.data[r.RunID] = copyRun(r)
	return nil
}

// GetByRunID retrieves a run by its ID. Returns ErrNotFound if not exists.
func (s *RankingRunStore) GetByRunID(_ context.Context, runID string) (*domain.RankingRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, exists := s.data[runID]
	if !exists {
		return nil, storage.ErrNotFound
	}

	return copyRun(r), nil
}

// GetAll retrieves all runs, ordered by generated_at ASC, run_id ASC.
func (s *RankingRunStore) GetAll(_ context.Context) ([]*domain.RankingRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.RankingRun, 0, len(s.data))
	for _, r := range s.data {
		result = append(result, copyRun(r))
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].GeneratedAt != result[j].GeneratedAt {
			return result[i].GeneratedAt < result[j].GeneratedAt
		}
		return result[i].RunID < result[j].RunID
	})

	return result, nil
}

// copyRun deep-copies a run so callers cannot mutate stored state.
func copyRun(r *domain.RankingRun) *domain.RankingRun {
	cp := *r
	cp.Periods = append([]int(nil), r.Periods...)
	cp.Rows = make([]*domain.TopNRow, len(r.Rows))
	for i, row := range r.Rows {
		rowCp := *row
		cp.Rows[i] = &rowCp
	}
	return &cp
}

var _ storage.RankingRunStore = (*RankingRunStore)(nil)
