package memory

import (
	"context"
	"sync"

	"ecom-warehouse/internal/domain"
	"ecom-warehouse/internal/storage"
)

// CheckResultStore is an in-memory implementation of storage.CheckResultStore.
// Results are append-only; insertion order is preserved.
type CheckResultStore struct {
	mu   sync.RWMutex
	data []*domain.CheckResult
}

// NewCheckResultStore creates a new in-memory check result store.
func NewCheckResultStore() *CheckResultStore {
	return &CheckResultStore{}
}

// InsertBulk appends check results atomically.
func (s *CheckResultStore) InsertBulk(_ context.Context, results []*domain.CheckResult) error {
	if len(results) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// First pass: validate before appending anything
	for _, r := range results {
		if r == nil || r.RunID == "" || r.Model == "" || r.CheckName == "" {
			return storage.ErrInvalidInput
		}
	}

	for _, r := range results {
		resultCopy := *r
		s.data = append(s.data, &resultCopy)
	}

	return nil
}

// GetByRunID retrieves all results for a run, in insertion order.
func (s *CheckResultStore) GetByRunID(_ context.Context, runID string) ([]*domain.CheckResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.CheckResult
	for _, r := range s.data {
		if r.RunID == runID {
			resultCopy := *r
			result = append(result, &resultCopy)
		}
	}

	return result, nil
}

// GetFailures retrieves failing results for a run, in insertion order.
func (s *CheckResultStore) GetFailures(_ context.Context, runID string) ([]*domain.CheckResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.CheckResult
	for _, r := range s.data {
		if r.RunID == runID && !r.Passed {
			resultCopy := *r
			result = append(result, &resultCopy)
		}
	}

	return result, nil
}

var _ storage.CheckResultStore = (*CheckResultStore)(nil)
