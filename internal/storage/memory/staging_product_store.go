package memory

import (
	"context"
	"sort"
	"sync"

	"ecom-warehouse/internal/domain"
	"ecom-warehouse/internal/storage"
)

// StagingProductStore is an in-memory implementation of storage.StagingProductStore.
type StagingProductStore struct {
	mu   sync.RWMutex
	data map[string]*domain.StagingProduct // keyed by product_id
}

// NewStagingProductStore creates a new in-memory staging product store.
func NewStagingProductStore() *StagingProductStore {
	return &StagingProductStore{
		data: make(map[string]*domain.StagingProduct),
	}
}

// Replace truncates the table and inserts the batch. All or nothing.
func (s *StagingProductStore) Replace(_ context.Context, rows []*domain.StagingProduct) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make(map[string]*domain.StagingProduct, len(rows))
	for _, r := range rows {
		if r == nil || r.ProductID == "" {
			return storage.ErrInvalidInput
		}
		if _, exists := next[r.ProductID]; exists {
			return storage.ErrDuplicateKey
		}
		rowCopy := *r
		next[r.ProductID] = &rowCopy
	}

	s.data = next
	return nil
}

// GetAll retrieves all rows ordered by product_id ASC.
func (s *StagingProductStore) GetAll(_ context.Context) ([]*domain.StagingProduct, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.StagingProduct, 0, len(s.data))
	for _, r := range s.data {
		rowCopy := *r
		result = append(result, &rowCopy)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ProductID < result[j].ProductID
	})

	return result, nil
}

// Count returns the number of rows.
func (s *StagingProductStore) Count(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return int64(len(s.data)), nil
}

var _ storage.StagingProductStore = (*StagingProductStore)(nil)
