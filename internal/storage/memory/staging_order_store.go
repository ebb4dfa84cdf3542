package memory

import (
	"context"
	"sort"
	"sync"

	"ecom-warehouse/internal/domain"
	"ecom-warehouse/internal/storage"
)

// StagingOrderStore is an in-memory implementation of storage.StagingOrderStore.
type StagingOrderStore struct {
	mu   sync.RWMutex
	data map[string]*domain.StagingOrder // keyed by order_id
}

// NewStagingOrderStore creates a new in-memory staging order store.
func NewStagingOrderStore() *StagingOrderStore {
	return &StagingOrderStore{
		data: make(map[string]*domain.StagingOrder),
	}
}

// Replace truncates the table and inserts the batch. All or nothing.
func (s *StagingOrderStore) Replace(_ context.Context, rows []*domain.StagingOrder) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make(map[string]*domain.StagingOrder, len(rows))
	for _, r := range rows {
		if r == nil || r.OrderID == "" {
			return storage.ErrInvalidInput
		}
		if _, exists := next[r.OrderID]; exists {
			return storage.ErrDuplicateKey
		}
		rowCopy := *r
		next[r.OrderID] = &rowCopy
	}

	s.data = next
	return nil
}

// GetAll retrieves all rows ordered by order_id ASC.
func (s *StagingOrderStore) GetAll(_ context.Context) ([]*domain.StagingOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.StagingOrder, 0, len(s.data))
	for _, r := range s.data {
		rowCopy := *r
		result = append(result, &rowCopy)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].OrderID < result[j].OrderID
	})

	return result, nil
}

// Count returns the number of rows.
func (s *StagingOrderStore) Count(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return int64(len(s.data)), nil
}

var _ storage.StagingOrderStore = (*StagingOrderStore)(nil)
