package memory

import (
	"context"
	"sort"
	"sync"

	"ecom-warehouse/internal/domain"
	"ecom-warehouse/internal/storage"
)

// StagingOrderItemStore is an in-memory implementation of storage.StagingOrderItemStore.
type StagingOrderItemStore struct {
	mu   sync.RWMutex
	data map[string]*domain.StagingOrderItem // keyed by order_item_id
}

// NewStagingOrderItemStore creates a new in-memory staging order item store.
func NewStagingOrderItemStore() *StagingOrderItemStore {
	return &StagingOrderItemStore{
		data: make(map[string]*domain.StagingOrderItem),
	}
}

// Replace truncates the table and inserts the batch. All or nothing.
func (s *StagingOrderItemStore) Replace(_ context.Context, rows []*domain.StagingOrderItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make(map[string]*domain.StagingOrderItem, len(rows))
	for _, r := range rows {
		if r == nil || r.OrderItemID == "" {
			return storage.ErrInvalidInput
		}
		if _, exists := next[r.OrderItemID]; exists {
			return storage.ErrDuplicateKey
		}
		rowCopy := *r
		next[r.OrderItemID] = &rowCopy
	}

	s.data = next
	return nil
}

// GetAll retrieves all rows ordered by order_item_id ASC.
func (s *StagingOrderItemStore) GetAll(_ context.Context) ([]*domain.StagingOrderItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.StagingOrderItem, 0, len(s.data))
	for _, r := range s.data {
		rowCopy := *r
		result = append(result, &rowCopy)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].OrderItemID < result[j].OrderItemID
	})

	return result, nil
}

// Count returns the number of rows.
func (s *StagingOrderItemStore) Count(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return int64(len(s.data)), nil
}

var _ storage.StagingOrderItemStore = (*StagingOrderItemStore)(nil)
