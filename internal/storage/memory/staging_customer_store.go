package memory

import (
	"context"
	"sort"
	"sync"

	"ecom-warehouse/internal/domain"
	"ecom-warehouse/internal/storage"
)

// StagingCustomerStore is an in-memory implementation of storage.StagingCustomerStore.
type StagingCustomerStore struct {
	mu   sync.RWMutex
	data map[string]*domain.StagingCustomer // keyed by customer_id
}

// NewStagingCustomerStore creates a new in-memory staging customer store.
func NewStagingCustomerStore() *StagingCustomerStore {
	return &StagingCustomerStore{
		data: make(map[string]*domain.StagingCustomer),
	}
}

// Replace truncates the table and inserts the batch. All or nothing.
func (s *StagingCustomerStore) Replace(_ context.Context, rows []*domain.StagingCustomer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// First pass: validate before touching existing data
	next := make(map[string]*domain.StagingCustomer, len(rows))
	for _, r := range rows {
		if r == nil || r.CustomerID == "" {
			return storage.ErrInvalidInput
		}
		if _, exists := next[r.CustomerID]; exists {
			return storage.ErrDuplicateKey
		}
		rowCopy := *r
		next[r.CustomerID] = &rowCopy
	}

	s.data = next
	return nil
}

// GetAll retrieves all rows ordered by customer_id ASC.
func (s *StagingCustomerStore) GetAll(_ context.Context) ([]*domain.StagingCustomer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.StagingCustomer, 0, len(s.data))
	for _, r := range s.data {
		rowCopy := *r
		result = append(result, &rowCopy)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CustomerID < result[j].CustomerID
	})

	return result, nil
}

// Count returns the number of rows.
func (s *StagingCustomerStore) Count(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return int64(len(s.data)), nil
}

// Verify interface compliance at compile time.
var _ storage.StagingCustomerStore = (*StagingCustomerStore)(nil)
