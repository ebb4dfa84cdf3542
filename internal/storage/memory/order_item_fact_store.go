package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"ecom-warehouse/internal/domain"
	"ecom-warehouse/internal/storage"
)

// OrderItemFactStore is an in-memory implementation of
// storage.OrderItemFactStore.
type OrderItemFactStore struct {
	mu        sync.RWMutex
	data      map[string]*domain.OrderItemFact // keyed by order_item_id
	watermark *time.Time
}

// NewOrderItemFactStore creates a new in-memory order item fact store.
func NewOrderItemFactStore() *OrderItemFactStore {
	return &OrderItemFactStore{
		data: make(map[string]*domain.OrderItemFact),
	}
}

// Watermark returns the committed watermark for the fact.
// Returns ErrNotFound before the first successful merge.
func (s *OrderItemFactStore) Watermark(_ context.Context) (time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.watermark == nil {
		return time.Time{}, storage.ErrNotFound
	}
	return *s.watermark, nil
}

// Merge applies the batch with the same semantics as OrderFactStore.Merge.
func (s *OrderItemFactStore) Merge(_ context.Context, rows []*domain.OrderItemFact, highWater time.Time) (storage.MergeStats, error) {
	if len(rows) == 0 {
		return storage.MergeStats{}, nil
	}
	if highWater.IsZero() {
		return storage.MergeStats{}, storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[string]struct{}, len(rows))
	for _, r := range rows {
		if r == nil || r.OrderItemID == "" || r.OrderDate.IsZero() {
			return storage.MergeStats{}, storage.ErrInvalidInput
		}
		if _, exists := batchKeys[r.OrderItemID]; exists {
			return storage.MergeStats{}, storage.ErrDuplicateKey
		}
		batchKeys[r.OrderItemID] = struct{}{}
	}

	var stats storage.MergeStats
	for _, r := range rows {
		existing, exists := s.data[r.OrderItemID]
		switch {
		case !exists:
			rowCopy := *r
			s.data[r.OrderItemID] = &rowCopy
			stats.Inserted++
		case r.OrderDate.After(existing.OrderDate):
			rowCopy := *r
			s.data[r.OrderItemID] = &rowCopy
			stats.Updated++
		default:
			stats.Skipped++
		}
	}

	if s.watermark == nil || highWater.After(*s.watermark) {
		mark := highWater
		s.watermark = &mark
	}

	return stats, nil
}

// GetByOrderItemID retrieves a fact row. Returns ErrNotFound if not exists.
func (s *OrderItemFactStore) GetByOrderItemID(_ context.Context, orderItemID string) (*domain.OrderItemFact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, exists := s.data[orderItemID]
	if !exists {
		return nil, storage.ErrNotFound
	}

	rowCopy := *r
	return &rowCopy, nil
}

// GetAll retrieves all rows ordered by order_item_id ASC.
func (s *OrderItemFactStore) GetAll(_ context.Context) ([]*domain.OrderItemFact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.OrderItemFact, 0, len(s.data))
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
func (s *OrderItemFactStore) Count(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return int64(len(s.data)), nil
}

// Reset removes all rows and the watermark. Used by full refresh only.
func (s *OrderItemFactStore) Reset(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = make(map[string]*domain.OrderItemFact)
	s.watermark = nil
	return nil
}

var _ storage.OrderItemFactStore = (*OrderItemFactStore)(nil)
