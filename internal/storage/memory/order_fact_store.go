package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"ecom-warehouse/internal/domain"
	"ecom-warehouse/internal/storage"
)

// OrderFactStore is an in-memory implementation of storage.OrderFactStore.
// The watermark lives next to the rows so a merge and its watermark advance
// are a single operation, matching the transactional SQL backends.
type OrderFactStore struct {
	mu        sync.RWMutex
	data      map[string]*domain.OrderFact // keyed by order_id
	watermark *time.Time
}

// NewOrderFactStore creates a new in-memory order fact store.
func NewOrderFactStore() *OrderFactStore {
	return &OrderFactStore{
		data: make(map[string]*domain.OrderFact),
	}
}

// Watermark returns the committed watermark for the fact.
// Returns ErrNotFound before the first successful merge.
func (s *OrderFactStore) Watermark(_ context.Context) (time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.watermark == nil {
		return time.Time{}, storage.ErrNotFound
	}
	return *s.watermark, nil
}

// Merge applies the batch all-or-nothing. New natural keys are inserted,
// existing keys are updated only when the incoming row's watermark is
// strictly newer than the stored one, and the fact watermark advances to
// highWater. An empty batch changes nothing.
func (s *OrderFactStore) Merge(_ context.Context, rows []*domain.OrderFact, highWater time.Time) (storage.MergeStats, error) {
	if len(rows) == 0 {
		return storage.MergeStats{}, nil
	}
	if highWater.IsZero() {
		return storage.MergeStats{}, storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// First pass: validate the whole batch before any write
	batchKeys := make(map[string]struct{}, len(rows))
	for _, r := range rows {
		if r == nil || r.OrderID == "" || r.OrderDate.IsZero() {
			return storage.MergeStats{}, storage.ErrInvalidInput
		}
		if _, exists := batchKeys[r.OrderID]; exists {
			return storage.MergeStats{}, storage.ErrDuplicateKey
		}
		batchKeys[r.OrderID] = struct{}{}
	}

	// Second pass: apply
	var stats storage.MergeStats
	for _, r := range rows {
		existing, exists := s.data[r.OrderID]
		switch {
		case !exists:
			rowCopy := *r
			s.data[r.OrderID] = &rowCopy
			stats.Inserted++
		case r.OrderDate.After(existing.OrderDate):
			rowCopy := *r
			s.data[r.OrderID] = &rowCopy
			stats.Updated++
		default:
			stats.Skipped++
		}
	}

	// Watermarks never regress
	if s.watermark == nil || highWater.After(*s.watermark) {
		mark := highWater
		s.watermark = &mark
	}

	return stats, nil
}

// GetByOrderID retrieves a fact row. Returns ErrNotFound if not exists.
func (s *OrderFactStore) GetByOrderID(_ context.Context, orderID string) (*domain.OrderFact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, exists := s.data[orderID]
	if !exists {
		return nil, storage.ErrNotFound
	}

	rowCopy := *r
	return &rowCopy, nil
}

// GetAll retrieves all rows ordered by order_id ASC.
func (s *OrderFactStore) GetAll(_ context.Context) ([]*domain.OrderFact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.OrderFact, 0, len(s.data))
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
func (s *OrderFactStore) Count(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return int64(len(s.data)), nil
}

// Reset removes all rows and the watermark. Used by full refresh only.
func (s *OrderFactStore) Reset(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = make(map[string]*domain.OrderFact)
	s.watermark = nil
	return nil
}

// Verify interface compliance at compile time.
var _ storage.OrderFactStore = (*OrderFactStore)(nil)
