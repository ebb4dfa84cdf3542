package memory

import (
	"context"
	"sort"
	"sync"

	"ecom-warehouse/internal/domain"
	"ecom-warehouse/internal/storage"
)

// CustomerDimensionStore is an in-memory implementation of
// storage.CustomerDimensionStore. Versions live in insertion order, which is
// also surrogate key order; the open map tracks the single current version
// per natural key.
type CustomerDimensionStore struct {
	mu       sync.RWMutex
	versions []*domain.CustomerVersion
	open     map[string]int // customer_id -> index of the open version
	nextKey  int64
}

// NewCustomerDimensionStore creates a new in-memory customer dimension store.
func NewCustomerDimensionStore() *CustomerDimensionStore {
	return &CustomerDimensionStore{
		open:    make(map[string]int),
		nextKey: 1,
	}
}

// Insert adds the first version for a natural key and returns the assigned
// surrogate key. Returns ErrDuplicateKey if an open version already exists.
func (s *CustomerDimensionStore) Insert(_ context.Context, v *domain.CustomerVersion) (int64, error) {
	if v == nil || v.CustomerID == "" || v.AttrHash == "" || v.ValidFrom.IsZero() {
		return 0, storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.open[v.CustomerID]; exists {
		return 0, storage.ErrDuplicateKey
	}

	return s.append(v), nil
}

// Supersede closes the open version for next's natural key and inserts next
// as the new open version, atomically. Returns ErrNotFound if no open
// version exists, ErrInvalidInput if next's validity would precede it.
func (s *CustomerDimensionStore) Supersede(_ context.Context, next *domain.CustomerVersion) (int64, error) {
	if next == nil || next.CustomerID == "" || next.AttrHash == "" || next.ValidFrom.IsZero() {
		return 0, storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx, exists := s.open[next.CustomerID]
	if !exists {
		return 0, storage.ErrNotFound
	}

	old := s.versions[idx]
	if next.ValidFrom.Before(old.ValidFrom) {
		return 0, storage.ErrInvalidInput
	}

	closedAt := next.ValidFrom
	old.ValidTo = &closedAt
	old.IsCurrent = false

	return s.append(next), nil
}

// append stores a copy of v as the open version for its natural key and
// assigns the next surrogate key. Caller holds the write lock.
func (s *CustomerDimensionStore) append(v *domain.CustomerVersion) int64 {
	versionCopy := *v
	versionCopy.SurrogateKey = s.nextKey
	versionCopy.ValidTo = nil
	versionCopy.IsCurrent = true

	s.nextKey++
	s.versions = append(s.versions, &versionCopy)
	s.open[versionCopy.CustomerID] = len(s.versions) - 1

	return versionCopy.SurrogateKey
}

// GetCurrent retrieves the open version for a natural key.
// Returns ErrNotFound if none exists.
func (s *CustomerDimensionStore) GetCurrent(_ context.Context, customerID string) (*domain.CustomerVersion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx, exists := s.open[customerID]
	if !exists {
		return nil, storage.ErrNotFound
	}

	versionCopy := *s.versions[idx]
	return &versionCopy, nil
}

// GetAllCurrent retrieves all open versions ordered by customer_id ASC.
func (s *CustomerDimensionStore) GetAllCurrent(_ context.Context) ([]*domain.CustomerVersion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.CustomerVersion, 0, len(s.open))
	for _, idx := range s.open {
		versionCopy := *s.versions[idx]
		result = append(result, &versionCopy)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CustomerID < result[j].CustomerID
	})

	return result, nil
}

// GetHistory retrieves all versions for a natural key, oldest first.
func (s *CustomerDimensionStore) GetHistory(_ context.Context, customerID string) ([]*domain.CustomerVersion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.CustomerVersion
	for _, v := range s.versions {
		if v.CustomerID == customerID {
			versionCopy := *v
			result = append(result, &versionCopy)
		}
	}

	return result, nil
}

// GetAll retrieves every version ordered by surrogate key ASC.
func (s *CustomerDimensionStore) GetAll(_ context.Context) ([]*domain.CustomerVersion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.CustomerVersion, 0, len(s.versions))
	for _, v := range s.versions {
		versionCopy := *v
		result = append(result, &versionCopy)
	}

	return result, nil
}

// Verify interface compliance at compile time.
var _ storage.CustomerDimensionStore = (*CustomerDimensionStore)(nil)
