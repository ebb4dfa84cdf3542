package memory

import (
	"context"
	"sort"
	"sync"

	"ecom-warehouse/internal/domain"
	"ecom-warehouse/internal/storage"
)

// ProductDimensionStore is an in-memory implementation of
// storage.ProductDimensionStore.
type ProductDimensionStore struct {
	mu       sync.RWMutex
	versions []*domain.ProductVersion
	open     map[string]int // product_id -> index of the open version
	nextKey  int64
}

// NewProductDimensionStore creates a new in-memory product dimension store.
func NewProductDimensionStore() *ProductDimensionStore {
	return &ProductDimensionStore{
		open:    make(map[string]int),
		nextKey: 1,
	}
}

// Insert adds the first version for a natural key and returns the assigned
// surrogate key. Returns ErrDuplicateKey if an open version already exists.
func (s *ProductDimensionStore) Insert(_ context.Context, v *domain.ProductVersion) (int64, error) {
	if v == nil || v.ProductID == "" || v.AttrHash == "" || v.ValidFrom.IsZero() {
		return 0, storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.open[v.ProductID]; exists {
		return 0, storage.ErrDuplicateKey
	}

	return s.append(v), nil
}

// Supersede closes the open version for next's natural key and inserts next
// as the new open version, atomically. Returns ErrNotFound if no open
// version exists, ErrInvalidInput if next's validity would precede it.
func (s *ProductDimensionStore) Supersede(_ context.Context, next *domain.ProductVersion) (int64, error) {
	if next == nil || next.ProductID == "" || next.AttrHash == "" || next.ValidFrom.IsZero() {
		return 0, storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx, exists := s.open[next.ProductID]
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
func (s *ProductDimensionStore) append(v *domain.ProductVersion) int64 {
	versionCopy := *v
	versionCopy.SurrogateKey = s.nextKey
	versionCopy.ValidTo = nil
	versionCopy.IsCurrent = true

	s.nextKey++
	s.versions = append(s.versions, &versionCopy)
	s.open[versionCopy.ProductID] = len(s.versions) - 1

	return versionCopy.SurrogateKey
}

// GetCurrent retrieves the open version for a natural key.
// Returns ErrNotFound if none exists.
func (s *ProductDimensionStore) GetCurrent(_ context.Context, productID string) (*domain.ProductVersion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx, exists := s.open[productID]
	if !exists {
		return nil, storage.ErrNotFound
	}

	versionCopy := *s.versions[idx]
	return &versionCopy, nil
}

// GetAllCurrent retrieves all open versions ordered by product_id ASC.
func (s *ProductDimensionStore) GetAllCurrent(_ context.Context) ([]*domain.ProductVersion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.ProductVersion, 0, len(s.open))
	for _, idx := range s.open {
		versionCopy := *s.versions[idx]
		result = append(result, &versionCopy)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ProductID < result[j].ProductID
	})

	return result, nil
}

// GetHistory retrieves all versions for a natural key, oldest first.
func (s *ProductDimensionStore) GetHistory(_ context.Context, productID string) ([]*domain.ProductVersion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.ProductVersion
	for _, v := range s.versions {
		if v.ProductID == productID {
			versionCopy := *v
			result = append(result, &versionCopy)
		}
	}

	return result, nil
}

// GetAll retrieves every version ordered by surrogate key ASC.
func (s *ProductDimensionStore) GetAll(_ context.Context) ([]*domain.ProductVersion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.ProductVersion, 0, len(s.versions))
	for _, v := range s.versions {
		versionCopy := *v
		result = append(result, &versionCopy)
	}

	return result, nil
}

var _ storage.ProductDimensionStore = (*ProductDimensionStore)(nil)
