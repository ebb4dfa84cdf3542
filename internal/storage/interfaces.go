package storage

import (
	"context"
	"time"

	"ecom-warehouse/internal/domain"
)

// StagingCustomerStore provides access to stg_customers storage.
// Staging tables are rebuilt whole on every run.
type StagingCustomerStore interface {
	// Replace truncates the table and inserts the batch. All or nothing.
	Replace(ctx context.Context, rows []*domain.StagingCustomer) error

	// GetAll retrieves all rows ordered by natural key.
	GetAll(ctx context.Context) ([]*domain.StagingCustomer, error)

	// Count returns the number of rows.
	Count(ctx context.Context) (int64, error)
}

// StagingProductStore provides access to stg_products storage.
type StagingProductStore interface {
	// Replace truncates the table and inserts the batch. All or nothing.
	Replace(ctx context.Context, rows []*domain.StagingProduct) error

	// GetAll retrieves all rows ordered by natural key.
	GetAll(ctx context.Context) ([]*domain.StagingProduct, error)

	// Count returns the number of rows.
	Count(ctx context.Context) (int64, error)
}

// StagingOrderStore provides access to stg_orders storage.
type StagingOrderStore interface {
	// Replace truncates the table and inserts the batch. All or nothing.
	Replace(ctx context.Context, rows []*domain.StagingOrder) error

	// GetAll retrieves all rows ordered by natural key.
	GetAll(ctx context.Context) ([]*domain.StagingOrder, error)

	// Count returns the number of rows.
	Count(ctx context.Context) (int64, error)
}

// StagingOrderItemStore provides access to stg_order_items storage.
type StagingOrderItemStore interface {
	// Replace truncates the table and inserts the batch. All or nothing.
	Replace(ctx context.Context, rows []*domain.StagingOrderItem) error

	// GetAll retrieves all rows ordered by natural key.
	GetAll(ctx context.Context) ([]*domain.StagingOrderItem, error)

	// Count returns the number of rows.
	Count(ctx context.Context) (int64, error)
}

// CustomerDimensionStore provides access to dim_customers storage.
// The store is append-only: versions are inserted and closed, never
// mutated after closing and never deleted.
type CustomerDimensionStore interface {
	// Insert adds the first version for a natural key and returns the
	// assigned surrogate key. Returns ErrDuplicateKey if an open version
	// already exists for the natural key.
	Insert(ctx context.Context, v *domain.CustomerVersion) (int64, error)

	// Supersede closes the open version for next's natural key (valid_to =
	// next.ValidFrom, is_current = false) and inserts next as the new open
	// version, atomically. Returns the new surrogate key. Returns
	// ErrNotFound if no open version exists.
	Supersede(ctx context.Context, next *domain.CustomerVersion) (int64, error)

	// GetCurrent retrieves the open version for a natural key.
	// Returns ErrNotFound if none exists.
	GetCurrent(ctx context.Context, customerID string) (*domain.CustomerVersion, error)

	// GetAllCurrent retrieves all open versions ordered by natural key.
	GetAllCurrent(ctx context.Context) ([]*domain.CustomerVersion, error)

	// GetHistory retrieves all versions for a natural key, oldest first.
	GetHistory(ctx context.Context, customerID string) ([]*domain.CustomerVersion, error)

	// GetAll retrieves every version ordered by surrogate key.
	GetAll(ctx context.Context) ([]*domain.CustomerVersion, error)
}

// ProductDimensionStore provides access to dim_products storage.
type ProductDimensionStore interface {
	// Insert adds the first version for a natural key and returns the
	// assigned surrogate key. Returns ErrDuplicateKey if an open version
	// already exists for the natural key.
	Insert(ctx context.Context, v *domain.ProductVersion) (int64, error)

	// Supersede closes the open version for next's natural key and inserts
	// next as the new open version, atomically. Returns the new surrogate
	// key. Returns ErrNotFound if no open version exists.
	Supersede(ctx context.Context, next *domain.ProductVersion) (int64, error)

	// GetCurrent retrieves the open version for a natural key.
	// Returns ErrNotFound if none exists.
	GetCurrent(ctx context.Context, productID string) (*domain.ProductVersion, error)

	// GetAllCurrent retrieves all open versions ordered by natural key.
	GetAllCurrent(ctx context.Context) ([]*domain.ProductVersion, error)

	// GetHistory retrieves all versions for a natural key, oldest first.
	GetHistory(ctx context.Context, productID string) ([]*domain.ProductVersion, error)

	// GetAll retrieves every version ordered by surrogate key.
	GetAll(ctx context.Context) ([]*domain.ProductVersion, error)
}

// MergeStats reports what a fact merge did, row by row.
type MergeStats struct {
	Inserted int64 // new natural keys
	Updated  int64 // existing keys with a strictly newer watermark
	Skipped  int64 // existing keys at or behind the stored watermark
}

// OrderFactStore provides access to fact_orders storage and its watermark.
// Watermark reads and writes are atomic relative to this fact's own merge.
type OrderFactStore interface {
	// Watermark returns the committed watermark for the fact.
	// Returns ErrNotFound before the first successful merge.
	Watermark(ctx context.Context) (time.Time, error)

	// Merge applies the batch as a single transaction: rows with new natural
	// keys are inserted, existing rows are updated in place only when the
	// incoming row's watermark is strictly newer than the stored one, and the
	// fact's watermark advances to highWater. Nothing is visible on failure.
	// Returns ErrDuplicateKey if the batch repeats a natural key.
	Merge(ctx context.Context, rows []*domain.OrderFact, highWater time.Time) (MergeStats, error)

	// GetByOrderID retrieves a fact row. Returns ErrNotFound if not exists.
	GetByOrderID(ctx context.Context, orderID string) (*domain.OrderFact, error)

	// GetAll retrieves all rows ordered by natural key.
	GetAll(ctx context.Context) ([]*domain.OrderFact, error)

	// Count returns the number of rows.
	Count(ctx context.Context) (int64, error)

	// Reset removes all rows and the watermark. Used by full refresh only.
	Reset(ctx context.Context) error
}

// OrderItemFactStore provides access to fact_order_items storage and its
// watermark.
type OrderItemFactStore interface {
	// Watermark returns the committed watermark for the fact.
	// Returns ErrNotFound before the first successful merge.
	Watermark(ctx context.Context) (time.Time, error)

	// Merge applies the batch as a single transaction with the same
	// semantics as OrderFactStore.Merge.
	Merge(ctx context.Context, rows []*domain.OrderItemFact, highWater time.Time) (MergeStats, error)

	// GetByOrderItemID retrieves a fact row. Returns ErrNotFound if not exists.
	GetByOrderItemID(ctx context.Context, orderItemID string) (*domain.OrderItemFact, error)

	// GetAll retrieves all rows ordered by natural key.
	GetAll(ctx context.Context) ([]*domain.OrderItemFact, error)

	// Count returns the number of rows.
	Count(ctx context.Context) (int64, error)

	// Reset removes all rows and the watermark. Used by full refresh only.
	Reset(ctx context.Context) error
}

// CheckResultStore provides access to quality_results storage.
type CheckResultStore interface {
	// InsertBulk appends check results atomically.
	InsertBulk(ctx context.Context, results []*domain.CheckResult) error

	// GetByRunID retrieves all results for a run, in insertion order.
	GetByRunID(ctx context.Context, runID string) ([]*domain.CheckResult, error)

	// GetFailures retrieves failing results for a run, in insertion order.
	GetFailures(ctx context.Context, runID string) ([]*domain.CheckResult, error)
}
