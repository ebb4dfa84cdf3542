package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"ecom-warehouse/internal/domain"
	"ecom-warehouse/internal/storage"
)

// ProductDimensionStore implements storage.ProductDimensionStore using
// PostgreSQL. A partial unique index on (product_id) WHERE is_current
// guarantees at most one open version per natural key.
type ProductDimensionStore struct {
	pool *Pool
}

// NewProductDimensionStore creates a new ProductDimensionStore.
func NewProductDimensionStore(pool *Pool) *ProductDimensionStore {
	return &ProductDimensionStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ProductDimensionStore = (*ProductDimensionStore)(nil)

// Insert adds the first version for a natural key and returns the assigned
// surrogate key. Returns ErrDuplicateKey if an open version already exists.
func (s *ProductDimensionStore) Insert(ctx context.Context, v *domain.ProductVersion) (int64, error) {
	if v == nil || v.ProductID == "" || v.AttrHash == "" || v.ValidFrom.IsZero() {
		return 0, storage.ErrInvalidInput
	}

	query := `
		INSERT INTO dim_products (
			product_id, sku, product_name, brand, category_l1, category_l2, category_path,
			retail_price, cost, margin_percent, price_tier, weight_kg, color, size,
			supplier, lifecycle_stage, is_active, is_featured,
			attr_hash, valid_from, valid_to, is_current
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7,
			$8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18,
			$19, $20, NULL, TRUE
		)
		RETURNING surrogate_key
	`

	var key int64
	err := s.pool.QueryRow(ctx, query,
		v.ProductID, v.SKU, v.ProductName, v.Brand, v.CategoryL1, v.CategoryL2, v.CategoryPath,
		v.RetailPrice, v.Cost, v.MarginPercent, v.PriceTier, v.WeightKg, v.Color, v.Size,
		v.Supplier, v.LifecycleStage, v.IsActive, v.IsFeatured,
		v.AttrHash, v.ValidFrom,
	).Scan(&key)
	if err != nil {
		if isDuplicateKeyError(err) {
			return 0, storage.ErrDuplicateKey
		}
		return 0, fmt.Errorf("insert product version: %w", err)
	}
	return key, nil
}

// Supersede closes the open version for next's natural key and inserts next
// as the new open version, atomically. Returns ErrNotFound if no open
// version exists, ErrInvalidInput if next's validity would precede it.
func (s *ProductDimensionStore) Supersede(ctx context.Context, next *domain.ProductVersion) (int64, error) {
	if next == nil || next.ProductID == "" || next.AttrHash == "" || next.ValidFrom.IsZero() {
		return 0, storage.ErrInvalidInput
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var openFrom time.Time
	err = tx.QueryRow(ctx, `
		SELECT valid_from FROM dim_products
		WHERE product_id = $1 AND is_current
		FOR UPDATE
	`, next.ProductID).Scan(&openFrom)
	if err != nil {
		if isNotFoundError(err) {
			return 0, storage.ErrNotFound
		}
		return 0, fmt.Errorf("lock open product version: %w", err)
	}
	if next.ValidFrom.Before(openFrom) {
		return 0, storage.ErrInvalidInput
	}

	_, err = tx.Exec(ctx, `
		UPDATE dim_products
		SET valid_to = $2, is_current = FALSE
		WHERE product_id = $1 AND is_current
	`, next.ProductID, next.ValidFrom)
	if err != nil {
		return 0, fmt.Errorf("close product version: %w", err)
	}

	query := `
		INSERT INTO dim_products (
			product_id, sku, product_name, brand, category_l1, category_l2, category_path,
			retail_price, cost, margin_percent, price_tier, weight_kg, color, size,
			supplier, lifecycle_stage, is_active, is_featured,
			attr_hash, valid_from, valid_to, is_current
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7,
			$8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18,
			$19, $20, NULL, TRUE
		)
		RETURNING surrogate_key
	`

	var key int64
	err = tx.QueryRow(ctx, query,
		next.ProductID, next.SKU, next.ProductName, next.Brand, next.CategoryL1, next.CategoryL2, next.CategoryPath,
		next.RetailPrice, next.Cost, next.MarginPercent, next.PriceTier, next.WeightKg, next.Color, next.Size,
		next.Supplier, next.LifecycleStage, next.IsActive, next.IsFeatured,
		next.AttrHash, next.ValidFrom,
	).Scan(&key)
	if err != nil {
		return 0, fmt.Errorf("insert next product version: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit tx: %w", err)
	}

	return key, nil
}

// GetCurrent retrieves the open version for a natural key.
// Returns ErrNotFound if none exists.
func (s *ProductDimensionStore) GetCurrent(ctx context.Context, productID string) (*domain.ProductVersion, error) {
	query := `
		SELECT
			surrogate_key, product_id, sku, product_name, brand, category_l1, category_l2, category_path,
			retail_price, cost, margin_percent, price_tier, weight_kg, color, size,
			supplier, lifecycle_stage, is_active, is_featured,
			attr_hash, valid_from, valid_to, is_current
		FROM dim_products
		WHERE product_id = $1 AND is_current
	`

	row := s.pool.QueryRow(ctx, query, productID)
	v, err := scanProductVersion(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get current product version: %w", err)
	}
	return v, nil
}

// GetAllCurrent retrieves all open versions ordered by product_id ASC.
func (s *ProductDimensionStore) GetAllCurrent(ctx context.Context) ([]*domain.ProductVersion, error) {
	query := `
		SELECT
			surrogate_key, product_id, sku, product_name, brand, category_l1, category_l2, category_path,
			retail_price, cost, margin_percent, price_tier, weight_kg, color, size,
			supplier, lifecycle_stage, is_active, is_featured,
			attr_hash, valid_from, valid_to, is_current
		FROM dim_products
		WHERE is_current
		ORDER BY product_id ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all current product versions: %w", err)
	}
	defer rows.Close()

	return scanProductVersions(rows)
}

// GetHistory retrieves all versions for a natural key, oldest first.
func (s *ProductDimensionStore) GetHistory(ctx context.Context, productID string) ([]*domain.ProductVersion, error) {
	query := `
		SELECT
			surrogate_key, product_id, sku, product_name, brand, category_l1, category_l2, category_path,
			retail_price, cost, margin_percent, price_tier, weight_kg, color, size,
			supplier, lifecycle_stage, is_active, is_featured,
			attr_hash, valid_from, valid_to, is_current
		FROM dim_products
		WHERE product_id = $1
		ORDER BY surrogate_key ASC
	`

	rows, err := s.pool.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("get product version history: %w", err)
	}
	defer rows.Close()

	return scanProductVersions(rows)
}

// GetAll retrieves every version ordered by surrogate key ASC.
func (s *ProductDimensionStore) GetAll(ctx context.Context) ([]*domain.ProductVersion, error) {
	query := `
		SELECT
			surrogate_key, product_id, sku, product_name, brand, category_l1, category_l2, category_path,
			retail_price, cost, margin_percent, price_tier, weight_kg, color, size,
			supplier, lifecycle_stage, is_active, is_featured,
			attr_hash, valid_from, valid_to, is_current
		FROM dim_products
		ORDER BY surrogate_key ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all product versions: %w", err)
	}
	defer rows.Close()

	return scanProductVersions(rows)
}

// scanProductVersion scans a single row into a ProductVersion.
func scanProductVersion(row pgx.Row) (*domain.ProductVersion, error) {
	var v domain.ProductVersion

	err := row.Scan(
		&v.SurrogateKey, &v.ProductID, &v.SKU, &v.ProductName, &v.Brand, &v.CategoryL1, &v.CategoryL2, &v.CategoryPath,
		&v.RetailPrice, &v.Cost, &v.MarginPercent, &v.PriceTier, &v.WeightKg, &v.Color, &v.Size,
		&v.Supplier, &v.LifecycleStage, &v.IsActive, &v.IsFeatured,
		&v.AttrHash, &v.ValidFrom, &v.ValidTo, &v.IsCurrent,
	)
	if err != nil {
		return nil, err
	}

	return &v, nil
}

// scanProductVersions scans multiple rows into a slice of ProductVersion.
func scanProductVersions(rows pgx.Rows) ([]*domain.ProductVersion, error) {
	var versions []*domain.ProductVersion

	for rows.Next() {
		var v domain.ProductVersion

		err := rows.Scan(
			&v.SurrogateKey, &v.ProductID, &v.SKU, &v.ProductName, &v.Brand, &v.CategoryL1, &v.CategoryL2, &v.CategoryPath,
			&v.RetailPrice, &v.Cost, &v.MarginPercent, &v.PriceTier, &v.WeightKg, &v.Color, &v.Size,
			&v.Supplier, &v.LifecycleStage, &v.IsActive, &v.IsFeatured,
			&v.AttrHash, &v.ValidFrom, &v.ValidTo, &v.IsCurrent,
		)
		if err != nil {
			return nil, fmt.Errorf("scan product version row: %w", err)
		}

		versions = append(versions, &v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product version rows: %w", err)
	}

	return versions, nil
}
