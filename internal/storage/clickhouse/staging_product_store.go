package clickhouse

import (
	"context"
	"fmt"

	"ecom-warehouse/internal/domain"
	"ecom-warehouse/internal/storage"
)

// StagingProductStore implements storage.StagingProductStore using ClickHouse.
type StagingProductStore struct {
	conn *Conn
}

// NewStagingProductStore creates a new StagingProductStore.
func NewStagingProductStore(conn *Conn) *StagingProductStore {
	return &StagingProductStore{conn: conn}
}

// Compile-time interface check.
var _ storage.StagingProductStore = (*StagingProductStore)(nil)

// Replace truncates the table and inserts the batch.
func (s *StagingProductStore) Replace(ctx context.Context, rows []*domain.StagingProduct) error {
	// Validate the batch before truncating
	seen := make(map[string]struct{}, len(rows))
	for _, r := range rows {
		if r == nil || r.ProductID == "" {
			return storage.ErrInvalidInput
		}
		if _, exists := seen[r.ProductID]; exists {
			return storage.ErrDuplicateKey
		}
		seen[r.ProductID] = struct{}{}
	}

	if err := s.conn.Exec(ctx, `TRUNCATE TABLE stg_products`); err != nil {
		return fmt.Errorf("truncate stg_products: %w", err)
	}
	if len(rows) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO stg_products (
			product_id, sku, product_name, brand,
			category_l1, category_l2, category_path,
			retail_price, cost, profit, margin_percent, price_tier,
			weight_kg, length_cm, width_cm, height_cm, volume_cm3,
			color, size, stock_quantity, reorder_point, needs_reorder,
			supplier, lifecycle_stage, is_active, is_featured,
			created_at, avg_rating, total_reviews, total_sales,
			loaded_at
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, r := range rows {
		err = batch.Append(
			r.ProductID, r.SKU, r.ProductName, r.Brand,
			r.CategoryL1, r.CategoryL2, r.CategoryPath,
			r.RetailPrice, r.Cost, r.Profit, r.MarginPercent, r.PriceTier,
			r.WeightKg, r.LengthCm, r.WidthCm, r.HeightCm, r.VolumeCm3,
			r.Color, r.Size, r.StockQuantity, r.ReorderPoint, r.NeedsReorder,
			r.Supplier, r.LifecycleStage, r.IsActive, r.IsFeatured,
			r.CreatedAt, r.AvgRating, r.TotalReviews, r.TotalSales,
			r.LoadedAt,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetAll retrieves all rows ordered by product_id ASC.
func (s *StagingProductStore) GetAll(ctx context.Context) ([]*domain.StagingProduct, error) {
	query := `
		SELECT
			product_id, sku, product_name, brand,
			category_l1, category_l2, category_path,
			retail_price, cost, profit, margin_percent, price_tier,
			weight_kg, length_cm, width_cm, height_cm, volume_cm3,
			color, size, stock_quantity, reorder_point, needs_reorder,
			supplier, lifecycle_stage, is_active, is_featured,
			created_at, avg_rating, total_reviews, total_sales,
			loaded_at
		FROM stg_products
		ORDER BY product_id ASC
	`

	rows, err := s.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all staging products: %w", err)
	}
	defer rows.Close()

	return scanStagingProducts(rows)
}

// Count returns the number of rows.
func (s *StagingProductStore) Count(ctx context.Context) (int64, error) {
	var count uint64
	err := s.conn.QueryRow(ctx, `SELECT count(*) FROM stg_products`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count staging products: %w", err)
	}
	return int64(count), nil
}

// scanStagingProducts scans multiple rows into a slice of StagingProduct.
func scanStagingProducts(rows chRows) ([]*domain.StagingProduct, error) {
	var products []*domain.StagingProduct

	for rows.Next() {
		var r domain.StagingProduct

		err := rows.Scan(
			&r.ProductID, &r.SKU, &r.ProductName, &r.Brand,
			&r.CategoryL1, &r.CategoryL2, &r.CategoryPath,
			&r.RetailPrice, &r.Cost, &r.Profit, &r.MarginPercent, &r.PriceTier,
			&r.WeightKg, &r.LengthCm, &r.WidthCm, &r.HeightCm, &r.VolumeCm3,
			&r.Color, &r.Size, &r.StockQuantity, &r.ReorderPoint, &r.NeedsReorder,
			&r.Supplier, &r.LifecycleStage, &r.IsActive, &r.IsFeatured,
			&r.CreatedAt, &r.AvgRating, &r.TotalReviews, &r.TotalSales,
			&r.LoadedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan staging product row: %w", err)
		}

		products = append(products, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate staging product rows: %w", err)
	}

	return products, nil
}
