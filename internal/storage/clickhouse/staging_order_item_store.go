package clickhouse

import (
	"context"
	"fmt"

	"ecom-warehouse/internal/domain"
	"ecom-warehouse/internal/storage"
)

// StagingOrderItemStore implements storage.StagingOrderItemStore using
// ClickHouse.
type StagingOrderItemStore struct {
	conn *Conn
}

// NewStagingOrderItemStore creates a new StagingOrderItemStore.
func NewStagingOrderItemStore(conn *Conn) *StagingOrderItemStore {
	return &StagingOrderItemStore{conn: conn}
}

// Compile-time interface check.
var _ storage.StagingOrderItemStore = (*StagingOrderItemStore)(nil)

// Replace truncates the table and inserts the batch.
func (s *StagingOrderItemStore) Replace(ctx context.Context, rows []*domain.StagingOrderItem) error {
	// Validate the batch before truncating
	seen := make(map[string]struct{}, len(rows))
	for _, r := range rows {
		if r == nil || r.OrderItemID == "" {
			return storage.ErrInvalidInput
		}
		if _, exists := seen[r.OrderItemID]; exists {
			return storage.ErrDuplicateKey
		}
		seen[r.OrderItemID] = struct{}{}
	}

	if err := s.conn.Exec(ctx, `TRUNCATE TABLE stg_order_items`); err != nil {
		return fmt.Errorf("truncate stg_order_items: %w", err)
	}
	if len(rows) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO stg_order_items (
			order_item_id, order_id, product_id, quantity,
			unit_price, line_total, effective_unit_price, is_discounted,
			cost_per_unit, line_cost, line_profit, line_margin_percent,
			loaded_at
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, r := range rows {
		err = batch.Append(
			r.OrderItemID, r.OrderID, r.ProductID, r.Quantity,
			r.UnitPrice, r.LineTotal, r.EffectiveUnitPrice, r.IsDiscounted,
			r.CostPerUnit, r.LineCost, r.LineProfit, r.LineMarginPercent,
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

// GetAll retrieves all rows ordered by order_item_id ASC.
func (s *StagingOrderItemStore) GetAll(ctx context.Context) ([]*domain.StagingOrderItem, error) {
	query := `
		SELECT
			order_item_id, order_id, product_id, quantity,
			unit_price, line_total, effective_unit_price, is_discounted,
			cost_per_unit, line_cost, line_profit, line_margin_percent,
			loaded_at
		FROM stg_order_items
		ORDER BY order_item_id ASC
	`

	rows, err := s.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all staging order items: %w", err)
	}
	defer rows.Close()

	return scanStagingOrderItems(rows)
}

// Count returns the number of rows.
func (s *StagingOrderItemStore) Count(ctx context.Context) (int64, error) {
	var count uint64
	err := s.conn.QueryRow(ctx, `SELECT count(*) FROM stg_order_items`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count staging order items: %w", err)
	}
	return int64(count), nil
}

// scanStagingOrderItems scans multiple rows into a slice of StagingOrderItem.
func scanStagingOrderItems(rows chRows) ([]*domain.StagingOrderItem, error) {
	var items []*domain.StagingOrderItem

	for rows.Next() {
		var r domain.StagingOrderItem

		err := rows.Scan(
			&r.OrderItemID, &r.OrderID, &r.ProductID, &r.Quantity,
			&r.UnitPrice, &r.LineTotal, &r.EffectiveUnitPrice, &r.IsDiscounted,
			&r.CostPerUnit, &r.LineCost, &r.LineProfit, &r.LineMarginPercent,
			&r.LoadedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan staging order item row: %w", err)
		}

		items = append(items, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate staging order item rows: %w", err)
	}

	return items, nil
}
