package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"ecom-warehouse/internal/domain"
	"ecom-warehouse/internal/storage"
)

// OrderItemFactStore implements storage.OrderItemFactStore using PostgreSQL.
// Same transactional merge contract as OrderFactStore, at order-item grain.
type OrderItemFactStore struct {
	pool *Pool
}

// NewOrderItemFactStore creates a new OrderItemFactStore.
func NewOrderItemFactStore(pool *Pool) *OrderItemFactStore {
	return &OrderItemFactStore{pool: pool}
}

// Compile-time interface check.
var _ storage.OrderItemFactStore = (*OrderItemFactStore)(nil)

// Watermark returns the committed watermark for the fact.
// Returns ErrNotFound before the first successful merge.
func (s *OrderItemFactStore) Watermark(ctx context.Context) (time.Time, error) {
	var mark time.Time
	err := s.pool.QueryRow(ctx, `
		SELECT high_water FROM watermarks WHERE fact_table = $1
	`, domain.ModelFactOrderItems).Scan(&mark)
	if err != nil {
		if isNotFoundError(err) {
			return time.Time{}, storage.ErrNotFound
		}
		return time.Time{}, fmt.Errorf("get order item fact watermark: %w", err)
	}
	return mark, nil
}

// Merge applies the batch in one transaction. New natural keys are inserted,
// existing keys are updated only when the incoming row's watermark is
// strictly newer than the stored one, and the fact watermark advances to
// highWater. An empty batch changes nothing.
func (s *OrderItemFactStore) Merge(ctx context.Context, rows []*domain.OrderItemFact, highWater time.Time) (storage.MergeStats, error) {
	if len(rows) == 0 {
		return storage.MergeStats{}, nil
	}
	if highWater.IsZero() {
		return storage.MergeStats{}, storage.ErrInvalidInput
	}

	// Validate the whole batch before touching the database
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

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return storage.MergeStats{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	insertQuery := `
		INSERT INTO fact_order_items (
			order_item_id, order_id, product_id, customer_id, order_date,
			quantity, unit_price, effective_unit_price, is_discounted,
			line_total, cost_per_unit, line_cost, line_profit, line_margin_percent,
			loaded_at
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, $9,
			$10, $11, $12, $13, $14,
			$15
		)
	`
	updateQuery := `
		UPDATE fact_order_items SET
			order_id = $2, product_id = $3, customer_id = $4, order_date = $5,
			quantity = $6, unit_price = $7, effective_unit_price = $8, is_discounted = $9,
			line_total = $10, cost_per_unit = $11, line_cost = $12, line_profit = $13,
			line_margin_percent = $14, loaded_at = $15
		WHERE order_item_id = $1
	`

	var stats storage.MergeStats
	for _, r := range rows {
		var stored time.Time
		err := tx.QueryRow(ctx, `
			SELECT order_date FROM fact_order_items WHERE order_item_id = $1 FOR UPDATE
		`, r.OrderItemID).Scan(&stored)

		switch {
		case isNotFoundError(err):
			if _, err := tx.Exec(ctx, insertQuery, orderItemFactArgs(r)...); err != nil {
				return storage.MergeStats{}, fmt.Errorf("insert order item fact %s: %w", r.OrderItemID, err)
			}
			stats.Inserted++
		case err != nil:
			return storage.MergeStats{}, fmt.Errorf("lock order item fact %s: %w", r.OrderItemID, err)
		case r.OrderDate.After(stored):
			if _, err := tx.Exec(ctx, updateQuery, orderItemFactArgs(r)...); err != nil {
				return storage.MergeStats{}, fmt.Errorf("update order item fact %s: %w", r.OrderItemID, err)
			}
			stats.Updated++
		default:
			stats.Skipped++
		}
	}

	if err := advanceWatermark(ctx, tx, domain.ModelFactOrderItems, highWater); err != nil {
		return storage.MergeStats{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return storage.MergeStats{}, fmt.Errorf("commit tx: %w", err)
	}

	return stats, nil
}

// orderItemFactArgs flattens a row into the argument order shared by the
// insert and update statements.
func orderItemFactArgs(r *domain.OrderItemFact) []any {
	return []any{
		r.OrderItemID, r.OrderID, r.ProductID, r.CustomerID, r.OrderDate,
		r.Quantity, r.UnitPrice, r.EffectiveUnitPrice, r.IsDiscounted,
		r.LineTotal, r.CostPerUnit, r.LineCost, r.LineProfit, r.LineMarginPercent,
		r.LoadedAt,
	}
}

// GetByOrderItemID retrieves a fact row. Returns ErrNotFound if not exists.
func (s *OrderItemFactStore) GetByOrderItemID(ctx context.Context, orderItemID string) (*domain.OrderItemFact, error) {
	query := `
		SELECT
			order_item_id, order_id, product_id, customer_id, order_date,
			quantity, unit_price, effective_unit_price, is_discounted,
			line_total, cost_per_unit, line_cost, line_profit, line_margin_percent,
			loaded_at
		FROM fact_order_items
		WHERE order_item_id = $1
	`

	row := s.pool.QueryRow(ctx, query, orderItemID)
	r, err := scanOrderItemFact(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get order item fact by id: %w", err)
	}
	return r, nil
}

// GetAll retrieves all rows ordered by order_item_id ASC.
func (s *OrderItemFactStore) GetAll(ctx context.Context) ([]*domain.OrderItemFact, error) {
	query := `
		SELECT
			order_item_id, order_id, product_id, customer_id, order_date,
			quantity, unit_price, effective_unit_price, is_discounted,
			line_total, cost_per_unit, line_cost, line_profit, line_margin_percent,
			loaded_at
		FROM fact_order_items
		ORDER BY order_item_id ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all order item facts: %w", err)
	}
	defer rows.Close()

	return scanOrderItemFacts(rows)
}

// Count returns the number of rows.
func (s *OrderItemFactStore) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM fact_order_items`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count order item facts: %w", err)
	}
	return count, nil
}

// Reset removes all rows and the watermark. Used by full refresh only.
func (s *OrderItemFactStore) Reset(ctx context.Context) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM fact_order_items`); err != nil {
		return fmt.Errorf("reset fact_order_items: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM watermarks WHERE fact_table = $1`, domain.ModelFactOrderItems); err != nil {
		return fmt.Errorf("reset fact_order_items watermark: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// scanOrderItemFact scans a single row into an OrderItemFact.
func scanOrderItemFact(row pgx.Row) (*domain.OrderItemFact, error) {
	var r domain.OrderItemFact

	err := row.Scan(
		&r.OrderItemID, &r.OrderID, &r.ProductID, &r.CustomerID, &r.OrderDate,
		&r.Quantity, &r.UnitPrice, &r.EffectiveUnitPrice, &r.IsDiscounted,
		&r.LineTotal, &r.CostPerUnit, &r.LineCost, &r.LineProfit, &r.LineMarginPercent,
		&r.LoadedAt,
	)
	if err != nil {
		return nil, err
	}

	return &r, nil
}

// scanOrderItemFacts scans multiple rows into a slice of OrderItemFact.
func scanOrderItemFacts(rows pgx.Rows) ([]*domain.OrderItemFact, error) {
	var facts []*domain.OrderItemFact

	for rows.Next() {
		var r domain.OrderItemFact

		err := rows.Scan(
			&r.OrderItemID, &r.OrderID, &r.ProductID, &r.CustomerID, &r.OrderDate,
			&r.Quantity, &r.UnitPrice, &r.EffectiveUnitPrice, &r.IsDiscounted,
			&r.LineTotal, &r.CostPerUnit, &r.LineCost, &r.LineProfit, &r.LineMarginPercent,
			&r.LoadedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan order item fact row: %w", err)
		}

		facts = append(facts, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order item fact rows: %w", err)
	}

	return facts, nil
}
