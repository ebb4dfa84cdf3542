package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"ecom-warehouse/internal/domain"
	"ecom-warehouse/internal/storage"
)

// OrderFactStore implements storage.OrderFactStore using PostgreSQL.
// Merged rows and the watermark advance commit in one transaction, so a
// half-applied batch is never visible and the watermark never runs ahead
// of the rows it covers.
type OrderFactStore struct {
	pool *Pool
}

// NewOrderFactStore creates a new OrderFactStore.
func NewOrderFactStore(pool *Pool) *OrderFactStore {
	return &OrderFactStore{pool: pool}
}

// Compile-time interface check.
var _ storage.OrderFactStore = (*OrderFactStore)(nil)

// Watermark returns the committed watermark for the fact.
// Returns ErrNotFound before the first successful merge.
func (s *OrderFactStore) Watermark(ctx context.Context) (time.Time, error) {
	var mark time.Time
	err := s.pool.QueryRow(ctx, `
		SELECT high_water FROM watermarks WHERE fact_table = $1
	`, domain.ModelFactOrders).Scan(&mark)
	if err != nil {
		if isNotFoundError(err) {
			return time.Time{}, storage.ErrNotFound
		}
		return time.Time{}, fmt.Errorf("get order fact watermark: %w", err)
	}
	return mark, nil
}

// Merge applies the batch in one transaction. New natural keys are inserted,
// existing keys are updated only when the incoming row's watermark is
// strictly newer than the stored one, and the fact watermark advances to
// highWater. An empty batch changes nothing.
func (s *OrderFactStore) Merge(ctx context.Context, rows []*domain.OrderFact, highWater time.Time) (storage.MergeStats, error) {
	if len(rows) == 0 {
		return storage.MergeStats{}, nil
	}
	if highWater.IsZero() {
		return storage.MergeStats{}, storage.ErrInvalidInput
	}

	// Validate the whole batch before touching the database
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

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return storage.MergeStats{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	insertQuery := `
		INSERT INTO fact_orders (
			order_id, customer_id, order_date, order_status, payment_method,
			device_type, currency, is_first_order, total_items,
			subtotal, discount_amount, tax_amount, shipping_cost, total_amount,
			net_revenue, loaded_at
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, $9,
			$10, $11, $12, $13, $14,
			$15, $16
		)
	`
	updateQuery := `
		UPDATE fact_orders SET
			customer_id = $2, order_date = $3, order_status = $4, payment_method = $5,
			device_type = $6, currency = $7, is_first_order = $8, total_items = $9,
			subtotal = $10, discount_amount = $11, tax_amount = $12, shipping_cost = $13,
			total_amount = $14, net_revenue = $15, loaded_at = $16
		WHERE order_id = $1
	`

	var stats storage.MergeStats
	for _, r := range rows {
		var stored time.Time
		err := tx.QueryRow(ctx, `
			SELECT order_date FROM fact_orders WHERE order_id = $1 FOR UPDATE
		`, r.OrderID).Scan(&stored)

		switch {
		case isNotFoundError(err):
			if _, err := tx.Exec(ctx, insertQuery, orderFactArgs(r)...); err != nil {
				return storage.MergeStats{}, fmt.Errorf("insert order fact %s: %w", r.OrderID, err)
			}
			stats.Inserted++
		case err != nil:
			return storage.MergeStats{}, fmt.Errorf("lock order fact %s: %w", r.OrderID, err)
		case r.OrderDate.After(stored):
			if _, err := tx.Exec(ctx, updateQuery, orderFactArgs(r)...); err != nil {
				return storage.MergeStats{}, fmt.Errorf("update order fact %s: %w", r.OrderID, err)
			}
			stats.Updated++
		default:
			stats.Skipped++
		}
	}

	if err := advanceWatermark(ctx, tx, domain.ModelFactOrders, highWater); err != nil {
		return storage.MergeStats{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return storage.MergeStats{}, fmt.Errorf("commit tx: %w", err)
	}

	return stats, nil
}

// orderFactArgs flattens a row into the argument order shared by the
// insert and update statements.
func orderFactArgs(r *domain.OrderFact) []any {
	return []any{
		r.OrderID, r.CustomerID, r.OrderDate, r.OrderStatus, r.PaymentMethod,
		r.DeviceType, r.Currency, r.IsFirstOrder, r.TotalItems,
		r.Subtotal, r.DiscountAmount, r.TaxAmount, r.ShippingCost, r.TotalAmount,
		r.NetRevenue, r.LoadedAt,
	}
}

// advanceWatermark upserts the fact's watermark row inside the merge
// transaction. GREATEST keeps the watermark from ever moving backwards.
func advanceWatermark(ctx context.Context, tx pgx.Tx, factTable string, highWater time.Time) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO watermarks (fact_table, high_water, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (fact_table) DO UPDATE SET
			high_water = GREATEST(watermarks.high_water, EXCLUDED.high_water),
			updated_at = now()
	`, factTable, highWater)
	if err != nil {
		return fmt.Errorf("advance watermark for %s: %w", factTable, err)
	}
	return nil
}

// GetByOrderID retrieves a fact row. Returns ErrNotFound if not exists.
func (s *OrderFactStore) GetByOrderID(ctx context.Context, orderID string) (*domain.OrderFact, error) {
	query := `
		SELECT
			order_id, customer_id, order_date, order_status, payment_method,
			device_type, currency, is_first_order, total_items,
			subtotal, discount_amount, tax_amount, shipping_cost, total_amount,
			net_revenue, loaded_at
		FROM fact_orders
		WHERE order_id = $1
	`

	row := s.pool.QueryRow(ctx, query, orderID)
	r, err := scanOrderFact(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get order fact by id: %w", err)
	}
	return r, nil
}

// GetAll retrieves all rows ordered by order_id ASC.
func (s *OrderFactStore) GetAll(ctx context.Context) ([]*domain.OrderFact, error) {
	query := `
		SELECT
			order_id, customer_id, order_date, order_status, payment_method,
			device_type, currency, is_first_order, total_items,
			subtotal, discount_amount, tax_amount, shipping_cost, total_amount,
			net_revenue, loaded_at
		FROM fact_orders
		ORDER BY order_id ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all order facts: %w", err)
	}
	defer rows.Close()

	return scanOrderFacts(rows)
}

// Count returns the number of rows.
func (s *OrderFactStore) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM fact_orders`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count order facts: %w", err)
	}
	return count, nil
}

// Reset removes all rows and the watermark. Used by full refresh only.
func (s *OrderFactStore) Reset(ctx context.Context) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM fact_orders`); err != nil {
		return fmt.Errorf("reset fact_orders: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM watermarks WHERE fact_table = $1`, domain.ModelFactOrders); err != nil {
		return fmt.Errorf("reset fact_orders watermark: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// scanOrderFact scans a single row into an OrderFact.
func scanOrderFact(row pgx.Row) (*domain.OrderFact, error) {
	var r domain.OrderFact

	err := row.Scan(
		&r.OrderID, &r.CustomerID, &r.OrderDate, &r.OrderStatus, &r.PaymentMethod,
		&r.DeviceType, &r.Currency, &r.IsFirstOrder, &r.TotalItems,
		&r.Subtotal, &r.DiscountAmount, &r.TaxAmount, &r.ShippingCost, &r.TotalAmount,
		&r.NetRevenue, &r.LoadedAt,
	)
	if err != nil {
		return nil, err
	}

	return &r, nil
}

// scanOrderFacts scans multiple rows into a slice of OrderFact.
func scanOrderFacts(rows pgx.Rows) ([]*domain.OrderFact, error) {
	var facts []*domain.OrderFact

	for rows.Next() {
		var r domain.OrderFact

		err := rows.Scan(
			&r.OrderID, &r.CustomerID, &r.OrderDate, &r.OrderStatus, &r.PaymentMethod,
			&r.DeviceType, &r.Currency, &r.IsFirstOrder, &r.TotalItems,
			&r.Subtotal, &r.DiscountAmount, &r.TaxAmount, &r.ShippingCost, &r.TotalAmount,
			&r.NetRevenue, &r.LoadedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan order fact row: %w", err)
		}

		facts = append(facts, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order fact rows: %w", err)
	}

	return facts, nil
}
