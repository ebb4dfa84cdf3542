package clickhouse

import (
	"context"
	"fmt"

	"ecom-warehouse/internal/domain"
	"ecom-warehouse/internal/storage"
)

// StagingOrderStore implements storage.StagingOrderStore using ClickHouse.
type StagingOrderStore struct {
	conn *Conn
}

// NewStagingOrderStore creates a new StagingOrderStore.
func NewStagingOrderStore(conn *Conn) *StagingOrderStore {
	return &StagingOrderStore{conn: conn}
}

// Compile-time interface check.
var _ storage.StagingOrderStore = (*StagingOrderStore)(nil)

// Replace truncates the table and inserts the batch.
func (s *StagingOrderStore) Replace(ctx context.Context, rows []*domain.StagingOrder) error {
	// Validate the batch before truncating
	seen := make(map[string]struct{}, len(rows))
	for _, r := range rows {
		if r == nil || r.OrderID == "" {
			return storage.ErrInvalidInput
		}
		if _, exists := seen[r.OrderID]; exists {
			return storage.ErrDuplicateKey
		}
		seen[r.OrderID] = struct{}{}
	}

	if err := s.conn.Exec(ctx, `TRUNCATE TABLE stg_orders`); err != nil {
		return fmt.Errorf("truncate stg_orders: %w", err)
	}
	if len(rows) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO stg_orders (
			order_id, customer_id, order_date, order_status, payment_method,
			total_items, subtotal, discount_amount, tax_amount, shipping_cost, total_amount,
			currency, acquisition_channel, device_type,
			is_first_order, has_discount, net_revenue, average_item_value,
			is_completed, is_returned_or_cancelled,
			created_at, updated_at, loaded_at
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, r := range rows {
		err = batch.Append(
			r.OrderID, r.CustomerID, r.OrderDate, r.OrderStatus, r.PaymentMethod,
			r.TotalItems, r.Subtotal, r.DiscountAmount, r.TaxAmount, r.ShippingCost, r.TotalAmount,
			r.Currency, r.AcquisitionChannel, r.DeviceType,
			r.IsFirstOrder, r.HasDiscount, r.NetRevenue, r.AverageItemValue,
			r.IsCompleted, r.IsReturnedOrCancelled,
			r.CreatedAt, r.UpdatedAt, r.LoadedAt,
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

// GetAll retrieves all rows ordered by order_id ASC.
func (s *StagingOrderStore) GetAll(ctx context.Context) ([]*domain.StagingOrder, error) {
	query := `
		SELECT
			order_id, customer_id, order_date, order_status, payment_method,
			total_items, subtotal, discount_amount, tax_amount, shipping_cost, total_amount,
			currency, acquisition_channel, device_type,
			is_first_order, has_discount, net_revenue, average_item_value,
			is_completed, is_returned_or_cancelled,
			created_at, updated_at, loaded_at
		FROM stg_orders
		ORDER BY order_id ASC
	`

	rows, err := s.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all staging orders: %w", err)
	}
	defer rows.Close()

	return scanStagingOrders(rows)
}

// Count returns the number of rows.
func (s *StagingOrderStore) Count(ctx context.Context) (int64, error) {
	var count uint64
	err := s.conn.QueryRow(ctx, `SELECT count(*) FROM stg_orders`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count staging orders: %w", err)
	}
	return int64(count), nil
}

// scanStagingOrders scans multiple rows into a slice of StagingOrder.
func scanStagingOrders(rows chRows) ([]*domain.StagingOrder, error) {
	var orders []*domain.StagingOrder

	for rows.Next() {
		var r domain.StagingOrder

		err := rows.Scan(
			&r.OrderID, &r.CustomerID, &r.OrderDate, &r.OrderStatus, &r.PaymentMethod,
			&r.TotalItems, &r.Subtotal, &r.DiscountAmount, &r.TaxAmount, &r.ShippingCost, &r.TotalAmount,
			&r.Currency, &r.AcquisitionChannel, &r.DeviceType,
			&r.IsFirstOrder, &r.HasDiscount, &r.NetRevenue, &r.AverageItemValue,
			&r.IsCompleted, &r.IsReturnedOrCancelled,
			&r.CreatedAt, &r.UpdatedAt, &r.LoadedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan staging order row: %w", err)
		}

		orders = append(orders, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate staging order rows: %w", err)
	}

	return orders, nil
}
