package clickhouse

import (
	"context"
	"fmt"

	"ecom-warehouse/internal/domain"
	"ecom-warehouse/internal/storage"
)

// StagingCustomerStore implements storage.StagingCustomerStore using
// ClickHouse. Staging tables are rebuilt whole on every run, so Replace
// truncates before loading the batch.
type StagingCustomerStore struct {
	conn *Conn
}

// NewStagingCustomerStore creates a new StagingCustomerStore.
func NewStagingCustomerStore(conn *Conn) *StagingCustomerStore {
	return &StagingCustomerStore{conn: conn}
}

// Compile-time interface check.
var _ storage.StagingCustomerStore = (*StagingCustomerStore)(nil)

// Replace truncates the table and inserts the batch.
func (s *StagingCustomerStore) Replace(ctx context.Context, rows []*domain.StagingCustomer) error {
	// Validate the batch before truncating
	seen := make(map[string]struct{}, len(rows))
	for _, r := range rows {
		if r == nil || r.CustomerID == "" {
			return storage.ErrInvalidInput
		}
		if _, exists := seen[r.CustomerID]; exists {
			return storage.ErrDuplicateKey
		}
		seen[r.CustomerID] = struct{}{}
	}

	if err := s.conn.Exec(ctx, `TRUNCATE TABLE stg_customers`); err != nil {
		return fmt.Errorf("truncate stg_customers: %w", err)
	}
	if len(rows) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO stg_customers (
			customer_id, first_name, last_name, full_name, email, email_domain, phone,
			birth_date, age_years, gender,
			address_line1, city, state, postal_code, country,
			customer_segment, acquisition_channel, lifetime_value, value_band,
			created_at, updated_at, tenure_days, last_order_date, recency_band,
			is_active, email_subscribed, preferred_contact, credit_score_range,
			loaded_at
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, r := range rows {
		err = batch.Append(
			r.CustomerID, r.FirstName, r.LastName, r.FullName, r.Email, r.EmailDomain, r.Phone,
			r.BirthDate, r.AgeYears, r.Gender,
			r.AddressLine1, r.City, r.State, r.PostalCode, r.Country,
			r.CustomerSegment, r.AcquisitionChannel, r.LifetimeValue, r.ValueBand,
			r.CreatedAt, r.UpdatedAt, r.TenureDays, r.LastOrderDate, r.RecencyBand,
			r.IsActive, r.EmailSubscribed, r.PreferredContact, r.CreditScoreRange,
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

// GetAll retrieves all rows ordered by customer_id ASC.
func (s *StagingCustomerStore) GetAll(ctx context.Context) ([]*domain.StagingCustomer, error) {
	query := `
		SELECT
			customer_id, first_name, last_name, full_name, email, email_domain, phone,
			birth_date, age_years, gender,
			address_line1, city, state, postal_code, country,
			customer_segment, acquisition_channel, lifetime_value, value_band,
			created_at, updated_at, tenure_days, last_order_date, recency_band,
			is_active, email_subscribed, preferred_contact, credit_score_range,
			loaded_at
		FROM stg_customers
		ORDER BY customer_id ASC
	`

	rows, err := s.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all staging customers: %w", err)
	}
	defer rows.Close()

	return scanStagingCustomers(rows)
}

// Count returns the number of rows.
func (s *StagingCustomerStore) Count(ctx context.Context) (int64, error) {
	var count uint64
	err := s.conn.QueryRow(ctx, `SELECT count(*) FROM stg_customers`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count staging customers: %w", err)
	}
	return int64(count), nil
}

// scanStagingCustomers scans multiple rows into a slice of StagingCustomer.
func scanStagingCustomers(rows chRows) ([]*domain.StagingCustomer, error) {
	var customers []*domain.StagingCustomer

	for rows.Next() {
		var r domain.StagingCustomer

		err := rows.Scan(
			&r.CustomerID, &r.FirstName, &r.LastName, &r.FullName, &r.Email, &r.EmailDomain, &r.Phone,
			&r.BirthDate, &r.AgeYears, &r.Gender,
			&r.AddressLine1, &r.City, &r.State, &r.PostalCode, &r.Country,
			&r.CustomerSegment, &r.AcquisitionChannel, &r.LifetimeValue, &r.ValueBand,
			&r.CreatedAt, &r.UpdatedAt, &r.TenureDays, &r.LastOrderDate, &r.RecencyBand,
			&r.IsActive, &r.EmailSubscribed, &r.PreferredContact, &r.CreditScoreRange,
			&r.LoadedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan staging customer row: %w", err)
		}

		customers = append(customers, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate staging customer rows: %w", err)
	}

	return customers, nil
}
