package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"ecom-warehouse/internal/domain"
	"ecom-warehouse/internal/storage"
)

// CustomerDimensionStore implements storage.CustomerDimensionStore using
// PostgreSQL. A partial unique index on (customer_id) WHERE is_current
// guarantees at most one open version per natural key.
type CustomerDimensionStore struct {
	pool *Pool
}

// NewCustomerDimensionStore creates a new CustomerDimensionStore.
func NewCustomerDimensionStore(pool *Pool) *CustomerDimensionStore {
	return &CustomerDimensionStore{pool: pool}
}

// Compile-time interface check.
var _ storage.CustomerDimensionStore = (*CustomerDimensionStore)(nil)

// Insert adds the first version for a natural key and returns the assigned
// surrogate key. Returns ErrDuplicateKey if an open version already exists.
func (s *CustomerDimensionStore) Insert(ctx context.Context, v *domain.CustomerVersion) (int64, error) {
	if v == nil || v.CustomerID == "" || v.AttrHash == "" || v.ValidFrom.IsZero() {
		return 0, storage.ErrInvalidInput
	}

	query := `
		INSERT INTO dim_customers (
			customer_id, full_name, email, email_domain, phone, birth_date,
			gender, address_line1, city, state, postal_code, country,
			customer_segment, acquisition_channel, value_band, credit_score_range,
			is_active, email_subscribed, preferred_contact,
			attr_hash, valid_from, valid_to, is_current
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10, $11, $12,
			$13, $14, $15, $16,
			$17, $18, $19,
			$20, $21, NULL, TRUE
		)
		RETURNING surrogate_key
	`

	var key int64
	err := s.pool.QueryRow(ctx, query,
		v.CustomerID, v.FullName, v.Email, v.EmailDomain, v.Phone, v.BirthDate,
		v.Gender, v.AddressLine1, v.City, v.State, v.PostalCode, v.Country,
		v.CustomerSegment, v.AcquisitionChannel, v.ValueBand, v.CreditScoreRange,
		v.IsActive, v.EmailSubscribed, v.PreferredContact,
		v.AttrHash, v.ValidFrom,
	).Scan(&key)
	if err != nil {
		if isDuplicateKeyError(err) {
			return 0, storage.ErrDuplicateKey
		}
		return 0, fmt.Errorf("insert customer version: %w", err)
	}
	return key, nil
}

// Supersede closes the open version for next's natural key and inserts next
// as the new open version, atomically. Returns ErrNotFound if no open
// version exists, ErrInvalidInput if next's validity would precede it.
func (s *CustomerDimensionStore) Supersede(ctx context.Context, next *domain.CustomerVersion) (int64, error) {
	if next == nil || next.CustomerID == "" || next.AttrHash == "" || next.ValidFrom.IsZero() {
		return 0, storage.ErrInvalidInput
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var openFrom time.Time
	err = tx.QueryRow(ctx, `
		SELECT valid_from FROM dim_customers
		WHERE customer_id = $1 AND is_current
		FOR UPDATE
	`, next.CustomerID).Scan(&openFrom)
	if err != nil {
		if isNotFoundError(err) {
			return 0, storage.ErrNotFound
		}
		return 0, fmt.Errorf("lock open customer version: %w", err)
	}
	if next.ValidFrom.Before(openFrom) {
		return 0, storage.ErrInvalidInput
	}

	_, err = tx.Exec(ctx, `
		UPDATE dim_customers
		SET valid_to = $2, is_current = FALSE
		WHERE customer_id = $1 AND is_current
	`, next.CustomerID, next.ValidFrom)
	if err != nil {
		return 0, fmt.Errorf("close customer version: %w", err)
	}

	query := `
		INSERT INTO dim_customers (
			customer_id, full_name, email, email_domain, phone, birth_date,
			gender, address_line1, city, state, postal_code, country,
			customer_segment, acquisition_channel, value_band, credit_score_range,
			is_active, email_subscribed, preferred_contact,
			attr_hash, valid_from, valid_to, is_current
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10, $11, $12,
			$13, $14, $15, $16,
			$17, $18, $19,
			$20, $21, NULL, TRUE
		)
		RETURNING surrogate_key
	`

	var key int64
	err = tx.QueryRow(ctx, query,
		next.CustomerID, next.FullName, next.Email, next.EmailDomain, next.Phone, next.BirthDate,
		next.Gender, next.AddressLine1, next.City, next.State, next.PostalCode, next.Country,
		next.CustomerSegment, next.AcquisitionChannel, next.ValueBand, next.CreditScoreRange,
		next.IsActive, next.EmailSubscribed, next.PreferredContact,
		next.AttrHash, next.ValidFrom,
	).Scan(&key)
	if err != nil {
		return 0, fmt.Errorf("insert next customer version: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit tx: %w", err)
	}

	return key, nil
}

// GetCurrent retrieves the open version for a natural key.
// Returns ErrNotFound if none exists.
func (s *CustomerDimensionStore) GetCurrent(ctx context.Context, customerID string) (*domain.CustomerVersion, error) {
	query := `
		SELECT
			surrogate_key, customer_id, full_name, email, email_domain, phone, birth_date,
			gender, address_line1, city, state, postal_code, country,
			customer_segment, acquisition_channel, value_band, credit_score_range,
			is_active, email_subscribed, preferred_contact,
			attr_hash, valid_from, valid_to, is_current
		FROM dim_customers
		WHERE customer_id = $1 AND is_current
	`

	row := s.pool.QueryRow(ctx, query, customerID)
	v, err := scanCustomerVersion(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get current customer version: %w", err)
	}
	return v, nil
}

// GetAllCurrent retrieves all open versions ordered by customer_id ASC.
func (s *CustomerDimensionStore) GetAllCurrent(ctx context.Context) ([]*domain.CustomerVersion, error) {
	query := `
		SELECT
			surrogate_key, customer_id, full_name, email, email_domain, phone, birth_date,
			gender, address_line1, city, state, postal_code, country,
			customer_segment, acquisition_channel, value_band, credit_score_range,
			is_active, email_subscribed, preferred_contact,
			attr_hash, valid_from, valid_to, is_current
		FROM dim_customers
		WHERE is_current
		ORDER BY customer_id ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all current customer versions: %w", err)
	}
	defer rows.Close()

	return scanCustomerVersions(rows)
}

// GetHistory retrieves all versions for a natural key, oldest first.
func (s *CustomerDimensionStore) GetHistory(ctx context.Context, customerID string) ([]*domain.CustomerVersion, error) {
	query := `
		SELECT
			surrogate_key, customer_id, full_name, email, email_domain, phone, birth_date,
			gender, address_line1, city, state, postal_code, country,
			customer_segment, acquisition_channel, value_band, credit_score_range,
			is_active, email_subscribed, preferred_contact,
			attr_hash, valid_from, valid_to, is_current
		FROM dim_customers
		WHERE customer_id = $1
		ORDER BY surrogate_key ASC
	`

	rows, err := s.pool.Query(ctx, query, customerID)
	if err != nil {
		return nil, fmt.Errorf("get customer version history: %w", err)
	}
	defer rows.Close()

	return scanCustomerVersions(rows)
}

// GetAll retrieves every version ordered by surrogate key ASC.
func (s *CustomerDimensionStore) GetAll(ctx context.Context) ([]*domain.CustomerVersion, error) {
	query := `
		SELECT
			surrogate_key, customer_id, full_name, email, email_domain, phone, birth_date,
			gender, address_line1, city, state, postal_code, country,
			customer_segment, acquisition_channel, value_band, credit_score_range,
			is_active, email_subscribed, preferred_contact,
			attr_hash, valid_from, valid_to, is_current
		FROM dim_customers
		ORDER BY surrogate_key ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all customer versions: %w", err)
	}
	defer rows.Close()

	return scanCustomerVersions(rows)
}

// scanCustomerVersion scans a single row into a CustomerVersion.
func scanCustomerVersion(row pgx.Row) (*domain.CustomerVersion, error) {
	var v domain.CustomerVersion

	err := row.Scan(
		&v.SurrogateKey, &v.CustomerID, &v.FullName, &v.Email, &v.EmailDomain, &v.Phone, &v.BirthDate,
		&v.Gender, &v.AddressLine1, &v.City, &v.State, &v.PostalCode, &v.Country,
		&v.CustomerSegment, &v.AcquisitionChannel, &v.ValueBand, &v.CreditScoreRange,
		&v.IsActive, &v.EmailSubscribed, &v.PreferredContact,
		&v.AttrHash, &v.ValidFrom, &v.ValidTo, &v.IsCurrent,
	)
	if err != nil {
		return nil, err
	}

	return &v, nil
}

// scanCustomerVersions scans multiple rows into a slice of CustomerVersion.
func scanCustomerVersions(rows pgx.Rows) ([]*domain.CustomerVersion, error) {
	var versions []*domain.CustomerVersion

	for rows.Next() {
		var v domain.CustomerVersion

		err := rows.Scan(
			&v.SurrogateKey, &v.CustomerID, &v.FullName, &v.Email, &v.EmailDomain, &v.Phone, &v.BirthDate,
			&v.Gender, &v.AddressLine1, &v.City, &v.State, &v.PostalCode, &v.Country,
			&v.CustomerSegment, &v.AcquisitionChannel, &v.ValueBand, &v.CreditScoreRange,
			&v.IsActive, &v.EmailSubscribed, &v.PreferredContact,
			&v.AttrHash, &v.ValidFrom, &v.ValidTo, &v.IsCurrent,
		)
		if err != nil {
			return nil, fmt.Errorf("scan customer version row: %w", err)
		}

		versions = append(versions, &v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate customer version rows: %w", err)
	}

	return versions, nil
}
