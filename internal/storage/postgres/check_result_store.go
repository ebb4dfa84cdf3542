package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"ecom-warehouse/internal/domain"
	"ecom-warehouse/internal/storage"
)

// CheckResultStore implements storage.CheckResultStore using PostgreSQL.
// Results are append-only; the serial id column preserves insertion order.
type CheckResultStore struct {
	pool *Pool
}

// NewCheckResultStore creates a new CheckResultStore.
func NewCheckResultStore(pool *Pool) *CheckResultStore {
	return &CheckResultStore{pool: pool}
}

// Compile-time interface check.
var _ storage.CheckResultStore = (*CheckResultStore)(nil)

// InsertBulk appends check results atomically.
func (s *CheckResultStore) InsertBulk(ctx context.Context, results []*domain.CheckResult) error {
	if len(results) == 0 {
		return nil
	}

	for _, r := range results {
		if r == nil || r.RunID == "" || r.Model == "" || r.CheckName == "" {
			return storage.ErrInvalidInput
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO quality_results (
			run_id, model, check_name, column_name, severity,
			passed, failing_rows, message, executed_at
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, $9
		)
	`

	for _, r := range results {
		_, err := tx.Exec(ctx, query,
			r.RunID, r.Model, r.CheckName, r.Column, r.Severity.String(),
			r.Passed, r.FailingRows, r.Message, r.ExecutedAt,
		)
		if err != nil {
			return fmt.Errorf("insert check result in bulk: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// GetByRunID retrieves all results for a run, in insertion order.
func (s *CheckResultStore) GetByRunID(ctx context.Context, runID string) ([]*domain.CheckResult, error) {
	query := `
		SELECT
			run_id, model, check_name, column_name, severity,
			passed, failing_rows, message, executed_at
		FROM quality_results
		WHERE run_id = $1
		ORDER BY id ASC
	`

	rows, err := s.pool.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("get check results by run id: %w", err)
	}
	defer rows.Close()

	return scanCheckResults(rows)
}

// GetFailures retrieves failing results for a run, in insertion order.
func (s *CheckResultStore) GetFailures(ctx context.Context, runID string) ([]*domain.CheckResult, error) {
	query := `
		SELECT
			run_id, model, check_name, column_name, severity,
			passed, failing_rows, message, executed_at
		FROM quality_results
		WHERE run_id = $1 AND NOT passed
		ORDER BY id ASC
	`

	rows, err := s.pool.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("get check failures by run id: %w", err)
	}
	defer rows.Close()

	return scanCheckResults(rows)
}

// scanCheckResults scans multiple rows into a slice of CheckResult.
func scanCheckResults(rows pgx.Rows) ([]*domain.CheckResult, error) {
	var results []*domain.CheckResult

	for rows.Next() {
		var (
			r   domain.CheckResult
			sev string
		)

		err := rows.Scan(
			&r.RunID, &r.Model, &r.CheckName, &r.Column, &sev,
			&r.Passed, &r.FailingRows, &r.Message, &r.ExecutedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan check result row: %w", err)
		}

		r.Severity = domain.Severity(sev)
		results = append(results, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate check result rows: %w", err)
	}

	return results, nil
}
