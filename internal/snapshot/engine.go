// Package snapshot maintains the SCD2 dimension tables. Each run compares
// the staged current state of every natural key against its open dimension
// version: first sightings insert a version, attribute changes close the old
// version and open a new one, and unchanged keys leave no trace. Dimension
// history is append-only; keys absent from the batch keep their open version.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"ecom-warehouse/internal/domain"
	"ecom-warehouse/internal/storage"
)

// Result summarizes one dimension snapshot.
type Result struct {
	Dimension string
	Input     int // staged rows examined
	Created   int // versions opened (first sightings and supersedes)
	Closed    int // versions closed by a supersede
	Unchanged int // keys whose attribute hash matched the open version
}

// Engine snapshots staged entities into the SCD2 dimension stores.
type Engine struct {
	stagingCustomers storage.StagingCustomerStore
	stagingProducts  storage.StagingProductStore
	customers        storage.CustomerDimensionStore
	products         storage.ProductDimensionStore
	clock            func() time.Time
	verbose          bool
}

// NewEngine creates a snapshot engine over the staging read side and the
// dimension write side.
func NewEngine(
	stagingCustomers storage.StagingCustomerStore,
	stagingProducts storage.StagingProductStore,
	customers storage.CustomerDimensionStore,
	products storage.ProductDimensionStore,
) *Engine {
	return &Engine{
		stagingCustomers: stagingCustomers,
		stagingProducts:  stagingProducts,
		customers:        customers,
		products:         products,
		clock:            func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (e *Engine) WithClock(clock func() time.Time) *Engine {
	e.clock = clock
	return e
}

// WithVerbose enables progress logging.
func (e *Engine) WithVerbose(verbose bool) *Engine {
	e.verbose = verbose
	return e
}

func (e *Engine) logf(format string, args ...any) {
	if e.verbose {
		log.Printf("[snapshot] "+format, args...)
	}
}

// SnapshotCustomers advances dim_customers to the staged customer state.
// All versions opened by one snapshot share a single valid_from timestamp.
func (e *Engine) SnapshotCustomers(ctx context.Context) (*Result, error) {
	validFrom := e.clock()
	result := &Result{Dimension: domain.ModelDimCustomers}

	rows, err := e.stagingCustomers.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", domain.ModelStgCustomers, err)
	}
	result.Input = len(rows)

	for _, s := range rows {
		next := customerVersionFrom(s, validFrom)

		current, err := e.customers.GetCurrent(ctx, s.CustomerID)
		switch {
		case errors.Is(err, storage.ErrNotFound):
			if _, err := e.customers.Insert(ctx, next); err != nil {
				return nil, fmt.Errorf("open first version for %s: %w", s.CustomerID, err)
			}
			result.Created++

		case err != nil:
			return nil, fmt.Errorf("read current version for %s: %w", s.CustomerID, err)

		case current.AttrHash == next.AttrHash:
			result.Unchanged++

		default:
			if _, err := e.customers.Supersede(ctx, next); err != nil {
				return nil, fmt.Errorf("supersede version for %s: %w", s.CustomerID, err)
			}
			result.Closed++
			result.Created++
		}
	}

	e.logf("%s: %d staged, %d created, %d closed, %d unchanged",
		result.Dimension, result.Input, result.Created, result.Closed, result.Unchanged)
	return result, nil
}

// SnapshotProducts advances dim_products to the staged product state.
func (e *Engine) SnapshotProducts(ctx context.Context) (*Result, error) {
	validFrom := e.clock()
	result := &Result{Dimension: domain.ModelDimProducts}

	rows, err := e.stagingProducts.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", domain.ModelStgProducts, err)
	}
	result.Input = len(rows)

	for _, p := range rows {
		next := productVersionFrom(p, validFrom)

		current, err := e.products.GetCurrent(ctx, p.ProductID)
		switch {
		case errors.Is(err, storage.ErrNotFound):
			if _, err := e.products.Insert(ctx, next); err != nil {
				return nil, fmt.Errorf("open first version for %s: %w", p.ProductID, err)
			}
			result.Created++

		case err != nil:
			return nil, fmt.Errorf("read current version for %s: %w", p.ProductID, err)

		case current.AttrHash == next.AttrHash:
			result.Unchanged++

		default:
			if _, err := e.products.Supersede(ctx, next); err != nil {
				return nil, fmt.Errorf("supersede version for %s: %w", p.ProductID, err)
			}
			result.Closed++
			result.Created++
		}
	}

	e.logf("%s: %d staged, %d created, %d closed, %d unchanged",
		result.Dimension, result.Input, result.Created, result.Closed, result.Unchanged)
	return result, nil
}
