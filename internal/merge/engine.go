// Package merge loads the fact tables incrementally. Each fact keeps a
// watermark, the maximum order_date it has committed; a merge selects staged
// rows strictly beyond it, upserts them in one transaction, and advances the
// watermark to the maximum applied value. Invocations with nothing new are
// tolerated no-ops.
package merge

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"ecom-warehouse/internal/domain"
	"ecom-warehouse/internal/source"
	"ecom-warehouse/internal/storage"
)

// Result summarizes one fact merge invocation.
type Result struct {
	Fact      string
	Staged    int       // staged rows examined
	Filtered  int       // rows at or behind the stored watermark, not selected
	Orphaned  int       // item rows whose parent order is not staged
	Inserted  int64     // new natural keys committed
	Updated   int64     // existing keys overwritten by a strictly newer row
	Skipped   int64     // selected rows the store refused as not newer
	NoOp      bool      // nothing selected, watermark untouched
	Watermark time.Time // committed watermark after this invocation, zero if none
}

// Engine merges staged transactional rows into the fact stores.
type Engine struct {
	stagingOrders storage.StagingOrderStore
	stagingItems  storage.StagingOrderItemStore
	orderFacts    storage.OrderFactStore
	itemFacts     storage.OrderItemFactStore
	clock         func() time.Time
	verbose       bool
}

// NewEngine creates a merge engine over the staging read side and the fact
// write side.
func NewEngine(
	stagingOrders storage.StagingOrderStore,
	stagingItems storage.StagingOrderItemStore,
	orderFacts storage.OrderFactStore,
	itemFacts storage.OrderItemFactStore,
) *Engine {
	return &Engine{
		stagingOrders: stagingOrders,
		stagingItems:  stagingItems,
		orderFacts:    orderFacts,
		itemFacts:     itemFacts,
		clock:         func() time.Time { return time.Now().UTC() },
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
		log.Printf("[merge] "+format, args...)
	}
}

// MergeOrders merges staged orders into fact_orders. observedColumns is the
// column set seen on the orders extract this run; drift from the contract
// fails the merge before any write.
func (e *Engine) MergeOrders(ctx context.Context, observedColumns []string) (*Result, error) {
	if err := ValidateColumns(domain.ModelFactOrders, observedColumns, source.OrderColumns); err != nil {
		return nil, err
	}

	result := &Result{Fact: domain.ModelFactOrders}

	mark, err := e.orderFacts.Watermark(ctx)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("read %s watermark: %w", result.Fact, err)
	}
	// ErrNotFound means first merge: the zero mark selects everything

	staged, err := e.stagingOrders.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", domain.ModelStgOrders, err)
	}
	result.Staged = len(staged)

	loadedAt := e.clock()
	var rows []*domain.OrderFact
	var highWater time.Time
	for _, o := range staged {
		if !o.OrderDate.After(mark) {
			result.Filtered++
			continue
		}
		rows = append(rows, orderFactFrom(o, loadedAt))
		if o.OrderDate.After(highWater) {
			highWater = o.OrderDate
		}
	}

	if len(rows) == 0 {
		result.NoOp = true
		result.Watermark = mark
		e.logf("%s: no rows beyond watermark %s", result.Fact, formatMark(mark))
		return result, nil
	}

	stats, err := e.orderFacts.Merge(ctx, rows, highWater)
	if err != nil {
		return nil, fmt.Errorf("merge %s: %w", result.Fact, err)
	}

	result.Inserted = stats.Inserted
	result.Updated = stats.Updated
	result.Skipped = stats.Skipped
	result.Watermark = highWater
	e.logf("%s: %d staged, %d selected, %d inserted, %d updated, %d skipped, watermark %s",
		result.Fact, result.Staged, len(rows), stats.Inserted, stats.Updated, stats.Skipped, formatMark(highWater))
	return result, nil
}

// MergeOrderItems merges staged order lines into fact_order_items. The
// watermark value of a line is its parent order's order_date; lines without
// a staged parent are counted as orphans and dropped, never merged.
func (e *Engine) MergeOrderItems(ctx context.Context, observedColumns []string) (*Result, error) {
	if err := ValidateColumns(domain.ModelFactOrderItems, observedColumns, source.OrderItemColumns); err != nil {
		return nil, err
	}

	result := &Result{Fact: domain.ModelFactOrderItems}

	mark, err := e.itemFacts.Watermark(ctx)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("read %s watermark: %w", result.Fact, err)
	}

	staged, err := e.stagingItems.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", domain.ModelStgOrderItems, err)
	}
	result.Staged = len(staged)

	orders, err := e.stagingOrders.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", domain.ModelStgOrders, err)
	}
	parents := make(map[string]*domain.StagingOrder, len(orders))
	for _, o := range orders {
		parents[o.OrderID] = o
	}

	loadedAt := e.clock()
	var rows []*domain.OrderItemFact
	var highWater time.Time
	for _, it := range staged {
		parent, ok := parents[it.OrderID]
		if !ok {
			result.Orphaned++
			continue
		}
		if !parent.OrderDate.After(mark) {
			result.Filtered++
			continue
		}
		rows = append(rows, orderItemFactFrom(it, parent, loadedAt))
		if parent.OrderDate.After(highWater) {
			highWater = parent.OrderDate
		}
	}

	if len(rows) == 0 {
		result.NoOp = true
		result.Watermark = mark
		e.logf("%s: no rows beyond watermark %s", result.Fact, formatMark(mark))
		return result, nil
	}

	stats, err := e.itemFacts.Merge(ctx, rows, highWater)
	if err != nil {
		return nil, fmt.Errorf("merge %s: %w", result.Fact, err)
	}

	result.Inserted = stats.Inserted
	result.Updated = stats.Updated
	result.Skipped = stats.Skipped
	result.Watermark = highWater
	e.logf("%s: %d staged, %d selected, %d orphaned, %d inserted, %d updated, %d skipped, watermark %s",
		result.Fact, result.Staged, len(rows), result.Orphaned, stats.Inserted, stats.Updated, stats.Skipped, formatMark(highWater))
	return result, nil
}

func formatMark(mark time.Time) string {
	if mark.IsZero() {
		return "none"
	}
	return mark.Format("2006-01-02")
}
