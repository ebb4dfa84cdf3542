package staging

import (
	"context"
	"fmt"
	"log"
	"time"

	"ecom-warehouse/internal/domain"
	"ecom-warehouse/internal/source"
	"ecom-warehouse/internal/storage"
)

// BuildResult summarizes one staging model build.
type BuildResult struct {
	Model      string
	Input      int
	Loaded     int
	Duplicates int // same-key rows collapsed within the batch
	Rejections []Rejection
}

// Rejected returns the number of dropped rows.
func (r *BuildResult) Rejected() int {
	return len(r.Rejections)
}

// RejectedByReason groups the rejection count per reason.
func (r *BuildResult) RejectedByReason() map[string]int {
	if len(r.Rejections) == 0 {
		return nil
	}
	byReason := make(map[string]int)
	for _, rej := range r.Rejections {
		byReason[rej.Reason]++
	}
	return byReason
}

// Runner builds the staging tables: normalize every raw row, drop rejected
// ones with a counted reason, collapse same-key duplicates, and replace the
// staging table contents whole.
type Runner struct {
	cfg        Config
	customers  storage.StagingCustomerStore
	products   storage.StagingProductStore
	orders     storage.StagingOrderStore
	orderItems storage.StagingOrderItemStore
	clock      func() time.Time
	verbose    bool
}

// NewRunner creates a staging runner over the four staging stores.
func NewRunner(
	cfg Config,
	customers storage.StagingCustomerStore,
	products storage.StagingProductStore,
	orders storage.StagingOrderStore,
	orderItems storage.StagingOrderItemStore,
) *Runner {
	return &Runner{
		cfg:        cfg,
		customers:  customers,
		products:   products,
		orders:     orders,
		orderItems: orderItems,
		clock:      func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (r *Runner) WithClock(clock func() time.Time) *Runner {
	r.clock = clock
	return r
}

// WithVerbose enables progress logging.
func (r *Runner) WithVerbose(verbose bool) *Runner {
	r.verbose = verbose
	return r
}

func (r *Runner) logf(format string, args ...any) {
	if r.verbose {
		log.Printf("[staging] "+format, args...)
	}
}

// BuildCustomers rebuilds stg_customers from a raw extract.
func (r *Runner) BuildCustomers(ctx context.Context, raws []source.Customer) (*BuildResult, error) {
	loadedAt := r.clock()
	result := &BuildResult{Model: domain.ModelStgCustomers, Input: len(raws)}

	rows := make([]*domain.StagingCustomer, 0, len(raws))
	for _, raw := range raws {
		rec, rej := NormalizeCustomer(raw, loadedAt, r.cfg)
		if rej != nil {
			result.Rejections = append(result.Rejections, *rej)
			continue
		}
		rows = append(rows, rec)
	}
	rows, result.Duplicates = dedupeCustomers(rows)

	if err := r.customers.Replace(ctx, rows); err != nil {
		return nil, fmt.Errorf("replace %s: %w", result.Model, err)
	}
	result.Loaded = len(rows)
	r.logf("%s: %d in, %d loaded, %d rejected, %d duplicates",
		result.Model, result.Input, result.Loaded, result.Rejected(), result.Duplicates)
	return result, nil
}

// BuildProducts rebuilds stg_products from a raw extract.
func (r *Runner) BuildProducts(ctx context.Context, raws []source.Product) (*BuildResult, error) {
	loadedAt := r.clock()
	result := &BuildResult{Model: domain.ModelStgProducts, Input: len(raws)}

	rows := make([]*domain.StagingProduct, 0, len(raws))
	for _, raw := range raws {
		rec, rej := NormalizeProduct(raw, loadedAt, r.cfg)
		if rej != nil {
			result.Rejections = append(result.Rejections, *rej)
			continue
		}
		rows = append(rows, rec)
	}
	rows, result.Duplicates = dedupeProducts(rows)

	if err := r.products.Replace(ctx, rows); err != nil {
		return nil, fmt.Errorf("replace %s: %w", result.Model, err)
	}
	result.Loaded = len(rows)
	r.logf("%s: %d in, %d loaded, %d rejected, %d duplicates",
		result.Model, result.Input, result.Loaded, result.Rejected(), result.Duplicates)
	return result, nil
}

// BuildOrders rebuilds stg_orders from a raw extract.
func (r *Runner) BuildOrders(ctx context.Context, raws []source.Order) (*BuildResult, error) {
	loadedAt := r.clock()
	result := &BuildResult{Model: domain.ModelStgOrders, Input: len(raws)}

	rows := make([]*domain.StagingOrder, 0, len(raws))
	for _, raw := range raws {
		rec, rej := NormalizeOrder(raw, loadedAt, r.cfg)
		if rej != nil {
			result.Rejections = append(result.Rejections, *rej)
			continue
		}
		rows = append(rows, rec)
	}
	rows, result.Duplicates = dedupeOrders(rows)

	if err := r.orders.Replace(ctx, rows); err != nil {
		return nil, fmt.Errorf("replace %s: %w", result.Model, err)
	}
	result.Loaded = len(rows)
	r.logf("%s: %d in, %d loaded, %d rejected, %d duplicates",
		result.Model, result.Input, result.Loaded, result.Rejected(), result.Duplicates)
	return result, nil
}

// BuildOrderItems rebuilds stg_order_items from a raw extract.
func (r *Runner) BuildOrderItems(ctx context.Context, raws []source.OrderItem) (*BuildResult, error) {
	loadedAt := r.clock()
	result := &BuildResult{Model: domain.ModelStgOrderItems, Input: len(raws)}

	rows := make([]*domain.StagingOrderItem, 0, len(raws))
	for _, raw := range raws {
		rec, rej := NormalizeOrderItem(raw, loadedAt, r.cfg)
		if rej != nil {
			result.Rejections = append(result.Rejections, *rej)
			continue
		}
		rows = append(rows, rec)
	}
	rows, result.Duplicates = dedupeOrderItems(rows)

	if err := r.orderItems.Replace(ctx, rows); err != nil {
		return nil, fmt.Errorf("replace %s: %w", result.Model, err)
	}
	result.Loaded = len(rows)
	r.logf("%s: %d in, %d loaded, %d rejected, %d duplicates",
		result.Model, result.Input, result.Loaded, result.Rejected(), result.Duplicates)
	return result, nil
}
