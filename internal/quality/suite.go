// Package quality runs the post-build assertion battery over the warehouse:
// primary-key uniqueness, not-null on required columns, referential integrity
// from facts to current dimension versions, accepted-value checks on
// classification fields, and numeric-range checks. Every assertion executes
// independently; a failure is recorded with its failing row count and never
// aborts assertions on other models. The validator only reads data.
package quality

import (
	"context"
	"fmt"
	"log"
	"time"

	"ecom-warehouse/internal/domain"
	"ecom-warehouse/internal/storage"
)

// SuiteOptions contains the stores the validator reads and the store that
// receives results.
type SuiteOptions struct {
	StagingCustomers  storage.StagingCustomerStore
	StagingProducts   storage.StagingProductStore
	StagingOrders     storage.StagingOrderStore
	StagingOrderItems storage.StagingOrderItemStore
	Customers         storage.CustomerDimensionStore
	Products          storage.ProductDimensionStore
	OrderFacts        storage.OrderFactStore
	OrderItemFacts    storage.OrderItemFactStore
	Results           storage.CheckResultStore
}

// Suite is the fixed assertion battery. Checks are assembled once per run
// from typed constructors, one battery section per model.
type Suite struct {
	stagingCustomers  storage.StagingCustomerStore
	stagingProducts   storage.StagingProductStore
	stagingOrders     storage.StagingOrderStore
	stagingOrderItems storage.StagingOrderItemStore
	customers         storage.CustomerDimensionStore
	products          storage.ProductDimensionStore
	orderFacts        storage.OrderFactStore
	orderItemFacts    storage.OrderItemFactStore
	results           storage.CheckResultStore

	clock   func() time.Time
	verbose bool
}

// NewSuite creates a validation suite over the warehouse stores.
func NewSuite(opts SuiteOptions) *Suite {
	return &Suite{
		stagingCustomers:  opts.StagingCustomers,
		stagingProducts:   opts.StagingProducts,
		stagingOrders:     opts.StagingOrders,
		stagingOrderItems: opts.StagingOrderItems,
		customers:         opts.Customers,
		products:          opts.Products,
		orderFacts:        opts.OrderFacts,
		orderItemFacts:    opts.OrderItemFacts,
		results:           opts.Results,
		clock:             func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (s *Suite) WithClock(clock func() time.Time) *Suite {
	s.clock = clock
	return s
}

// WithVerbose enables progress logging.
func (s *Suite) WithVerbose(verbose bool) *Suite {
	s.verbose = verbose
	return s
}

func (s *Suite) logf(format string, args ...any) {
	if s.verbose {
		log.Printf("[quality] "+format, args...)
	}
}

// Report summarizes one validation run.
type Report struct {
	RunID    string
	Total    int // assertions executed
	Passed   int
	Failed   int
	Errored  int // assertions that could not execute, counted in Failed
	Warnings int // failed assertions with warn severity
	Results  []*domain.CheckResult
}

// Ok reports whether the run passed: no error-severity failures. Warn
// failures are reported but do not block promotion.
func (r *Report) Ok() bool {
	for _, res := range r.Results {
		if !res.Passed && res.Severity == domain.SeverityError {
			return false
		}
	}
	return true
}

// Run executes the full battery, persists results under runID, and returns
// the report.
func (s *Suite) Run(ctx context.Context, runID string) (*Report, error) {
	return s.RunModels(ctx, runID, nil)
}

// RunModels executes the battery for the selected models only. An empty
// selection runs everything. Model names outside the battery are ignored.
func (s *Suite) RunModels(ctx context.Context, runID string, models []string) (*Report, error) {
	if runID == "" {
		return nil, fmt.Errorf("run id is required")
	}

	selected := make(map[string]bool, len(models))
	for _, m := range models {
		selected[m] = true
	}

	executedAt := s.clock()
	report := &Report{RunID: runID}

	for _, c := range s.battery() {
		if len(models) > 0 && !selected[c.Model] {
			continue
		}

		result := &domain.CheckResult{
			RunID:      runID,
			Model:      c.Model,
			CheckName:  c.Name,
			Column:     c.Column,
			Severity:   c.Severity,
			ExecutedAt: executedAt,
		}

		failing, err := c.Eval(ctx)
		switch {
		case err != nil:
			result.Message = err.Error()
			report.Errored++
		case failing == 0:
			result.Passed = true
		default:
			result.FailingRows = failing
		}

		report.Total++
		if result.Passed {
			report.Passed++
		} else {
			report.Failed++
			if result.Severity == domain.SeverityWarn {
				report.Warnings++
			}
			if result.Message != "" {
				s.logf("%s %s %s: check error: %s", c.Model, c.Name, c.Column, result.Message)
			} else {
				s.logf("%s %s %s: %d failing rows", c.Model, c.Name, c.Column, failing)
			}
		}
		report.Results = append(report.Results, result)
	}

	if err := s.results.InsertBulk(ctx, report.Results); err != nil {
		return nil, fmt.Errorf("persist check results: %w", err)
	}

	s.logf("run %s: %d checks, %d passed, %d failed", runID, report.Total, report.Passed, report.Failed)
	return report, nil
}
