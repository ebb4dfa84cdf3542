// Package orchestrator wires the source readers, staging runner, dimension
// snapshot engine, fact merge engine, and quality suite into dependency-
// ordered pipeline runs. Models execute wave by wave over the resolved
// graph; a failed model skips only its own dependents.
package orchestrator

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"ecom-warehouse/internal/config"
	"ecom-warehouse/internal/domain"
	"ecom-warehouse/internal/graph"
	"ecom-warehouse/internal/merge"
	"ecom-warehouse/internal/observability"
	"ecom-warehouse/internal/quality"
	"ecom-warehouse/internal/snapshot"
	"ecom-warehouse/internal/source"
	"ecom-warehouse/internal/staging"
	"ecom-warehouse/internal/storage"
)

// Models returns the warehouse model descriptors with their dependency
// edges. Dimensions depend on their staging model; facts depend on their
// staging model plus every dimension they resolve keys against; the item
// fact also depends on the order fact it inherits watermarks from.
func Models() []graph.Model {
	return []graph.Model{
		{Name: domain.ModelStgCustomers, Kind: graph.KindStaging, Materialization: graph.MaterializationTable},
		{Name: domain.ModelStgProducts, Kind: graph.KindStaging, Materialization: graph.MaterializationTable},
		{Name: domain.ModelStgOrders, Kind: graph.KindStaging, Materialization: graph.MaterializationTable},
		{Name: domain.ModelStgOrderItems, Kind: graph.KindStaging, Materialization: graph.MaterializationTable},
		{Name: domain.ModelDimCustomers, Kind: graph.KindDimension, Materialization: graph.MaterializationSCD2,
			DependsOn: []string{domain.ModelStgCustomers}},
		{Name: domain.ModelDimProducts, Kind: graph.KindDimension, Materialization: graph.MaterializationSCD2,
			DependsOn: []string{domain.ModelStgProducts}},
		{Name: domain.ModelFactOrders, Kind: graph.KindFact, Materialization: graph.MaterializationIncremental,
			DependsOn: []string{domain.ModelStgOrders, domain.ModelDimCustomers}},
		{Name: domain.ModelFactOrderItems, Kind: graph.KindFact, Materialization: graph.MaterializationIncremental,
			DependsOn: []string{domain.ModelStgOrderItems, domain.ModelStgOrders, domain.ModelDimProducts, domain.ModelFactOrders}},
	}
}

// ModelGraph resolves the full warehouse model graph.
func ModelGraph() (*graph.Graph, error) {
	return graph.New(Models())
}

// Options for creating an Orchestrator.
type Options struct {
	// Project declares the source extracts. Nil uses config.DefaultProject.
	Project *config.Project
	// DataDir anchors relative extract paths.
	DataDir string

	// Required stores
	StagingCustomers  storage.StagingCustomerStore
	StagingProducts   storage.StagingProductStore
	StagingOrders     storage.StagingOrderStore
	StagingOrderItems storage.StagingOrderItemStore
	Customers         storage.CustomerDimensionStore
	Products          storage.ProductDimensionStore
	OrderFacts        storage.OrderFactStore
	OrderItemFacts    storage.OrderItemFactStore
	CheckResults      storage.CheckResultStore

	// StagingConfig overrides the normalization thresholds. Nil uses
	// staging.DefaultConfig.
	StagingConfig *staging.Config

	// Parallelism bounds concurrent model builds within a wave. Zero or
	// negative means the wave width.
	Parallelism int

	Verbose bool
}

// Orchestrator coordinates pipeline runs over the model graph.
// Flow: staging → dimensions → facts → quality checks.
type Orchestrator struct {
	project *config.Project
	dataDir string

	staging  *staging.Runner
	snapshot *snapshot.Engine
	merge    *merge.Engine
	quality  *quality.Suite

	orderFacts     storage.OrderFactStore
	orderItemFacts storage.OrderItemFactStore

	graph       *graph.Graph
	parallelism int
	clock       func() time.Time
	verbose     bool
}

// New creates an Orchestrator over the given stores.
func New(opts Options) (*Orchestrator, error) {
	g, err := ModelGraph()
	if err != nil {
		return nil, err
	}

	project := opts.Project
	if project == nil {
		project = config.DefaultProject()
	}
	cfg := staging.DefaultConfig()
	if opts.StagingConfig != nil {
		cfg = *opts.StagingConfig
	}

	o := &Orchestrator{
		project: project,
		dataDir: opts.DataDir,
		staging: staging.NewRunner(cfg, opts.StagingCustomers, opts.StagingProducts,
			opts.StagingOrders, opts.StagingOrderItems).WithVerbose(opts.Verbose),
		snapshot: snapshot.NewEngine(opts.StagingCustomers, opts.StagingProducts,
			opts.Customers, opts.Products).WithVerbose(opts.Verbose),
		merge: merge.NewEngine(opts.StagingOrders, opts.StagingOrderItems,
			opts.OrderFacts, opts.OrderItemFacts).WithVerbose(opts.Verbose),
		quality: quality.NewSuite(quality.SuiteOptions{
			StagingCustomers:  opts.StagingCustomers,
			StagingProducts:   opts.StagingProducts,
			StagingOrders:     opts.StagingOrders,
			StagingOrderItems: opts.StagingOrderItems,
			Customers:         opts.Customers,
			Products:          opts.Products,
			OrderFacts:        opts.OrderFacts,
			OrderItemFacts:    opts.OrderItemFacts,
			Results:           opts.CheckResults,
		}).WithVerbose(opts.Verbose),
		orderFacts:     opts.OrderFacts,
		orderItemFacts: opts.OrderItemFacts,
		graph:          g,
		parallelism:    opts.Parallelism,
		clock:          func() time.Time { return time.Now().UTC() },
		verbose:        opts.Verbose,
	}
	return o, nil
}

// WithClock sets a custom clock function for deterministic output. The
// clock propagates to every engine.
func (o *Orchestrator) WithClock(clock func() time.Time) *Orchestrator {
	o.clock = clock
	o.staging.WithClock(clock)
	o.snapshot.WithClock(clock)
	o.merge.WithClock(clock)
	o.quality.WithClock(clock)
	return o
}

// Graph returns the resolved model graph.
func (o *Orchestrator) Graph() *graph.Graph {
	return o.graph
}

func (o *Orchestrator) logf(format string, args ...any) {
	if o.verbose {
		log.Printf("[orchestrator] "+format, args...)
	}
}

// RunOptions select what a run builds.
type RunOptions struct {
	// Select restricts the run to these models plus their ancestors. Empty
	// builds everything.
	Select []string

	// FullRefresh resets the selected fact tables and their watermarks
	// before building, replaying all staged input. Dimension history is
	// append-only and never reset.
	FullRefresh bool
}

// ModelResult captures one model's build outcome.
type ModelResult struct {
	Model   string
	Status  graph.Status
	Err     error  // set for failed models
	Reason  string // set for skipped models
	Elapsed time.Duration

	// At most one of these is set for a succeeded model, by layer.
	Staging  *staging.BuildResult
	Snapshot *snapshot.Result
	Merge    *merge.Result
}

// RunResult contains the outcome of one pipeline run.
type RunResult struct {
	RunID       string
	StartedAt   time.Time
	FinishedAt  time.Time
	FullRefresh bool
	Models      []ModelResult // topological order
	Quality     *quality.Report
	// Failed is true when a model failed to build or an error-severity
	// check failed. Warn-severity failures do not set it.
	Failed bool
}

// runState carries per-run data between model builds. The observed column
// sets flow from the staging reads to the fact merges of the same run; a
// fact's staging model is always an ancestor, so the columns are recorded
// before the merge starts.
type runState struct {
	mu           sync.Mutex
	results      map[string]*ModelResult
	orderColumns []string
	itemColumns  []string
}

func (st *runState) record(model string, fill func(*ModelResult)) {
	st.mu.Lock()
	defer st.mu.Unlock()
	mr, ok := st.results[model]
	if !ok {
		mr = &ModelResult{Model: model}
		st.results[model] = mr
	}
	fill(mr)
}

// Run builds the selected models in dependency order, then validates every
// model that built and persists the check results under the run ID.
func (o *Orchestrator) Run(ctx context.Context, opts RunOptions) (*RunResult, error) {
	g := o.graph
	if len(opts.Select) > 0 {
		var err error
		g, err = o.graph.Subset(opts.Select)
		if err != nil {
			return nil, err
		}
	}

	result := &RunResult{
		RunID:       uuid.NewString(),
		StartedAt:   o.clock(),
		FullRefresh: opts.FullRefresh,
	}
	o.logf("run %s: building %d models", result.RunID, len(g.Models()))
	runStart := time.Now()

	if opts.FullRefresh {
		if err := o.fullRefresh(ctx, g); err != nil {
			return nil, err
		}
	}

	st := &runState{results: make(map[string]*ModelResult)}
	outcomes, err := g.Run(ctx, o.parallelism, func(ctx context.Context, m graph.Model) error {
		buildStart := time.Now()
		buildErr := o.buildModel(ctx, m, st)

		status := string(graph.StatusSucceeded)
		if buildErr != nil {
			status = string(graph.StatusFailed)
		}
		elapsed := time.Since(buildStart)
		observability.RecordModelBuild(m.Name, status, elapsed.Seconds())
		st.record(m.Name, func(mr *ModelResult) { mr.Elapsed = elapsed })
		return buildErr
	})
	if err != nil {
		return nil, err
	}

	var succeeded []string
	for _, oc := range outcomes {
		st.record(oc.Model, func(mr *ModelResult) {
			mr.Status = oc.Status
			mr.Err = oc.Err
			mr.Reason = oc.Reason
		})
		result.Models = append(result.Models, *st.results[oc.Model])
		switch oc.Status {
		case graph.StatusSucceeded:
			succeeded = append(succeeded, oc.Model)
		case graph.StatusFailed:
			result.Failed = true
			o.logf("model %s failed: %v", oc.Model, oc.Err)
		case graph.StatusSkipped:
			o.logf("model %s skipped: %s", oc.Model, oc.Reason)
		}
	}

	if len(succeeded) > 0 {
		report, err := o.quality.RunModels(ctx, result.RunID, succeeded)
		if err != nil {
			return nil, fmt.Errorf("quality checks: %w", err)
		}
		recordCheckMetrics(report)
		result.Quality = report
		if !report.Ok() {
			result.Failed = true
		}
	}

	result.FinishedAt = o.clock()
	runStatus := "succeeded"
	if result.Failed {
		runStatus = "failed"
	}
	observability.RecordRun(runStatus, time.Since(runStart).Seconds())
	o.logf("run %s %s", result.RunID, runStatus)
	return result, nil
}

// Test runs the quality battery against the warehouse as it stands, without
// building anything. Empty models means every model.
func (o *Orchestrator) Test(ctx context.Context, models []string) (*quality.Report, error) {
	for _, name := range models {
		if _, ok := o.graph.Lookup(name); !ok {
			return nil, fmt.Errorf("unknown model %q", name)
		}
	}

	report, err := o.quality.RunModels(ctx, uuid.NewString(), models)
	if err != nil {
		return nil, err
	}
	recordCheckMetrics(report)
	return report, nil
}

func recordCheckMetrics(report *quality.Report) {
	for _, r := range report.Results {
		observability.RecordCheck(r.Model, r.CheckName, r.Passed, r.FailingRows)
	}
}

// fullRefresh resets the fact targets inside the selection. Staging tables
// are rebuilt whole on every run and dimension history is append-only, so
// facts are the only models carrying refreshable state.
func (o *Orchestrator) fullRefresh(ctx context.Context, g *graph.Graph) error {
	if _, ok := g.Lookup(domain.ModelFactOrders); ok {
		o.logf("full refresh: resetting %s", domain.ModelFactOrders)
		if err := o.orderFacts.Reset(ctx); err != nil {
			return fmt.Errorf("reset %s: %w", domain.ModelFactOrders, err)
		}
	}
	if _, ok := g.Lookup(domain.ModelFactOrderItems); ok {
		o.logf("full refresh: resetting %s", domain.ModelFactOrderItems)
		if err := o.orderItemFacts.Reset(ctx); err != nil {
			return fmt.Errorf("reset %s: %w", domain.ModelFactOrderItems, err)
		}
	}
	return nil
}

// buildModel dispatches one model build.
func (o *Orchestrator) buildModel(ctx context.Context, m graph.Model, st *runState) error {
	switch m.Name {
	case domain.ModelStgCustomers:
		return o.buildStagingCustomers(ctx, st)
	case domain.ModelStgProducts:
		return o.buildStagingProducts(ctx, st)
	case domain.ModelStgOrders:
		return o.buildStagingOrders(ctx, st)
	case domain.ModelStgOrderItems:
		return o.buildStagingOrderItems(ctx, st)
	case domain.ModelDimCustomers:
		return o.buildCustomerDimension(ctx, st)
	case domain.ModelDimProducts:
		return o.buildProductDimension(ctx, st)
	case domain.ModelFactOrders:
		return o.buildOrderFacts(ctx, st)
	case domain.ModelFactOrderItems:
		return o.buildOrderItemFacts(ctx, st)
	}
	return fmt.Errorf("no builder for model %q", m.Name)
}

func (o *Orchestrator) buildStagingCustomers(ctx context.Context, st *runState) error {
	src, err := o.project.Source("customers")
	if err != nil {
		return err
	}
	raws, _, err := source.ReadCustomers(src.Resolve(o.dataDir))
	if err != nil {
		return err
	}
	result, err := o.staging.BuildCustomers(ctx, raws)
	if err != nil {
		return err
	}
	st.record(domain.ModelStgCustomers, func(mr *ModelResult) { mr.Staging = result })
	observability.RecordStagingBuild(domain.ModelStgCustomers, result.Loaded, result.RejectedByReason())
	return nil
}

func (o *Orchestrator) buildStagingProducts(ctx context.Context, st *runState) error {
	src, err := o.project.Source("products")
	if err != nil {
		return err
	}
	raws, _, err := source.ReadProducts(src.Resolve(o.dataDir))
	if err != nil {
		return err
	}
	result, err := o.staging.BuildProducts(ctx, raws)
	if err != nil {
		return err
	}
	st.record(domain.ModelStgProducts, func(mr *ModelResult) { mr.Staging = result })
	observability.RecordStagingBuild(domain.ModelStgProducts, result.Loaded, result.RejectedByReason())
	return nil
}

func (o *Orchestrator) buildStagingOrders(ctx context.Context, st *runState) error {
	src, err := o.project.Source("orders")
	if err != nil {
		return err
	}
	raws, columns, err := source.ReadOrders(src.Resolve(o.dataDir))
	if err != nil {
		return err
	}
	result, err := o.staging.BuildOrders(ctx, raws)
	if err != nil {
		return err
	}

	st.mu.Lock()
	st.orderColumns = columns
	st.mu.Unlock()

	st.record(domain.ModelStgOrders, func(mr *ModelResult) { mr.Staging = result })
	observability.RecordStagingBuild(domain.ModelStgOrders, result.Loaded, result.RejectedByReason())
	return nil
}

func (o *Orchestrator) buildStagingOrderItems(ctx context.Context, st *runState) error {
	src, err := o.project.Source("order_items")
	if err != nil {
		return err
	}
	raws, columns, err := source.ReadOrderItems(src.Resolve(o.dataDir))
	if err != nil {
		return err
	}
	result, err := o.staging.BuildOrderItems(ctx, raws)
	if err != nil {
		return err
	}

	st.mu.Lock()
	st.itemColumns = columns
	st.mu.Unlock()

	st.record(domain.ModelStgOrderItems, func(mr *ModelResult) { mr.Staging = result })
	observability.RecordStagingBuild(domain.ModelStgOrderItems, result.Loaded, result.RejectedByReason())
	return nil
}

func (o *Orchestrator) buildCustomerDimension(ctx context.Context, st *runState) error {
	result, err := o.snapshot.SnapshotCustomers(ctx)
	if err != nil {
		return err
	}
	st.record(domain.ModelDimCustomers, func(mr *ModelResult) { mr.Snapshot = result })
	observability.RecordSnapshot(domain.ModelDimCustomers, result.Created, result.Closed, result.Unchanged)
	return nil
}

func (o *Orchestrator) buildProductDimension(ctx context.Context, st *runState) error {
	result, err := o.snapshot.SnapshotProducts(ctx)
	if err != nil {
		return err
	}
	st.record(domain.ModelDimProducts, func(mr *ModelResult) { mr.Snapshot = result })
	observability.RecordSnapshot(domain.ModelDimProducts, result.Created, result.Closed, result.Unchanged)
	return nil
}

func (o *Orchestrator) buildOrderFacts(ctx context.Context, st *runState) error {
	st.mu.Lock()
	columns := st.orderColumns
	st.mu.Unlock()
	if len(columns) == 0 {
		return fmt.Errorf("orders extract was not read this run")
	}

	result, err := o.merge.MergeOrders(ctx, columns)
	if err != nil {
		return err
	}
	st.record(domain.ModelFactOrders, func(mr *ModelResult) { mr.Merge = result })
	recordMergeMetrics(result)
	return nil
}

func (o *Orchestrator) buildOrderItemFacts(ctx context.Context, st *runState) error {
	st.mu.Lock()
	columns := st.itemColumns
	st.mu.Unlock()
	if len(columns) == 0 {
		return fmt.Errorf("order_items extract was not read this run")
	}

	result, err := o.merge.MergeOrderItems(ctx, columns)
	if err != nil {
		return err
	}
	st.record(domain.ModelFactOrderItems, func(mr *ModelResult) { mr.Merge = result })
	recordMergeMetrics(result)
	return nil
}

func recordMergeMetrics(result *merge.Result) {
	status := "applied"
	if result.NoOp {
		status = "noop"
	}
	observability.RecordMerge(result.Fact, status,
		int(result.Inserted), int(result.Updated), int(result.Skipped), result.Orphaned)
	if !result.Watermark.IsZero() {
		observability.SetWatermark(result.Fact, result.Watermark)
	}
}
