package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"ecom-warehouse/internal/orchestrator"
	"ecom-warehouse/internal/reporting"
)

// BuildOptions holds flags for the build command.
type BuildOptions struct {
	*RootOptions
	Select      []string
	FullRefresh bool
	ReportDir   string
}

// NewBuildCommand creates the build command.
func NewBuildCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BuildOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build warehouse models in dependency order",
		Long: `Build the warehouse models in dependency order, then run the quality
check battery over everything that built and write a run report.

With --select, only the named models and their ancestors build. With
--full-refresh, fact tables and their watermarks reset before building;
dimension history is append-only and survives a full refresh.

Exit codes:
  0 - every selected model built and no error-severity check failed
  1 - a model failed, was skipped, or an error-severity check failed
  2 - command error (bad project file, storage unreachable)

Examples:
  warehouse build
  warehouse build --select fact_orders
  warehouse build --full-refresh --report-dir ./reports`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(opts, cmd)
		},
	}

	cmd.Flags().StringSliceVar(&opts.Select, "select", nil, "models to build, plus their ancestors (default: all)")
	cmd.Flags().BoolVar(&opts.FullRefresh, "full-refresh", false, "reset fact tables and watermarks before building")
	cmd.Flags().StringVar(&opts.ReportDir, "report-dir", "", "directory for run reports (default: WAREHOUSE_REPORT_DIR or \"reports\")")

	return cmd
}

func runBuild(opts *BuildOptions, cmd *cobra.Command) error {
	ctx, stop := signalContext(cmd)
	defer stop()

	if err := validateSelection(opts.Select); err != nil {
		return WrapExitError(ExitCommandError, "invalid selection", err)
	}

	project, err := loadProject(opts.RootOptions)
	if err != nil {
		return WrapExitError(ExitCommandError, "load project", err)
	}

	stores, err := openStores(ctx, opts.RootOptions)
	if err != nil {
		return WrapExitError(ExitCommandError, "open storage", err)
	}
	defer stores.Close()

	orch, err := orchestrator.New(orchestrator.Options{
		Project:           project,
		DataDir:           opts.DataDir,
		StagingCustomers:  stores.StagingCustomers,
		StagingProducts:   stores.StagingProducts,
		StagingOrders:     stores.StagingOrders,
		StagingOrderItems: stores.StagingOrderItems,
		Customers:         stores.Customers,
		Products:          stores.Products,
		OrderFacts:        stores.OrderFacts,
		OrderItemFacts:    stores.OrderItemFacts,
		CheckResults:      stores.CheckResults,
		Verbose:           opts.Verbose,
	})
	if err != nil {
		return WrapExitError(ExitCommandError, "assemble model graph", err)
	}

	run, err := orch.Run(ctx, orchestrator.RunOptions{
		Select:      opts.Select,
		FullRefresh: opts.FullRefresh,
	})
	if err != nil {
		code := ExitFailure
		if ctx.Err() != nil {
			code = ExitCommandError
		}
		return WrapExitError(code, "pipeline run", err)
	}

	reportDir := opts.ReportDir
	if reportDir == "" {
		reportDir = opts.Env.ReportDir
	}
	mdPath, csvPath, err := reporting.WriteFiles(reportDir, run)
	if err != nil {
		return WrapExitError(ExitFailure, "write run report", err)
	}

	w := cmd.OutOrStdout()
	printRun(w, run)
	fmt.Fprintf(w, "Report: %s\n", mdPath)
	if csvPath != "" {
		fmt.Fprintf(w, "Quality CSV: %s\n", csvPath)
	}

	if run.Failed {
		return NewExitError(ExitFailure, "run failed")
	}
	return nil
}

// printRun renders a run result for the terminal: one line per model in
// topological order, then the check battery summary with every failure.
func printRun(w io.Writer, run *orchestrator.RunResult) {
	rep := reporting.FromRun(run)

	header := fmt.Sprintf("Run %s", rep.RunID)
	if rep.FullRefresh {
		header += " (full refresh)"
	}
	fmt.Fprintln(w, header)

	for _, row := range rep.Models {
		line := fmt.Sprintf("  %-16s %-12s %-9s", row.Model, row.Materialization, row.Status)
		switch {
		case row.Detail != "":
			line += "  " + row.Detail
		case row.Problem != "":
			line += "  " + row.Problem
		}
		fmt.Fprintln(w, line)
	}

	if rep.Quality != nil {
		fmt.Fprintf(w, "Checks: %d total, %d passed, %d failed (%d warnings)\n",
			rep.Quality.Total, rep.Quality.Passed, rep.Quality.Failed, rep.Quality.Warnings)
		printCheckFailures(w, rep.Quality.Failures)
	}
}

func printCheckFailures(w io.Writer, failures []reporting.CheckRow) {
	for _, f := range failures {
		target := f.Model + "." + f.Check
		if f.Column != "" {
			target += "(" + f.Column + ")"
		}
		fmt.Fprintf(w, "  [%s] %s: %d failing rows", f.Severity, target, f.FailingRows)
		if f.Message != "" {
			fmt.Fprintf(w, " - %s", f.Message)
		}
		fmt.Fprintln(w)
	}
}

// validateSelection rejects model names outside the graph before any
// storage is touched.
func validateSelection(selected []string) error {
	if len(selected) == 0 {
		return nil
	}
	g, err := orchestrator.ModelGraph()
	if err != nil {
		return err
	}
	for _, name := range selected {
		if _, ok := g.Lookup(name); !ok {
			return fmt.Errorf("unknown model %q", name)
		}
	}
	return nil
}

// signalContext derives a context cancelled on SIGINT or SIGTERM. The
// command's own context is honored so tests can impose deadlines.
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
