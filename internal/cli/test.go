package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"ecom-warehouse/internal/orchestrator"
	"ecom-warehouse/internal/quality"
	"ecom-warehouse/internal/reporting"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Select []string
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test",
		Short: "Run quality checks without building",
		Long: `Run the quality check battery against the warehouse as it stands,
without building anything. Results persist under a fresh run ID.

Exit codes:
  0 - no error-severity check failed (warnings allowed)
  1 - at least one error-severity check failed
  2 - command error (unknown model, storage unreachable)

Examples:
  warehouse test
  warehouse test --select dim_customers,fact_orders`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTest(opts, cmd)
		},
	}

	cmd.Flags().StringSliceVar(&opts.Select, "select", nil, "models to check (default: all)")

	return cmd
}

func runTest(opts *TestOptions, cmd *cobra.Command) error {
	ctx, stop := signalContext(cmd)
	defer stop()

	if err := validateSelection(opts.Select); err != nil {
		return WrapExitError(ExitCommandError, "invalid selection", err)
	}

	stores, err := openStores(ctx, opts.RootOptions)
	if err != nil {
		return WrapExitError(ExitCommandError, "open storage", err)
	}
	defer stores.Close()

	orch, err := orchestrator.New(orchestrator.Options{
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

	report, err := orch.Test(ctx, opts.Select)
	if err != nil {
		return WrapExitError(ExitCommandError, "quality checks", err)
	}

	printQualityReport(cmd.OutOrStdout(), report)

	if !report.Ok() {
		failed := report.Failed - report.Warnings
		return NewExitError(ExitFailure, fmt.Sprintf("%d check(s) failed at error severity", failed))
	}
	return nil
}

func printQualityReport(w io.Writer, report *quality.Report) {
	fmt.Fprintf(w, "Checks: %d total, %d passed, %d failed (%d warnings)\n",
		report.Total, report.Passed, report.Failed, report.Warnings)

	var failures []reporting.CheckRow
	for _, r := range report.Results {
		if r.Passed {
			continue
		}
		failures = append(failures, reporting.CheckRow{
			Model:       r.Model,
			Check:       r.CheckName,
			Column:      r.Column,
			Severity:    r.Severity.String(),
			FailingRows: r.FailingRows,
			Message:     r.Message,
		})
	}
	printCheckFailures(w, failures)
}
