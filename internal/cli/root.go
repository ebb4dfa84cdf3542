// Package cli implements the warehouse command line: build, test,
// freshness, and ls subcommands over the orchestrator and stores.
// Configuration precedence is flags over environment over project-file
// defaults; failures map to process exit codes via ExitError.
package cli

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"ecom-warehouse/internal/config"
	"ecom-warehouse/internal/observability"
)

// RootOptions holds global flags for all commands, plus the resolved
// environment configuration.
type RootOptions struct {
	ProjectPath string
	DataDir     string
	UseMemory   bool
	Verbose     bool
	MetricsAddr string

	// Env is the parsed environment, resolved before any command runs.
	Env config.Config
}

// NewRootCommand creates the root command for the warehouse CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "warehouse",
		Short: "Dimensional warehouse builder for e-commerce extracts",
		Long: `Builds a dimensional warehouse from CSV extracts: staged rows land in
ClickHouse, SCD2 dimensions and incrementally merged facts land in
PostgreSQL, and every run ends with a quality check battery and a report.

Storage backends come from WAREHOUSE_POSTGRES_DSN and
WAREHOUSE_CLICKHOUSE_DSN; pass --use-memory (or set neither DSN) to run
entirely in memory.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.resolve(cmd); err != nil {
				return err
			}

			logLevel := slog.LevelInfo
			if opts.Verbose {
				logLevel = slog.LevelDebug
			}
			handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: logLevel,
			})
			slog.SetDefault(slog.New(handler))

			if opts.MetricsAddr != "" {
				startMetricsServer(opts.MetricsAddr)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.ProjectPath, "project", "", "project file (default: warehouse.yml if present, else built-in sources)")
	cmd.PersistentFlags().StringVar(&opts.DataDir, "data-dir", "data", "directory holding the source extracts")
	cmd.PersistentFlags().BoolVar(&opts.UseMemory, "use-memory", false, "use in-memory stores instead of PostgreSQL and ClickHouse")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.MetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address (e.g. :9090)")

	cmd.AddCommand(NewBuildCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))
	cmd.AddCommand(NewFreshnessCommand(opts))
	cmd.AddCommand(NewLsCommand(opts))

	return cmd
}

// resolve parses the environment and applies flag-over-environment
// precedence: an explicitly set flag wins, otherwise the environment value
// (which itself falls back to the struct default) takes effect.
func (o *RootOptions) resolve(cmd *cobra.Command) error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	o.Env = cfg

	flags := cmd.Flags()
	if !flags.Changed("data-dir") && cfg.DataDir != "" {
		o.DataDir = cfg.DataDir
	}
	if !flags.Changed("metrics-addr") && cfg.MetricsAddr != "" {
		o.MetricsAddr = cfg.MetricsAddr
	}
	return nil
}

// loadProject returns the project configuration: the --project file when
// given, warehouse.yml from the working directory when present, and the
// built-in default layout otherwise.
func loadProject(opts *RootOptions) (*config.Project, error) {
	if opts.ProjectPath != "" {
		return config.Load(opts.ProjectPath)
	}
	if _, err := os.Stat("warehouse.yml"); err == nil {
		return config.Load("warehouse.yml")
	}
	return config.DefaultProject(), nil
}

// startMetricsServer serves /metrics and /health for the lifetime of the
// process. The server is not shut down gracefully; process exit takes it
// down with the run.
func startMetricsServer(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", observability.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})

	go func() {
		slog.Info("metrics server listening", "addr", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			slog.Error("metrics server stopped", "error", err)
		}
	}()
}
