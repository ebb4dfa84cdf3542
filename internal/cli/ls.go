package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"ecom-warehouse/internal/orchestrator"
)

// LsOptions holds flags for the ls command.
type LsOptions struct {
	*RootOptions
	Format string // "text" | "json"
}

// validFormats defines the allowed ls output formats.
var validFormats = []string{"text", "json"}

// NewLsCommand creates the ls command.
func NewLsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List warehouse models in topological order",
		Long: `List every warehouse model in topological order with its kind,
materialization, dependencies, and wave. Models in the same wave share no
ancestry and build in parallel.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLs(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Format, "format", "text", "output format (text|json)")

	return cmd
}

// modelListing is one model's row in the listing.
type modelListing struct {
	Name            string   `json:"name"`
	Kind            string   `json:"kind"`
	Materialization string   `json:"materialization"`
	DependsOn       []string `json:"depends_on,omitempty"`
	Wave            int      `json:"wave"`
}

func runLs(opts *LsOptions, cmd *cobra.Command) error {
	if !isValidFormat(opts.Format) {
		return NewExitError(ExitCommandError,
			fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, validFormats))
	}

	g, err := orchestrator.ModelGraph()
	if err != nil {
		return WrapExitError(ExitCommandError, "resolve model graph", err)
	}

	waveOf := make(map[string]int)
	for i, wave := range g.Waves() {
		for _, name := range wave {
			waveOf[name] = i + 1
		}
	}

	listings := make([]modelListing, 0, len(g.Models()))
	for _, m := range g.Models() {
		listings = append(listings, modelListing{
			Name:            m.Name,
			Kind:            string(m.Kind),
			Materialization: m.Materialization,
			DependsOn:       m.DependsOn,
			Wave:            waveOf[m.Name],
		})
	}

	if opts.Format == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(listings)
	}

	printListings(cmd.OutOrStdout(), listings)
	return nil
}

func printListings(w io.Writer, listings []modelListing) {
	for _, l := range listings {
		line := fmt.Sprintf("%-16s %-10s %-12s wave %d", l.Name, l.Kind, l.Materialization, l.Wave)
		if len(l.DependsOn) > 0 {
			line += "  deps: " + strings.Join(l.DependsOn, ", ")
		}
		fmt.Fprintln(w, line)
	}
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range validFormats {
		if f == format {
			return true
		}
	}
	return false
}
