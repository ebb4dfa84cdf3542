package cli

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"ecom-warehouse/internal/config"
	"ecom-warehouse/internal/source"
)

// NewFreshnessCommand creates the freshness command.
func NewFreshnessCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "freshness",
		Short: "Evaluate source extract staleness",
		Long: `Evaluate every source extract against its declared freshness
thresholds. Staleness is the age of the maximum loaded-at field value;
sources without thresholds are listed but not evaluated.

Exit codes:
  0 - no source stale at error level (warnings allowed)
  1 - at least one source stale at error level, or unreadable
  2 - command error (bad project file)`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFreshness(rootOpts, cmd)
		},
	}

	return cmd
}

// freshnessStatus is one source's staleness verdict.
type freshnessStatus struct {
	Source  string
	Level   string // ok | warn | error | skipped
	Max     time.Time
	Age     time.Duration
	Rows    int64
	Problem string // set when the extract could not be evaluated
}

func runFreshness(opts *RootOptions, cmd *cobra.Command) error {
	project, err := loadProject(opts)
	if err != nil {
		return WrapExitError(ExitCommandError, "load project", err)
	}

	now := time.Now().UTC()
	statuses := evaluateFreshness(project, opts.DataDir, now)
	printFreshness(cmd.OutOrStdout(), statuses, now)

	stale := 0
	for _, st := range statuses {
		if st.Level == "error" {
			stale++
		}
	}
	if stale > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d source(s) stale at error level", stale))
	}
	return nil
}

// evaluateFreshness checks every declared source, in name order. A source
// that cannot be evaluated (unreadable file, broken loaded-at column, no
// values at all) counts at error level because its staleness is unknown.
func evaluateFreshness(project *config.Project, dataDir string, now time.Time) []freshnessStatus {
	names := make([]string, 0, len(project.Sources))
	for name := range project.Sources {
		names = append(names, name)
	}
	sort.Strings(names)

	var statuses []freshnessStatus
	for _, name := range names {
		src := project.Sources[name]
		if !src.Freshness.Enabled() {
			statuses = append(statuses, freshnessStatus{Source: name, Level: "skipped"})
			continue
		}

		max, rows, err := source.MaxFieldTime(src.Resolve(dataDir), src.LoadedAtField)
		if err != nil {
			statuses = append(statuses, freshnessStatus{Source: name, Level: "error", Problem: err.Error()})
			continue
		}
		if max.IsZero() {
			statuses = append(statuses, freshnessStatus{
				Source: name, Level: "error", Rows: rows,
				Problem: fmt.Sprintf("no %s values to judge staleness from", src.LoadedAtField),
			})
			continue
		}

		age := now.Sub(max)
		level := "ok"
		if w := src.Freshness.WarnAfter.Std(); w > 0 && age > w {
			level = "warn"
		}
		if e := src.Freshness.ErrorAfter.Std(); e > 0 && age > e {
			level = "error"
		}
		statuses = append(statuses, freshnessStatus{
			Source: name, Level: level, Max: max, Age: age, Rows: rows,
		})
	}
	return statuses
}

func printFreshness(w io.Writer, statuses []freshnessStatus, now time.Time) {
	fmt.Fprintf(w, "Source freshness as of %s\n", now.Format(time.RFC3339))
	for _, st := range statuses {
		switch {
		case st.Level == "skipped":
			fmt.Fprintf(w, "  %-12s %-7s no freshness thresholds\n", st.Source, st.Level)
		case st.Problem != "":
			fmt.Fprintf(w, "  %-12s %-7s %s\n", st.Source, st.Level, st.Problem)
		default:
			fmt.Fprintf(w, "  %-12s %-7s max %s, age %s (%d rows)\n",
				st.Source, st.Level, st.Max.Format("2006-01-02 15:04:05"),
				st.Age.Truncate(time.Second), st.Rows)
		}
	}
}
