// Package reporting renders pipeline runs for humans: a Markdown run
// summary and a CSV of quality check results, written under the report
// directory per run.
package reporting

import (
	"fmt"
	"time"

	"ecom-warehouse/internal/graph"
	"ecom-warehouse/internal/orchestrator"
)

// Report is the renderable view of one pipeline run.
type Report struct {
	RunID       string
	StartedAt   time.Time
	FinishedAt  time.Time
	FullRefresh bool
	Failed      bool

	Models  []ModelRow
	Quality *QualitySection // nil when no model built
}

// ModelRow is one model's line in the run summary, in topological order.
type ModelRow struct {
	Model           string
	Materialization string
	Status          string
	Elapsed         time.Duration
	Detail          string // layer counters for succeeded models
	Problem         string // error text or skip reason
}

// QualitySection summarizes the check battery outcome.
type QualitySection struct {
	Total    int
	Passed   int
	Failed   int
	Errored  int
	Warnings int
	Failures []CheckRow // failed checks only, battery order
}

// CheckRow is one failed assertion.
type CheckRow struct {
	Model       string
	Check       string
	Column      string
	Severity    string
	FailingRows int64
	Message     string
}

// FromRun assembles the renderable report from a run result.
func FromRun(run *orchestrator.RunResult) *Report {
	materializations := make(map[string]string)
	for _, m := range orchestrator.Models() {
		materializations[m.Name] = m.Materialization
	}

	report := &Report{
		RunID:       run.RunID,
		StartedAt:   run.StartedAt,
		FinishedAt:  run.FinishedAt,
		FullRefresh: run.FullRefresh,
		Failed:      run.Failed,
	}

	for _, mr := range run.Models {
		row := ModelRow{
			Model:           mr.Model,
			Materialization: materializations[mr.Model],
			Status:          string(mr.Status),
			Elapsed:         mr.Elapsed,
		}
		switch mr.Status {
		case graph.StatusSucceeded:
			row.Detail = detailFor(mr)
		case graph.StatusFailed:
			if mr.Err != nil {
				row.Problem = mr.Err.Error()
			}
		case graph.StatusSkipped:
			row.Problem = mr.Reason
		}
		report.Models = append(report.Models, row)
	}

	if run.Quality != nil {
		section := &QualitySection{
			Total:    run.Quality.Total,
			Passed:   run.Quality.Passed,
			Failed:   run.Quality.Failed,
			Errored:  run.Quality.Errored,
			Warnings: run.Quality.Warnings,
		}
		for _, r := range run.Quality.Results {
			if r.Passed {
				continue
			}
			section.Failures = append(section.Failures, CheckRow{
				Model:       r.Model,
				Check:       r.CheckName,
				Column:      r.Column,
				Severity:    r.Severity.String(),
				FailingRows: r.FailingRows,
				Message:     r.Message,
			})
		}
		report.Quality = section
	}

	return report
}

// detailFor formats the layer counters of a succeeded model.
func detailFor(mr orchestrator.ModelResult) string {
	switch {
	case mr.Staging != nil:
		return fmt.Sprintf("loaded %d of %d (%d duplicates, %d rejected)",
			mr.Staging.Loaded, mr.Staging.Input, mr.Staging.Duplicates, mr.Staging.Rejected())
	case mr.Snapshot != nil:
		return fmt.Sprintf("created %d, closed %d, unchanged %d",
			mr.Snapshot.Created, mr.Snapshot.Closed, mr.Snapshot.Unchanged)
	case mr.Merge != nil:
		if mr.Merge.NoOp {
			return "no-op, watermark unchanged"
		}
		return fmt.Sprintf("inserted %d, updated %d, skipped %d, filtered %d, orphaned %d, watermark %s",
			mr.Merge.Inserted, mr.Merge.Updated, mr.Merge.Skipped,
			mr.Merge.Filtered, mr.Merge.Orphaned, mr.Merge.Watermark.Format("2006-01-02"))
	}
	return ""
}
