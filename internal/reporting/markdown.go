package reporting

import (
	"fmt"
	"strings"
	"time"
)

// RenderMarkdown renders the run report as a Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString(fmt.Sprintf("# Warehouse Run %s\n\n", r.RunID))
	sb.WriteString(fmt.Sprintf("Started: %s\n", r.StartedAt.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Finished: %s\n", r.FinishedAt.Format(time.RFC3339)))
	status := "SUCCEEDED"
	if r.Failed {
		status = "FAILED"
	}
	sb.WriteString(fmt.Sprintf("Status: %s\n", status))
	if r.FullRefresh {
		sb.WriteString("Full refresh: fact tables were reset before the run.\n")
	}
	sb.WriteString("\n")

	// Models
	sb.WriteString("## Models\n\n")
	if len(r.Models) > 0 {
		sb.WriteString("| Model | Materialization | Status | Elapsed | Detail |\n")
		sb.WriteString("|-------|-----------------|--------|---------|--------|\n")
		for _, m := range r.Models {
			detail := m.Detail
			if m.Problem != "" {
				detail = m.Problem
			}
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s |\n",
				m.Model, m.Materialization, m.Status, m.Elapsed, detail))
		}
	} else {
		sb.WriteString("No models were built.\n")
	}
	sb.WriteString("\n")

	// Quality
	sb.WriteString("## Quality Checks\n\n")
	if r.Quality != nil {
		sb.WriteString(fmt.Sprintf("%d checks: %d passed, %d failed (%d warnings, %d errored)\n\n",
			r.Quality.Total, r.Quality.Passed, r.Quality.Failed,
			r.Quality.Warnings, r.Quality.Errored))

		if len(r.Quality.Failures) > 0 {
			sb.WriteString("### Failures\n\n")
			sb.WriteString("| Model | Check | Column | Severity | Failing Rows | Message |\n")
			sb.WriteString("|-------|-------|--------|----------|--------------|--------|\n")
			for _, f := range r.Quality.Failures {
				sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %d | %s |\n",
					f.Model, f.Check, f.Column, f.Severity, f.FailingRows, f.Message))
			}
			sb.WriteString("\n")
		} else {
			sb.WriteString("All checks passed.\n\n")
		}
	} else {
		sb.WriteString("No checks ran.\n\n")
	}

	return sb.String()
}
