package reporting

import (
	"fmt"
	"os"
	"path/filepath"

	"ecom-warehouse/internal/orchestrator"
)

// WriteFiles renders a run into the report directory: a Markdown summary
// and, when checks ran, a CSV of every check result. File names carry the
// run ID so successive runs never overwrite each other. Returns the written
// paths; the CSV path is empty when no checks ran.
func WriteFiles(dir string, run *orchestrator.RunResult) (string, string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", fmt.Errorf("create report dir: %w", err)
	}

	report := FromRun(run)

	mdPath := filepath.Join(dir, fmt.Sprintf("run_%s.md", run.RunID))
	if err := os.WriteFile(mdPath, []byte(RenderMarkdown(report)), 0o644); err != nil {
		return "", "", fmt.Errorf("write run report: %w", err)
	}

	if run.Quality == nil {
		return mdPath, "", nil
	}
	csvPath := filepath.Join(dir, fmt.Sprintf("quality_%s.csv", run.RunID))
	if err := os.WriteFile(csvPath, []byte(RenderQualityCSV(run.Quality.Results)), 0o644); err != nil {
		return "", "", fmt.Errorf("write quality csv: %w", err)
	}
	return mdPath, csvPath, nil
}
