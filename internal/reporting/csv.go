package reporting

import (
	"fmt"
	"strings"
	"time"

	"ecom-warehouse/internal/domain"
)

// RenderQualityCSV renders check results as a CSV string, one row per
// assertion in battery order. The message field is quoted because store
// error text may contain delimiters.
func RenderQualityCSV(results []*domain.CheckResult) string {
	var sb strings.Builder

	// Header
	sb.WriteString("run_id,model,check,column,severity,passed,failing_rows,executed_at,message\n")

	// Rows
	for _, r := range results {
		sb.WriteString(fmt.Sprintf("%s,%s,%s,%s,%s,%t,%d,%s,\"%s\"\n",
			r.RunID,
			r.Model,
			r.CheckName,
			r.Column,
			r.Severity,
			r.Passed,
			r.FailingRows,
			r.ExecutedAt.Format(time.RFC3339),
			strings.ReplaceAll(r.Message, `"`, `""`),
		))
	}

	return sb.String()
}
