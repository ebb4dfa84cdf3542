package domain

import "time"

// Severity of a quality check.
type Severity string

const (
	SeverityWarn  Severity = "warn"
	SeverityError Severity = "error"
)

// String returns the string representation of Severity.
func (s Severity) String() string {
	return string(s)
}

// CheckResult is the outcome of one quality assertion over one model.
// Corresponds to quality_results table in PostgreSQL. Results are
// append-only so every failure stays queryable by name with its
// affected-row count.
type CheckResult struct {
	RunID       string    // pipeline run identifier
	Model       string    // model the check ran against
	CheckName   string    // unique|not_null|relationships|accepted_values|range
	Column      string    // checked column, empty for table-level checks
	Severity    Severity  //
	Passed      bool      //
	FailingRows int64     // number of rows violating the assertion
	Message     string    // populated when the check itself failed to execute
	ExecutedAt  time.Time //
}
