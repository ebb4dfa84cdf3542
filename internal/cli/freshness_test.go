package cli

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecom-warehouse/internal/config"
)

func freshnessProject(warn, errAfter time.Duration) *config.Project {
	return &config.Project{
		Name: "freshness-test",
		Sources: map[string]config.Source{
			"customers": {
				Path:          "customers.csv",
				LoadedAtField: "updated_at",
				Freshness:     config.Freshness{WarnAfter: config.Duration(warn), ErrorAfter: config.Duration(errAfter)},
			},
			"order_items": {Path: "order_items.csv"},
		},
	}
}

func statusFor(t *testing.T, statuses []freshnessStatus, source string) freshnessStatus {
	t.Helper()
	for _, st := range statuses {
		if st.Source == source {
			return st
		}
	}
	t.Fatalf("no status for source %s", source)
	return freshnessStatus{}
}

func TestEvaluateFreshness_Levels(t *testing.T) {
	dir := t.TempDir()
	writeExtract(t, dir, "customers.csv", "customer_id,updated_at\nC1,2024-03-01 10:00:00\n")
	project := freshnessProject(time.Hour, 3*time.Hour)

	tests := []struct {
		name string
		now  time.Time
		want string
	}{
		{"within warn threshold", time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC), "ok"},
		{"past warn threshold", time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC), "warn"},
		{"past error threshold", time.Date(2024, 3, 1, 14, 0, 0, 0, time.UTC), "error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			statuses := evaluateFreshness(project, dir, tt.now)
			st := statusFor(t, statuses, "customers")
			assert.Equal(t, tt.want, st.Level)
			assert.Equal(t, int64(1), st.Rows)
			assert.True(t, st.Max.Equal(time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)))
		})
	}
}

func TestEvaluateFreshness_NoThresholdsSkipped(t *testing.T) {
	dir := t.TempDir()
	writeExtract(t, dir, "customers.csv", "customer_id,updated_at\nC1,2024-03-01 10:00:00\n")

	statuses := evaluateFreshness(freshnessProject(time.Hour, 3*time.Hour), dir, time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC))

	st := statusFor(t, statuses, "order_items")
	assert.Equal(t, "skipped", st.Level)
	// Skipped sources never touch the filesystem, so the absent extract is
	// not a problem.
	assert.Empty(t, st.Problem)
}

func TestEvaluateFreshness_UnreadableExtract(t *testing.T) {
	dir := t.TempDir()
	// customers.csv deliberately absent.

	statuses := evaluateFreshness(freshnessProject(time.Hour, 3*time.Hour), dir, time.Now().UTC())

	st := statusFor(t, statuses, "customers")
	assert.Equal(t, "error", st.Level)
	assert.Contains(t, st.Problem, "open extract")
}

func TestEvaluateFreshness_NoLoadedAtValues(t *testing.T) {
	dir := t.TempDir()
	writeExtract(t, dir, "customers.csv", "customer_id,updated_at\nC1,\nC2,\n")

	statuses := evaluateFreshness(freshnessProject(time.Hour, 3*time.Hour), dir, time.Now().UTC())

	st := statusFor(t, statuses, "customers")
	assert.Equal(t, "error", st.Level)
	assert.Contains(t, st.Problem, "no updated_at values")
}

func writeFreshnessExtracts(t *testing.T, dir, stamp string) {
	t.Helper()
	writeExtract(t, dir, "customers.csv", "customer_id,updated_at\nCUST_1,"+stamp+"\n")
	writeExtract(t, dir, "orders.csv", "order_id,updated_at\nORD_1,"+stamp+"\n")
}

func TestFreshnessCommand_AllFresh(t *testing.T) {
	dir := t.TempDir()
	writeFreshnessExtracts(t, dir, time.Now().UTC().Format("2006-01-02 15:04:05"))

	out, err := executeCommand(t, "freshness", "--data-dir", dir)
	require.NoError(t, err)

	assert.Contains(t, out, "Source freshness as of")
	assert.Contains(t, out, "customers")
	assert.Contains(t, out, "ok")
	assert.Contains(t, out, "skipped")
	assert.NotContains(t, out, "error")
}

func TestFreshnessCommand_StaleAtErrorLevel(t *testing.T) {
	dir := t.TempDir()
	writeFreshnessExtracts(t, dir, "2020-01-01 00:00:00")

	out, err := executeCommand(t, "freshness", "--data-dir", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "stale at error level")
	assert.Contains(t, out, "error")
}

func TestFreshnessCommand_WarnDoesNotFail(t *testing.T) {
	dir := t.TempDir()
	// Past the default 24h warn threshold, inside the 72h error threshold.
	stamp := time.Now().UTC().Add(-36 * time.Hour).Format("2006-01-02 15:04:05")
	writeFreshnessExtracts(t, dir, stamp)

	out, err := executeCommand(t, "freshness", "--data-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "warn")
}

func TestFreshnessCommand_DataDirPrecedence(t *testing.T) {
	staleDir := t.TempDir()
	freshDir := t.TempDir()
	writeFreshnessExtracts(t, staleDir, "2020-01-01 00:00:00")
	writeFreshnessExtracts(t, freshDir, time.Now().UTC().Format("2006-01-02 15:04:05"))
	t.Setenv("WAREHOUSE_DATA_DIR", staleDir)

	// The environment applies when the flag is absent.
	_, err := executeCommand(t, "freshness")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	// An explicit flag beats the environment.
	_, err = executeCommand(t, "freshness", "--data-dir", freshDir)
	require.NoError(t, err)
}
