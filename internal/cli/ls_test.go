package cli

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLsCommand_Text(t *testing.T) {
	out, err := executeCommand(t, "ls")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 8)

	// Topological order: staging first, facts last.
	assert.Contains(t, lines[0], "stg_customers")
	assert.Contains(t, lines[0], "wave 1")
	assert.Contains(t, lines[7], "fact_order_items")
	assert.Contains(t, lines[7], "deps: ")

	stgIdx := strings.Index(out, "stg_orders")
	dimIdx := strings.Index(out, "dim_customers")
	factIdx := strings.Index(out, "fact_orders")
	assert.Less(t, stgIdx, dimIdx)
	assert.Less(t, dimIdx, factIdx)
}

func TestLsCommand_JSON(t *testing.T) {
	out, err := executeCommand(t, "ls", "--format", "json")
	require.NoError(t, err)

	var listings []modelListing
	require.NoError(t, json.Unmarshal([]byte(out), &listings))
	require.Len(t, listings, 8)

	assert.Equal(t, "stg_customers", listings[0].Name)
	assert.Equal(t, "staging", listings[0].Kind)
	assert.Equal(t, "table", listings[0].Materialization)
	assert.Empty(t, listings[0].DependsOn)
	assert.Equal(t, 1, listings[0].Wave)

	last := listings[len(listings)-1]
	assert.Equal(t, "fact_order_items", last.Name)
	assert.Equal(t, "incremental", last.Materialization)
	assert.Contains(t, last.DependsOn, "fact_orders")
	assert.Contains(t, last.DependsOn, "dim_products")
	assert.Equal(t, 4, last.Wave)
}

func TestLsCommand_InvalidFormat(t *testing.T) {
	_, err := executeCommand(t, "ls", "--format", "yaml")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "invalid format")
}
