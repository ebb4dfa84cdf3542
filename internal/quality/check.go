package quality

import (
	"context"

	"ecom-warehouse/internal/domain"
)

// Check names as they appear in quality_results.
const (
	CheckUnique         = "unique"
	CheckNotNull        = "not_null"
	CheckRelationships  = "relationships"
	CheckAcceptedValues = "accepted_values"
	CheckRange          = "range"
)

// Check is one independent assertion over one model. Eval returns the number
// of rows violating the assertion; it only reads. An execution error is
// recorded as a failed result with a message, never raised to the caller.
type Check struct {
	Model    string
	Name     string
	Column   string
	Severity domain.Severity
	Eval     func(ctx context.Context) (int64, error)
}

// duplicated counts rows whose key occurs more than once. Every row of a
// duplicated group counts: there is no way to tell which copy is wrong.
func duplicated(keys []string) int64 {
	seen := make(map[string]int64, len(keys))
	for _, k := range keys {
		seen[k]++
	}

	var failing int64
	for _, n := range seen {
		if n > 1 {
			failing += n
		}
	}
	return failing
}

// missing counts empty values. Stores represent NULL string columns as "".
func missing(values []string) int64 {
	var failing int64
	for _, v := range values {
		if v == "" {
			failing++
		}
	}
	return failing
}

// outsideSet returns a verdict counting values not in the accepted set.
func outsideSet(accepted []string) func([]string) int64 {
	set := make(map[string]struct{}, len(accepted))
	for _, v := range accepted {
		set[v] = struct{}{}
	}

	return func(values []string) int64 {
		var failing int64
		for _, v := range values {
			if _, ok := set[v]; !ok {
				failing++
			}
		}
		return failing
	}
}
