package merge

import (
	"fmt"
	"sort"
)

// ValidateColumns compares the column set observed on an extract against the
// contracted one and reports any drift as ErrSchemaChange. Both a removed
// and an added column fail the merge: removal would mean partial overwrites
// on update, addition means the upstream schema evolved under us.
func ValidateColumns(model string, observed, required []string) error {
	observedSet := make(map[string]struct{}, len(observed))
	for _, c := range observed {
		observedSet[c] = struct{}{}
	}
	requiredSet := make(map[string]struct{}, len(required))
	for _, c := range required {
		requiredSet[c] = struct{}{}
	}

	var missing, extra []string
	for _, c := range required {
		if _, ok := observedSet[c]; !ok {
			missing = append(missing, c)
		}
	}
	for _, c := range observed {
		if _, ok := requiredSet[c]; !ok {
			extra = append(extra, c)
		}
	}

	if len(missing) == 0 && len(extra) == 0 {
		return nil
	}

	sort.Strings(missing)
	sort.Strings(extra)
	switch {
	case len(missing) > 0 && len(extra) > 0:
		return fmt.Errorf("%w on %s: missing columns %v, unexpected columns %v", ErrSchemaChange, model, missing, extra)
	case len(missing) > 0:
		return fmt.Errorf("%w on %s: missing columns %v", ErrSchemaChange, model, missing)
	default:
		return fmt.Errorf("%w on %s: unexpected columns %v", ErrSchemaChange, model, extra)
	}
}
