package staging

import "fmt"

// Rejection reasons.
const (
	ReasonMissingKey      = "missing_primary_key"
	ReasonMissingRequired = "missing_required_field"
	ReasonBadNumber       = "numeric_coercion_failed"
	ReasonBadDate         = "date_coercion_failed"
	ReasonBadBool         = "boolean_coercion_failed"
	ReasonNonPositive     = "non_positive_value"
	ReasonNegative        = "negative_value"
)

// Rejection records one dropped raw row. Rejections are outcomes, not
// errors: they are counted per entity and reason, reported in the run
// result, and never propagate.
type Rejection struct {
	Model  string // staging model the row was destined for
	Key    string // natural key when it could be read
	Field  string // offending field
	Reason string
}

func (r Rejection) String() string {
	key := r.Key
	if key == "" {
		key = "?"
	}
	return fmt.Sprintf("%s key=%s field=%s reason=%s", r.Model, key, r.Field, r.Reason)
}

func rejected(model, key, field, reason string) *Rejection {
	return &Rejection{Model: model, Key: key, Field: field, Reason: reason}
}
