package domain

import "time"

// Watermark is the maximum watermark value already committed for a fact
// table. Corresponds to watermarks table in PostgreSQL (one row per fact).
// It advances atomically with a successful merge and never moves backwards.
type Watermark struct {
	FactTable string    // PRIMARY KEY, fact model name
	Value     time.Time // maximum committed watermark value
	UpdatedAt time.Time // last advance time
}
