package staging

import (
	"strconv"
	"strings"
	"time"
)

// Date layouts accepted from extracts, tried in order.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

func toFloat(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return v, err == nil
}

func toInt(s string) (int64, bool) {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	return v, err == nil
}

func toBool(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes", "y", "t":
		return true, true
	case "false", "0", "no", "n", "f":
		return false, true
	}
	return false, false
}

func toDate(s string) (time.Time, bool) {
	trimmed := strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// toOptionalDate treats the empty string as a present-but-null value.
// A non-empty malformed value still fails coercion.
func toOptionalDate(s string) (*time.Time, bool) {
	if strings.TrimSpace(s) == "" {
		return nil, true
	}
	t, ok := toDate(s)
	if !ok {
		return nil, false
	}
	return &t, true
}

// toOptionalString maps the empty string to nil.
func toOptionalString(s string) *string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// The required* helpers distinguish a missing value from a malformed one
// and report the rejection reason as their second result ("" = ok).

func requiredDate(s string) (time.Time, string) {
	if strings.TrimSpace(s) == "" {
		return time.Time{}, ReasonMissingRequired
	}
	t, ok := toDate(s)
	if !ok {
		return time.Time{}, ReasonBadDate
	}
	return t, ""
}

func requiredFloat(s string) (float64, string) {
	if strings.TrimSpace(s) == "" {
		return 0, ReasonMissingRequired
	}
	v, ok := toFloat(s)
	if !ok {
		return 0, ReasonBadNumber
	}
	return v, ""
}

func requiredInt(s string) (int64, string) {
	if strings.TrimSpace(s) == "" {
		return 0, ReasonMissingRequired
	}
	v, ok := toInt(s)
	if !ok {
		return 0, ReasonBadNumber
	}
	return v, ""
}

func requiredBool(s string) (bool, string) {
	if strings.TrimSpace(s) == "" {
		return false, ReasonMissingRequired
	}
	v, ok := toBool(s)
	if !ok {
		return false, ReasonBadBool
	}
	return v, ""
}
