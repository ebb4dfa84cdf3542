package source

import (
	"fmt"
	"io"
	"strings"
	"time"
)

var loadedAtLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// MaxFieldTime scans one extract and returns the maximum value of a
// date/timestamp column plus the number of data rows. Empty values are
// skipped; a malformed non-empty value is an error because staleness
// cannot be judged from a broken loaded-at field.
func MaxFieldTime(path, field string) (time.Time, int64, error) {
	f, r, err := open(path)
	if err != nil {
		return time.Time{}, 0, err
	}
	defer f.Close()

	h, err := readHeader(r, []string{field})
	if err != nil {
		return time.Time{}, 0, fmt.Errorf("%s: %w", path, err)
	}

	var (
		max   time.Time
		count int64
	)
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return time.Time{}, 0, fmt.Errorf("%s: %w", path, err)
		}
		count++

		raw := strings.TrimSpace(h.get(record, field))
		if raw == "" {
			continue
		}
		t, ok := parseLoadedAt(raw)
		if !ok {
			return time.Time{}, 0, fmt.Errorf("%s: row %d: unparseable %s value %q", path, count, field, raw)
		}
		if t.After(max) {
			max = t
		}
	}
	return max, count, nil
}

func parseLoadedAt(s string) (time.Time, bool) {
	for _, layout := range loadedAtLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
