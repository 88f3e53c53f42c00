package store

import (
	"fmt"
	"time"
)

// timeLayout is fixed-width so stored timestamps sort lexically in time order.
const timeLayout = "2006-01-02T15:04:05.000000Z"

// FormatTime renders t as stored text (UTC, microsecond precision).
func FormatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// ParseTime parses a stored timestamp.
func ParseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing stored time %q: %w", s, err)
	}
	return t, nil
}
