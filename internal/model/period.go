package model

import (
	"strings"
	"time"

	"github.com/cleared-dev/finreport/internal/apperr"
)

// DateLayout is the date-only form accepted for period bounds.
const DateLayout = "2006-01-02"

// ParseTime accepts a date or an RFC 3339 timestamp. A bare date is
// midnight UTC, or the last microsecond of the day when endOfDay is set.
func ParseTime(s string, endOfDay bool) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DateLayout, s); err == nil {
		if endOfDay {
			t = t.Add(24*time.Hour - time.Microsecond)
		}
		return t, nil
	}
	return time.Parse(time.RFC3339Nano, s)
}

// ParsePeriod builds a Period from optional start and end strings. An end
// given as a bare date includes the whole day.
func ParsePeriod(start, end string) (Period, error) {
	var (
		p   Period
		err error
	)
	if strings.TrimSpace(start) != "" {
		if p.Start, err = ParseTime(start, false); err != nil {
			return Period{}, apperr.Validation("start_date", "start_date %q is not a date", start)
		}
	}
	if strings.TrimSpace(end) != "" {
		if p.End, err = ParseTime(end, true); err != nil {
			return Period{}, apperr.Validation("end_date", "end_date %q is not a date", end)
		}
	}
	if !p.Start.IsZero() && !p.End.IsZero() && p.End.Before(p.Start) {
		return Period{}, apperr.Validation("end_date", "end_date is before start_date")
	}
	return p, nil
}
