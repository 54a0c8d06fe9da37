package batch

import (
	"fmt"
	"time"

	"github.com/good-yellow-bee/syncstat/internal/models"
)

// endOfDay is added to a day start to make a date-only upper bound cover the
// whole day down to the millisecond.
const endOfDay = 24*time.Hour - time.Millisecond

// DateFilter filters records by an inclusive date range.
type DateFilter struct {
	From    time.Time
	To      time.Time
	Enabled bool
}

// NewDateFilter creates a filter from parsed from/to times.
// If both are zero, filter is disabled.
func NewDateFilter(from, to time.Time) *DateFilter {
	return &DateFilter{
		From:    from,
		To:      to,
		Enabled: !from.IsZero() || !to.IsZero(),
	}
}

// Matches reports whether the record date is within the range.
// Undated records never match an enabled filter.
func (f *DateFilter) Matches(r *models.Record) bool {
	if !f.Enabled {
		return true
	}
	if !r.HasDate() {
		return false
	}
	return f.MatchesTime(r.Date)
}

// MatchesTime checks if a timestamp is within the date range.
func (f *DateFilter) MatchesTime(ts time.Time) bool {
	if !f.Enabled {
		return true
	}

	if !f.From.IsZero() && ts.Before(f.From) {
		return false
	}

	if !f.To.IsZero() && ts.After(f.To) {
		return false
	}

	return true
}

// Filter returns the records within the range in their original order.
// A disabled filter returns records unchanged.
func (f *DateFilter) Filter(records []models.Record) []models.Record {
	if !f.Enabled || len(records) == 0 {
		return records
	}

	out := make([]models.Record, 0, len(records))
	for i := range records {
		if f.Matches(&records[i]) {
			out = append(out, records[i])
		}
	}
	return out
}

// ParseDateFlag parses a date string in YYYY-MM-DD or RFC3339 format.
// For YYYY-MM-DD, it returns start of day in UTC.
func ParseDateFlag(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}

	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}

	if t, err := time.ParseInLocation("2006-01-02", s, time.UTC); err == nil {
		return t, nil
	}

	return time.Time{}, fmt.Errorf("invalid date format: %q (expected YYYY-MM-DD or RFC3339)", s)
}

// ParseDateFlagEndOfDay parses a date string and returns end of day for YYYY-MM-DD format.
// For RFC3339, returns the exact time. For YYYY-MM-DD, returns 23:59:59.999 UTC.
func ParseDateFlagEndOfDay(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}

	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}

	if t, err := time.ParseInLocation("2006-01-02", s, time.UTC); err == nil {
		return t.Add(endOfDay), nil
	}

	return time.Time{}, fmt.Errorf("invalid date format: %q (expected YYYY-MM-DD or RFC3339)", s)
}
