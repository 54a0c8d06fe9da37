// Package aggregate builds grouped views over normalized sync records.
//
// Every aggregator makes one pass over the records into a map of
// accumulators, then a materialization pass that computes ratios and sorts
// the result with full tie-breaks so output is deterministic.
package aggregate

import (
	"sort"
	"time"

	"github.com/samber/lo"

	"github.com/good-yellow-bee/syncstat/internal/models"
)

// StringSet is a set of distinct strings.
type StringSet map[string]struct{}

// NewStringSet creates an empty set.
func NewStringSet() StringSet {
	return make(StringSet)
}

// Add inserts v. Empty strings are ignored.
func (s StringSet) Add(v string) {
	if v == "" {
		return
	}
	s[v] = struct{}{}
}

// Len returns the number of distinct values.
func (s StringSet) Len() int {
	return len(s)
}

// Sorted returns the values in ascending order.
func (s StringSet) Sorted() []string {
	out := lo.Keys(map[string]struct{}(s))
	sort.Strings(out)
	return out
}

// latest tracks the value carried by the most recent dated record.
// Date and value always change together. Equal dates go to the later record.
type latest struct {
	date  time.Time
	value int64
}

func (l *latest) observe(date time.Time, value int64) {
	if date.IsZero() {
		return
	}
	if l.date.IsZero() || !date.Before(l.date) {
		l.date = date
		l.value = value
	}
}

// earliest tracks the value carried by the oldest dated record.
// Equal dates keep the earlier record.
type earliest struct {
	date  time.Time
	value int64
}

func (e *earliest) observe(date time.Time, value int64) {
	if date.IsZero() {
		return
	}
	if e.date.IsZero() || date.Before(e.date) {
		e.date = date
		e.value = value
	}
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

// DailyPoint is one day of activity.
type DailyPoint struct {
	Day          string    `json:"day"`
	Date         time.Time `json:"date"`
	Syncs        int       `json:"syncs"`
	SupportBytes int64     `json:"support_bytes"`
	SupportMB    float64   `json:"support_mb"`
}

// dailySeries accumulates per-day activity keyed by the calendar day.
type dailySeries map[string]*DailyPoint

func (d dailySeries) add(r *models.Record) {
	if !r.HasDate() {
		return
	}
	key := r.DayKey()
	p, ok := d[key]
	if !ok {
		p = &DailyPoint{Day: key, Date: r.Date}
		d[key] = p
	}
	p.Syncs++
	p.SupportBytes += r.SupportSize
}

// points returns the series in ascending date order.
func (d dailySeries) points() []DailyPoint {
	out := make([]DailyPoint, 0, len(d))
	for _, p := range d {
		p.SupportMB = models.MB(p.SupportBytes)
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

func safeDiv(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}
