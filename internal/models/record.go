// Package models contains the core data structures for syncstat.
package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// DayLayout renders a calendar day the way the ru-RU locale does (DD.MM.YYYY).
const DayLayout = "02.01.2006"

// RawRecord is one data line of the activity log keyed by trimmed header cell.
type RawRecord map[string]string

// Get returns the value for a column, or "" if the column is absent.
func (r RawRecord) Get(column string) string {
	if r == nil {
		return ""
	}
	return r[column]
}

// Lookup returns the value of the first column in names present in the record.
func (r RawRecord) Lookup(names ...string) (column, value string, ok bool) {
	for _, name := range names {
		if v, found := r[name]; found {
			return name, v, true
		}
	}
	return "", "", false
}

// Clone returns a copy of the record.
func (r RawRecord) Clone() RawRecord {
	out := make(RawRecord, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Record is a normalized sync event: the raw fields plus the derived date and
// byte counts. Records are never mutated after normalization.
type Record struct {
	// Raw holds the original fields verbatim.
	Raw RawRecord `json:"raw"`

	// Date is the parsed event day. The zero value means the date was missing
	// or could not be parsed.
	Date time.Time `json:"date,omitempty"`

	// SupportSize is the number of bytes transferred by this sync event.
	SupportSize int64 `json:"support_size"`

	// ModelSize is the size of the model at the time of this sync event.
	ModelSize int64 `json:"model_size"`

	// Identifying fields copied from the configured columns.
	Server string `json:"server,omitempty"`
	Model  string `json:"model,omitempty"`
	User   string `json:"user,omitempty"`

	// Line is the 1-based line number in the source file.
	Line int64 `json:"line,omitempty"`

	// Source is the path of the file the record was read from.
	Source string `json:"source,omitempty"`
}

// HasDate reports whether the record carries a valid parsed date.
func (r *Record) HasDate() bool {
	return !r.Date.IsZero()
}

// DayKey returns the calendar day key of the record, or "" when undated.
func (r *Record) DayKey() string {
	if !r.HasDate() {
		return ""
	}
	return DayKey(r.Date)
}

// JSON returns the record as JSON bytes.
func (r *Record) JSON() ([]byte, error) {
	return json.Marshal(r)
}

// String returns a short representation of the record.
func (r *Record) String() string {
	day := "-"
	if r.HasDate() {
		day = DayKey(r.Date)
	}
	return fmt.Sprintf("%s %s/%s user=%s support=%d model=%d", day, r.Server, r.Model, r.User, r.SupportSize, r.ModelSize)
}

// DayKey renders t as a calendar day key.
func DayKey(t time.Time) string {
	return t.Format(DayLayout)
}

// ParseDayKey converts a key produced by DayKey back into a date.
func ParseDayKey(key string) (time.Time, error) {
	return time.ParseInLocation(DayLayout, key, time.UTC)
}

// BytesToMB formats a byte count as mebibytes with two decimals.
func BytesToMB(bytes float64) string {
	return fmt.Sprintf("%.2f", bytes/(1024*1024))
}

// BytesToGB formats a byte count as gibibytes with two decimals.
func BytesToGB(bytes float64) string {
	return fmt.Sprintf("%.2f", bytes/(1024*1024*1024))
}

// MB converts a byte count to mebibytes.
func MB(bytes int64) float64 {
	return float64(bytes) / (1024 * 1024)
}

// GB converts a byte count to gibibytes.
func GB(bytes int64) float64 {
	return float64(bytes) / (1024 * 1024 * 1024)
}
