package parser

import (
	"log"

	"github.com/good-yellow-bee/syncstat/internal/models"
)

// Field names reported to an Observer.
const (
	FieldSupportSize = "support_size"
	FieldModelSize   = "model_size"
)

// Observer receives diagnostics emitted while normalizing records.
// Observations never change the normalized values.
type Observer interface {
	// ColumnResolved reports which header variant a byte field was read from.
	ColumnResolved(field, column string)
	// ColumnMissing reports that no header variant of a byte field exists.
	ColumnMissing(field string, headers []string)
	// InvalidDate reports a non-empty date cell that could not be parsed.
	InvalidDate(source string, line int64, value string)
}

// LogObserver writes diagnostics with the standard logger.
// Resolved columns and invalid dates are only logged when Verbose is set.
type LogObserver struct {
	Verbose bool
}

func (o LogObserver) ColumnResolved(field, column string) {
	if o.Verbose {
		log.Printf("%s read from column %q", field, column)
	}
}

func (o LogObserver) ColumnMissing(field string, headers []string) {
	log.Printf("warning: %s column not found, defaulting to 0 (headers: %q)", field, headers)
}

func (o LogObserver) InvalidDate(source string, line int64, value string) {
	if o.Verbose {
		log.Printf("%s:%d: unparsable date %q", source, line, value)
	}
}

type nopObserver struct{}

func (nopObserver) ColumnResolved(string, string)      {}
func (nopObserver) ColumnMissing(string, []string)     {}
func (nopObserver) InvalidDate(string, int64, string) {}

// Normalizer converts raw records into models.Record values.
type Normalizer struct {
	columns  models.Columns
	observer Observer
}

// NewNormalizer creates a normalizer for the given columns.
// A nil observer discards diagnostics.
func NewNormalizer(columns models.Columns, observer Observer) *Normalizer {
	if observer == nil {
		observer = nopObserver{}
	}
	return &Normalizer{
		columns:  columns.WithDefaults(),
		observer: observer,
	}
}

// Columns returns the column mapping in use.
func (n *Normalizer) Columns() models.Columns {
	return n.columns
}

// Normalize derives the date, byte counts and identifying fields of raw.
// The raw fields are kept verbatim. Normalize never fails: malformed values
// fall back to a zero date or a zero byte count.
func (n *Normalizer) Normalize(raw models.RawRecord) models.Record {
	rec := models.Record{
		Raw:    raw,
		Server: raw.Get(n.columns.Server),
		Model:  raw.Get(n.columns.Model),
		User:   raw.Get(n.columns.User),
	}

	if date, ok := ParseDate(raw.Get(n.columns.Date)); ok {
		rec.Date = date
	}

	if _, v, ok := raw.Lookup(n.columns.SupportSize...); ok {
		rec.SupportSize = parseSize(v)
	}
	if _, v, ok := raw.Lookup(n.columns.ModelSize...); ok {
		rec.ModelSize = parseSize(v)
	}

	return rec
}

// NormalizeTable normalizes every row of t, tagging records with source.
// Column diagnostics are emitted once, for the first row.
func (n *Normalizer) NormalizeTable(t *Table, source string) []models.Record {
	if t.Len() == 0 {
		return []models.Record{}
	}

	n.reportColumns(t.Rows[0].Record, t.Headers)

	records := make([]models.Record, 0, len(t.Rows))
	for _, row := range t.Rows {
		rec := n.Normalize(row.Record)
		rec.Line = row.Line
		rec.Source = source

		if !rec.HasDate() {
			if v := row.Record.Get(n.columns.Date); v != "" {
				n.observer.InvalidDate(source, row.Line, v)
			}
		}

		records = append(records, rec)
	}
	return records
}

func (n *Normalizer) reportColumns(first models.RawRecord, headers []string) {
	fields := []struct {
		name     string
		variants []string
	}{
		{FieldSupportSize, n.columns.SupportSize},
		{FieldModelSize, n.columns.ModelSize},
	}

	for _, f := range fields {
		if col, _, ok := first.Lookup(f.variants...); ok {
			n.observer.ColumnResolved(f.name, col)
		} else {
			n.observer.ColumnMissing(f.name, headers)
		}
	}
}

// parseSize parses a byte count. Missing, non-numeric and negative values are 0.
func parseSize(v string) int64 {
	n, ok := parseLeadingInt(v)
	if !ok || n < 0 {
		return 0
	}
	return n
}
