// Package parser turns the tab-separated activity export into normalized
// sync records.
package parser

import (
	"fmt"
	"io"
	"strings"

	"github.com/good-yellow-bee/syncstat/internal/models"
)

const (
	fieldSeparator = "\t"
	lineSeparator  = "\n"
	utf8BOM        = "\ufeff"
)

// Row is a single data line of a parsed table.
type Row struct {
	// Line is the 1-based line number in the source text.
	Line   int64
	Record models.RawRecord
}

// Table is the result of parsing tab-separated text.
type Table struct {
	Headers []string
	Rows    []Row
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// HasColumn reports whether the header row contains the given column.
func (t *Table) HasColumn(name string) bool {
	for _, h := range t.Headers {
		if h == name {
			return true
		}
	}
	return false
}

// ParseTSV splits text into records keyed by the first non-blank line.
// Blank lines are dropped everywhere. Missing trailing cells become empty
// strings and extra cells are ignored. Empty input yields an empty table.
func ParseTSV(text string) *Table {
	text = strings.TrimPrefix(text, utf8BOM)
	table := &Table{}

	var lineNum int64
	headerSeen := false

	for _, line := range strings.Split(text, lineSeparator) {
		lineNum++
		if strings.TrimSpace(line) == "" {
			continue
		}

		cells := strings.Split(line, fieldSeparator)
		if !headerSeen {
			table.Headers = make([]string, len(cells))
			for i, cell := range cells {
				table.Headers[i] = strings.TrimSpace(cell)
			}
			headerSeen = true
			continue
		}

		record := make(models.RawRecord, len(table.Headers))
		for i, header := range table.Headers {
			value := ""
			if i < len(cells) {
				value = strings.TrimSpace(cells[i])
			}
			record[header] = value
		}

		table.Rows = append(table.Rows, Row{Line: lineNum, Record: record})
	}

	return table
}

// ReadTSV reads all of r and parses it with ParseTSV.
func ReadTSV(r io.Reader) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read tsv: %w", err)
	}
	return ParseTSV(string(data)), nil
}
