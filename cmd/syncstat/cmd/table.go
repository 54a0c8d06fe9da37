package cmd

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"github.com/good-yellow-bee/syncstat/internal/zone"
)

var (
	goodStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))
	warningStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FAAD14"))
	criticalStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F")).Bold(true)
	headerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
)

// table renders aligned columns. Widths are measured in terminal cells so
// Cyrillic and wide characters line up.
type table struct {
	headers []string
	rows    [][]string
	right   map[int]bool
	zones   map[int]bool // columns holding zone names, coloured when enabled
	color   bool
}

func newTable(headers ...string) *table {
	return &table{
		headers: headers,
		right:   make(map[int]bool),
		zones:   make(map[int]bool),
	}
}

func (t *table) alignRight(cols ...int) *table {
	for _, c := range cols {
		t.right[c] = true
	}
	return t
}

func (t *table) zoneColumns(cols ...int) *table {
	for _, c := range cols {
		t.zones[c] = true
	}
	return t
}

func (t *table) add(cells ...string) {
	t.rows = append(t.rows, cells)
}

// lines formats the header and rows with two spaces between columns.
func (t *table) lines() []string {
	colCount := len(t.headers)
	for _, row := range t.rows {
		if len(row) > colCount {
			colCount = len(row)
		}
	}
	if colCount == 0 {
		return nil
	}

	widths := make([]int, colCount)
	for i, h := range t.headers {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if w := runewidth.StringWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	out := make([]string, 0, len(t.rows)+1)
	if len(t.headers) > 0 {
		out = append(out, t.formatRow(t.headers, widths, true))
	}
	for _, row := range t.rows {
		out = append(out, t.formatRow(row, widths, false))
	}
	return out
}

func (t *table) formatRow(row []string, widths []int, header bool) string {
	var b strings.Builder
	for i := range widths {
		cell := ""
		if i < len(row) {
			cell = row[i]
		}
		if i > 0 {
			b.WriteString("  ")
		}
		padded := padCell(cell, widths[i], t.right[i])
		switch {
		case !t.color:
		case header:
			padded = headerStyle.Render(padded)
		case t.zones[i]:
			padded = zoneStyle(cell).Render(padded)
		}
		b.WriteString(padded)
	}
	return strings.TrimRight(b.String(), " ")
}

// render writes the table to w, indenting every line.
func (t *table) render(w io.Writer, indent string) {
	for _, line := range t.lines() {
		io.WriteString(w, indent+line+"\n")
	}
}

func padCell(value string, width int, rightAlign bool) string {
	padding := width - runewidth.StringWidth(value)
	if padding <= 0 {
		return value
	}
	if rightAlign {
		return strings.Repeat(" ", padding) + value
	}
	return value + strings.Repeat(" ", padding)
}

func zoneStyle(name string) lipgloss.Style {
	z, err := zone.Parse(name)
	if err != nil {
		return lipgloss.NewStyle()
	}
	switch z {
	case zone.Critical:
		return criticalStyle
	case zone.Warning:
		return warningStyle
	default:
		return goodStyle
	}
}

// shouldUseColor reports whether w is a terminal and NO_COLOR is unset.
func shouldUseColor(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}
