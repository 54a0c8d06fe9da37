package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"
)

func TestTableLines(t *testing.T) {
	tbl := newTable("SERVER", "USERS", "ZONE").alignRight(1)
	tbl.add("S1", "5", "good")
	tbl.add("Сервер-длинный", "120", "critical")

	lines := tbl.lines()
	if len(lines) != 3 {
		t.Fatalf("len(lines) = %d, want 3", len(lines))
	}

	want := []string{
		"SERVER          USERS  ZONE",
		"S1                  5  good",
		"Сервер-длинный    120  critical",
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestTableWideCharacters(t *testing.T) {
	tbl := newTable("NAME", "N")
	tbl.add("模型", "1")
	tbl.add("ab", "2")

	lines := tbl.lines()
	// Both data rows must place the second column at the same cell offset.
	first := runewidth.StringWidth(lines[1][:strings.LastIndex(lines[1], "1")])
	second := runewidth.StringWidth(lines[2][:strings.LastIndex(lines[2], "2")])
	if first != second {
		t.Errorf("column offsets differ: %d vs %d (%q, %q)", first, second, lines[1], lines[2])
	}
}

func TestTableEmpty(t *testing.T) {
	if lines := newTable().lines(); lines != nil {
		t.Errorf("lines() = %v, want nil", lines)
	}
}

func TestTableRender(t *testing.T) {
	tbl := newTable("A", "B").zoneColumns(1)
	tbl.add("x", "warning")

	var buf bytes.Buffer
	tbl.render(&buf, "  ")

	want := "  A  B\n  x  warning\n"
	if buf.String() != want {
		t.Errorf("render() = %q, want %q", buf.String(), want)
	}
}

func TestPadCell(t *testing.T) {
	tests := []struct {
		value string
		width int
		right bool
		want  string
	}{
		{"ab", 4, false, "ab  "},
		{"ab", 4, true, "  ab"},
		{"абв", 4, false, "абв "},
		{"long", 2, false, "long"},
	}
	for _, tt := range tests {
		if got := padCell(tt.value, tt.width, tt.right); got != tt.want {
			t.Errorf("padCell(%q, %d, %v) = %q, want %q", tt.value, tt.width, tt.right, got, tt.want)
		}
	}
}

func TestShouldUseColor_NonTerminal(t *testing.T) {
	var buf bytes.Buffer
	if shouldUseColor(&buf) {
		t.Error("shouldUseColor() = true for a buffer")
	}

	t.Setenv("NO_COLOR", "1")
	if shouldUseColor(&buf) {
		t.Error("shouldUseColor() = true with NO_COLOR")
	}
}
