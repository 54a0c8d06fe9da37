package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestRawRecord_Lookup(t *testing.T) {
	raw := RawRecord{
		"SupportSize  (байты)": "42",
		"SupportSize(байты)":   "7",
	}

	col, val, ok := raw.Lookup(DefaultColumns().SupportSize...)
	if !ok {
		t.Fatal("Lookup should find a variant")
	}
	if col != "SupportSize  (байты)" || val != "42" {
		t.Errorf("Lookup = %q, %q; want the two-space variant first", col, val)
	}

	if _, _, ok := raw.Lookup("missing"); ok {
		t.Error("Lookup should report missing column")
	}
}

func TestRawRecord_GetNil(t *testing.T) {
	var raw RawRecord
	if got := raw.Get("User"); got != "" {
		t.Errorf("Get on nil record = %q, want empty", got)
	}
}

func TestRecord_HasDate(t *testing.T) {
	r := &Record{}
	if r.HasDate() {
		t.Error("zero date should be reported as missing")
	}
	if r.DayKey() != "" {
		t.Errorf("DayKey of undated record = %q, want empty", r.DayKey())
	}

	r.Date = time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)
	if !r.HasDate() {
		t.Error("set date should be reported")
	}
	if r.DayKey() != "05.03.2024" {
		t.Errorf("DayKey = %q, want 05.03.2024", r.DayKey())
	}
}

func TestParseDayKey(t *testing.T) {
	day := time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC)
	got, err := ParseDayKey(DayKey(day))
	if err != nil {
		t.Fatalf("ParseDayKey error = %v", err)
	}
	if !got.Equal(day) {
		t.Errorf("ParseDayKey = %v, want %v", got, day)
	}
}

func TestBytesFormatting(t *testing.T) {
	tests := []struct {
		bytes  float64
		wantMB string
		wantGB string
	}{
		{0, "0.00", "0.00"},
		{3145728, "3.00", "0.00"},
		{1073741824, "1024.00", "1.00"},
	}

	for _, tt := range tests {
		if got := BytesToMB(tt.bytes); got != tt.wantMB {
			t.Errorf("BytesToMB(%v) = %q, want %q", tt.bytes, got, tt.wantMB)
		}
		if got := BytesToGB(tt.bytes); got != tt.wantGB {
			t.Errorf("BytesToGB(%v) = %q, want %q", tt.bytes, got, tt.wantGB)
		}
	}
}

func TestRecord_JSON(t *testing.T) {
	r := &Record{
		Raw:         RawRecord{"User": "A"},
		User:        "A",
		SupportSize: 10,
	}

	data, err := r.JSON()
	if err != nil {
		t.Fatalf("JSON error = %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal error = %v", err)
	}
	if decoded["user"] != "A" {
		t.Errorf("user = %v, want A", decoded["user"])
	}
	if decoded["support_size"] != float64(10) {
		t.Errorf("support_size = %v, want 10", decoded["support_size"])
	}
}

func TestColumns_WithDefaults(t *testing.T) {
	c := Columns{User: "Пользователь"}.WithDefaults()
	if c.User != "Пользователь" {
		t.Errorf("User override lost: %q", c.User)
	}
	if c.Date != ColumnDate || c.Server != ColumnServer || c.Model != ColumnModel {
		t.Errorf("defaults not applied: %+v", c)
	}
	if len(c.SupportSize) != 3 || len(c.ModelSize) != 3 {
		t.Errorf("size variants not applied: %+v", c)
	}
}
