package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestServer_Metrics(t *testing.T) {
	SetBuildInfo("test-version", "abc123", "2024-01-01")
	DatasetRecords.Set(42)

	srv := NewServer(":0")
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		`syncstat_build_info{build_time="2024-01-01",commit="abc123",version="test-version"} 1`,
		"syncstat_dataset_records 42",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

func TestServer_Index(t *testing.T) {
	srv := NewServer(":0")

	tests := []struct {
		path string
		want int
	}{
		{"/", http.StatusOK},
		{"/other", http.StatusNotFound},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
		if rec.Code != tt.want {
			t.Errorf("GET %s = %d, want %d", tt.path, rec.Code, tt.want)
		}
	}
}

func TestServer_Addr(t *testing.T) {
	if got := NewServer("127.0.0.1:9999").Addr(); got != "127.0.0.1:9999" {
		t.Errorf("Addr() = %q", got)
	}
}
