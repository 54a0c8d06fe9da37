package batch

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/klauspost/pgzip"
)

const compressedLog = testHeader +
	"1 января 2024 10:00:00\tS1\tProj_Type_MINS_АР1.rvt\tA\t1048576\t100\n" +
	"2 января 2024 11:00:00\tS2\tOrg_Obj_ALFA_ОВ.rvt\tB\t300\t1000\n"

func writeCompressed(t *testing.T, path string, wrap func(io.Writer) (io.WriteCloser, error)) {
	t.Helper()

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	w, err := wrap(f)
	if err != nil {
		t.Fatalf("compressor: %v", err)
	}
	if _, err := io.WriteString(w, compressedLog); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close compressor: %v", err)
	}
}

func TestLoad_Compressed(t *testing.T) {
	dir := t.TempDir()

	writeCompressed(t, filepath.Join(dir, "a.tsv.gz"), func(w io.Writer) (io.WriteCloser, error) {
		return pgzip.NewWriter(w), nil
	})
	writeCompressed(t, filepath.Join(dir, "b.tsv.zst"), func(w io.Writer) (io.WriteCloser, error) {
		return zstd.NewWriter(w)
	})

	tests := []struct {
		name    string
		pattern string
	}{
		{"gzip", "*.gz"},
		{"zstd", "*.zst"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds, err := Load(context.Background(), []string{filepath.Join(dir, tt.pattern)}, &LoadOptions{Workers: 1})
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if len(ds.Errors) != 0 {
				t.Fatalf("Errors = %v", ds.Errors)
			}
			if ds.Len() != 2 {
				t.Fatalf("Len() = %d, want 2", ds.Len())
			}
			if ds.Records[1].Server != "S2" || ds.Records[1].ModelSize != 1000 {
				t.Errorf("record = %+v", ds.Records[1])
			}
		})
	}
}

func TestLoad_CorruptGzip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.tsv.gz")
	if err := os.WriteFile(path, []byte("not gzip"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	ds, err := Load(context.Background(), []string{path}, &LoadOptions{Workers: 1})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if ds.Len() != 0 || len(ds.Errors) != 1 {
		t.Errorf("Len() = %d, Errors = %v; want 0 records and one error", ds.Len(), ds.Errors)
	}
}
