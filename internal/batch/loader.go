package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/good-yellow-bee/syncstat/internal/models"
	"github.com/good-yellow-bee/syncstat/internal/parser"
)

// ErrNoFiles is returned when no file matches the load patterns.
var ErrNoFiles = errors.New("no files match the specified patterns")

// LoadOptions configures dataset loading.
type LoadOptions struct {
	Workers    int            // Number of parallel workers (0 = auto)
	BufferSize int            // Channel buffer size (0 = auto)
	Columns    models.Columns // Header names; empty fields use defaults
	// Observer receives normalization diagnostics. It must be safe for
	// concurrent use when more than one worker runs.
	Observer parser.Observer
}

// DefaultLoadOptions returns sensible defaults.
func DefaultLoadOptions() *LoadOptions {
	return &LoadOptions{
		Workers: runtime.NumCPU(),
		Columns: models.DefaultColumns(),
	}
}

// FileStats describes one loaded file.
type FileStats struct {
	Path         string        `json:"path"`
	Records      int           `json:"records"`
	InvalidDates int           `json:"invalid_dates"`
	Columns      []string      `json:"columns"`
	BytesRead    int64         `json:"bytes_read"`
	ParseTime    time.Duration `json:"parse_time_ms"`
}

// FileResult is the output of loading one file.
type FileResult struct {
	Index   int
	Stats   *FileStats
	Records []models.Record
}

// Dataset is an immutable set of normalized records loaded in one pass.
type Dataset struct {
	ID       string          `json:"id"`
	LoadedAt time.Time       `json:"loaded_at"`
	Duration time.Duration   `json:"duration_ms"`
	Files    []*FileStats    `json:"files"`
	Records  []models.Record `json:"-"`
	Errors   []string        `json:"errors,omitempty"`
}

// NewDataset wraps already normalized records in a dataset.
func NewDataset(records []models.Record, files ...*FileStats) *Dataset {
	if records == nil {
		records = []models.Record{}
	}
	return &Dataset{
		ID:       uuid.New().String(),
		LoadedAt: time.Now(),
		Files:    files,
		Records:  records,
	}
}

// Len returns the number of records, 0 for a nil dataset.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Records)
}

// InvalidDates counts records without a valid date.
func (d *Dataset) InvalidDates() int {
	if d == nil {
		return 0
	}
	n := 0
	for i := range d.Records {
		if !d.Records[i].HasDate() {
			n++
		}
	}
	return n
}

// Load reads every file matching patterns in a worker pool, one file per
// job, and concatenates the normalized records in pattern and file order.
// Per-file failures are collected in Dataset.Errors.
func Load(ctx context.Context, patterns []string, opts *LoadOptions) (*Dataset, error) {
	if opts == nil {
		opts = DefaultLoadOptions()
	}
	startTime := time.Now()

	files := expandGlobs(patterns)
	if len(files) == 0 {
		return nil, ErrNoFiles
	}

	normalizer := parser.NewNormalizer(opts.Columns, opts.Observer)
	pool := NewWorkerPool(opts.Workers, opts.BufferSize)
	pool.Start(ctx, func(ctx context.Context, job fileJob) (*FileResult, error) {
		return loadFile(ctx, job, normalizer)
	})

	go func() {
		for i, f := range files {
			if err := pool.Submit(ctx, fileJob{Index: i, Path: f}); err != nil {
				break
			}
		}
		pool.Close()
	}()

	var results []*FileResult
	var errs []string
	for out := range pool.Outcomes() {
		if out.Err != nil {
			errs = append(errs, out.Err.Error())
			continue
		}
		results = append(results, out.Result)
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("load canceled: %w", err)
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Index < results[j].Index
	})
	sort.Strings(errs)

	total := 0
	for _, r := range results {
		total += len(r.Records)
	}

	records := make([]models.Record, 0, total)
	stats := make([]*FileStats, 0, len(results))
	for _, r := range results {
		records = append(records, r.Records...)
		stats = append(stats, r.Stats)
	}

	ds := NewDataset(records, stats...)
	ds.Errors = errs
	ds.Duration = time.Since(startTime)
	return ds, nil
}

// LoadReader reads a single TSV stream, such as stdin.
func LoadReader(r io.Reader, source string, opts *LoadOptions) (*Dataset, error) {
	if opts == nil {
		opts = DefaultLoadOptions()
	}
	startTime := time.Now()

	table, err := parser.ReadTSV(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", source, err)
	}

	records := parser.NewNormalizer(opts.Columns, opts.Observer).NormalizeTable(table, source)
	stats := newFileStats(source, table, records)
	stats.ParseTime = time.Since(startTime)

	ds := NewDataset(records, stats)
	ds.Duration = time.Since(startTime)
	return ds, nil
}

// loadFile parses and normalizes one file.
func loadFile(ctx context.Context, job fileJob, n *parser.Normalizer) (*FileResult, error) {
	parseStart := time.Now()

	r, closeLog, err := openLog(job.Path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", job.Path, err)
	}
	defer closeLog()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	table, err := parser.ReadTSV(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", job.Path, err)
	}

	records := n.NormalizeTable(table, job.Path)
	stats := newFileStats(job.Path, table, records)
	if fi, err := os.Stat(job.Path); err == nil {
		stats.BytesRead = fi.Size()
	}
	stats.ParseTime = time.Since(parseStart)

	return &FileResult{Index: job.Index, Stats: stats, Records: records}, nil
}

func newFileStats(path string, table *parser.Table, records []models.Record) *FileStats {
	stats := &FileStats{
		Path:    path,
		Records: len(records),
		Columns: table.Headers,
	}
	for i := range records {
		if !records[i].HasDate() {
			stats.InvalidDates++
		}
	}
	return stats
}

// expandGlobs expands glob patterns to absolute file paths.
func expandGlobs(patterns []string) []string {
	var files []string
	seen := make(map[string]bool)

	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			continue
		}

		for _, match := range matches {
			fi, err := os.Stat(match)
			if err != nil || fi.IsDir() {
				continue
			}

			absPath, err := filepath.Abs(match)
			if err != nil {
				continue
			}

			if !seen[absPath] {
				seen[absPath] = true
				files = append(files, absPath)
			}
		}
	}

	return files
}
