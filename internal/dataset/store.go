// Package dataset keeps the current activity log snapshot for the server
// and reloads it when the underlying files change.
package dataset

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/good-yellow-bee/syncstat/internal/aggregate"
	"github.com/good-yellow-bee/syncstat/internal/batch"
	"github.com/good-yellow-bee/syncstat/internal/metrics"
	"github.com/good-yellow-bee/syncstat/internal/zone"
)

// ErrNotLoaded is returned when no snapshot has been loaded yet.
var ErrNotLoaded = errors.New("dataset not loaded")

// Store holds the current immutable dataset snapshot. Readers never block
// on a reload; a failed reload keeps the previous snapshot.
type Store struct {
	paths []string
	opts  *batch.LoadOptions

	current atomic.Pointer[batch.Dataset]

	mu      sync.Mutex // serializes reloads
	lastErr error
}

// NewStore creates a store for the given file patterns.
func NewStore(paths []string, opts *batch.LoadOptions) *Store {
	if opts == nil {
		opts = batch.DefaultLoadOptions()
	}
	return &Store{
		paths: append([]string(nil), paths...),
		opts:  opts,
	}
}

// Paths returns the configured file patterns.
func (s *Store) Paths() []string {
	return append([]string(nil), s.paths...)
}

// Current returns the loaded snapshot or ErrNotLoaded.
func (s *Store) Current() (*batch.Dataset, error) {
	ds := s.current.Load()
	if ds == nil {
		return nil, ErrNotLoaded
	}
	return ds, nil
}

// Ready reports whether a snapshot is available.
func (s *Store) Ready() bool {
	return s.current.Load() != nil
}

// LastError returns the error of the most recent reload, if any.
func (s *Store) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Set replaces the snapshot and refreshes the dataset metrics.
func (s *Store) Set(ds *batch.Dataset) {
	s.current.Store(ds)
	updateMetrics(ds)
}

// Reload re-reads every configured pattern and swaps in the new snapshot.
func (s *Store) Reload(ctx context.Context) (*batch.Dataset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	ds, err := batch.Load(ctx, s.paths, s.opts)
	metrics.DatasetLoadDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.DatasetLoadsTotal.WithLabelValues("failure").Inc()
		s.lastErr = fmt.Errorf("reload dataset: %w", err)
		if s.Ready() {
			log.Printf("dataset reload failed, keeping previous snapshot: %v", err)
		}
		return nil, s.lastErr
	}

	metrics.DatasetLoadsTotal.WithLabelValues("success").Inc()
	s.lastErr = nil
	s.Set(ds)

	for _, e := range ds.Errors {
		log.Printf("dataset %s: %s", shortID(ds.ID), e)
	}
	log.Printf("dataset %s loaded: %s records, %s invalid dates, %d files, %s in %s",
		shortID(ds.ID),
		humanize.Comma(int64(ds.Len())),
		humanize.Comma(int64(ds.InvalidDates())),
		len(ds.Files),
		humanize.Bytes(uint64(bytesRead(ds))),
		ds.Duration.Round(time.Millisecond),
	)

	return ds, nil
}

func updateMetrics(ds *batch.Dataset) {
	metrics.DatasetRecords.Set(float64(ds.Len()))
	metrics.DatasetInvalidDates.Set(float64(ds.InvalidDates()))
	if ds == nil {
		metrics.DatasetFiles.Set(0)
		return
	}
	metrics.DatasetFiles.Set(float64(len(ds.Files)))
	metrics.DatasetLastLoadTimestamp.Set(float64(ds.LoadedAt.Unix()))

	start := time.Now()
	counts := aggregate.ZoneCounts(aggregate.Servers(ds.Records))
	metrics.AggregationDuration.WithLabelValues("servers").Observe(time.Since(start).Seconds())
	for _, z := range []zone.Zone{zone.Good, zone.Warning, zone.Critical} {
		metrics.ServersByZone.WithLabelValues(z.String()).Set(float64(counts[z]))
	}
}

func bytesRead(ds *batch.Dataset) int64 {
	var n int64
	for _, f := range ds.Files {
		if f != nil {
			n += f.BytesRead
		}
	}
	return n
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
