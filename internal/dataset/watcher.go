package dataset

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/good-yellow-bee/syncstat/internal/batch"
)

// Reloader re-reads the dataset.
type Reloader interface {
	Reload(ctx context.Context) (*batch.Dataset, error)
}

// WatchOptions configures a Watcher.
type WatchOptions struct {
	// PollInterval is the interval to poll for changes when fsnotify fails.
	PollInterval time.Duration
	// Debounce delays a reload until events stop arriving for this long.
	Debounce time.Duration
}

// DefaultWatchOptions returns WatchOptions with sensible defaults.
func DefaultWatchOptions() *WatchOptions {
	return &WatchOptions{
		PollInterval: 5 * time.Second,
		Debounce:     500 * time.Millisecond,
	}
}

type fileState struct {
	size    int64
	modTime time.Time
}

// Watcher triggers a reload when a file matching one of the patterns is
// written, created, renamed or removed.
type Watcher struct {
	patterns []string
	reloader Reloader
	opts     *WatchOptions
	watcher  *fsnotify.Watcher
	state    map[string]fileState
}

// NewWatcher creates a watcher for the given glob patterns.
func NewWatcher(patterns []string, reloader Reloader, opts *WatchOptions) (*Watcher, error) {
	if opts == nil {
		opts = DefaultWatchOptions()
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultWatchOptions().PollInterval
	}

	abs := make([]string, 0, len(patterns))
	for _, p := range patterns {
		a, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("failed to get absolute path: %w", err)
		}
		abs = append(abs, a)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	return &Watcher{
		patterns: abs,
		reloader: reloader,
		opts:     opts,
		watcher:  watcher,
	}, nil
}

// Run watches until ctx is canceled. It is meant to run in an errgroup.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	seen := make(map[string]bool)
	for _, p := range w.patterns {
		dir := filepath.Dir(p)
		if seen[dir] {
			continue
		}
		seen[dir] = true
		if err := w.watcher.Add(dir); err != nil {
			log.Printf("watch %s: %v, falling back to polling", dir, err)
		}
	}

	w.state = w.snapshot()

	ticker := time.NewTicker(w.opts.PollInterval)
	defer ticker.Stop()

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if w.relevant(event) {
				pending = time.After(w.opts.Debounce)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("watcher error: %v", err)
		case <-ticker.C:
			if w.checkForChanges() {
				pending = time.After(w.opts.Debounce)
			}
		case <-pending:
			pending = nil
			w.state = w.snapshot()
			if _, err := w.reloader.Reload(ctx); err != nil && ctx.Err() == nil {
				log.Printf("reload after change: %v", err)
			}
		}
	}
}

// relevant reports whether the event touches a watched file.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
		return false
	}
	return w.matches(event.Name)
}

func (w *Watcher) matches(name string) bool {
	for _, p := range w.patterns {
		if ok, _ := filepath.Match(p, name); ok {
			return true
		}
	}
	return false
}

// checkForChanges compares file sizes and modification times against the
// last snapshot. Fallback for systems where fsnotify doesn't work well.
func (w *Watcher) checkForChanges() bool {
	next := w.snapshot()
	changed := len(next) != len(w.state)
	if !changed {
		for path, st := range next {
			prev, ok := w.state[path]
			if !ok || prev.size != st.size || !prev.modTime.Equal(st.modTime) {
				changed = true
				break
			}
		}
	}
	w.state = next
	return changed
}

func (w *Watcher) snapshot() map[string]fileState {
	state := make(map[string]fileState)
	for _, p := range w.patterns {
		matches, err := filepath.Glob(p)
		if err != nil {
			continue
		}
		for _, m := range matches {
			info, err := os.Stat(m)
			if err != nil || info.IsDir() {
				continue
			}
			state[m] = fileState{size: info.Size(), modTime: info.ModTime()}
		}
	}
	return state
}
