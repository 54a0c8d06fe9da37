package dataset

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/good-yellow-bee/syncstat/internal/batch"
)

const header = "Date (UTC)\tСервер\tИмя файла\tUser\tSupportSize (байты)\tModelSize (байты)\n"

func writeLog(t *testing.T, path string, rows ...string) {
	t.Helper()
	content := header
	for _, r := range rows {
		content += r + "\n"
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestStoreNotLoaded(t *testing.T) {
	s := NewStore([]string{"/nonexistent/*.tsv"}, nil)

	if s.Ready() {
		t.Error("Ready() = true before first load")
	}
	if _, err := s.Current(); !errors.Is(err, ErrNotLoaded) {
		t.Errorf("Current() error = %v, want ErrNotLoaded", err)
	}
}

func TestStoreReload(t *testing.T) {
	dir := t.TempDir()
	writeLog(t, filepath.Join(dir, "a.tsv"),
		"1 января 2024 10:00:00\tS1\tProj_Type_MINS_АР.rvt\tA\t1048576\t100",
		"2 января 2024 10:00:00\tS1\tProj_Type_MINS_АР.rvt\tB\t1048576\t200",
	)

	s := NewStore([]string{filepath.Join(dir, "*.tsv")}, &batch.LoadOptions{Workers: 1})
	ds, err := s.Reload(context.Background())
	if err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	if ds.Len() != 2 {
		t.Errorf("Len() = %d, want 2", ds.Len())
	}
	if !s.Ready() {
		t.Error("Ready() = false after load")
	}

	cur, err := s.Current()
	if err != nil {
		t.Fatalf("Current() error = %v", err)
	}
	if cur.ID != ds.ID {
		t.Errorf("Current().ID = %s, want %s", cur.ID, ds.ID)
	}

	writeLog(t, filepath.Join(dir, "b.tsv"),
		"3 января 2024 10:00:00\tS2\tOrg_Obj_ALFA_ОВ.rvt\tC\t10\t10",
	)
	next, err := s.Reload(context.Background())
	if err != nil {
		t.Fatalf("second Reload() error = %v", err)
	}
	if next.Len() != 3 {
		t.Errorf("Len() after second load = %d, want 3", next.Len())
	}
	if next.ID == ds.ID {
		t.Error("expected a new snapshot ID after reload")
	}
}

func TestStoreReloadKeepsPreviousOnFailure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.tsv")
	writeLog(t, path, "1 января 2024 10:00:00\tS1\tM.rvt\tA\t1\t1")

	s := NewStore([]string{filepath.Join(dir, "*.tsv")}, &batch.LoadOptions{Workers: 1})
	first, err := s.Reload(context.Background())
	if err != nil {
		t.Fatalf("Reload() error = %v", err)
	}

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Reload(context.Background()); !errors.Is(err, batch.ErrNoFiles) {
		t.Fatalf("Reload() error = %v, want ErrNoFiles", err)
	}
	if s.LastError() == nil {
		t.Error("LastError() = nil after failed reload")
	}

	cur, err := s.Current()
	if err != nil {
		t.Fatalf("Current() error = %v", err)
	}
	if cur.ID != first.ID {
		t.Error("failed reload replaced the previous snapshot")
	}
}

func TestStorePaths(t *testing.T) {
	paths := []string{"a/*.tsv", "b.tsv"}
	s := NewStore(paths, nil)

	got := s.Paths()
	got[0] = "changed"
	if s.Paths()[0] != "a/*.tsv" {
		t.Error("Paths() exposes internal slice")
	}
}

func TestWatcherMatches(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher([]string{filepath.Join(dir, "*.tsv")}, nil, nil)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer w.watcher.Close()

	tests := []struct {
		name  string
		event fsnotify.Event
		want  bool
	}{
		{"write match", fsnotify.Event{Name: filepath.Join(dir, "a.tsv"), Op: fsnotify.Write}, true},
		{"create match", fsnotify.Event{Name: filepath.Join(dir, "b.tsv"), Op: fsnotify.Create}, true},
		{"remove match", fsnotify.Event{Name: filepath.Join(dir, "b.tsv"), Op: fsnotify.Remove}, true},
		{"chmod ignored", fsnotify.Event{Name: filepath.Join(dir, "a.tsv"), Op: fsnotify.Chmod}, false},
		{"other extension", fsnotify.Event{Name: filepath.Join(dir, "a.log"), Op: fsnotify.Write}, false},
		{"other dir", fsnotify.Event{Name: filepath.Join(dir, "sub", "a.tsv"), Op: fsnotify.Write}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := w.relevant(tt.event); got != tt.want {
				t.Errorf("relevant(%v) = %v, want %v", tt.event, got, tt.want)
			}
		})
	}
}

func TestWatcherCheckForChanges(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.tsv")
	writeLog(t, path, "1 января 2024 10:00:00\tS1\tM.rvt\tA\t1\t1")

	w, err := NewWatcher([]string{filepath.Join(dir, "*.tsv")}, nil, nil)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer w.watcher.Close()

	w.state = w.snapshot()
	if w.checkForChanges() {
		t.Error("checkForChanges() = true without changes")
	}

	writeLog(t, path,
		"1 января 2024 10:00:00\tS1\tM.rvt\tA\t1\t1",
		"2 января 2024 10:00:00\tS1\tM.rvt\tA\t1\t1",
	)
	if !w.checkForChanges() {
		t.Error("checkForChanges() = false after size change")
	}

	writeLog(t, filepath.Join(dir, "b.tsv"))
	if !w.checkForChanges() {
		t.Error("checkForChanges() = false after new file")
	}
}

type countingReloader struct {
	mu    sync.Mutex
	calls int
	ch    chan struct{}
}

func (r *countingReloader) Reload(ctx context.Context) (*batch.Dataset, error) {
	r.mu.Lock()
	r.calls++
	r.mu.Unlock()
	select {
	case r.ch <- struct{}{}:
	default:
	}
	return batch.NewDataset(nil), nil
}

func TestWatcherRunTriggersReload(t *testing.T) {
	dir := t.TempDir()
	writeLog(t, filepath.Join(dir, "a.tsv"))

	reloader := &countingReloader{ch: make(chan struct{}, 1)}
	w, err := NewWatcher([]string{filepath.Join(dir, "*.tsv")}, reloader, &WatchOptions{
		PollInterval: 20 * time.Millisecond,
		Debounce:     10 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Give the watcher time to take its initial snapshot.
	time.Sleep(50 * time.Millisecond)
	writeLog(t, filepath.Join(dir, "b.tsv"), "1 января 2024 10:00:00\tS1\tM.rvt\tA\t1\t1")

	select {
	case <-reloader.ch:
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for reload")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run() did not return after cancel")
	}
}
