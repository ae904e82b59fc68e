package watcher

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestNewDefaults(t *testing.T) {
	w, err := New("some/relative/backup.json")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !filepath.IsAbs(w.Path()) {
		t.Errorf("path should be absolute, got %s", w.Path())
	}
	if w.PollInterval() != DefaultPollInterval {
		t.Errorf("poll interval = %v", w.PollInterval())
	}
	if w.IsStarted() {
		t.Error("new watcher should not be started")
	}
}

func TestStartStop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "backup.json")
	writeFile(t, path, "{}")

	w, err := New(path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !w.IsStarted() {
		t.Error("IsStarted false after Start")
	}
	if err := w.Start(); err != ErrAlreadyStarted {
		t.Errorf("second Start = %v, want ErrAlreadyStarted", err)
	}
	w.Stop()
	if w.IsStarted() {
		t.Error("IsStarted true after Stop")
	}
	// Stop again is a no-op.
	w.Stop()
}

func TestPollingDetectsChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "backup.json")
	writeFile(t, path, "before")

	var changes atomic.Int32
	w, err := New(path,
		WithForcePoll(true),
		WithPollInterval(20*time.Millisecond),
		WithDebounceDuration(10*time.Millisecond),
		WithOnChange(func() { changes.Add(1) }),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer w.Stop()

	if !w.IsPolling() {
		t.Fatal("force-poll watcher should be in polling mode")
	}

	// Size change guarantees detection even with coarse mtime resolution.
	writeFile(t, path, "after, and longer")

	select {
	case <-w.Changed():
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for change notification")
	}
	if changes.Load() == 0 {
		t.Error("OnChange callback not invoked")
	}
}

func TestPollingReportsRemoval(t *testing.T) {
	path := filepath.Join(t.TempDir(), "backup.json")
	writeFile(t, path, "data")

	errCh := make(chan error, 4)
	w, err := New(path,
		WithForcePoll(true),
		WithPollInterval(20*time.Millisecond),
		WithOnError(func(err error) {
			select {
			case errCh <- err:
			default:
			}
		}),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer w.Stop()

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}

	select {
	case got := <-errCh:
		if got != ErrFileRemoved {
			t.Errorf("error = %v, want ErrFileRemoved", got)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for removal error")
	}
}

func TestFsnotifyDetectsWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "backup.json")
	writeFile(t, path, "before")

	w, err := New(path, WithDebounceDuration(10*time.Millisecond))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer w.Stop()

	if w.IsPolling() {
		t.Skip("fsnotify unavailable on this filesystem")
	}

	// Atomic-rename rewrite, the way the app saves backups.
	tmp := filepath.Join(dir, "backup.json.tmp")
	writeFile(t, tmp, "after")
	if err := os.Rename(tmp, path); err != nil {
		t.Fatal(err)
	}

	select {
	case <-w.Changed():
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for fsnotify change")
	}
}

func TestForcePollEnvVar(t *testing.T) {
	t.Setenv(ForcePollEnvVar, "1")

	path := filepath.Join(t.TempDir(), "backup.json")
	writeFile(t, path, "data")

	w, err := New(path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer w.Stop()

	if !w.IsPolling() {
		t.Error("env var should force polling mode")
	}
}

func TestDebouncerCoalesces(t *testing.T) {
	var calls atomic.Int32
	db := newDebouncer(30 * time.Millisecond)
	for i := 0; i < 10; i++ {
		db.Trigger(func() { calls.Add(1) })
	}
	time.Sleep(100 * time.Millisecond)
	if got := calls.Load(); got != 1 {
		t.Errorf("burst of triggers produced %d calls, want 1", got)
	}
}

func TestDebouncerCancel(t *testing.T) {
	var calls atomic.Int32
	db := newDebouncer(20 * time.Millisecond)
	db.Trigger(func() { calls.Add(1) })
	db.Cancel()
	time.Sleep(60 * time.Millisecond)
	if calls.Load() != 0 {
		t.Error("canceled trigger still fired")
	}
}
