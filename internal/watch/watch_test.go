package watch

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func startWatcher(t *testing.T, dir string, debounce time.Duration) *atomic.Int32 {
	t.Helper()
	var calls atomic.Int32
	w, err := New(dir, debounce, func() { calls.Add(1) }, discard)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return &calls
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for condition")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestBurstIsCoalesced(t *testing.T) {
	dir := t.TempDir()
	calls := startWatcher(t, dir, 100*time.Millisecond)

	for i := 0; i < 5; i++ {
		path := filepath.Join(dir, "post.md")
		if err := os.WriteFile(path, []byte{byte('a' + i)}, 0o644); err != nil {
			t.Fatal(err)
		}
	}

	waitFor(t, func() bool { return calls.Load() >= 1 })
	time.Sleep(300 * time.Millisecond)
	if got := calls.Load(); got != 1 {
		t.Errorf("onChange called %d times, want 1", got)
	}
}

func TestNewSubdirectoriesAreWatched(t *testing.T) {
	dir := t.TempDir()
	calls := startWatcher(t, dir, 50*time.Millisecond)

	sub := filepath.Join(dir, "posts")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool { return calls.Load() >= 1 })
	before := calls.Load()

	if err := os.WriteFile(filepath.Join(sub, "new.md"), []byte("# New\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool { return calls.Load() > before })
}

func TestScratchFilesIgnored(t *testing.T) {
	dir := t.TempDir()
	calls := startWatcher(t, dir, 50*time.Millisecond)

	if err := os.WriteFile(filepath.Join(dir, ".post.md.swp"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "post.md~"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(300 * time.Millisecond)
	if got := calls.Load(); got != 0 {
		t.Errorf("onChange called %d times for scratch files", got)
	}
}

func TestNewFailsForMissingRoot(t *testing.T) {
	if _, err := New(filepath.Join(t.TempDir(), "missing"), 0, func() {}, discard); err == nil {
		t.Error("expected error for missing root")
	}
}
