package logs_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"botanize/internal/logs"
)

func writeLog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "botanize.log")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}
	return path
}

func TestTailLastLines(t *testing.T) {
	path := writeLog(t, "a\nb\nc\n")

	snap, err := logs.Tail(path, 2)
	if err != nil {
		t.Fatalf("Tail returned error: %v", err)
	}
	if diff := cmp.Diff([]string{"b", "c"}, snap.Lines); diff != "" {
		t.Fatalf("lines mismatch (-want +got):\n%s", diff)
	}
	if snap.Offset != 6 {
		t.Fatalf("expected offset 6, got %d", snap.Offset)
	}
}

func TestTailShortFileAndZeroLimit(t *testing.T) {
	path := writeLog(t, "only\n")

	snap, err := logs.Tail(path, 10)
	if err != nil {
		t.Fatalf("Tail returned error: %v", err)
	}
	if diff := cmp.Diff([]string{"only"}, snap.Lines); diff != "" {
		t.Fatalf("lines mismatch (-want +got):\n%s", diff)
	}

	snap, err = logs.Tail(path, 0)
	if err != nil {
		t.Fatalf("Tail returned error: %v", err)
	}
	if len(snap.Lines) != 0 || snap.Offset != 5 {
		t.Fatalf("expected end offset without lines, got %+v", snap)
	}
}

func TestTailMissingFile(t *testing.T) {
	snap, err := logs.Tail(filepath.Join(t.TempDir(), "absent.log"), 5)
	if err != nil {
		t.Fatalf("Tail returned error: %v", err)
	}
	if len(snap.Lines) != 0 || snap.Offset != 0 {
		t.Fatalf("expected empty snapshot, got %+v", snap)
	}
}

func TestTailRejectsDirectory(t *testing.T) {
	if _, err := logs.Tail(t.TempDir(), 5); err == nil {
		t.Fatal("expected error for directory")
	}
}

func TestFollowEmitsAppendedLines(t *testing.T) {
	path := writeLog(t, "start\n")
	snap, err := logs.Tail(path, 1)
	if err != nil {
		t.Fatalf("Tail returned error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	var (
		mu   sync.Mutex
		seen []string
	)
	got := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- logs.Follow(ctx, path, snap.Offset, func(line string) {
			mu.Lock()
			defer mu.Unlock()
			seen = append(seen, line)
			if len(seen) == 2 {
				close(got)
			}
		}, logs.FollowOptions{Interval: 10 * time.Millisecond})
	}()

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open append: %v", err)
	}
	if _, err := f.WriteString("later\npartial"); err != nil {
		t.Fatalf("append log: %v", err)
	}
	time.Sleep(50 * time.Millisecond)
	if _, err := f.WriteString(" line\n"); err != nil {
		t.Fatalf("append log: %v", err)
	}
	_ = f.Close()

	select {
	case <-got:
	case <-time.After(5 * time.Second):
		t.Fatal("follow did not emit appended lines")
	}
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Follow returned error: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if diff := cmp.Diff([]string{"later", "partial line"}, seen); diff != "" {
		t.Fatalf("followed lines mismatch (-want +got):\n%s", diff)
	}
}
