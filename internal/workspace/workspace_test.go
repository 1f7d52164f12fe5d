package workspace

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"mashup/internal/logging"
)

func makeDir(t *testing.T, root, name string, age time.Duration) string {
	t.Helper()
	dir := filepath.Join(root, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", name, err)
	}
	if err := os.WriteFile(filepath.Join(dir, "01.mp3"), []byte("audio"), 0o644); err != nil {
		t.Fatalf("write payload: %v", err)
	}
	stamp := time.Now().Add(-age)
	if err := os.Chtimes(dir, stamp, stamp); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
	return dir
}

func TestCleanStaleInvalidPaths(t *testing.T) {
	for _, dir := range []string{"", "   ", "/nonexistent/path/12345"} {
		result := CleanStale(context.Background(), dir, time.Hour, logging.NewNop())
		if len(result.Removed) != 0 || len(result.Errors) != 0 {
			t.Errorf("expected empty result for path %q", dir)
		}
	}
}

func TestCleanStaleRemovesOnlyOldRunDirectories(t *testing.T) {
	root := t.TempDir()
	old := makeDir(t, root, "run-aaaa1111-123", 2*time.Hour)
	recent := makeDir(t, root, "run-bbbb2222-456", time.Minute)
	unrelated := makeDir(t, root, "keep-me", 48*time.Hour)

	result := CleanStale(context.Background(), root, time.Hour, logging.NewNop())
	if len(result.Errors) != 0 {
		t.Fatalf("unexpected errors: %+v", result.Errors)
	}
	if len(result.Removed) != 1 || result.Removed[0] != old {
		t.Fatalf("unexpected removals %v", result.Removed)
	}
	for _, dir := range []string{recent, unrelated} {
		if _, err := os.Stat(dir); err != nil {
			t.Fatalf("expected %s to survive: %v", dir, err)
		}
	}
}

func TestCleanStaleZeroAgeRemovesAllRuns(t *testing.T) {
	root := t.TempDir()
	makeDir(t, root, "run-one", time.Second)
	makeDir(t, root, "run-two", 0)

	result := CleanStale(context.Background(), root, 0, nil)
	if len(result.Removed) != 2 {
		t.Fatalf("expected both runs removed, got %v", result.Removed)
	}
	dirs, err := List(root)
	if err != nil {
		t.Fatal(err)
	}
	if len(dirs) != 0 {
		t.Fatalf("expected no run dirs, got %+v", dirs)
	}
}

func TestListOrdersByAgeAndSumsSize(t *testing.T) {
	root := t.TempDir()
	makeDir(t, root, "run-newer", time.Minute)
	makeDir(t, root, "run-older", time.Hour)

	dirs, err := List(root)
	if err != nil {
		t.Fatal(err)
	}
	if len(dirs) != 2 || dirs[0].Name != "run-older" {
		t.Fatalf("unexpected listing %+v", dirs)
	}
	if dirs[0].Size != int64(len("audio")) {
		t.Fatalf("unexpected size %d", dirs[0].Size)
	}
}

func TestNewRunDirUsesPrefix(t *testing.T) {
	root := filepath.Join(t.TempDir(), "work")
	dir, err := NewRunDir(root, "1a2b3c4d-5e6f-7081-9203-abcdef012345")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(filepath.Base(dir), "run-1a2b3c4d-") {
		t.Fatalf("unexpected run dir %q", dir)
	}
}
