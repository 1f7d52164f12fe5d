package fileutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCopyIntoCreatesDirectory(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "artist_mashup.zip")
	content := []byte("PK\x03\x04 archive bytes")
	if err := os.WriteFile(src, content, 0o644); err != nil {
		t.Fatal(err)
	}

	dst, err := CopyInto(src, filepath.Join(dir, "keep", "nested"))
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(dst) != "artist_mashup.zip" {
		t.Fatalf("unexpected destination %q", dst)
	}
	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(content) {
		t.Fatalf("content mismatch: got %q, want %q", got, content)
	}
	if FileSize(dst) != int64(len(content)) {
		t.Fatalf("unexpected size %d", FileSize(dst))
	}
}

func TestCopyFileVerifiedMissingSource(t *testing.T) {
	dir := t.TempDir()
	if err := CopyFileVerified(filepath.Join(dir, "missing"), filepath.Join(dir, "dst")); err == nil {
		t.Fatal("expected error for missing source")
	}
	if _, err := os.Stat(filepath.Join(dir, "dst")); !os.IsNotExist(err) {
		t.Fatal("destination should not be created")
	}
}

func TestFileSizeMissing(t *testing.T) {
	if FileSize(filepath.Join(t.TempDir(), "nope")) != 0 {
		t.Fatal("expected 0 for missing file")
	}
}
