package packaging

import (
	"archive/zip"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bogem/id3v2"

	"mashup/internal/logging"
)

func TestArchiveName(t *testing.T) {
	cases := map[string]string{
		"Taylor Swift": "Taylor_Swift_mashup.zip",
		"AC/DC":        "AC-DC_mashup.zip",
		"  ":           "mashup.zip",
	}
	for in, want := range cases {
		if got := ArchiveName(in); got != want {
			t.Errorf("ArchiveName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestPackageTagsAndArchives(t *testing.T) {
	dir := t.TempDir()
	composite := filepath.Join(dir, "mashup.mp3")
	audio := []byte("\xff\xfb\x90\x00fake-mpeg-frames")
	if err := os.WriteFile(composite, audio, 0o644); err != nil {
		t.Fatal(err)
	}

	p := New(logging.NewNop())
	p.now = func() time.Time { return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC) }
	archive, err := p.Package(context.Background(), composite, Metadata{Query: "taylor swift", Clips: 10, DurationMs: 300000, RunID: "run-1"})
	if err != nil {
		t.Fatalf("Package: %v", err)
	}
	if filepath.Base(archive) != "taylor_swift_mashup.zip" {
		t.Fatalf("unexpected archive name %q", archive)
	}

	tag, err := id3v2.Open(composite, id3v2.Options{Parse: true})
	if err != nil {
		t.Fatalf("open tags: %v", err)
	}
	defer tag.Close()
	if tag.Title() != "Taylor Swift Mashup" || tag.Artist() != "Taylor Swift" || tag.Album() != Album {
		t.Fatalf("unexpected tags title=%q artist=%q album=%q", tag.Title(), tag.Artist(), tag.Album())
	}
	if tag.Year() != "2026" {
		t.Fatalf("unexpected year %q", tag.Year())
	}

	zr, err := zip.OpenReader(archive)
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	defer zr.Close()
	if len(zr.File) != 1 || zr.File[0].Name != "mashup.mp3" {
		t.Fatalf("unexpected archive entries %v", zr.File)
	}
	rc, err := zr.File[0].Open()
	if err != nil {
		t.Fatal(err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatal(err)
	}
	onDisk, _ := os.ReadFile(composite)
	if string(data) != string(onDisk) {
		t.Fatal("archived bytes differ from tagged composite")
	}
}

func TestPackageMissingComposite(t *testing.T) {
	p := New(nil)
	if _, err := p.Package(context.Background(), filepath.Join(t.TempDir(), "none.mp3"), Metadata{Query: "x"}); err == nil {
		t.Fatal("expected error for missing composite")
	}
}

func TestComment(t *testing.T) {
	if got := comment(Metadata{Clips: 7, DurationMs: 210000}); got != "7 clips, 210 seconds" {
		t.Fatalf("unexpected comment %q", got)
	}
}
