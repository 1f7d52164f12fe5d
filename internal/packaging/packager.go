package packaging

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bogem/id3v2"

	"mashup/internal/logging"
	"mashup/internal/textutil"
)

// Album is written to the TALB frame of every composite.
const Album = "YouTube Mashups"

// Metadata describes the composite being packaged.
type Metadata struct {
	Query      string
	Clips      int
	DurationMs int64
	RunID      string
}

// Packager tags and archives composites.
type Packager struct {
	logger *slog.Logger
	now    func() time.Time
}

// New constructs a Packager.
func New(logger *slog.Logger) *Packager {
	return &Packager{logger: logging.NewComponentLogger(logger, "packaging"), now: time.Now}
}

// Package tags compositePath and writes the archive beside it, returning the
// archive path. Tagging failures are logged and do not stop archiving.
func (p *Packager) Package(ctx context.Context, compositePath string, meta Metadata) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if _, err := os.Stat(compositePath); err != nil {
		return "", fmt.Errorf("stat composite: %w", err)
	}
	logger := logging.WithContext(ctx, p.logger)

	if err := p.Tag(compositePath, meta); err != nil {
		logging.WarnWithContext(logger, "composite tagging failed", "tagging_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "composite delivered without ID3 metadata"),
			logging.String(logging.FieldErrorHint, "verify the exported file is a valid mp3"),
		)
	}

	archivePath := filepath.Join(filepath.Dir(compositePath), ArchiveName(meta.Query))
	if err := Zip(compositePath, archivePath); err != nil {
		return "", err
	}
	logger.Info("composite archived", logging.String("archive", archivePath))
	return archivePath, nil
}

// Tag writes title, artist, album, year and comment frames to path.
func (p *Packager) Tag(path string, meta Metadata) error {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return fmt.Errorf("open tags: %w", err)
	}
	defer tag.Close()

	artist := textutil.Title(meta.Query)
	tag.SetDefaultEncoding(id3v2.EncodingUTF8)
	tag.SetTitle(artist + " Mashup")
	tag.SetArtist(artist)
	tag.SetAlbum(Album)
	tag.SetYear(p.now().Format("2006"))
	tag.AddCommentFrame(id3v2.CommentFrame{
		Encoding:    id3v2.EncodingUTF8,
		Language:    "eng",
		Description: "mashup",
		Text:        comment(meta),
	})
	if meta.RunID != "" {
		tag.AddUserDefinedTextFrame(id3v2.UserDefinedTextFrame{
			Encoding:    id3v2.EncodingUTF8,
			Description: "MASHUP_RUN_ID",
			Value:       meta.RunID,
		})
	}
	return tag.Save()
}

func comment(meta Metadata) string {
	seconds := meta.DurationMs / 1000
	return fmt.Sprintf("%d clips, %d seconds", meta.Clips, seconds)
}

// ArchiveName returns "<query>_mashup.zip" with filesystem-unsafe characters
// removed and whitespace replaced by underscores.
func ArchiveName(query string) string {
	name := textutil.SanitizeFileName(query)
	name = strings.Join(strings.Fields(name), "_")
	if name == "" {
		return "mashup.zip"
	}
	return name + "_mashup.zip"
}

// Zip writes src into a new archive at dest under its base name.
func Zip(src, dest string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open composite: %w", err)
	}
	defer in.Close()
	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("stat composite: %w", err)
	}

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create archive: %w", err)
	}
	defer func() {
		if cerr := out.Close(); err == nil && cerr != nil {
			err = cerr
		}
		if err != nil {
			_ = os.Remove(dest)
		}
	}()

	zw := zip.NewWriter(out)
	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return fmt.Errorf("zip header: %w", err)
	}
	header.Name = filepath.Base(src)
	header.Method = zip.Deflate
	w, err := zw.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("zip entry: %w", err)
	}
	if _, err := io.Copy(w, in); err != nil {
		return fmt.Errorf("zip write: %w", err)
	}
	if err := zw.Close(); err != nil {
		return errors.Join(errors.New("finalize archive"), err)
	}
	return nil
}
