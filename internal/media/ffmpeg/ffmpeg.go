// Package ffmpeg renders trimmed audio segments into a single encoded file.
package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Segment selects DurationMs of audio from Source starting at StartMs.
type Segment struct {
	Source     string
	StartMs    int64
	DurationMs int64
}

// Exporter concatenates segments with a fixed ffmpeg binary and encoding.
type Exporter struct {
	Binary     string
	Bitrate    string
	SampleRate int
}

// Concat trims every segment, joins them in order, and encodes the result to
// dest as MP3.
func (e Exporter) Concat(ctx context.Context, segments []Segment, dest string) error {
	if len(segments) == 0 {
		return errors.New("ffmpeg concat: no segments")
	}
	binary := strings.TrimSpace(e.Binary)
	if binary == "" {
		binary = "ffmpeg"
	}
	args := e.Args(segments, dest)
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg concat: %w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}

// Args builds the ffmpeg argument list for Concat.
func (e Exporter) Args(segments []Segment, dest string) []string {
	bitrate := strings.TrimSpace(e.Bitrate)
	if bitrate == "" {
		bitrate = "128k"
	}
	sampleRate := e.SampleRate
	if sampleRate <= 0 {
		sampleRate = 44100
	}

	args := []string{"-y", "-hide_banner", "-loglevel", "error"}
	for _, seg := range segments {
		args = append(args,
			"-ss", FormatSeconds(seg.StartMs),
			"-t", FormatSeconds(seg.DurationMs),
			"-i", seg.Source,
		)
	}

	var filter strings.Builder
	for i := range segments {
		fmt.Fprintf(&filter, "[%d:a:0]aresample=%d,aformat=sample_fmts=fltp:channel_layouts=stereo[a%d];", i, sampleRate, i)
	}
	for i := range segments {
		fmt.Fprintf(&filter, "[a%d]", i)
	}
	fmt.Fprintf(&filter, "concat=n=%d:v=0:a=1[out]", len(segments))

	args = append(args,
		"-filter_complex", filter.String(),
		"-map", "[out]",
		"-vn",
		"-c:a", "libmp3lame",
		"-b:a", bitrate,
		"-ar", strconv.Itoa(sampleRate),
		dest,
	)
	return args
}

// FormatSeconds renders milliseconds as an ffmpeg seconds value ("12.345").
func FormatSeconds(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	return fmt.Sprintf("%d.%03d", ms/1000, ms%1000)
}
