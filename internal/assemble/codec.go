package assemble

import (
	"context"

	"mashup/internal/media/ffmpeg"
	"mashup/internal/media/ffprobe"
)

// Codec decodes payload durations and exports finished tracks.
type Codec interface {
	Decode(ctx context.Context, path string) (Payload, error)
	Export(ctx context.Context, slices []Slice, outputPath string) error
}

// MediaCodec implements Codec with ffprobe and ffmpeg.
type MediaCodec struct {
	Prober   ffprobe.Prober
	Exporter ffmpeg.Exporter
}

// Decode measures the audio duration of path.
func (c MediaCodec) Decode(ctx context.Context, path string) (Payload, error) {
	ms, err := c.Prober.Duration(ctx, path)
	if err != nil {
		return Payload{}, err
	}
	return Payload{Path: path, DurationMs: ms}, nil
}

// Export renders slices to outputPath.
func (c MediaCodec) Export(ctx context.Context, slices []Slice, outputPath string) error {
	segments := make([]ffmpeg.Segment, len(slices))
	for i, s := range slices {
		segments[i] = ffmpeg.Segment{Source: s.Source, StartMs: s.StartMs, DurationMs: s.DurationMs}
	}
	return c.Exporter.Concat(ctx, segments, outputPath)
}
