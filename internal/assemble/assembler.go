package assemble

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"mashup/internal/logging"
	"mashup/internal/services"
)

// Slice policies.
const (
	PolicyRandom = "random"
	PolicyPrefix = "prefix"
)

var (
	// ErrNoUsableAudio means no input could be decoded.
	ErrNoUsableAudio = errors.New("no usable audio")
	// ErrExportFailed means the finished track could not be encoded.
	ErrExportFailed = errors.New("composite export failed")
)

// Options configure an Assembler.
type Options struct {
	SlicePolicy string
}

// Result describes an exported composite.
type Result struct {
	Path       string `json:"path"`
	DurationMs int64  `json:"duration_ms"`
	ExpectedMs int64  `json:"expected_ms"`
	Short      bool   `json:"short"`
	Clips      int    `json:"clips"`
	Skipped    int    `json:"skipped"`
}

// Assembler builds composites through a Codec. It is not safe for concurrent
// use.
type Assembler struct {
	codec  Codec
	opts   Options
	logger *slog.Logger
	startN func(n int64) int64
}

// New constructs an Assembler. An unknown slice policy falls back to random.
func New(codec Codec, opts Options, logger *slog.Logger) *Assembler {
	if opts.SlicePolicy != PolicyPrefix {
		opts.SlicePolicy = PolicyRandom
	}
	return &Assembler{
		codec:  codec,
		opts:   opts,
		logger: logging.NewComponentLogger(logger, "assembler"),
		startN: rand.Int64N,
	}
}

// Assemble builds a composite from paths where the expected length is one
// clip per path.
func (a *Assembler) Assemble(ctx context.Context, paths []string, clipSeconds int, outputPath string) (Result, error) {
	return a.AssembleExpecting(ctx, paths, len(paths), clipSeconds, outputPath)
}

// AssembleExpecting builds a composite whose target length is
// clipSeconds*expectedCount. Callers pass the number of items originally
// submitted for retrieval so missing downloads yield a short composite rather
// than a silently shorter target.
func (a *Assembler) AssembleExpecting(ctx context.Context, paths []string, expectedCount, clipSeconds int, outputPath string) (Result, error) {
	if clipSeconds <= 0 {
		return Result{}, services.Wrap(services.ErrValidation, "assemble", "validate", fmt.Sprintf("clip duration must be positive, got %d", clipSeconds), nil)
	}
	if expectedCount < len(paths) {
		expectedCount = len(paths)
	}
	ctx = services.WithStage(ctx, "assemble")
	logger := logging.WithContext(ctx, a.logger)
	clipMs := int64(clipSeconds) * 1000

	var track Track
	skipped := 0
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		payload, err := a.codec.Decode(ctx, path)
		if err == nil && payload.DurationMs <= 0 {
			err = errors.New("empty payload")
		}
		if err != nil {
			skipped++
			logging.WarnWithContext(logger, "payload could not be decoded", "decode_failed",
				logging.String("path", path),
				logging.Error(err),
				logging.String(logging.FieldImpact, "clip skipped"),
				logging.String(logging.FieldErrorHint, "file may be truncated or not audio"),
			)
			continue
		}
		slice := a.sliceFor(payload, clipMs)
		if slice.DurationMs < clipMs {
			logger.Info("payload shorter than clip, using full length",
				logging.String("path", path),
				logging.Int64("duration_ms", payload.DurationMs),
			)
		}
		if err := track.Append(slice); err != nil {
			return Result{}, err
		}
	}

	if track.Len() == 0 {
		return Result{}, services.Wrap(services.ErrExternalTool, "assemble", "decode", "no input could be decoded", ErrNoUsableAudio)
	}

	expectedMs := clipMs * int64(expectedCount)
	short, err := track.Finalize(expectedMs)
	if err != nil {
		return Result{}, err
	}
	if short {
		logging.WarnWithContext(logger, "composite shorter than expected", "composite_short",
			logging.Int64("duration_ms", track.DurationMs()),
			logging.Int64("expected_ms", expectedMs),
			logging.String(logging.FieldImpact, "composite delivered without padding"),
			logging.String(logging.FieldErrorHint, "some downloads failed or were shorter than the clip length"),
		)
	}

	if err := a.codec.Export(ctx, track.Slices(), outputPath); err != nil {
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		return Result{}, services.Wrap(services.ErrExternalTool, "assemble", "export", "", fmt.Errorf("%w: %w", ErrExportFailed, err))
	}

	result := Result{
		Path:       outputPath,
		DurationMs: track.DurationMs(),
		ExpectedMs: expectedMs,
		Short:      short,
		Clips:      track.Len(),
		Skipped:    skipped,
	}
	logger.Info("composite exported",
		logging.String("path", outputPath),
		logging.Int64("duration_ms", result.DurationMs),
		logging.Int("clips", result.Clips),
		logging.Int("skipped", skipped),
	)
	return result, nil
}

// sliceFor selects at most clipMs of payload according to the policy.
func (a *Assembler) sliceFor(p Payload, clipMs int64) Slice {
	if p.DurationMs <= clipMs {
		return Slice{Source: p.Path, DurationMs: p.DurationMs}
	}
	start := int64(0)
	if a.opts.SlicePolicy == PolicyRandom {
		start = a.startN(p.DurationMs - clipMs + 1)
	}
	return Slice{Source: p.Path, StartMs: start, DurationMs: clipMs}
}
