package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"time"

	"mashup/internal/identity"
	"mashup/internal/logging"
	"mashup/internal/services"
)

// Retry policies.
const (
	PolicySignal = "signal"
	PolicyAny    = "any"
)

const payloadExt = ".mp3"

// Options tune the Fetcher retry loop.
type Options struct {
	MaxAttempts  int
	BackoffBase  time.Duration
	JitterMax    time.Duration
	RetryPolicy  string
	BlockSignals []string
}

// Fetcher retrieves one item with bounded retries and identity rotation.
type Fetcher struct {
	extractor  Extractor
	identities *identity.Rotator
	opts       Options
	logger     *slog.Logger

	sleep  func(ctx context.Context, d time.Duration) error
	jitter func(max time.Duration) time.Duration
}

// NewFetcher constructs a Fetcher. A nil rotator uses the built-in identity pool.
func NewFetcher(extractor Extractor, identities *identity.Rotator, opts Options, logger *slog.Logger) *Fetcher {
	if identities == nil {
		identities = identity.New(nil)
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 5
	}
	if opts.RetryPolicy == "" {
		opts.RetryPolicy = PolicySignal
	}
	return &Fetcher{
		extractor:  extractor,
		identities: identities,
		opts:       opts,
		logger:     logging.NewComponentLogger(logger, "fetcher"),
		sleep:      sleepContext,
		jitter:     uniformJitter,
	}
}

// Fetch runs the retry loop for req and always returns an Outcome.
func (f *Fetcher) Fetch(ctx context.Context, req Request) Outcome {
	ctx = services.WithSlot(services.WithStage(ctx, "fetch"), req.Slot)
	logger := logging.WithContext(ctx, f.logger).With(logging.String("url", req.SourceURL))

	state := attemptState{identity: f.identities.Next()}
	template := filepath.Join(req.DestinationDir, fmt.Sprintf("song_%d.%%(ext)s", req.Slot))

	for state.count < f.opts.MaxAttempts {
		if err := ctx.Err(); err != nil {
			return f.canceled(req, state, err)
		}
		state.count++
		logger.Debug("extract attempt",
			logging.Int("attempt", state.count),
			logging.Int("max_attempts", f.opts.MaxAttempts),
			logging.String("user_agent", state.identity),
		)

		err := f.extractor.Extract(ctx, req.SourceURL, template, state.identity)
		if err == nil {
			path, findErr := locatePayload(req.DestinationDir, req.Slot)
			if findErr != nil {
				logging.WarnWithContext(logger, "extractor reported success but no payload was written", "fetch_missing_payload",
					logging.Error(findErr),
					logging.String(logging.FieldImpact, "item skipped"),
				)
				return Outcome{Request: req, Reason: ReasonOther, Err: findErr, Attempts: state.count}
			}
			logger.Info("payload downloaded", logging.String("path", path), logging.Int("attempts", state.count))
			return Outcome{Request: req, Path: path, Attempts: state.count}
		}

		state.lastErr = err
		if ctxErr := ctx.Err(); ctxErr != nil {
			return f.canceled(req, state, ctxErr)
		}
		if !f.retryable(err) {
			logging.WarnWithContext(logger, "extract failed without block signal", "fetch_failed",
				logging.Int("attempt", state.count),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "video may be private, region locked, or removed"),
				logging.String(logging.FieldImpact, "item skipped"),
			)
			return Outcome{Request: req, Reason: ReasonOther, Err: err, Attempts: state.count}
		}
		if state.count >= f.opts.MaxAttempts {
			break
		}

		delay := f.backoff(state.count - 1)
		logger.Info("upstream block detected, backing off",
			logging.Int("attempt", state.count),
			logging.Duration("delay", delay),
		)
		if err := f.sleep(ctx, delay); err != nil {
			return f.canceled(req, state, err)
		}
		state.identity = f.identities.Next()
	}

	logging.WarnWithContext(logger, "retries exhausted", "fetch_exhausted",
		logging.Int("attempts", state.count),
		logging.Error(state.lastErr),
		logging.String(logging.FieldErrorHint, "upstream is rate limiting; lower fetch.concurrency or retry later"),
		logging.String(logging.FieldImpact, "item skipped"),
	)
	return Outcome{
		Request:  req,
		Reason:   ReasonExhaustedRetries,
		Err:      services.Wrap(services.ErrTransient, "fetch", "extract", "retries exhausted", state.lastErr),
		Attempts: state.count,
	}
}

func (f *Fetcher) canceled(req Request, state attemptState, err error) Outcome {
	return Outcome{Request: req, Reason: ReasonCanceled, Err: err, Attempts: state.count}
}

// retryable applies the configured policy to an extractor error.
func (f *Fetcher) retryable(err error) bool {
	if f.opts.RetryPolicy == PolicyAny {
		return true
	}
	return IsBlockSignal(err, f.opts.BlockSignals)
}

// backoff returns base*2^attempt plus uniform jitter in [0, JitterMax).
func (f *Fetcher) backoff(attempt int) time.Duration {
	delay := f.opts.BackoffBase << min(attempt, 16)
	if f.opts.JitterMax > 0 {
		delay += f.jitter(f.opts.JitterMax)
	}
	return delay
}

// IsBlockSignal reports whether err carries one of the anti-automation
// signal phrases. Matching is case-insensitive.
func IsBlockSignal(err error, signals []string) bool {
	if err == nil {
		return false
	}
	text := strings.ToLower(err.Error())
	for _, signal := range signals {
		signal = strings.ToLower(strings.TrimSpace(signal))
		if signal != "" && strings.Contains(text, signal) {
			return true
		}
	}
	return false
}

// locatePayload finds song_<slot>.mp3 (or any song_<slot>.* ending in .mp3)
// inside dir.
func locatePayload(dir string, slot int) (string, error) {
	prefix := fmt.Sprintf("song_%d.", slot)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("read destination: %w", err)
	}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, prefix) {
			continue
		}
		if strings.EqualFold(filepath.Ext(name), payloadExt) {
			return filepath.Join(dir, name), nil
		}
	}
	return "", fmt.Errorf("downloaded file not found for slot %d", slot)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func uniformJitter(max time.Duration) time.Duration {
	if max <= 0 {
		return 0
	}
	return rand.N(max)
}
