package fetch

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"mashup/internal/logging"
)

// OrchestratorOptions bound the worker pool and inter-download pacing.
type OrchestratorOptions struct {
	Concurrency int
	PacingMin   time.Duration
	PacingMax   time.Duration
}

// Orchestrator fans fetches out over a bounded worker pool.
type Orchestrator struct {
	fetcher ItemFetcher
	opts    OrchestratorOptions
	logger  *slog.Logger

	sleep   func(ctx context.Context, d time.Duration) error
	pace    func(lo, hi time.Duration) time.Duration
	shuffle func(urls []string)
}

// NewOrchestrator constructs an Orchestrator around fetcher.
func NewOrchestrator(fetcher ItemFetcher, opts OrchestratorOptions, logger *slog.Logger) *Orchestrator {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	if opts.PacingMax < opts.PacingMin {
		opts.PacingMax = opts.PacingMin
	}
	return &Orchestrator{
		fetcher: fetcher,
		opts:    opts,
		logger:  logging.NewComponentLogger(logger, "orchestrator"),
		sleep:   sleepContext,
		pace:    uniformBetween,
		shuffle: func(urls []string) {
			rand.Shuffle(len(urls), func(i, j int) { urls[i], urls[j] = urls[j], urls[i] })
		},
	}
}

// FetchAll retrieves every URL into dir and returns the paths of the
// successful downloads in completion order. It never fails; an empty slice
// means nothing could be retrieved.
func (o *Orchestrator) FetchAll(ctx context.Context, urls []string, dir string) []string {
	outcomes := o.FetchAllOutcomes(ctx, urls, dir)
	paths := make([]string, 0, len(outcomes))
	for _, outcome := range outcomes {
		if outcome.Succeeded() {
			paths = append(paths, outcome.Path)
		}
	}
	return paths
}

// FetchAllOutcomes behaves like FetchAll but returns every Outcome, including
// failures, in completion order.
func (o *Orchestrator) FetchAllOutcomes(ctx context.Context, urls []string, dir string) []Outcome {
	if len(urls) == 0 {
		return nil
	}
	logger := logging.WithContext(ctx, o.logger)

	shuffled := append([]string(nil), urls...)
	o.shuffle(shuffled)
	requests := make([]Request, len(shuffled))
	for i, url := range shuffled {
		requests[i] = Request{SourceURL: url, Slot: i + 1, DestinationDir: dir}
	}

	results := make(chan Outcome, len(requests))
	collected := make(chan []Outcome, 1)
	go func() {
		outcomes := make([]Outcome, 0, len(requests))
		succeeded := 0
		for outcome := range results {
			if outcome.Succeeded() {
				succeeded++
			} else {
				logger.Info("item not retrieved",
					logging.Int(logging.FieldSlot, outcome.Request.Slot),
					logging.String("url", outcome.Request.SourceURL),
					logging.String("reason", string(outcome.Reason)),
					logging.Int("attempts", outcome.Attempts),
					logging.Error(outcome.Err),
				)
			}
			outcomes = append(outcomes, outcome)
		}
		logger.Info("fetch batch complete",
			logging.Int("requested", len(requests)),
			logging.Int("downloaded", succeeded),
		)
		collected <- outcomes
	}()

	var pending atomic.Int64
	pending.Store(int64(len(requests)))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.opts.Concurrency)
	for _, req := range requests {
		g.Go(func() error {
			pending.Add(-1)
			results <- o.fetcher.Fetch(gctx, req)
			if pending.Load() > 0 && gctx.Err() == nil {
				delay := o.pace(o.opts.PacingMin, o.opts.PacingMax)
				logger.Debug("pacing before next download", logging.Duration("delay", delay))
				_ = o.sleep(gctx, delay)
			}
			return nil // per-item failures never cancel the batch
		})
	}
	_ = g.Wait()
	close(results)
	return <-collected
}

func uniformBetween(lo, hi time.Duration) time.Duration {
	if hi <= lo {
		return lo
	}
	return lo + rand.N(hi-lo)
}
