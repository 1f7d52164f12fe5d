package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"mashup/internal/assemble"
	"mashup/internal/catalog"
	"mashup/internal/delivery"
	"mashup/internal/fetch"
	"mashup/internal/fileutil"
	"mashup/internal/logging"
	"mashup/internal/notifications"
	"mashup/internal/packaging"
	"mashup/internal/services"
	"mashup/internal/workspace"
)

var (
	// ErrInvalidRequest reports a request outside the accepted ranges.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrNoResults means the catalog search failed or returned nothing.
	ErrNoResults = errors.New("no search results")
	// ErrNoAudioDownloaded means every fetch failed.
	ErrNoAudioDownloaded = errors.New("no audio downloaded")
	// ErrAssemblyFailed wraps assembler failures other than ErrNoUsableAudio.
	ErrAssemblyFailed = errors.New("mashup assembly failed")
)

// BatchFetcher retrieves many URLs into a directory.
type BatchFetcher interface {
	FetchAllOutcomes(ctx context.Context, urls []string, dir string) []fetch.Outcome
}

// Assembler builds the composite from downloaded paths.
type Assembler interface {
	AssembleExpecting(ctx context.Context, paths []string, expectedCount, clipSeconds int, outputPath string) (assemble.Result, error)
}

// Packager tags and archives the composite.
type Packager interface {
	Package(ctx context.Context, compositePath string, meta packaging.Metadata) (string, error)
}

// Sender delivers the archive.
type Sender interface {
	Send(ctx context.Context, msg delivery.Message) error
}

// Dependencies are the Driver's collaborators. Sender may be nil when email
// delivery is disabled; Notifier may be nil.
type Dependencies struct {
	Searcher  catalog.Searcher
	Fetcher   BatchFetcher
	Assembler Assembler
	Packager  Packager
	Sender    Sender
	Notifier  notifications.Service
}

// Options configure the Driver.
type Options struct {
	WorkRoot   string
	OutputName string
}

// Result summarizes a run. It is populated as far as the run progressed, so a
// failed run still reports how many items were found and downloaded.
// ArchivePath names the kept copy when KeepDir is set; otherwise it names the
// working copy, which no longer exists once Run returns.
type Result struct {
	RunID       string          `json:"run_id"`
	Query       string          `json:"query"`
	Found       int             `json:"found"`
	Downloaded  int             `json:"downloaded"`
	Outcomes    []fetch.Outcome `json:"-"`
	Composite   assemble.Result `json:"composite"`
	ArchivePath string          `json:"archive_path,omitempty"`
	KeptPath    string          `json:"kept_path,omitempty"`
	Delivered   bool            `json:"delivered"`
	DeliveryErr error           `json:"-"`
	Elapsed     time.Duration   `json:"elapsed"`
}

// Driver runs mashup requests.
type Driver struct {
	deps     Dependencies
	opts     Options
	logger   *slog.Logger
	newRunID func() string
}

// NewDriver validates dependencies and constructs a Driver.
func NewDriver(deps Dependencies, opts Options, logger *slog.Logger) (*Driver, error) {
	switch {
	case deps.Searcher == nil:
		return nil, errors.New("pipeline: searcher is required")
	case deps.Fetcher == nil:
		return nil, errors.New("pipeline: fetcher is required")
	case deps.Assembler == nil:
		return nil, errors.New("pipeline: assembler is required")
	case deps.Packager == nil:
		return nil, errors.New("pipeline: packager is required")
	}
	if opts.WorkRoot == "" {
		opts.WorkRoot = os.TempDir()
	}
	if opts.OutputName == "" {
		opts.OutputName = "mashup.mp3"
	}
	return &Driver{
		deps:     deps,
		opts:     opts,
		logger:   logging.NewComponentLogger(logger, "pipeline"),
		newRunID: uuid.NewString,
	}, nil
}

// DeliveryEnabled reports whether runs email their archive.
func (d *Driver) DeliveryEnabled() bool { return d.deps.Sender != nil }

// Search runs only the catalog lookup for query.
func (d *Driver) Search(ctx context.Context, query string, count int) ([]catalog.Item, error) {
	req := Request{Query: query, Count: count, ClipSeconds: DefaultClipSeconds}.Normalize()
	if err := req.Validate(); err != nil {
		return nil, invalid(err)
	}
	return d.search(ctx, req)
}

// Run executes req and returns the run summary. Delivery failures are
// recorded in Result.DeliveryErr and do not fail the run.
func (d *Driver) Run(ctx context.Context, req Request) (Result, error) {
	started := time.Now()
	req = req.Normalize()
	result := Result{Query: req.Query}
	if err := d.validate(req); err != nil {
		return result, err
	}

	result.RunID = d.newRunID()
	ctx = services.WithRunID(ctx, result.RunID)
	logger := logging.WithContext(ctx, d.logger)
	logger.Info("mashup run started",
		logging.String("query", req.Query),
		logging.Int("count", req.Count),
		logging.Int("clip_seconds", req.ClipSeconds),
	)

	err := d.run(ctx, req, &result)
	result.Elapsed = time.Since(started)
	if err != nil {
		logging.ErrorWithContext(logger, "mashup run failed", "run_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, services.FailureHint(err)),
		)
		d.notify(ctx, func(ctx context.Context, n notifications.Service) error {
			return n.NotifyRunFailed(ctx, req.Query, err)
		})
		return result, err
	}
	logger.Info("mashup run complete",
		logging.Int("found", result.Found),
		logging.Int("downloaded", result.Downloaded),
		logging.Int64("duration_ms", result.Composite.DurationMs),
		logging.Bool("delivered", result.Delivered),
		logging.Duration("elapsed", result.Elapsed),
	)
	return result, nil
}

func (d *Driver) validate(req Request) error {
	if err := req.Validate(); err != nil {
		return invalid(err)
	}
	if d.deps.Sender != nil && req.Recipient == "" {
		return invalid(errors.New("an email address is required while delivery is enabled"))
	}
	if d.deps.Sender == nil && req.KeepDir == "" {
		return invalid(errors.New("delivery is disabled; choose a directory to keep the mashup in"))
	}
	return nil
}

func (d *Driver) run(ctx context.Context, req Request, result *Result) error {
	logger := logging.WithContext(ctx, d.logger)
	workDir, err := workspace.NewRunDir(d.opts.WorkRoot, result.RunID)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "prepare", "work dir", d.opts.WorkRoot, err)
	}
	defer func() {
		if err := os.RemoveAll(workDir); err != nil {
			logging.WarnWithContext(logger, "work dir cleanup failed", "cleanup_failed",
				logging.String("dir", workDir),
				logging.Error(err),
				logging.String(logging.FieldImpact, "downloaded audio left on disk"),
				logging.String(logging.FieldErrorHint, "remove the directory manually"),
			)
		}
	}()

	items, err := d.search(ctx, req)
	if err != nil {
		return err
	}
	result.Found = len(items)

	urls := catalog.URLs(items)
	fetchCtx := services.WithStage(ctx, "fetch")
	outcomes := d.deps.Fetcher.FetchAllOutcomes(fetchCtx, urls, workDir)
	result.Outcomes = outcomes
	paths := successfulPaths(outcomes)
	result.Downloaded = len(paths)
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(paths) == 0 {
		return services.Wrap(services.ErrTransient, "fetch", "", fmt.Sprintf("0 of %d items retrieved", len(urls)), ErrNoAudioDownloaded)
	}

	output := filepath.Join(workDir, d.opts.OutputName)
	composite, err := d.deps.Assembler.AssembleExpecting(ctx, paths, len(urls), req.ClipSeconds, output)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if errors.Is(err, assemble.ErrNoUsableAudio) {
			return err
		}
		return services.Wrap(services.ErrExternalTool, "assemble", "", "", fmt.Errorf("%w: %w", ErrAssemblyFailed, err))
	}
	result.Composite = composite

	packCtx := services.WithStage(ctx, "package")
	archive, err := d.deps.Packager.Package(packCtx, composite.Path, packaging.Metadata{
		Query:      req.Query,
		Clips:      composite.Clips,
		DurationMs: composite.DurationMs,
		RunID:      result.RunID,
	})
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "package", "", "", err)
	}
	result.ArchivePath = archive

	if req.KeepDir != "" {
		kept, err := fileutil.CopyInto(archive, req.KeepDir)
		if err != nil {
			return services.Wrap(services.ErrConfiguration, "package", "keep", req.KeepDir, err)
		}
		result.KeptPath = kept
		result.ArchivePath = kept
	}

	if d.deps.Sender != nil {
		msg := delivery.Compose(req.Recipient, req.Query, composite.DurationMs, archive)
		if err := d.deps.Sender.Send(ctx, msg); err != nil {
			result.DeliveryErr = err
			logging.WarnWithContext(logger, "mashup delivery failed", "delivery_failed",
				logging.String("recipient", req.Recipient),
				logging.Error(err),
				logging.String(logging.FieldImpact, "mashup was built but not emailed"),
				logging.String(logging.FieldErrorHint, "check smtp settings or use --keep to save the archive"),
			)
			d.notify(ctx, func(ctx context.Context, n notifications.Service) error {
				return n.NotifyDeliveryFailed(ctx, req.Query, req.Recipient, err)
			})
		} else {
			result.Delivered = true
		}
	}

	d.notify(ctx, func(ctx context.Context, n notifications.Service) error {
		duration := time.Duration(composite.DurationMs) * time.Millisecond
		return n.NotifyMashupReady(ctx, req.Query, composite.Clips, duration, composite.Short)
	})
	return nil
}

func (d *Driver) search(ctx context.Context, req Request) ([]catalog.Item, error) {
	ctx = services.WithStage(ctx, "search")
	items, err := d.deps.Searcher.Search(ctx, req.Query, req.Count)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, services.Wrap(services.ErrNotFound, "search", "youtube", "", fmt.Errorf("%w: %w", ErrNoResults, err))
	}
	if len(items) == 0 {
		return nil, services.Wrap(services.ErrNotFound, "search", "youtube", fmt.Sprintf("nothing found for %q", req.Query), ErrNoResults)
	}
	logging.WithContext(ctx, d.logger).Info("search complete", logging.Int("results", len(items)))
	return items, nil
}

// notify runs fn against the notifier on a context that survives
// cancellation of the run, bounded to a few seconds.
func (d *Driver) notify(ctx context.Context, fn func(context.Context, notifications.Service) error) {
	if d.deps.Notifier == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := fn(ctx, d.deps.Notifier); err != nil {
		logging.WithContext(ctx, d.logger).Debug("notification failed", logging.Error(err))
	}
}

func successfulPaths(outcomes []fetch.Outcome) []string {
	paths := make([]string, 0, len(outcomes))
	for _, outcome := range outcomes {
		if outcome.Succeeded() {
			paths = append(paths, outcome.Path)
		}
	}
	return paths
}

func invalid(err error) error {
	return services.Wrap(services.ErrValidation, "request", "validate", "", fmt.Errorf("%w: %w", ErrInvalidRequest, err))
}
