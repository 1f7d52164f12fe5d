package pipeline

import (
	"context"
	"log/slog"
	"time"

	"mashup/internal/assemble"
	"mashup/internal/catalog"
	"mashup/internal/config"
	"mashup/internal/delivery"
	"mashup/internal/fetch"
	"mashup/internal/identity"
	"mashup/internal/logging"
	"mashup/internal/media/ffmpeg"
	"mashup/internal/media/ffprobe"
	"mashup/internal/notifications"
	"mashup/internal/packaging"
	"mashup/internal/services"
	"mashup/internal/ytdlp"
)

// NewSearcher builds the catalog searcher described by cfg, wrapping it in the
// SQLite cache when enabled. The returned close function releases the cache.
// A cache that cannot be opened is logged and skipped.
func NewSearcher(cfg *config.Config, logger *slog.Logger) (catalog.Searcher, func() error, error) {
	client, err := catalog.New(cfg.YouTube.APIKey, cfg.YouTube.BaseURL, cfg.YouTube.WatchURL,
		catalog.WithTimeout(time.Duration(cfg.YouTube.TimeoutSeconds)*time.Second))
	if err != nil {
		return nil, nil, services.Wrap(services.ErrConfiguration, "search", "client", "", err)
	}
	noop := func() error { return nil }
	if !cfg.SearchCache.Enabled {
		return client, noop, nil
	}
	cache, err := catalog.OpenCache(cfg.SearchCache.Path, cfg.SearchCacheTTL(), client, logger)
	if err != nil {
		logging.WarnWithContext(logging.NewComponentLogger(logger, "pipeline"), "search cache unavailable", "search_cache_open_failed",
			logging.String("path", cfg.SearchCache.Path),
			logging.Error(err),
			logging.String(logging.FieldImpact, "searches go straight to the api"),
			logging.String(logging.FieldErrorHint, "delete the cache file or disable search_cache"),
		)
		return client, noop, nil
	}
	if removed, err := cache.Prune(context.Background()); err == nil && removed > 0 {
		logger.Debug("search cache pruned", logging.Int64("rows", removed))
	}
	return cache, cache.Close, nil
}

// FromConfig wires every production collaborator for cfg. The returned
// close function must be called once the Driver is no longer used.
func FromConfig(cfg *config.Config, logger *slog.Logger) (*Driver, func() error, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	searcher, closeSearcher, err := NewSearcher(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	extractor := ytdlp.New(ytdlp.Options{
		Binary:       cfg.Fetch.YtdlpBinary,
		AudioFormat:  cfg.Fetch.AudioFormat,
		AudioQuality: cfg.Fetch.AudioQuality,
		Retries:      cfg.Fetch.ExtractorRetries,
	})
	fetcher := fetch.NewFetcher(extractor, identity.New(cfg.Fetch.UserAgents), fetch.Options{
		MaxAttempts:  cfg.Fetch.MaxAttempts,
		BackoffBase:  cfg.BackoffBase(),
		JitterMax:    cfg.JitterMax(),
		RetryPolicy:  cfg.Fetch.RetryPolicy,
		BlockSignals: cfg.Fetch.BlockSignals,
	}, logger)
	paceMin, paceMax := cfg.PacingRange()
	orchestrator := fetch.NewOrchestrator(fetcher, fetch.OrchestratorOptions{
		Concurrency: cfg.Fetch.Concurrency,
		PacingMin:   paceMin,
		PacingMax:   paceMax,
	}, logger)

	codec := assemble.MediaCodec{
		Prober: ffprobe.Prober{Binary: cfg.Assembly.FFprobeBinary},
		Exporter: ffmpeg.Exporter{
			Binary:     cfg.Assembly.FFmpegBinary,
			Bitrate:    cfg.Assembly.Bitrate,
			SampleRate: cfg.Assembly.SampleRate,
		},
	}

	deps := Dependencies{
		Searcher:  searcher,
		Fetcher:   orchestrator,
		Assembler: assemble.New(codec, assemble.Options{SlicePolicy: cfg.Assembly.SlicePolicy}, logger),
		Packager:  packaging.New(logger),
		Notifier:  notifications.NewService(cfg),
	}
	if cfg.SMTP.Enabled {
		deps.Sender = delivery.NewSender(cfg.SMTP, logger)
	}

	driver, err := NewDriver(deps, Options{WorkRoot: cfg.Paths.WorkDir, OutputName: cfg.Assembly.OutputName}, logger)
	if err != nil {
		_ = closeSearcher()
		return nil, nil, err
	}
	return driver, closeSearcher, nil
}
