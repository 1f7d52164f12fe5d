package catalog

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"mashup/internal/logging"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is bumped whenever schema.sql changes. Cached rows are
// disposable, so a mismatch drops and recreates the table.
const schemaVersion = 1

// Cache wraps a Searcher with a TTL cache stored in SQLite. Only non-empty
// result sets are cached.
type Cache struct {
	db     *sql.DB
	path   string
	ttl    time.Duration
	inner  Searcher
	logger *slog.Logger
	now    func() time.Time
}

var _ Searcher = (*Cache)(nil)

// OpenCache opens or creates the cache database at path.
func OpenCache(path string, ttl time.Duration, inner Searcher, logger *slog.Logger) (*Cache, error) {
	if inner == nil {
		return nil, errors.New("cache requires an underlying searcher")
	}
	if ttl <= 0 {
		return nil, errors.New("cache ttl must be positive")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}
	cache := &Cache{
		db:     db,
		path:   path,
		ttl:    ttl,
		inner:  inner,
		logger: logging.NewComponentLogger(logger, "catalog-cache"),
		now:    time.Now,
	}
	if err := cache.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return cache, nil
}

// Close closes the underlying database connection.
func (c *Cache) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Path returns the database location.
func (c *Cache) Path() string { return c.path }

// Search returns cached items when fresh and otherwise delegates to the
// wrapped searcher. Cache read and write failures are logged and bypassed.
func (c *Cache) Search(ctx context.Context, query string, maxResults int) ([]Item, error) {
	key := cacheKey(query)
	if items, ok := c.lookup(ctx, key, maxResults); ok {
		c.logger.Debug("search cache hit", logging.String("query", key), logging.Int("results", len(items)))
		return items, nil
	}
	items, err := c.inner.Search(ctx, query, maxResults)
	if err != nil || len(items) == 0 {
		return items, err
	}
	if err := c.store(ctx, key, maxResults, items); err != nil {
		logging.WarnWithContext(c.logger, "search cache write failed", "search_cache_write_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "next identical search will hit the api"),
			logging.String(logging.FieldErrorHint, "check permissions on "+c.path),
		)
	}
	return items, nil
}

// Prune deletes expired rows and returns how many were removed.
func (c *Cache) Prune(ctx context.Context) (int64, error) {
	cutoff := c.now().Add(-c.ttl).Unix()
	res, err := c.db.ExecContext(ctx, "DELETE FROM search_results WHERE fetched_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune search cache: %w", err)
	}
	return res.RowsAffected()
}

func (c *Cache) lookup(ctx context.Context, key string, maxResults int) ([]Item, bool) {
	var (
		payload   string
		fetchedAt int64
	)
	err := c.db.QueryRowContext(ctx,
		"SELECT payload, fetched_at FROM search_results WHERE query_key = ? AND max_results = ?",
		key, maxResults,
	).Scan(&payload, &fetchedAt)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			c.logger.Debug("search cache read failed", logging.Error(err))
		}
		return nil, false
	}
	if c.now().Sub(time.Unix(fetchedAt, 0)) >= c.ttl {
		return nil, false
	}
	var items []Item
	if err := json.Unmarshal([]byte(payload), &items); err != nil || len(items) == 0 {
		return nil, false
	}
	return items, true
}

func (c *Cache) store(ctx context.Context, key string, maxResults int, items []Item) error {
	payload, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode items: %w", err)
	}
	_, err = c.db.ExecContext(ctx,
		`INSERT INTO search_results (query_key, max_results, payload, fetched_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(query_key, max_results) DO UPDATE SET payload = excluded.payload, fetched_at = excluded.fetched_at`,
		key, maxResults, string(payload), c.now().Unix(),
	)
	return err
}

func (c *Cache) initSchema(ctx context.Context) error {
	var tableExists int
	err := c.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}
	if tableExists > 0 {
		var version int
		if err := c.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err == nil && version == schemaVersion {
			return nil
		}
		if _, err := c.db.ExecContext(ctx, "DROP TABLE IF EXISTS search_results; DROP TABLE IF EXISTS schema_version;"); err != nil {
			return fmt.Errorf("reset search cache: %w", err)
		}
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

func cacheKey(query string) string {
	return strings.ToLower(strings.Join(strings.Fields(query), " "))
}
