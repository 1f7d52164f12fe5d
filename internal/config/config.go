package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	WorkDir string `toml:"work_dir"`
	LogDir  string `toml:"log_dir"`
}

// YouTube contains configuration for the YouTube Data API catalog lookup.
type YouTube struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	WatchURL       string `toml:"watch_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Fetch contains configuration for audio retrieval.
type Fetch struct {
	YtdlpBinary        string   `toml:"ytdlp_binary"`
	MaxAttempts        int      `toml:"max_attempts"`
	Concurrency        int      `toml:"concurrency"`
	BackoffBaseSeconds float64  `toml:"backoff_base_seconds"`
	JitterMaxMillis    int      `toml:"jitter_max_millis"`
	PacingMinSeconds   float64  `toml:"pacing_min_seconds"`
	PacingMaxSeconds   float64  `toml:"pacing_max_seconds"`
	RetryPolicy        string   `toml:"retry_policy"`
	AudioFormat        string   `toml:"audio_format"`
	AudioQuality       string   `toml:"audio_quality"`
	ExtractorRetries   int      `toml:"extractor_retries"`
	BlockSignals       []string `toml:"block_signals"`
	UserAgents         []string `toml:"user_agents"`
}

// Assembly contains configuration for composite assembly.
type Assembly struct {
	FFmpegBinary  string `toml:"ffmpeg_binary"`
	FFprobeBinary string `toml:"ffprobe_binary"`
	SlicePolicy   string `toml:"slice_policy"`
	Bitrate       string `toml:"bitrate"`
	SampleRate    int    `toml:"sample_rate"`
	OutputName    string `toml:"output_name"`
}

// SMTP contains configuration for email delivery of the finished archive.
type SMTP struct {
	Enabled        bool   `toml:"enabled"`
	Host           string `toml:"host"`
	Port           int    `toml:"port"`
	Username       string `toml:"username"`
	Password       string `toml:"password"`
	Sender         string `toml:"sender"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
	Completed      bool   `toml:"completed"`
	Errors         bool   `toml:"errors"`
}

// SearchCache contains configuration for the catalog lookup cache.
type SearchCache struct {
	Enabled    bool   `toml:"enabled"`
	Path       string `toml:"path"`
	TTLMinutes int    `toml:"ttl_minutes"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	ToFile bool   `toml:"to_file"`
}

// Config encapsulates all configuration values for mashup.
//
// Configuration sections by subsystem:
//   - Paths: working and log directories
//   - YouTube: catalog lookup via the YouTube Data API
//   - Fetch: yt-dlp retrieval, retry policy, pacing, identity pool
//   - Assembly: ffmpeg/ffprobe binaries, slice policy, export bitrate
//   - SMTP: email delivery of the packaged composite
//   - Notifications: ntfy push notification settings
//   - SearchCache: SQLite cache for catalog lookups
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	YouTube       YouTube       `toml:"youtube"`
	Fetch         Fetch         `toml:"fetch"`
	Assembly      Assembly      `toml:"assembly"`
	SMTP          SMTP          `toml:"smtp"`
	Notifications Notifications `toml:"notifications"`
	SearchCache   SearchCache   `toml:"search_cache"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg, resolvedPath, exists, err := decode(path)
	if err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return cfg, resolvedPath, exists, nil
}

// LoadUnvalidated behaves like Load but skips validation. Diagnostic commands
// use it so they can report on a partially configured installation.
func LoadUnvalidated(path string) (*Config, string, bool, error) {
	return decode(path)
}

func decode(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("mashup.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the working and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.WorkDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if c.SearchCache.Enabled && strings.TrimSpace(c.SearchCache.Path) != "" {
		if err := os.MkdirAll(filepath.Dir(c.SearchCache.Path), 0o755); err != nil {
			return fmt.Errorf("create search cache directory: %w", err)
		}
	}
	return nil
}

// LockPath returns the path of the lock file guarding concurrent runs.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.WorkDir, "mashup.lock")
}

// BackoffBase returns the fetch backoff base as a duration.
func (c *Config) BackoffBase() time.Duration {
	return secondsToDuration(c.Fetch.BackoffBaseSeconds)
}

// JitterMax returns the upper bound of the per-attempt jitter.
func (c *Config) JitterMax() time.Duration {
	return time.Duration(c.Fetch.JitterMaxMillis) * time.Millisecond
}

// PacingRange returns the inter-download pacing bounds.
func (c *Config) PacingRange() (time.Duration, time.Duration) {
	return secondsToDuration(c.Fetch.PacingMinSeconds), secondsToDuration(c.Fetch.PacingMaxSeconds)
}

// SearchCacheTTL returns how long cached catalog lookups stay valid.
func (c *Config) SearchCacheTTL() time.Duration {
	return time.Duration(c.SearchCache.TTLMinutes) * time.Minute
}

func secondsToDuration(seconds float64) time.Duration {
	return time.Duration(seconds * float64(time.Second))
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o600); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
