package testsupport

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"mashup/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Email delivery and notifications start disabled.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.YouTube.APIKey = "test"
	cfgVal.Paths.WorkDir = filepath.Join(base, "work")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.SearchCache.Path = filepath.Join(base, "cache", "search.db")
	cfgVal.SMTP.Enabled = false
	cfgVal.Notifications.NtfyTopic = ""

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithYouTubeBaseURL points catalog lookups at url, typically an httptest server.
func WithYouTubeBaseURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.YouTube.BaseURL = url
	}
}

// WithSMTP enables delivery through the given server.
func WithSMTP(host string, port int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.SMTP.Enabled = true
		b.cfg.SMTP.Host = host
		b.cfg.SMTP.Port = port
		b.cfg.SMTP.Sender = "sender@example.com"
		b.cfg.SMTP.Username = "sender@example.com"
		b.cfg.SMTP.Password = "secret"
	}
}

// WithSearchCache enables the SQLite catalog cache inside the temp tree.
func WithSearchCache() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.SearchCache.Enabled = true
	}
}

// WithStubbedBinaries writes stub executables that print a version line and
// points the config at them. If names is empty, yt-dlp, ffmpeg and ffprobe are
// stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"yt-dlp", "ffmpeg", "ffprobe"}
		}
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		for _, name := range names {
			target := filepath.Join(binDir, name)
			script := fmt.Appendf(nil, "#!/bin/sh\necho \"%s version 0.0.0-test\"\nexit 0\n", name)
			if err := os.WriteFile(target, script, 0o755); err != nil {
				b.t.Fatalf("write stub %s: %v", name, err)
			}
			switch name {
			case "yt-dlp":
				b.cfg.Fetch.YtdlpBinary = target
			case "ffmpeg":
				b.cfg.Assembly.FFmpegBinary = target
			case "ffprobe":
				b.cfg.Assembly.FFprobeBinary = target
			}
		}
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.WorkDir)
}

// WriteConfig serializes cfg to a TOML file under the config's base directory
// and returns its path.
func WriteConfig(t testing.TB, cfg *config.Config) string {
	t.Helper()

	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	path := filepath.Join(BaseDir(cfg), "mashup.toml")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}
