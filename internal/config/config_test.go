package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"mashup/internal/config"
)

func clearSecretEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"YOUTUBE_API_KEY", "SENDER_EMAIL", "EMAIL_PASSWORD", "NTFY_TOPIC"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadDefaultConfigUsesEnvSecretsAndExpandsPaths(t *testing.T) {
	clearSecretEnv(t)
	t.Setenv("YOUTUBE_API_KEY", "yt-key")
	t.Setenv("SENDER_EMAIL", "sender@example.com")
	t.Setenv("EMAIL_PASSWORD", "app-password")
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantWork := filepath.Join(tempHome, ".local", "share", "mashup", "work")
	if cfg.Paths.WorkDir != wantWork {
		t.Fatalf("unexpected work dir: got %q want %q", cfg.Paths.WorkDir, wantWork)
	}
	if cfg.YouTube.APIKey != "yt-key" {
		t.Fatalf("expected YouTube key from env, got %q", cfg.YouTube.APIKey)
	}
	if cfg.SMTP.Sender != "sender@example.com" {
		t.Fatalf("expected sender from env, got %q", cfg.SMTP.Sender)
	}
	if cfg.SMTP.Username != "sender@example.com" {
		t.Fatalf("expected username to default to sender, got %q", cfg.SMTP.Username)
	}
	if cfg.SMTP.Password != "app-password" {
		t.Fatalf("expected password from env, got %q", cfg.SMTP.Password)
	}
	if cfg.Fetch.MaxAttempts != 5 {
		t.Fatalf("expected 5 attempts by default, got %d", cfg.Fetch.MaxAttempts)
	}
	if cfg.Fetch.Concurrency != 1 {
		t.Fatalf("expected serial downloads by default, got %d", cfg.Fetch.Concurrency)
	}
	if cfg.Fetch.RetryPolicy != config.RetryPolicySignal {
		t.Fatalf("unexpected retry policy %q", cfg.Fetch.RetryPolicy)
	}
	if cfg.Assembly.SlicePolicy != config.SlicePolicyRandom {
		t.Fatalf("unexpected slice policy %q", cfg.Assembly.SlicePolicy)
	}
	if cfg.SearchCache.Enabled {
		t.Fatal("expected search cache disabled by default")
	}
	minPace, maxPace := cfg.PacingRange()
	if minPace != 5*time.Second || maxPace != 10*time.Second {
		t.Fatalf("unexpected pacing range %s-%s", minPace, maxPace)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.WorkDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	clearSecretEnv(t)
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "mashup.toml")

	type payload struct {
		YouTube struct {
			APIKey  string `toml:"api_key"`
			BaseURL string `toml:"base_url"`
		} `toml:"youtube"`
		Fetch struct {
			Concurrency int    `toml:"concurrency"`
			RetryPolicy string `toml:"retry_policy"`
		} `toml:"fetch"`
		SMTP struct {
			Enabled bool `toml:"enabled"`
		} `toml:"smtp"`
	}
	custom := payload{}
	custom.YouTube.APIKey = "abc123"
	custom.YouTube.BaseURL = "https://example.com/yt/"
	custom.Fetch.Concurrency = 2
	custom.Fetch.RetryPolicy = "ANY"
	custom.SMTP.Enabled = false
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.YouTube.APIKey != "abc123" {
		t.Fatalf("expected key from file, got %q", cfg.YouTube.APIKey)
	}
	if cfg.YouTube.BaseURL != "https://example.com/yt" {
		t.Fatalf("expected trimmed base url override, got %q", cfg.YouTube.BaseURL)
	}
	if cfg.Fetch.Concurrency != 2 {
		t.Fatalf("expected concurrency 2, got %d", cfg.Fetch.Concurrency)
	}
	if cfg.Fetch.RetryPolicy != config.RetryPolicyAny {
		t.Fatalf("expected normalized retry policy, got %q", cfg.Fetch.RetryPolicy)
	}
	if cfg.Fetch.MaxAttempts != 5 {
		t.Fatalf("expected default attempts to survive partial file, got %d", cfg.Fetch.MaxAttempts)
	}
}

func TestFileValuesWinOverEnvFallbacks(t *testing.T) {
	clearSecretEnv(t)
	configPath := filepath.Join(t.TempDir(), "mashup.toml")
	contents := `
[youtube]
api_key = "file-key"

[smtp]
sender = "file@example.com"
password = "file-pass"

[notifications]
ntfy_topic = "https://ntfy.example.com/file"
`
	if err := os.WriteFile(configPath, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("YOUTUBE_API_KEY", "env-key")
	t.Setenv("SENDER_EMAIL", "env@example.com")
	t.Setenv("EMAIL_PASSWORD", "env-pass")
	t.Setenv("NTFY_TOPIC", "https://ntfy.example.com/env")

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.YouTube.APIKey != "file-key" {
		t.Errorf("expected file key, got %q", cfg.YouTube.APIKey)
	}
	if cfg.SMTP.Sender != "file@example.com" {
		t.Errorf("expected file sender, got %q", cfg.SMTP.Sender)
	}
	if cfg.SMTP.Password != "file-pass" {
		t.Errorf("expected file password, got %q", cfg.SMTP.Password)
	}
	if cfg.Notifications.NtfyTopic != "https://ntfy.example.com/file" {
		t.Errorf("expected file topic, got %q", cfg.Notifications.NtfyTopic)
	}
}

func TestLoadMissingAPIKeyFails(t *testing.T) {
	clearSecretEnv(t)
	t.Setenv("HOME", t.TempDir())
	_, _, _, err := config.Load("")
	if err == nil {
		t.Fatal("expected error without youtube api key")
	}
	if !strings.Contains(err.Error(), "youtube.api_key") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadUnvalidatedSkipsValidation(t *testing.T) {
	clearSecretEnv(t)
	t.Setenv("HOME", t.TempDir())
	cfg, _, _, err := config.LoadUnvalidated("")
	if err != nil {
		t.Fatalf("LoadUnvalidated returned error: %v", err)
	}
	if cfg.YouTube.APIKey != "" {
		t.Fatalf("expected empty key, got %q", cfg.YouTube.APIKey)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "YOUTUBE_API_KEY") {
		t.Fatalf("sample config missing env hint: %s", contents)
	}

	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	if !strings.Contains(cfg.Paths.WorkDir, "mashup") {
		t.Fatalf("expected work dir to contain mashup, got %q", cfg.Paths.WorkDir)
	}
	if cfg.Fetch.MaxAttempts != config.Default().Fetch.MaxAttempts {
		t.Fatalf("sample attempts drifted from defaults: %d", cfg.Fetch.MaxAttempts)
	}
}

func validConfig() config.Config {
	cfg := config.Default()
	cfg.YouTube.APIKey = "key"
	cfg.SMTP.Sender = "sender@example.com"
	cfg.SMTP.Password = "secret"
	return cfg
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	if err := func() error { cfg := validConfig(); return cfg.Validate() }(); err != nil {
		t.Fatalf("expected baseline config to validate: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"concurrency above cap", func(c *config.Config) { c.Fetch.Concurrency = 3 }},
		{"zero concurrency", func(c *config.Config) { c.Fetch.Concurrency = 0 }},
		{"zero attempts", func(c *config.Config) { c.Fetch.MaxAttempts = 0 }},
		{"pacing below floor", func(c *config.Config) { c.Fetch.PacingMinSeconds = 1 }},
		{"pacing above ceiling", func(c *config.Config) { c.Fetch.PacingMaxSeconds = 30 }},
		{"pacing inverted", func(c *config.Config) { c.Fetch.PacingMinSeconds, c.Fetch.PacingMaxSeconds = 9, 4 }},
		{"unknown retry policy", func(c *config.Config) { c.Fetch.RetryPolicy = "sometimes" }},
		{"unknown slice policy", func(c *config.Config) { c.Assembly.SlicePolicy = "middle" }},
		{"bitrate without unit", func(c *config.Config) { c.Assembly.Bitrate = "128" }},
		{"smtp without password", func(c *config.Config) { c.SMTP.Password = "" }},
		{"smtp without sender", func(c *config.Config) { c.SMTP.Sender = "" }},
		{"cache without ttl", func(c *config.Config) { c.SearchCache.Enabled = true; c.SearchCache.TTLMinutes = 0 }},
		{"zero notify timeout", func(c *config.Config) { c.Notifications.RequestTimeout = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestValidateSkipsSMTPWhenDisabled(t *testing.T) {
	cfg := validConfig()
	cfg.SMTP.Enabled = false
	cfg.SMTP.Sender = ""
	cfg.SMTP.Password = ""
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected disabled smtp to skip credential checks: %v", err)
	}
}
