package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeYouTube()
	c.normalizeFetch()
	c.normalizeAssembly()
	c.normalizeSMTP()
	c.normalizeNotifications()
	if err := c.normalizeSearchCache(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.WorkDir) == "" {
		c.Paths.WorkDir = defaultWorkDir
	}
	if c.Paths.WorkDir, err = expandPath(c.Paths.WorkDir); err != nil {
		return fmt.Errorf("paths.work_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeYouTube() {
	c.YouTube.APIKey = strings.TrimSpace(c.YouTube.APIKey)
	if c.YouTube.APIKey == "" {
		if value, ok := os.LookupEnv("YOUTUBE_API_KEY"); ok {
			c.YouTube.APIKey = strings.TrimSpace(value)
		}
	}
	c.YouTube.BaseURL = strings.TrimRight(strings.TrimSpace(c.YouTube.BaseURL), "/")
	if c.YouTube.BaseURL == "" {
		c.YouTube.BaseURL = defaultYouTubeBaseURL
	}
	c.YouTube.WatchURL = strings.TrimSpace(c.YouTube.WatchURL)
	if c.YouTube.WatchURL == "" {
		c.YouTube.WatchURL = defaultYouTubeWatchURL
	}
	if c.YouTube.TimeoutSeconds <= 0 {
		c.YouTube.TimeoutSeconds = defaultYouTubeTimeout
	}
}

func (c *Config) normalizeFetch() {
	c.Fetch.YtdlpBinary = strings.TrimSpace(c.Fetch.YtdlpBinary)
	if c.Fetch.YtdlpBinary == "" {
		c.Fetch.YtdlpBinary = defaultYtdlpBinary
	}
	c.Fetch.RetryPolicy = strings.ToLower(strings.TrimSpace(c.Fetch.RetryPolicy))
	if c.Fetch.RetryPolicy == "" {
		c.Fetch.RetryPolicy = defaultRetryPolicy
	}
	c.Fetch.AudioFormat = strings.ToLower(strings.TrimSpace(c.Fetch.AudioFormat))
	if c.Fetch.AudioFormat == "" {
		c.Fetch.AudioFormat = defaultAudioFormat
	}
	c.Fetch.AudioQuality = strings.TrimSpace(c.Fetch.AudioQuality)
	if c.Fetch.AudioQuality == "" {
		c.Fetch.AudioQuality = defaultAudioQuality
	}
	if c.Fetch.ExtractorRetries < 0 {
		c.Fetch.ExtractorRetries = 0
	}
	c.Fetch.BlockSignals = compactStrings(c.Fetch.BlockSignals)
	if len(c.Fetch.BlockSignals) == 0 {
		c.Fetch.BlockSignals = DefaultBlockSignals()
	}
	c.Fetch.UserAgents = compactStrings(c.Fetch.UserAgents)
}

func (c *Config) normalizeAssembly() {
	c.Assembly.FFmpegBinary = strings.TrimSpace(c.Assembly.FFmpegBinary)
	if c.Assembly.FFmpegBinary == "" {
		c.Assembly.FFmpegBinary = defaultFFmpegBinary
	}
	c.Assembly.FFprobeBinary = strings.TrimSpace(c.Assembly.FFprobeBinary)
	if c.Assembly.FFprobeBinary == "" {
		c.Assembly.FFprobeBinary = defaultFFprobeBinary
	}
	c.Assembly.SlicePolicy = strings.ToLower(strings.TrimSpace(c.Assembly.SlicePolicy))
	if c.Assembly.SlicePolicy == "" {
		c.Assembly.SlicePolicy = defaultSlicePolicy
	}
	c.Assembly.Bitrate = strings.ToLower(strings.TrimSpace(c.Assembly.Bitrate))
	if c.Assembly.Bitrate == "" {
		c.Assembly.Bitrate = defaultBitrate
	}
	c.Assembly.OutputName = strings.TrimSpace(c.Assembly.OutputName)
	if c.Assembly.OutputName == "" {
		c.Assembly.OutputName = defaultOutputName
	}
}

func (c *Config) normalizeSMTP() {
	c.SMTP.Host = strings.TrimSpace(c.SMTP.Host)
	if c.SMTP.Host == "" {
		c.SMTP.Host = defaultSMTPHost
	}
	if c.SMTP.Port == 0 {
		c.SMTP.Port = defaultSMTPPort
	}
	c.SMTP.Sender = strings.TrimSpace(c.SMTP.Sender)
	if c.SMTP.Sender == "" {
		if value, ok := os.LookupEnv("SENDER_EMAIL"); ok {
			c.SMTP.Sender = strings.TrimSpace(value)
		}
	}
	c.SMTP.Username = strings.TrimSpace(c.SMTP.Username)
	if c.SMTP.Username == "" {
		c.SMTP.Username = c.SMTP.Sender
	}
	if c.SMTP.Password == "" {
		if value, ok := os.LookupEnv("EMAIL_PASSWORD"); ok {
			c.SMTP.Password = value
		}
	}
	if c.SMTP.TimeoutSeconds <= 0 {
		c.SMTP.TimeoutSeconds = defaultSMTPTimeout
	}
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.NtfyTopic == "" {
		if value, ok := os.LookupEnv("NTFY_TOPIC"); ok {
			c.Notifications.NtfyTopic = strings.TrimSpace(value)
		}
	}
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyTimeout
	}
}

func (c *Config) normalizeSearchCache() error {
	var err error
	if strings.TrimSpace(c.SearchCache.Path) == "" {
		c.SearchCache.Path = defaultSearchCachePath
	}
	if c.SearchCache.Path, err = expandPath(c.SearchCache.Path); err != nil {
		return fmt.Errorf("search_cache.path: %w", err)
	}
	if c.SearchCache.TTLMinutes < 0 {
		c.SearchCache.TTLMinutes = 0
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func compactStrings(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	return out
}
