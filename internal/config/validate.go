package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateYouTube(); err != nil {
		return err
	}
	if err := c.validateFetch(); err != nil {
		return err
	}
	if err := c.validateAssembly(); err != nil {
		return err
	}
	if err := c.validateSMTP(); err != nil {
		return err
	}
	if err := c.validateSearchCache(); err != nil {
		return err
	}
	if err := ensurePositiveMap(map[string]int{
		"youtube.timeout_seconds":       c.YouTube.TimeoutSeconds,
		"notifications.request_timeout": c.Notifications.RequestTimeout,
	}); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateYouTube() error {
	if c.YouTube.APIKey == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = defaultConfigPath
		}
		return fmt.Errorf("youtube.api_key is required. Set YOUTUBE_API_KEY env var or edit %s (create with 'mashup config init')", defaultPath)
	}
	if c.YouTube.BaseURL == "" {
		return errors.New("youtube.base_url must be set")
	}
	return nil
}

func (c *Config) validateFetch() error {
	f := c.Fetch
	if f.MaxAttempts < 1 {
		return errors.New("fetch.max_attempts must be >= 1")
	}
	if f.Concurrency < 1 || f.Concurrency > maxConcurrency {
		return fmt.Errorf("fetch.concurrency must be between 1 and %d", maxConcurrency)
	}
	if f.BackoffBaseSeconds < minBackoffBaseSeconds {
		return errors.New("fetch.backoff_base_seconds must be >= 0")
	}
	if f.JitterMaxMillis < 0 {
		return errors.New("fetch.jitter_max_millis must be >= 0")
	}
	if f.PacingMinSeconds < minPacingSeconds || f.PacingMaxSeconds > maxPacingSeconds {
		return fmt.Errorf("fetch pacing must stay within %g-%g seconds", minPacingSeconds, maxPacingSeconds)
	}
	if f.PacingMinSeconds > f.PacingMaxSeconds {
		return errors.New("fetch.pacing_min_seconds must not exceed fetch.pacing_max_seconds")
	}
	switch f.RetryPolicy {
	case RetryPolicySignal, RetryPolicyAny:
	default:
		return fmt.Errorf("fetch.retry_policy must be %q or %q", RetryPolicySignal, RetryPolicyAny)
	}
	return nil
}

func (c *Config) validateAssembly() error {
	switch c.Assembly.SlicePolicy {
	case SlicePolicyRandom, SlicePolicyPrefix:
	default:
		return fmt.Errorf("assembly.slice_policy must be %q or %q", SlicePolicyRandom, SlicePolicyPrefix)
	}
	if !strings.HasSuffix(c.Assembly.Bitrate, "k") {
		return errors.New("assembly.bitrate must be expressed in kbit/s (for example 128k)")
	}
	if c.Assembly.SampleRate < 0 {
		return errors.New("assembly.sample_rate must be >= 0")
	}
	return nil
}

func (c *Config) validateSMTP() error {
	if !c.SMTP.Enabled {
		return nil
	}
	if c.SMTP.Port <= 0 || c.SMTP.Port > 65535 {
		return errors.New("smtp.port must be between 1 and 65535")
	}
	if c.SMTP.Sender == "" {
		return errors.New("smtp.sender must be set when smtp.enabled is true (or set SENDER_EMAIL)")
	}
	if c.SMTP.Password == "" {
		return errors.New("smtp.password must be set when smtp.enabled is true (or set EMAIL_PASSWORD)")
	}
	return nil
}

func (c *Config) validateSearchCache() error {
	if !c.SearchCache.Enabled {
		return nil
	}
	if strings.TrimSpace(c.SearchCache.Path) == "" {
		return errors.New("search_cache.path must be set when search_cache.enabled is true")
	}
	if c.SearchCache.TTLMinutes <= 0 {
		return errors.New("search_cache.ttl_minutes must be positive when search_cache.enabled is true")
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
