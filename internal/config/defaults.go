package config

const (
	defaultConfigPath          = "~/.config/mashup/config.toml"
	defaultWorkDir             = "~/.local/share/mashup/work"
	defaultLogDir              = "~/.local/share/mashup/logs"
	defaultSearchCachePath     = "~/.cache/mashup/search.db"
	defaultSearchCacheTTL      = 360
	defaultYouTubeBaseURL      = "https://www.googleapis.com/youtube/v3"
	defaultYouTubeWatchURL     = "https://www.youtube.com/watch?v="
	defaultYouTubeTimeout      = 15
	defaultYtdlpBinary         = "yt-dlp"
	defaultMaxAttempts         = 5
	defaultConcurrency         = 1
	defaultBackoffBaseSeconds  = 1.0
	defaultJitterMaxMillis     = 1000
	defaultPacingMinSeconds    = 5.0
	defaultPacingMaxSeconds    = 10.0
	defaultRetryPolicy         = RetryPolicySignal
	defaultAudioFormat         = "mp3"
	defaultAudioQuality        = "192K"
	defaultExtractorRetries    = 3
	defaultFFmpegBinary        = "ffmpeg"
	defaultFFprobeBinary       = "ffprobe"
	defaultSlicePolicy         = SlicePolicyRandom
	defaultBitrate             = "128k"
	defaultSampleRate          = 44100
	defaultOutputName          = "mashup.mp3"
	defaultSMTPHost            = "smtp.gmail.com"
	defaultSMTPPort            = 587
	defaultSMTPTimeout         = 60
	defaultNotifyTimeout       = 10
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
	maxConcurrency             = 2
	minPacingSeconds           = 3.0
	maxPacingSeconds           = 10.0
	minBackoffBaseSeconds      = 0.0
	defaultAntiBotSignal       = "Sign in to confirm you're not a bot"
	defaultAntiBotSignalCurly  = "Sign in to confirm you’re not a bot"
	defaultRateLimitSignal     = "HTTP Error 429"
	defaultNotifyOnCompletion  = true
	defaultNotifyOnErrors      = true
	defaultSMTPEnabled         = true
	defaultSearchCacheDisabled = false
)

// Retry policies accepted by fetch.retry_policy.
const (
	RetryPolicySignal = "signal"
	RetryPolicyAny    = "any"
)

// Slice policies accepted by assembly.slice_policy.
const (
	SlicePolicyRandom = "random"
	SlicePolicyPrefix = "prefix"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkDir: defaultWorkDir,
			LogDir:  defaultLogDir,
		},
		YouTube: YouTube{
			BaseURL:        defaultYouTubeBaseURL,
			WatchURL:       defaultYouTubeWatchURL,
			TimeoutSeconds: defaultYouTubeTimeout,
		},
		Fetch: Fetch{
			YtdlpBinary:        defaultYtdlpBinary,
			MaxAttempts:        defaultMaxAttempts,
			Concurrency:        defaultConcurrency,
			BackoffBaseSeconds: defaultBackoffBaseSeconds,
			JitterMaxMillis:    defaultJitterMaxMillis,
			PacingMinSeconds:   defaultPacingMinSeconds,
			PacingMaxSeconds:   defaultPacingMaxSeconds,
			RetryPolicy:        defaultRetryPolicy,
			AudioFormat:        defaultAudioFormat,
			AudioQuality:       defaultAudioQuality,
			ExtractorRetries:   defaultExtractorRetries,
			BlockSignals:       DefaultBlockSignals(),
		},
		Assembly: Assembly{
			FFmpegBinary:  defaultFFmpegBinary,
			FFprobeBinary: defaultFFprobeBinary,
			SlicePolicy:   defaultSlicePolicy,
			Bitrate:       defaultBitrate,
			SampleRate:    defaultSampleRate,
			OutputName:    defaultOutputName,
		},
		SMTP: SMTP{
			Enabled:        defaultSMTPEnabled,
			Host:           defaultSMTPHost,
			Port:           defaultSMTPPort,
			TimeoutSeconds: defaultSMTPTimeout,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
			Completed:      defaultNotifyOnCompletion,
			Errors:         defaultNotifyOnErrors,
		},
		SearchCache: SearchCache{
			Enabled:    defaultSearchCacheDisabled,
			Path:       defaultSearchCachePath,
			TTLMinutes: defaultSearchCacheTTL,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

// DefaultBlockSignals returns the upstream error fragments treated as an
// anti-automation challenge.
func DefaultBlockSignals() []string {
	return []string{defaultAntiBotSignal, defaultAntiBotSignalCurly, defaultRateLimitSignal}
}
