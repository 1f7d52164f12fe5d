// Package config loads, normalizes, and validates mashup configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// YOUTUBE_API_KEY, SENDER_EMAIL, and EMAIL_PASSWORD. The Config type
// centralizes every knob the CLI and pipeline need so that the working
// directory, fetch pacing, assembly policy, and delivery credentials are
// resolved in one pass at process start.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors. Core
// packages never read the environment themselves; they receive the values
// resolved here.
package config
