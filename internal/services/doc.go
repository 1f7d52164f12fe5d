// Package services defines shared utilities consumed by the pipeline stages
// and external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, download slots, stage names, and
//     correlation identifiers for logging.
//   - Structured error markers plus the Wrap helper that let the CLI map a
//     failure to an exit code and an operator hint.
//
// Use these helpers when wiring new stage logic so error handling and
// observability stay uniform across the pipeline.
package services
