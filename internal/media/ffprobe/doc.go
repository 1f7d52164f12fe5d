// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// Key types:
//   - Result: parsed ffprobe output containing streams and format metadata
//   - Stream: individual audio stream properties
//   - Format: container-level metadata (duration, size, bitrate)
//
// Entry points:
//   - Inspect: executes ffprobe and returns parsed Result
//   - Prober: decodes audio payload durations for the composite assembler
package ffprobe
