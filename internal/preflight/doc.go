// Package preflight provides readiness checks for the external tools,
// services and filesystem paths a mashup run depends on.
//
// These checks run in two contexts:
//   - "mashup create" calls RunAll and CheckSystemDeps before searching so a
//     missing ffmpeg does not surface only after minutes of downloading.
//   - "mashup status" renders every check, including the YouTube API probe.
package preflight
