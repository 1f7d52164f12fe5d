// Package packaging prepares a finished composite for delivery: it writes
// ID3v2 tags describing the mashup and wraps the file in a zip archive named
// after the search term.
package packaging
