// Package workspace manages the per-run scratch directories created under the
// configured work directory.
//
// Every run works inside a "run-" prefixed directory that is removed when the
// run returns. A crash or SIGKILL can strand one; CleanStale reclaims them and
// List reports what is currently on disk.
package workspace
