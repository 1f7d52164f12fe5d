// Package assemble turns a set of downloaded audio payloads into one
// fixed-length composite.
//
// Each payload contributes at most one clip: short payloads are used whole,
// longer ones contribute a window chosen by the slice policy. Clips are
// appended in processing order and the finished track is truncated to the
// expected total, or kept short with a warning when inputs run out. Payloads
// that fail to decode are skipped.
package assemble
