// Package logs reads the mashup log file for the CLI.
//
// Tail returns the trailing lines with bounded memory and Follow polls for
// appended lines until its context ends, so `mashup logs --follow` behaves
// like tail -f without holding the file open between polls.
package logs
