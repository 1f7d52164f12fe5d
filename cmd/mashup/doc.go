// Package main hosts the mashup CLI entrypoint and command graph.
//
// The Cobra command tree turns terminal invocations into pipeline requests,
// catalog lookups, readiness reports and configuration scaffolding. It owns
// configuration resolution, logger construction and the per-host run lock so
// the internal packages stay free of process concerns.
package main
