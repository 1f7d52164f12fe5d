// Package fetch retrieves audio payloads for a set of source URLs.
//
// The Fetcher drives a single item through bounded retries: each attempt asks
// the Extractor for the best audio stream under a freshly rotated browser
// identity, and failures that carry an upstream block signal are retried after
// an exponential backoff with jitter. The Orchestrator fans many fetches out
// over a small errgroup-bounded worker pool, randomizes submission order,
// paces workers between downloads, and funnels every Outcome through a single
// collector. Individual failures never abort the batch; callers receive only
// the paths that were actually written.
package fetch
