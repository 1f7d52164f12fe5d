// Package identity supplies the browser identity presented to upstream media
// hosts on each retrieval attempt.
package identity

import "math/rand/v2"

var defaultPool = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:121.0) Gecko/20100101 Firefox/121.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.2 Safari/605.1.15",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36 Edg/120.0.0.0",
}

// Rotator picks a user-agent string uniformly at random from a fixed pool.
// The pool is read-only after construction so a Rotator is safe for
// concurrent use.
type Rotator struct {
	pool []string
	pick func(n int) int
}

// New returns a Rotator over pool. An empty pool selects the built-in list.
func New(pool []string) *Rotator {
	cleaned := make([]string, 0, len(pool))
	for _, ua := range pool {
		if ua != "" {
			cleaned = append(cleaned, ua)
		}
	}
	if len(cleaned) == 0 {
		cleaned = append(cleaned, defaultPool...)
	}
	return &Rotator{pool: cleaned, pick: rand.IntN}
}

// Next returns a user-agent string drawn from the pool.
func (r *Rotator) Next() string {
	if r == nil || len(r.pool) == 0 {
		return defaultPool[rand.IntN(len(defaultPool))]
	}
	return r.pool[r.pick(len(r.pool))]
}

// Pool returns a copy of the configured identities.
func (r *Rotator) Pool() []string {
	if r == nil {
		return append([]string(nil), defaultPool...)
	}
	return append([]string(nil), r.pool...)
}

// DefaultPool returns a copy of the built-in identities.
func DefaultPool() []string {
	return append([]string(nil), defaultPool...)
}
