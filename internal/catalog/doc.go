// Package catalog resolves a search term into candidate video URLs using the
// YouTube Data API v3, with an optional SQLite-backed result cache.
package catalog
