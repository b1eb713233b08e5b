// Package interfaces defines the core interfaces used throughout the application.
// These interfaces allow for dependency injection and make the code testable.
package interfaces

import (
	"context"

	"feedfetcher/core/domain"
)

// FeedCache stores FeedInfo values keyed by feed URL.
// Implementations can be in-memory, disk, SQLite, Redis or anything else, but
// must be safe for concurrent use and must never hand out their internal copy.
//
// Example usage:
//
//	info, err := cache.Get(ctx, "https://example.com/feed.xml")
//	if err != nil {
//		// backend failure
//	}
//	if info == nil {
//		// never fetched
//	}
//
//	err = cache.Put(ctx, info.URL, info)
//	prev, err := cache.Remove(ctx, info.URL)
type FeedCache interface {
	// Get returns the entry for url, or nil when there is none.
	// A missing key is not an error.
	Get(ctx context.Context, url string) (*domain.FeedInfo, error)

	// Put stores info under url, replacing any previous entry.
	// Persistent backends must have flushed the write when Put returns.
	Put(ctx context.Context, url string, info *domain.FeedInfo) error

	// Remove deletes the entry for url and returns it, or nil if there was none.
	Remove(ctx context.Context, url string) (*domain.FeedInfo, error)

	// Clear removes every entry. Clearing an empty cache is not an error.
	Clear(ctx context.Context) error
}
