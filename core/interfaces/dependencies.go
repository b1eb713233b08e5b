// ABOUTME: Dependencies container provides dependency injection for the fetcher
// ABOUTME: Defines the contract for dependencies required by the core fetch logic

package interfaces

// Dependencies holds all external dependencies required by the core fetch logic
type Dependencies struct {
	// Cache stores per-feed metadata between fetches; nil disables caching
	Cache FeedCache

	// HTTPClient sends feed requests
	HTTPClient HTTPClient

	// Parser turns response bodies into feeds
	Parser Parser

	// Logger provides structured logging
	Logger Logger
}
