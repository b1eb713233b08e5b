// Package core contains the feed retrieval logic of feedfetcher.
// It does not depend on any concrete transport, parser or storage.
//
// The core package is organized into several sub-packages:
//
// - domain: Feed, Entry, FeedInfo and fetch events
// - fetcher: request building, response interpretation, delta merging and the FeedFetcher
// - errors: typed errors for transport, status, redirect, parse and cache failures
// - interfaces: contracts for external dependencies (cache, HTTP, parser, logger, listeners)
//
// # Usage Example
//
//	import (
//	    "feedfetcher/core/fetcher"
//	    "feedfetcher/core/interfaces"
//	)
//
//	deps := interfaces.Dependencies{
//	    Cache:      myCache,      // implements interfaces.FeedCache, may be nil
//	    HTTPClient: myHTTPClient, // implements interfaces.HTTPClient
//	    Parser:     myParser,     // implements interfaces.Parser
//	    Logger:     myLogger,     // implements interfaces.Logger
//	}
//
//	f, err := fetcher.NewFeedFetcher(deps, fetcher.WithDeltaEncoding(true))
//	if err != nil {
//	    return err
//	}
//
//	feed, err := f.RetrieveFeed(ctx, "https://example.com/feed.rss")
package core
