// Package infrastructure provides concrete implementations of the interfaces
// defined in the core package.
//
// The infrastructure package is organized by technical concern:
//
// - cache/memory: in-process FeedCache backed by go-cache
// - cache/disk: one JSON file per feed URL
// - cache/sqlite: FeedCache stored in a SQLite table
// - cache/redis: FeedCache in Redis, optionally as ReJSON documents
// - http/standard: net/http transport with gzip, no redirect following and rate limiting
// - logger/structured: logrus logger with optional rotated log files
// - parser/feedparser: gofeed parser for RSS, Atom and JSON Feed
//
// # Cache Implementations
//
// Every cache returns copies, and (nil, nil) for unknown URLs:
//
//	cache, err := disk.NewDiskCache("/var/cache/feeds")
//	info, err := cache.Get(ctx, "https://example.com/feed.xml")
//
//	cache, err := redis.NewRedisCache(config.RedisConfig{
//	    Address: "localhost:6379",
//	    Prefix:  "feedinfo",
//	})
//
// # HTTP Client
//
// Redirects are returned to the caller rather than followed:
//
//	client := standard.NewStandardHTTPClient(30*time.Second, standard.WithRateLimit(5, 1))
//	resp, err := client.Do(ctx, &interfaces.Request{URL: feedURL, Header: header})
//	if err != nil {
//	    return err
//	}
//	defer resp.Body().Close()
//
// # Logger
//
//	logger, err := structured.NewLogger(structured.Options{Level: "debug", Format: "json"})
//	logger.Info("Feed retrieved", map[string]interface{}{
//	    "url":     feedURL,
//	    "entries": len(feed.Entries),
//	})
package infrastructure
