// ABOUTME: Default implementations for library dependencies
// ABOUTME: Provides factory functions for the transport, parser and cache backends

package feedlib

import (
	"time"

	ferrors "feedfetcher/core/errors"
	"feedfetcher/core/interfaces"
	"feedfetcher/infrastructure/cache/disk"
	"feedfetcher/infrastructure/cache/memory"
	"feedfetcher/infrastructure/cache/sqlite"
	httpInfra "feedfetcher/infrastructure/http/standard"
	"feedfetcher/infrastructure/parser/feedparser"
)

// DefaultConcurrency bounds FetchAll unless WithConcurrency is given
const DefaultConcurrency = 4

// DefaultHTTPClient creates a default HTTP client with sensible timeouts
func DefaultHTTPClient() interfaces.HTTPClient {
	return httpInfra.NewStandardHTTPClient(30 * time.Second)
}

// DefaultParser creates the gofeed backed parser
func DefaultParser() interfaces.Parser {
	return feedparser.NewParser()
}

// DefaultMemoryCache creates an in-memory cache without expiration
func DefaultMemoryCache() interfaces.FeedCache {
	return memory.NewMemoryCache()
}

// CacheType selects a built-in cache backend
type CacheType string

const (
	CacheTypeMemory CacheType = "memory"
	CacheTypeDisk   CacheType = "disk"
	CacheTypeSQLite CacheType = "sqlite"
)

// CacheOption represents cache configuration options
type CacheOption struct {
	Type CacheType

	// Path is the directory for disk caches and the file for sqlite caches
	Path string
}

// WithCacheOption creates a built-in cache. SQLite caches are closed by Client.Close.
func WithCacheOption(opt CacheOption) Option {
	return func(c *Config) error {
		switch opt.Type {
		case CacheTypeMemory:
			c.Cache = DefaultMemoryCache()
		case CacheTypeDisk:
			if opt.Path == "" {
				opt.Path = "feedcache"
			}
			cache, err := disk.NewDiskCache(opt.Path)
			if err != nil {
				return err
			}
			c.Cache = cache
		case CacheTypeSQLite:
			if opt.Path == "" {
				opt.Path = "feedcache.db"
			}
			cache, err := sqlite.NewSQLiteCacheWithLogger(opt.Path, c.Logger)
			if err != nil {
				return err
			}
			c.Cache = cache
			c.closers = append(c.closers, cache)
		default:
			return &ferrors.ValidationError{Field: "cache_type", Message: "unknown cache type " + string(opt.Type)}
		}
		return nil
	}
}

// defaultConfig returns the default client configuration
func defaultConfig() Config {
	return Config{
		Cache:       DefaultMemoryCache(),
		HTTPClient:  DefaultHTTPClient(),
		Parser:      DefaultParser(),
		Logger:      interfaces.NopLogger{},
		Concurrency: DefaultConcurrency,
	}
}
