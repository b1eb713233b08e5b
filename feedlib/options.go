// ABOUTME: Configuration options for the feedfetcher library client
// ABOUTME: Provides functional options pattern for flexible client configuration

package feedlib

import (
	"fmt"
	"io"

	ferrors "feedfetcher/core/errors"
	"feedfetcher/core/fetcher"
	"feedfetcher/core/interfaces"
)

// Option is a functional option for configuring the client
type Option func(*Config) error

// WithCache sets a custom cache implementation
func WithCache(cache interfaces.FeedCache) Option {
	return func(c *Config) error {
		c.Cache = cache
		return nil
	}
}

// WithoutCache disables caching; every fetch is a full retrieval
func WithoutCache() Option {
	return WithCache(nil)
}

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(client interfaces.HTTPClient) Option {
	return func(c *Config) error {
		if client == nil {
			return &ferrors.ValidationError{Field: "http_client", Message: "cannot be nil"}
		}
		c.HTTPClient = client
		return nil
	}
}

// WithParser sets a custom feed parser
func WithParser(parser interfaces.Parser) Option {
	return func(c *Config) error {
		if parser == nil {
			return &ferrors.ValidationError{Field: "parser", Message: "cannot be nil"}
		}
		c.Parser = parser
		return nil
	}
}

// WithLogger sets a custom logger
func WithLogger(logger interfaces.Logger) Option {
	return func(c *Config) error {
		if logger == nil {
			logger = interfaces.NopLogger{}
		}
		c.Logger = logger
		return nil
	}
}

// WithQuietMode suppresses all log output
func WithQuietMode() Option {
	return WithLogger(interfaces.NopLogger{})
}

// WithFetcherOptions appends options for the underlying fetcher
func WithFetcherOptions(opts ...fetcher.Option) Option {
	return func(c *Config) error {
		c.FetcherOptions = append(c.FetcherOptions, opts...)
		return nil
	}
}

// WithConcurrency bounds how many feeds FetchAll retrieves at once
func WithConcurrency(n int) Option {
	return func(c *Config) error {
		if n < 1 {
			return &ferrors.ValidationError{Field: "concurrency", Message: fmt.Sprintf("must be at least 1, got %d", n)}
		}
		c.Concurrency = n
		return nil
	}
}

// WithCloser registers a resource released by Client.Close
func WithCloser(closer io.Closer) Option {
	return func(c *Config) error {
		if closer != nil {
			c.closers = append(c.closers, closer)
		}
		return nil
	}
}
