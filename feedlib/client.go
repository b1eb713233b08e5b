// ABOUTME: Main client for the feedfetcher library providing conditional feed retrieval
// ABOUTME: Offers a small API over the fetcher without touching configuration files

package feedlib

import (
	"context"
	"io"

	"feedfetcher/core/domain"
	"feedfetcher/core/fetcher"
	"feedfetcher/core/interfaces"

	"golang.org/x/sync/errgroup"
)

// Client is the main entry point for the library
type Client struct {
	fetcher *fetcher.FeedFetcher
	config  Config
}

// Config holds the configuration for the client
type Config struct {
	// Cache stores validators between fetches; nil disables conditional requests
	Cache interfaces.FeedCache

	// HTTPClient sends feed requests
	HTTPClient interfaces.HTTPClient

	// Parser turns response bodies into feeds
	Parser interfaces.Parser

	// Logger receives structured log output
	Logger interfaces.Logger

	// FetcherOptions are passed to the underlying fetcher
	FetcherOptions []fetcher.Option

	// Concurrency bounds FetchAll
	Concurrency int

	// closers are released by Close, in order
	closers []io.Closer
}

// Result is the outcome of one feed in FetchAll
type Result struct {
	URL  string
	Feed *domain.Feed
	Err  error
}

// NewClient creates a new client with the given options
func NewClient(options ...Option) (*Client, error) {
	config := defaultConfig()

	for _, opt := range options {
		if err := opt(&config); err != nil {
			config.close()
			return nil, err
		}
	}

	f, err := fetcher.NewFeedFetcher(interfaces.Dependencies{
		Cache:      config.Cache,
		HTTPClient: config.HTTPClient,
		Parser:     config.Parser,
		Logger:     config.Logger,
	}, config.FetcherOptions...)
	if err != nil {
		config.close()
		return nil, err
	}

	return &Client{
		fetcher: f,
		config:  config,
	}, nil
}

// Close releases resources opened by the client's options
func (c *Client) Close() error {
	return c.config.close()
}

func (c *Config) close() error {
	var first error
	for _, cl := range c.closers {
		if err := cl.Close(); err != nil && first == nil {
			first = err
		}
	}
	c.closers = nil
	return first
}

// Fetch retrieves a single feed
func (c *Client) Fetch(ctx context.Context, url string) (*domain.Feed, error) {
	return c.fetcher.RetrieveFeed(ctx, url)
}

// FetchAll retrieves every URL with bounded concurrency. Results are in the
// order of urls; one failing feed does not stop the others.
func (c *Client) FetchAll(ctx context.Context, urls []string) []Result {
	results := make([]Result, len(urls))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.config.Concurrency)

	for i, u := range urls {
		i, u := i, u
		g.Go(func() error {
			feed, err := c.fetcher.RetrieveFeed(gctx, u)
			results[i] = Result{URL: u, Feed: feed, Err: err}
			return nil
		})
	}
	g.Wait()

	return results
}

// Subscribe registers l for fetch events. Call the returned function to
// unsubscribe.
func (c *Client) Subscribe(l interfaces.Listener) func() {
	return c.fetcher.AddListener(l)
}

// Cache returns the configured cache, or nil
func (c *Client) Cache() interfaces.FeedCache {
	return c.fetcher.Cache()
}

// Fetcher exposes the underlying fetcher
func (c *Client) Fetcher() *fetcher.FeedFetcher {
	return c.fetcher
}

