// ABOUTME: Wires configuration into caches, the HTTP client and the feed fetcher
// ABOUTME: Runs one shot fetches and the interval poller over a feed list

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"feedfetcher/core/domain"
	"feedfetcher/core/fetcher"
	"feedfetcher/core/interfaces"
	"feedfetcher/feedlib"
	"feedfetcher/infrastructure/cache/disk"
	"feedfetcher/infrastructure/cache/memory"
	"feedfetcher/infrastructure/cache/redis"
	"feedfetcher/infrastructure/cache/sqlite"
	stdhttp "feedfetcher/infrastructure/http/standard"
	"feedfetcher/pkg/config"
	"feedfetcher/pkg/feedlist"

	"golang.org/x/sync/errgroup"
)

// app wires configuration into a fetcher and runs it
type app struct {
	cfg    *config.Config
	logger interfaces.Logger
	client *feedlib.Client
}

// newCache builds the configured cache backend. The returned closer may be nil.
func newCache(cfg config.CacheConfig, logger interfaces.Logger) (interfaces.FeedCache, io.Closer, error) {
	switch cfg.Type {
	case config.CacheNone:
		return nil, nil, nil
	case config.CacheMemory:
		var opts []memory.Option
		if cfg.Memory.Expiration > 0 {
			opts = append(opts, memory.WithExpiration(cfg.Memory.Expiration, cfg.Memory.Expiration))
		}
		return memory.NewMemoryCache(opts...), nil, nil
	case config.CacheDisk:
		c, err := disk.NewDiskCache(cfg.Dir)
		return c, nil, err
	case config.CacheSQLite:
		c, err := sqlite.NewSQLiteCacheWithLogger(cfg.SQLitePath, logger)
		if err != nil {
			return nil, nil, err
		}
		return c, c, nil
	case config.CacheRedis:
		c, err := redis.NewRedisCache(cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		return c, c, nil
	default:
		return nil, nil, fmt.Errorf("unknown cache type %q", cfg.Type)
	}
}

func newApp(cfg *config.Config, logger interfaces.Logger, out io.Writer) (*app, error) {
	cache, closer, err := newCache(cfg.Cache, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s cache: %w", cfg.Cache.Type, err)
	}

	transport := stdhttp.NewStandardHTTPClient(cfg.Fetcher.Timeout,
		stdhttp.WithRateLimit(cfg.Fetcher.RateLimit, cfg.Fetcher.RateBurst))

	fetchOpts := []fetcher.Option{
		fetcher.WithUserAgent(cfg.Fetcher.UserAgent),
		fetcher.WithMaxRedirects(cfg.Fetcher.MaxRedirects),
		fetcher.WithDeltaEncoding(cfg.Fetcher.DeltaEncoding),
		fetcher.WithPreserveWireFeed(cfg.Fetcher.PreserveWireFeed),
		fetcher.WithMaxTrackedEntries(cfg.Fetcher.MaxTrackedEntries),
		fetcher.WithDefaultCharset(cfg.Fetcher.DefaultCharset),
	}
	if cfg.Fetcher.Token != "" || cfg.Fetcher.Username != "" {
		fetchOpts = append(fetchOpts, fetcher.WithCredentials(fetcher.StaticCredentials{
			Username: cfg.Fetcher.Username,
			Password: cfg.Fetcher.Password,
			Token:    cfg.Fetcher.Token,
		}))
	}

	client, err := feedlib.NewClient(
		feedlib.WithCloser(closer),
		feedlib.WithCache(cache),
		feedlib.WithHTTPClient(transport),
		feedlib.WithLogger(logger),
		feedlib.WithConcurrency(cfg.Poll.Concurrency),
		feedlib.WithFetcherOptions(fetchOpts...),
	)
	if err != nil {
		return nil, err
	}
	client.Subscribe(newPrinter(out, logger))

	return &app{
		cfg:    cfg,
		logger: logger,
		client: client,
	}, nil
}

// Close releases the cache backend
func (a *app) Close() error {
	return a.client.Close()
}

// fetchAll retrieves every URL. A failing feed does not stop the others;
// all failures are returned joined.
func (a *app) fetchAll(ctx context.Context, urls []string) error {
	var errs []error
	for _, r := range a.client.FetchAll(ctx, urls) {
		if r.Err == nil {
			continue
		}
		a.logger.Warn("Feed fetch failed", map[string]interface{}{
			"url":   r.URL,
			"error": r.Err.Error(),
		})
		errs = append(errs, r.Err)
	}
	return errors.Join(errs...)
}

// poll fetches the feed list every interval until ctx is done, reloading the
// list when the file changes.
func (a *app) poll(ctx context.Context, path string) error {
	list, err := feedlist.Load(path)
	if err != nil {
		return err
	}

	var mu sync.Mutex
	urls := list.URLs()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return feedlist.Watch(gctx, path, a.logger, func(l *feedlist.List) {
			mu.Lock()
			urls = l.URLs()
			mu.Unlock()
		})
	})

	g.Go(func() error {
		ticker := time.NewTicker(a.cfg.Poll.Interval)
		defer ticker.Stop()

		for {
			mu.Lock()
			current := append([]string(nil), urls...)
			mu.Unlock()

			start := time.Now()
			err := a.fetchAll(gctx, current)
			a.logger.Info("Poll finished", map[string]interface{}{
				"feeds":    len(current),
				"failed":   countJoined(err),
				"duration": time.Since(start).String(),
			})

			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
			}
		}
	})

	return g.Wait()
}

func countJoined(err error) int {
	if err == nil {
		return 0
	}
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		return len(j.Unwrap())
	}
	return 1
}

// printer writes entries it has not printed before
type printer struct {
	mu     sync.Mutex
	out    io.Writer
	logger interfaces.Logger
	seen   map[string]map[string]bool
}

func newPrinter(out io.Writer, logger interfaces.Logger) *printer {
	return &printer{
		out:    out,
		logger: logger,
		seen:   make(map[string]map[string]bool),
	}
}

// OnFetchEvent implements interfaces.Listener
func (p *printer) OnFetchEvent(e domain.FetchEvent) {
	switch e.Type {
	case domain.EventPolled:
		p.logger.Debug("Feed polled", map[string]interface{}{"url": e.URL})
	case domain.EventUnchanged:
		p.logger.Debug("Feed unchanged", map[string]interface{}{"url": e.URL})
	case domain.EventRetrieved:
		p.print(e.URL, e.Feed)
	}
}

func (p *printer) print(url string, feed *domain.Feed) {
	p.mu.Lock()
	defer p.mu.Unlock()

	seen := p.seen[url]
	if seen == nil {
		seen = make(map[string]bool)
		p.seen[url] = seen
	}

	for i := range feed.Entries {
		e := &feed.Entries[i]
		id := fetcher.EntryIdentity(e)
		if seen[id] {
			continue
		}
		seen[id] = true

		title := e.Title
		if title == "" {
			title = "(untitled)"
		}
		fmt.Fprintf(p.out, "%s\t%s\t%s\n", feed.Title, title, e.Link)
	}
}
