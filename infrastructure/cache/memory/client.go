// ABOUTME: In-memory feed cache backed by patrickmn/go-cache
// ABOUTME: Stores deep copies of FeedInfo so callers never share cached state

package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"feedfetcher/core/domain"

	gocache "github.com/patrickmn/go-cache"
)

// ErrNilInfo is returned when Put is given a nil entry
var ErrNilInfo = errors.New("feed info cannot be nil")

// MemoryCache implements interfaces.FeedCache in process memory.
// Entries live until removed unless an expiration is configured.
type MemoryCache struct {
	// mu makes Put, Remove and Clear atomic with respect to each other
	mu    sync.Mutex
	items *gocache.Cache
}

// Option configures a MemoryCache
type Option func(*options)

type options struct {
	expiration time.Duration
	cleanup    time.Duration
}

// WithExpiration drops entries that were not rewritten within d.
// Expired entries are purged every cleanup interval.
func WithExpiration(d, cleanup time.Duration) Option {
	return func(o *options) {
		o.expiration = d
		o.cleanup = cleanup
	}
}

// NewMemoryCache creates a new in-memory cache instance
func NewMemoryCache(opts ...Option) *MemoryCache {
	o := options{expiration: gocache.NoExpiration}
	for _, opt := range opts {
		opt(&o)
	}
	if o.expiration <= 0 {
		o.expiration = gocache.NoExpiration
		o.cleanup = 0
	}

	return &MemoryCache{
		items: gocache.New(o.expiration, o.cleanup),
	}
}

// Get returns a copy of the entry for url, or nil
func (c *MemoryCache) Get(ctx context.Context, url string) (*domain.FeedInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	value, ok := c.items.Get(url)
	if !ok {
		return nil, nil
	}
	return value.(*domain.FeedInfo).Clone(), nil
}

// Put stores a copy of info under url
func (c *MemoryCache) Put(ctx context.Context, url string, info *domain.FeedInfo) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if info == nil {
		return ErrNilInfo
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.items.SetDefault(url, info.Clone())
	return nil
}

// Remove deletes the entry for url and returns it
func (c *MemoryCache) Remove(ctx context.Context, url string) (*domain.FeedInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	value, ok := c.items.Get(url)
	if !ok {
		return nil, nil
	}
	c.items.Delete(url)
	return value.(*domain.FeedInfo), nil
}

// Clear removes every entry
func (c *MemoryCache) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.items.Flush()
	return nil
}

// Len returns the number of stored entries, including expired ones not yet purged
func (c *MemoryCache) Len() int {
	return c.items.ItemCount()
}
