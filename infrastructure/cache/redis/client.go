// ABOUTME: Redis feed cache using go-redis, optionally storing RedisJSON documents
// ABOUTME: Keys are namespaced by a prefix so Clear only touches feed entries

package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"feedfetcher/core/domain"
	"feedfetcher/pkg/config"

	"github.com/nitishm/go-rejson/v4"
	"github.com/redis/go-redis/v9"
)

const scanBatch = 100

// ErrNilInfo is returned when Put is given a nil entry
var ErrNilInfo = errors.New("feed info cannot be nil")

// RedisCache implements interfaces.FeedCache using Redis
type RedisCache struct {
	client *redis.Client
	json   *rejson.Handler
	prefix string
}

// NewRedisCache creates a new Redis cache instance
func NewRedisCache(cfg config.RedisConfig) (*RedisCache, error) {
	if cfg.Address == "" {
		return nil, errors.New("redis address cannot be empty")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}

	return newRedisCache(client, cfg), nil
}

func newRedisCache(client *redis.Client, cfg config.RedisConfig) *RedisCache {
	c := &RedisCache{
		client: client,
		prefix: cfg.Prefix,
	}
	if c.prefix == "" {
		c.prefix = "feedinfo"
	}
	if cfg.ReJSON {
		c.json = rejson.NewReJSONHandler()
		c.json.SetGoRedisClient(client)
	}
	return c
}

// Get returns the entry for url, or nil
func (c *RedisCache) Get(ctx context.Context, url string) (*domain.FeedInfo, error) {
	data, err := c.load(ctx, url)
	if err != nil || data == nil {
		return nil, err
	}
	return decode(url, data)
}

// Put stores info under url
func (c *RedisCache) Put(ctx context.Context, url string, info *domain.FeedInfo) error {
	if info == nil {
		return ErrNilInfo
	}

	if c.json != nil {
		if _, err := c.json.JSONSet(c.key(url), ".", info); err != nil {
			return fmt.Errorf("failed to store feed info: %w", err)
		}
		return nil
	}

	data, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to encode feed info: %w", err)
	}
	// Redis SET with 0 TTL means no expiration
	if err := c.client.Set(ctx, c.key(url), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to store feed info: %w", err)
	}
	return nil
}

// Remove deletes the entry for url and returns it
func (c *RedisCache) Remove(ctx context.Context, url string) (*domain.FeedInfo, error) {
	var data []byte

	if c.json != nil {
		var err error
		if data, err = c.load(ctx, url); err != nil || data == nil {
			return nil, err
		}
		// a concurrent remover may win the delete; only the winner reports the entry
		n, err := c.client.Del(ctx, c.key(url)).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to delete feed info: %w", err)
		}
		if n == 0 {
			return nil, nil
		}
	} else {
		raw, err := c.client.GetDel(ctx, c.key(url)).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to delete feed info: %w", err)
		}
		data = raw
	}

	return decode(url, data)
}

// Clear removes every key under the cache prefix
func (c *RedisCache) Clear(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, c.prefix+":*", scanBatch).Iterator()

	batch := make([]string, 0, scanBatch)
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == scanBatch {
			if err := c.client.Del(ctx, batch...).Err(); err != nil {
				return fmt.Errorf("failed to clear cache: %w", err)
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan cache keys: %w", err)
	}
	if len(batch) > 0 {
		if err := c.client.Del(ctx, batch...).Err(); err != nil {
			return fmt.Errorf("failed to clear cache: %w", err)
		}
	}
	return nil
}

// Close closes the Redis connection
func (c *RedisCache) Close() error {
	return c.client.Close()
}

func (c *RedisCache) load(ctx context.Context, url string) ([]byte, error) {
	if c.json != nil {
		val, err := c.json.JSONGet(c.key(url), ".")
		if errors.Is(err, redis.Nil) || (err == nil && val == nil) {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to get feed info: %w", err)
		}
		switch v := val.(type) {
		case []byte:
			return v, nil
		case string:
			return []byte(v), nil
		default:
			return nil, fmt.Errorf("unexpected RedisJSON reply %T", val)
		}
	}

	data, err := c.client.Get(ctx, c.key(url)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get feed info: %w", err)
	}
	return data, nil
}

func (c *RedisCache) key(url string) string {
	return c.prefix + ":" + url
}

func decode(url string, data []byte) (*domain.FeedInfo, error) {
	var info domain.FeedInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("corrupt cache entry for %s: %w", url, err)
	}
	return &info, nil
}
