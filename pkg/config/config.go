// ABOUTME: Configuration management for the feed fetcher with environment variable support
// ABOUTME: Defaults, an optional YAML file and environment overrides, applied in that order

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Cache backend names
const (
	CacheNone   = "none"
	CacheMemory = "memory"
	CacheDisk   = "disk"
	CacheSQLite = "sqlite"
	CacheRedis  = "redis"
)

// Config holds all application configuration
type Config struct {
	// Fetcher contains retrieval behaviour
	Fetcher FetcherConfig `yaml:"fetcher"`

	// Cache contains cache configuration
	Cache CacheConfig `yaml:"cache"`

	// Log contains logging configuration
	Log LogConfig `yaml:"log"`

	// Poll contains settings for the polling command
	Poll PollConfig `yaml:"poll"`
}

// FetcherConfig holds feed retrieval configuration
type FetcherConfig struct {
	UserAgent         string        `yaml:"userAgent"`
	Timeout           time.Duration `yaml:"timeout"`
	MaxRedirects      int           `yaml:"maxRedirects"`
	DeltaEncoding     bool          `yaml:"deltaEncoding"`
	PreserveWireFeed  bool          `yaml:"preserveWireFeed"`
	MaxTrackedEntries int           `yaml:"maxTrackedEntries"`
	DefaultCharset    string        `yaml:"defaultCharset"`

	// Credentials sent to every feed; leave empty for anonymous access
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Token    string `yaml:"token"`

	// RateLimit is requests per second across all feeds, 0 disables limiting
	RateLimit float64 `yaml:"rateLimit"`
	RateBurst int     `yaml:"rateBurst"`
}

// CacheConfig holds cache backend configuration
type CacheConfig struct {
	// Type specifies the cache backend (none/memory/disk/sqlite/redis)
	Type string `yaml:"type"`

	// Dir is the directory of the disk cache
	Dir string `yaml:"dir"`

	// SQLitePath is the database file of the sqlite cache
	SQLitePath string `yaml:"sqlitePath"`

	// Redis contains Redis-specific configuration
	Redis RedisConfig `yaml:"redis"`

	// Memory contains in-memory cache configuration
	Memory MemoryConfig `yaml:"memory"`
}

// RedisConfig holds Redis-specific configuration
type RedisConfig struct {
	// Address is the Redis server address
	Address string `yaml:"address"`

	// Password is the Redis authentication password
	Password string `yaml:"password"`

	// DB is the Redis database number
	DB int `yaml:"db"`

	// Prefix namespaces every key
	Prefix string `yaml:"prefix"`

	// ReJSON stores entries as RedisJSON documents instead of strings
	ReJSON bool `yaml:"rejson"`
}

// MemoryConfig holds in-memory cache configuration
type MemoryConfig struct {
	// Expiration drops entries not rewritten within this period, 0 keeps them forever
	Expiration time.Duration `yaml:"expiration"`
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

// PollConfig holds settings for polling a feed list
type PollConfig struct {
	Interval    time.Duration `yaml:"interval"`
	FeedList    string        `yaml:"feedList"`
	Concurrency int           `yaml:"concurrency"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Fetcher: FetcherConfig{
			UserAgent:         "FeedFetcher/1.0",
			Timeout:           30 * time.Second,
			MaxRedirects:      5,
			MaxTrackedEntries: 200,
			DefaultCharset:    "UTF-8",
			RateBurst:         1,
		},
		Cache: CacheConfig{
			Type:       CacheMemory,
			Dir:        "feedcache",
			SQLitePath: "feedcache.db",
			Redis: RedisConfig{
				Address: "localhost:6379",
				Prefix:  "feedinfo",
			},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Poll: PollConfig{
			Interval:    15 * time.Minute,
			Concurrency: 4,
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() (*Config, error) {
	cfg := Default()
	cfg.applyEnv()
	return cfg, nil
}

// LoadFromFile reads a YAML file and then applies environment overrides
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	f := &c.Fetcher
	f.UserAgent = getEnvOrDefault("FETCHER_USER_AGENT", f.UserAgent)
	f.Timeout = getEnvAsDurationOrDefault("FETCHER_TIMEOUT", f.Timeout)
	f.MaxRedirects = getEnvAsIntOrDefault("FETCHER_MAX_REDIRECTS", f.MaxRedirects)
	f.DeltaEncoding = getEnvAsBoolOrDefault("FETCHER_DELTA", f.DeltaEncoding)
	f.PreserveWireFeed = getEnvAsBoolOrDefault("FETCHER_PRESERVE_WIRE_FEED", f.PreserveWireFeed)
	f.MaxTrackedEntries = getEnvAsIntOrDefault("FETCHER_MAX_TRACKED_ENTRIES", f.MaxTrackedEntries)
	f.DefaultCharset = getEnvOrDefault("FETCHER_DEFAULT_CHARSET", f.DefaultCharset)
	f.Username = getEnvOrDefault("FETCHER_USERNAME", f.Username)
	f.Password = getEnvOrDefault("FETCHER_PASSWORD", f.Password)
	f.Token = getEnvOrDefault("FETCHER_TOKEN", f.Token)
	f.RateLimit = getEnvAsFloatOrDefault("FETCHER_RATE_LIMIT", f.RateLimit)
	f.RateBurst = getEnvAsIntOrDefault("FETCHER_RATE_BURST", f.RateBurst)

	cc := &c.Cache
	cc.Type = strings.ToLower(getEnvOrDefault("CACHE_TYPE", cc.Type))
	cc.Dir = getEnvOrDefault("CACHE_DIR", cc.Dir)
	cc.SQLitePath = getEnvOrDefault("CACHE_SQLITE_PATH", cc.SQLitePath)
	cc.Memory.Expiration = getEnvAsDurationOrDefault("MEMORY_CACHE_EXPIRATION", cc.Memory.Expiration)
	cc.Redis.Address = getEnvOrDefault("REDIS_ADDRESS", cc.Redis.Address)
	cc.Redis.Password = getEnvOrDefault("REDIS_PASSWORD", cc.Redis.Password)
	cc.Redis.DB = getEnvAsIntOrDefault("REDIS_DB", cc.Redis.DB)
	cc.Redis.Prefix = getEnvOrDefault("REDIS_PREFIX", cc.Redis.Prefix)
	cc.Redis.ReJSON = getEnvAsBoolOrDefault("REDIS_REJSON", cc.Redis.ReJSON)

	c.Log.Level = getEnvOrDefault("LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnvOrDefault("LOG_FORMAT", c.Log.Format)
	c.Log.File = getEnvOrDefault("LOG_FILE", c.Log.File)

	c.Poll.Interval = getEnvAsDurationOrDefault("POLL_INTERVAL", c.Poll.Interval)
	c.Poll.FeedList = getEnvOrDefault("FEED_LIST", c.Poll.FeedList)
	c.Poll.Concurrency = getEnvAsIntOrDefault("POLL_CONCURRENCY", c.Poll.Concurrency)
}

// getEnvOrDefault returns the environment variable value or a default
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsIntOrDefault returns the environment variable as int or a default
func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvAsBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// getEnvAsDurationOrDefault accepts Go durations ("90s") or plain seconds ("90")
func getEnvAsDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Fetcher.Timeout <= 0 {
		return errors.New("fetcher timeout must be positive")
	}

	if c.Fetcher.MaxRedirects < 0 {
		return errors.New("max redirects cannot be negative")
	}

	if c.Fetcher.MaxTrackedEntries < 1 {
		return errors.New("max tracked entries must be at least 1")
	}

	if c.Fetcher.RateLimit < 0 {
		return errors.New("rate limit cannot be negative")
	}

	if c.Fetcher.Token != "" && c.Fetcher.Username != "" {
		return errors.New("configure either a token or a username, not both")
	}

	switch c.Cache.Type {
	case CacheNone, CacheMemory:
	case CacheDisk:
		if c.Cache.Dir == "" {
			return errors.New("cache directory cannot be empty when using disk cache")
		}
	case CacheSQLite:
		if c.Cache.SQLitePath == "" {
			return errors.New("sqlite path cannot be empty when using sqlite cache")
		}
	case CacheRedis:
		if c.Cache.Redis.Address == "" {
			return errors.New("redis address cannot be empty when using redis cache")
		}
	default:
		return fmt.Errorf("unknown cache type %q", c.Cache.Type)
	}

	if c.Log.Format != "text" && c.Log.Format != "json" {
		return errors.New("log format must be 'text' or 'json'")
	}

	if c.Poll.FeedList != "" && c.Poll.Interval < time.Second {
		return errors.New("poll interval must be at least 1 second")
	}

	if c.Poll.Concurrency < 1 {
		return errors.New("poll concurrency must be at least 1")
	}

	return nil
}
