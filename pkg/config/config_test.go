package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnv(t *testing.T) {
	tests := []struct {
		name              string
		envVars           map[string]string
		expectedUserAgent string
		expectedTimeout   time.Duration
		expectedCache     string
	}{
		{
			name:              "defaults when nothing is set",
			envVars:           map[string]string{},
			expectedUserAgent: "FeedFetcher/1.0",
			expectedTimeout:   30 * time.Second,
			expectedCache:     CacheMemory,
		},
		{
			name:              "uses FETCHER_USER_AGENT when set",
			envVars:           map[string]string{"FETCHER_USER_AGENT": "MyReader/2.0"},
			expectedUserAgent: "MyReader/2.0",
			expectedTimeout:   30 * time.Second,
			expectedCache:     CacheMemory,
		},
		{
			name:              "timeout as duration",
			envVars:           map[string]string{"FETCHER_TIMEOUT": "5s"},
			expectedUserAgent: "FeedFetcher/1.0",
			expectedTimeout:   5 * time.Second,
			expectedCache:     CacheMemory,
		},
		{
			name:              "timeout as seconds",
			envVars:           map[string]string{"FETCHER_TIMEOUT": "12"},
			expectedUserAgent: "FeedFetcher/1.0",
			expectedTimeout:   12 * time.Second,
			expectedCache:     CacheMemory,
		},
		{
			name:              "cache type is case insensitive",
			envVars:           map[string]string{"CACHE_TYPE": "SQLite"},
			expectedUserAgent: "FeedFetcher/1.0",
			expectedTimeout:   30 * time.Second,
			expectedCache:     CacheSQLite,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Clearenv()
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			cfg, err := LoadFromEnv()
			require.NoError(t, err)

			assert.Equal(t, tt.expectedUserAgent, cfg.Fetcher.UserAgent)
			assert.Equal(t, tt.expectedTimeout, cfg.Fetcher.Timeout)
			assert.Equal(t, tt.expectedCache, cfg.Cache.Type)
		})
	}
}

func TestLoadFromEnv_AllKeys(t *testing.T) {
	os.Clearenv()
	env := map[string]string{
		"FETCHER_MAX_REDIRECTS":       "3",
		"FETCHER_DELTA":               "true",
		"FETCHER_PRESERVE_WIRE_FEED":  "1",
		"FETCHER_MAX_TRACKED_ENTRIES": "50",
		"FETCHER_DEFAULT_CHARSET":     "ISO-8859-1",
		"FETCHER_USERNAME":            "alice",
		"FETCHER_PASSWORD":            "secret",
		"FETCHER_RATE_LIMIT":          "2.5",
		"FETCHER_RATE_BURST":          "4",
		"CACHE_DIR":                   "/tmp/feeds",
		"MEMORY_CACHE_EXPIRATION":     "1h",
		"REDIS_ADDRESS":               "redis:6379",
		"REDIS_DB":                    "2",
		"REDIS_PREFIX":                "ff",
		"REDIS_REJSON":                "true",
		"LOG_LEVEL":                   "debug",
		"LOG_FORMAT":                  "json",
		"LOG_FILE":                    "/var/log/ff.log",
		"POLL_INTERVAL":               "60",
		"FEED_LIST":                   "feeds.yaml",
		"POLL_CONCURRENCY":            "8",
	}
	for k, v := range env {
		t.Setenv(k, v)
	}

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Fetcher.MaxRedirects)
	assert.True(t, cfg.Fetcher.DeltaEncoding)
	assert.True(t, cfg.Fetcher.PreserveWireFeed)
	assert.Equal(t, 50, cfg.Fetcher.MaxTrackedEntries)
	assert.Equal(t, "ISO-8859-1", cfg.Fetcher.DefaultCharset)
	assert.Equal(t, "alice", cfg.Fetcher.Username)
	assert.Equal(t, "secret", cfg.Fetcher.Password)
	assert.Equal(t, 2.5, cfg.Fetcher.RateLimit)
	assert.Equal(t, 4, cfg.Fetcher.RateBurst)
	assert.Equal(t, "/tmp/feeds", cfg.Cache.Dir)
	assert.Equal(t, time.Hour, cfg.Cache.Memory.Expiration)
	assert.Equal(t, "redis:6379", cfg.Cache.Redis.Address)
	assert.Equal(t, 2, cfg.Cache.Redis.DB)
	assert.Equal(t, "ff", cfg.Cache.Redis.Prefix)
	assert.True(t, cfg.Cache.Redis.ReJSON)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "/var/log/ff.log", cfg.Log.File)
	assert.Equal(t, time.Minute, cfg.Poll.Interval)
	assert.Equal(t, "feeds.yaml", cfg.Poll.FeedList)
	assert.Equal(t, 8, cfg.Poll.Concurrency)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromEnv_InvalidValuesKeepDefaults(t *testing.T) {
	os.Clearenv()
	t.Setenv("FETCHER_MAX_REDIRECTS", "many")
	t.Setenv("FETCHER_DELTA", "perhaps")
	t.Setenv("FETCHER_TIMEOUT", "soon")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Fetcher.MaxRedirects)
	assert.False(t, cfg.Fetcher.DeltaEncoding)
	assert.Equal(t, 30*time.Second, cfg.Fetcher.Timeout)
}

func TestLoadFromFile(t *testing.T) {
	os.Clearenv()
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
fetcher:
  userAgent: FileAgent/1.0
  timeout: 10s
  deltaEncoding: true
cache:
  type: disk
  dir: /srv/feedcache
log:
  format: json
poll:
  interval: 2m
  feedList: feeds.yaml
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "FileAgent/1.0", cfg.Fetcher.UserAgent)
	assert.Equal(t, 10*time.Second, cfg.Fetcher.Timeout)
	assert.True(t, cfg.Fetcher.DeltaEncoding)
	assert.Equal(t, CacheDisk, cfg.Cache.Type)
	assert.Equal(t, "/srv/feedcache", cfg.Cache.Dir)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 2*time.Minute, cfg.Poll.Interval)

	// values absent from the file keep their defaults
	assert.Equal(t, 5, cfg.Fetcher.MaxRedirects)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromFile_EnvOverridesFile(t *testing.T) {
	os.Clearenv()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cache:\n  type: disk\n"), 0o644))
	t.Setenv("CACHE_TYPE", "none")

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, CacheNone, cfg.Cache.Type)
}

func TestLoadFromFile_Errors(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("fetcher: [unclosed"), 0o644))
	_, err = LoadFromFile(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"zero timeout", func(c *Config) { c.Fetcher.Timeout = 0 }, true},
		{"negative redirects", func(c *Config) { c.Fetcher.MaxRedirects = -1 }, true},
		{"zero redirects allowed", func(c *Config) { c.Fetcher.MaxRedirects = 0 }, false},
		{"no tracked entries", func(c *Config) { c.Fetcher.MaxTrackedEntries = 0 }, true},
		{"negative rate", func(c *Config) { c.Fetcher.RateLimit = -1 }, true},
		{"token and username", func(c *Config) { c.Fetcher.Token = "t"; c.Fetcher.Username = "u" }, true},
		{"unknown cache", func(c *Config) { c.Cache.Type = "memcached" }, true},
		{"no cache", func(c *Config) { c.Cache.Type = CacheNone }, false},
		{"disk without dir", func(c *Config) { c.Cache.Type = CacheDisk; c.Cache.Dir = "" }, true},
		{"sqlite without path", func(c *Config) { c.Cache.Type = CacheSQLite; c.Cache.SQLitePath = "" }, true},
		{"redis without address", func(c *Config) { c.Cache.Type = CacheRedis; c.Cache.Redis.Address = "" }, true},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }, true},
		{"short poll interval", func(c *Config) { c.Poll.FeedList = "f.yaml"; c.Poll.Interval = time.Millisecond }, true},
		{"zero concurrency", func(c *Config) { c.Poll.Concurrency = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
