// ABOUTME: Configuration for the feed fetcher
// ABOUTME: Provides functional options instead of process-wide settings

package fetcher

import "feedfetcher/core/interfaces"

const (
	// DefaultUserAgent is sent when no user agent is configured
	DefaultUserAgent = "FeedFetcher/1.0"

	// DefaultMaxRedirects bounds redirect chains. The sixth hop fails.
	DefaultMaxRedirects = 5

	// DefaultMaxTrackedEntries caps merged entry lists in delta mode
	DefaultMaxTrackedEntries = 200

	// DefaultCharset is assumed when the response names no charset
	DefaultCharset = "UTF-8"
)

// Config holds the caller-facing fetcher settings
type Config struct {
	// UserAgent is sent with every request
	UserAgent string

	// MaxRedirects is the number of redirect hops followed before failing
	MaxRedirects int

	// DeltaEncoding merges new entries with cached ones
	DeltaEncoding bool

	// PreserveWireFeed keeps the format specific document on returned feeds
	PreserveWireFeed bool

	// MaxTrackedEntries caps the merged entry list and identity list
	MaxTrackedEntries int

	// DefaultCharset is used when Content-Type carries no charset
	DefaultCharset string

	// Credentials authenticates requests; nil sends them anonymously
	Credentials interfaces.CredentialProvider

	// WarningHandler receives non-fatal errors such as cache failures
	WarningHandler func(err error)
}

// Option is a functional option for configuring the fetcher
type Option func(*Config)

// WithUserAgent sets the User-Agent header
func WithUserAgent(userAgent string) Option {
	return func(c *Config) {
		c.UserAgent = userAgent
	}
}

// WithMaxRedirects sets the redirect hop bound
func WithMaxRedirects(n int) Option {
	return func(c *Config) {
		c.MaxRedirects = n
	}
}

// WithDeltaEncoding enables or disables delta merging
func WithDeltaEncoding(enabled bool) Option {
	return func(c *Config) {
		c.DeltaEncoding = enabled
	}
}

// WithPreserveWireFeed enables or disables keeping wire documents
func WithPreserveWireFeed(enabled bool) Option {
	return func(c *Config) {
		c.PreserveWireFeed = enabled
	}
}

// WithMaxTrackedEntries sets the merged entry cap
func WithMaxTrackedEntries(n int) Option {
	return func(c *Config) {
		c.MaxTrackedEntries = n
	}
}

// WithDefaultCharset sets the charset assumed when the server names none
func WithDefaultCharset(charset string) Option {
	return func(c *Config) {
		c.DefaultCharset = charset
	}
}

// WithCredentials sets the credential provider
func WithCredentials(provider interfaces.CredentialProvider) Option {
	return func(c *Config) {
		c.Credentials = provider
	}
}

// WithBasicAuth authenticates every request with the same username and password
func WithBasicAuth(username, password string) Option {
	return WithCredentials(StaticCredentials{Username: username, Password: password})
}

// WithWarningHandler sets the receiver for non-fatal errors
func WithWarningHandler(h func(err error)) Option {
	return func(c *Config) {
		c.WarningHandler = h
	}
}

// defaultConfig returns the default fetcher configuration
func defaultConfig() Config {
	return Config{
		UserAgent:         DefaultUserAgent,
		MaxRedirects:      DefaultMaxRedirects,
		MaxTrackedEntries: DefaultMaxTrackedEntries,
		DefaultCharset:    DefaultCharset,
	}
}

func (c *Config) normalize() {
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	if c.MaxRedirects < 0 {
		c.MaxRedirects = 0
	}
	if c.MaxTrackedEntries <= 0 {
		c.MaxTrackedEntries = DefaultMaxTrackedEntries
	}
	if c.DefaultCharset == "" {
		c.DefaultCharset = DefaultCharset
	}
}
