// ABOUTME: FeedInfo is the per-URL metadata a feed cache stores between fetches
// ABOUTME: Holds HTTP validators, the last merged feed snapshot and seen entry identities

package domain

import "time"

// FeedInfo is the cached state for one feed URL
type FeedInfo struct {
	// URL is the cache key. It never changes once the entry exists.
	URL string `json:"url"`

	// ETag is the validator from the last successful full retrieval
	ETag string `json:"etag,omitempty"`

	// LastModified is the Last-Modified header from the last successful full retrieval
	LastModified string `json:"lastModified,omitempty"`

	// LastUpdated is taken from the feed document itself, not from HTTP headers
	LastUpdated *time.Time `json:"lastUpdated,omitempty"`

	// Feed is the most recently merged feed
	Feed *Feed `json:"feed,omitempty"`

	// EntryIDs lists entry identities of Feed, newest first
	EntryIDs []string `json:"entryIds"`
}

// HasValidators reports whether a conditional request can be made
func (fi *FeedInfo) HasValidators() bool {
	return fi != nil && (fi.ETag != "" || fi.LastModified != "")
}

// Clone returns a deep copy of the info
func (fi *FeedInfo) Clone() *FeedInfo {
	if fi == nil {
		return nil
	}
	c := *fi
	c.LastUpdated = cloneTime(fi.LastUpdated)
	c.Feed = fi.Feed.Clone()
	c.EntryIDs = cloneStrings(fi.EntryIDs)
	return &c
}
