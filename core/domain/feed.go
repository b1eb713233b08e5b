// ABOUTME: Feed domain model represents a parsed RSS/Atom/JSON feed with its metadata
// ABOUTME: Provides cloning so cached snapshots are never shared with callers

package domain

import (
	"errors"
	"net/url"
	"time"
)

// Feed represents a normalized RSS, Atom or JSON feed
type Feed struct {
	// Title is the human-readable title of the feed
	Title string `json:"title"`

	// Description provides a brief description of the feed's content
	Description string `json:"description,omitempty"`

	// Link is the website URL associated with the feed
	Link string `json:"link,omitempty"`

	// FeedLink is the self link advertised by the feed document
	FeedLink string `json:"feedLink,omitempty"`

	// Entries contains the feed entries, newest first as served
	Entries []Entry `json:"entries"`

	// Additional metadata fields
	Language    string     `json:"language,omitempty"`
	Copyright   string     `json:"copyright,omitempty"`
	Author      *Author    `json:"author,omitempty"`
	Categories  []string   `json:"categories"`
	Image       string     `json:"image,omitempty"`
	FeedType    string     `json:"feedType,omitempty"`    // "rss", "atom" or "json"
	FeedVersion string     `json:"feedVersion,omitempty"` // e.g. "2.0", "1.0"
	Updated     *time.Time `json:"updated,omitempty"`
	Published   *time.Time `json:"published,omitempty"`

	// WireFeed holds the format specific document (*rss.Feed, *atom.Feed or
	// *json.Feed) when wire feed preservation is enabled. Never persisted.
	WireFeed interface{} `json:"-"`
}

// Author represents author information
type Author struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// Validate checks if the feed has valid required fields
func (f *Feed) Validate() error {
	if f.Title == "" && len(f.Entries) == 0 {
		return errors.New("feed has neither a title nor entries")
	}

	if f.Link != "" {
		if _, err := url.Parse(f.Link); err != nil {
			return errors.New("feed link is not valid format")
		}
	}

	return nil
}

// LastUpdated returns the freshest in-feed timestamp, if any
func (f *Feed) LastUpdated() *time.Time {
	if f.Updated != nil {
		t := *f.Updated
		return &t
	}
	if f.Published != nil {
		t := *f.Published
		return &t
	}
	return nil
}

// Clone returns a deep copy of the feed. Wire objects are shared, not copied.
func (f *Feed) Clone() *Feed {
	if f == nil {
		return nil
	}

	c := *f
	c.Categories = cloneStrings(f.Categories)
	c.Updated = cloneTime(f.Updated)
	c.Published = cloneTime(f.Published)
	if f.Author != nil {
		a := *f.Author
		c.Author = &a
	}
	if f.Entries != nil {
		c.Entries = make([]Entry, len(f.Entries))
		for i := range f.Entries {
			c.Entries[i] = f.Entries[i].Clone()
		}
	}
	return &c
}

// WithoutWire returns a deep copy with every wire object dropped
func (f *Feed) WithoutWire() *Feed {
	c := f.Clone()
	if c == nil {
		return nil
	}
	c.WireFeed = nil
	for i := range c.Entries {
		c.Entries[i].WireEntry = nil
	}
	return c
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
