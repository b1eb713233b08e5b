// ABOUTME: Entry domain model represents an individual item within a feed
// ABOUTME: Carries the identity fields the delta merger relies on

package domain

import "time"

// Entry represents an individual item/entry in a feed
type Entry struct {
	// ID is the GUID (RSS) or id (Atom/JSON) of the entry, possibly empty
	ID string `json:"id,omitempty"`

	// Title is the entry's headline
	Title string `json:"title,omitempty"`

	// Description contains the entry's summary
	Description string `json:"description,omitempty"`

	// Content contains the full entry content when the feed carries it
	Content string `json:"content,omitempty"`

	// Link is the URL to the full article
	Link string `json:"link,omitempty"`

	// Published is when the entry was published
	Published *time.Time `json:"published,omitempty"`

	// Updated is when the entry was last changed
	Updated *time.Time `json:"updated,omitempty"`

	Author     string      `json:"author,omitempty"`
	Categories []string    `json:"categories"`
	Enclosures []Enclosure `json:"enclosures"`
	Image      string      `json:"image,omitempty"`

	// WireEntry holds the format specific item when wire feed preservation
	// is enabled. Never persisted.
	WireEntry interface{} `json:"-"`
}

// Enclosure represents media attachment information
type Enclosure struct {
	URL    string `json:"url"`
	Length string `json:"length,omitempty"`
	Type   string `json:"type,omitempty"`
}

// IsValid checks if the entry has enough data to be shown
func (e *Entry) IsValid() bool {
	return e.Title != "" || e.Link != ""
}

// Clone returns a deep copy of the entry
func (e Entry) Clone() Entry {
	c := e
	c.Published = cloneTime(e.Published)
	c.Updated = cloneTime(e.Updated)
	c.Categories = cloneStrings(e.Categories)
	if e.Enclosures != nil {
		c.Enclosures = make([]Enclosure, len(e.Enclosures))
		copy(c.Enclosures, e.Enclosures)
	}
	return c
}
