// ABOUTME: Feed parser backed by gofeed for RSS, Atom and JSON Feed documents
// ABOUTME: Converts transport charsets and can keep the format specific document

package feedparser

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"feedfetcher/core/domain"
	"feedfetcher/core/interfaces"
	timeutil "feedfetcher/pkg/utils/time"

	"github.com/mmcdole/gofeed"
	"github.com/mmcdole/gofeed/atom"
	jsonfeed "github.com/mmcdole/gofeed/json"
	"github.com/mmcdole/gofeed/rss"
	"golang.org/x/net/html/charset"
)

// maxFeedBytes bounds how much of a body is read
const maxFeedBytes = 10 << 20

var (
	// ErrEmptyFeed is returned for empty bodies
	ErrEmptyFeed = errors.New("empty feed content")

	// ErrFeedTooLarge is returned for bodies over maxFeedBytes
	ErrFeedTooLarge = fmt.Errorf("feed exceeds %d bytes", maxFeedBytes)
)

var xmlEncodingDecl = regexp.MustCompile(`^\s*<\?xml[^>]*encoding\s*=`)

// Parser implements interfaces.Parser using gofeed
type Parser struct{}

// NewParser creates a new parser
func NewParser() *Parser {
	return &Parser{}
}

// Parse reads body and converts it into the domain model
func (p *Parser) Parse(body io.Reader, opts interfaces.ParseOptions) (*domain.Feed, error) {
	content, err := io.ReadAll(io.LimitReader(body, maxFeedBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read feed body: %w", err)
	}
	if len(content) > maxFeedBytes {
		return nil, ErrFeedTooLarge
	}
	if len(bytes.TrimSpace(content)) == 0 {
		return nil, ErrEmptyFeed
	}

	content, err = toUTF8(content, opts.Charset)
	if err != nil {
		return nil, err
	}

	var (
		parsed *gofeed.Feed
		wire   interface{}
		items  []interface{}
	)

	switch gofeed.DetectFeedType(bytes.NewReader(content)) {
	case gofeed.FeedTypeRSS:
		doc, err := (&rss.Parser{}).Parse(bytes.NewReader(content))
		if err != nil {
			return nil, err
		}
		if parsed, err = (&gofeed.DefaultRSSTranslator{}).Translate(doc); err != nil {
			return nil, err
		}
		wire = doc
		for _, item := range doc.Items {
			items = append(items, item)
		}
	case gofeed.FeedTypeAtom:
		doc, err := (&atom.Parser{}).Parse(bytes.NewReader(content))
		if err != nil {
			return nil, err
		}
		if parsed, err = (&gofeed.DefaultAtomTranslator{}).Translate(doc); err != nil {
			return nil, err
		}
		wire = doc
		for _, entry := range doc.Entries {
			items = append(items, entry)
		}
	case gofeed.FeedTypeJSON:
		doc, err := (&jsonfeed.Parser{}).Parse(bytes.NewReader(content))
		if err != nil {
			return nil, err
		}
		if parsed, err = (&gofeed.DefaultJSONTranslator{}).Translate(doc); err != nil {
			return nil, err
		}
		wire = doc
		for _, item := range doc.Items {
			items = append(items, item)
		}
	default:
		return nil, gofeed.ErrFeedTypeNotDetected
	}

	feed := convertFeed(parsed)
	if opts.PreserveWireFeed {
		feed.WireFeed = wire
		if len(items) == len(feed.Entries) {
			for i := range feed.Entries {
				feed.Entries[i].WireEntry = items[i]
			}
		}
	}

	return feed, nil
}

// toUTF8 converts content announced in a non UTF-8 charset. XML documents
// that declare their own encoding are left to the XML decoder.
func toUTF8(content []byte, label string) ([]byte, error) {
	label = strings.TrimSpace(label)
	if label == "" || strings.EqualFold(label, "utf-8") || strings.EqualFold(label, "utf8") {
		return content, nil
	}
	if xmlEncodingDecl.Match(content) {
		return content, nil
	}

	r, err := charset.NewReaderLabel(label, bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("unsupported charset %q: %w", label, err)
	}
	return io.ReadAll(r)
}

// convertFeed converts a gofeed feed to the domain model
func convertFeed(parsed *gofeed.Feed) *domain.Feed {
	feed := &domain.Feed{
		Title:       strings.TrimSpace(parsed.Title),
		Description: parsed.Description,
		Link:        parsed.Link,
		FeedLink:    parsed.FeedLink,
		Language:    parsed.Language,
		Copyright:   parsed.Copyright,
		Categories:  parsed.Categories,
		FeedType:    parsed.FeedType,
		FeedVersion: parsed.FeedVersion,
		Updated:     parseDate(parsed.UpdatedParsed, parsed.Updated),
		Published:   parseDate(parsed.PublishedParsed, parsed.Published),
		Entries:     make([]domain.Entry, 0, len(parsed.Items)),
	}

	if parsed.Author != nil {
		feed.Author = &domain.Author{
			Name:  parsed.Author.Name,
			Email: parsed.Author.Email,
		}
	}

	if parsed.Image != nil && parsed.Image.URL != "" {
		feed.Image = parsed.Image.URL
	} else if parsed.ITunesExt != nil && parsed.ITunesExt.Image != "" {
		feed.Image = parsed.ITunesExt.Image
	}

	for _, item := range parsed.Items {
		feed.Entries = append(feed.Entries, convertItem(item))
	}

	return feed
}

// convertItem converts a gofeed item to a domain entry
func convertItem(item *gofeed.Item) domain.Entry {
	entry := domain.Entry{
		ID:          strings.TrimSpace(item.GUID),
		Title:       strings.TrimSpace(item.Title),
		Description: item.Description,
		Content:     item.Content,
		Link:        item.Link,
		Published:   parseDate(item.PublishedParsed, item.Published),
		Updated:     parseDate(item.UpdatedParsed, item.Updated),
		Categories:  item.Categories,
	}

	if item.Author != nil && item.Author.Name != "" {
		entry.Author = item.Author.Name
	} else if item.ITunesExt != nil && item.ITunesExt.Author != "" {
		entry.Author = item.ITunesExt.Author
	}

	if item.Image != nil {
		entry.Image = item.Image.URL
	}

	for _, enc := range item.Enclosures {
		if enc == nil || enc.URL == "" {
			continue
		}
		entry.Enclosures = append(entry.Enclosures, domain.Enclosure{
			URL:    enc.URL,
			Length: enc.Length,
			Type:   enc.Type,
		})
	}

	return entry
}

// parseDate prefers the value gofeed parsed and falls back to the lenient parser
func parseDate(parsed *time.Time, raw string) *time.Time {
	if parsed != nil {
		t := parsed.UTC()
		return &t
	}
	if t := timeutil.ParseFlexibleTime(raw); !t.IsZero() {
		t = t.UTC()
		return &t
	}
	return nil
}
