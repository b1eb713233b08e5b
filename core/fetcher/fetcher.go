// ABOUTME: Feed fetcher retrieves feeds with conditional GETs and a metadata cache
// ABOUTME: Follows redirects, merges entries in delta mode and notifies listeners

package fetcher

import (
	"context"
	"errors"
	"net/url"

	"feedfetcher/core/domain"
	fetcherrors "feedfetcher/core/errors"
	"feedfetcher/core/interfaces"
)

// Result describes a completed retrieval
type Result struct {
	// Feed is the returned feed: parsed, merged or the cached snapshot
	Feed *domain.Feed

	// URL is the URL that finally answered, after redirects
	URL string

	// Kind is OutcomeFetched or OutcomeUnchanged
	Kind OutcomeKind

	// Redirects is the number of hops followed
	Redirects int
}

// FeedFetcher retrieves feeds. It is safe for concurrent use.
type FeedFetcher struct {
	deps      interfaces.Dependencies
	config    Config
	listeners listenerRegistry
}

// NewFeedFetcher creates a fetcher. deps.HTTPClient and deps.Parser are
// required; deps.Cache may be nil to disable caching.
func NewFeedFetcher(deps interfaces.Dependencies, opts ...Option) (*FeedFetcher, error) {
	if deps.HTTPClient == nil {
		return nil, errors.New("HTTP client not configured")
	}
	if deps.Parser == nil {
		return nil, errors.New("feed parser not configured")
	}
	if deps.Logger == nil {
		deps.Logger = interfaces.NopLogger{}
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg.normalize()

	return &FeedFetcher{
		deps:   deps,
		config: cfg,
	}, nil
}

// AddListener registers l for fetch events. Call the returned function to
// unregister it.
func (f *FeedFetcher) AddListener(l interfaces.Listener) func() {
	return f.listeners.add(l)
}

// Cache returns the configured cache, or nil
func (f *FeedFetcher) Cache() interfaces.FeedCache {
	return f.deps.Cache
}

// Config returns a copy of the effective configuration
func (f *FeedFetcher) Config() Config {
	return f.config
}

// RetrieveFeed fetches feedURL and returns the resulting feed
func (f *FeedFetcher) RetrieveFeed(ctx context.Context, feedURL string) (*domain.Feed, error) {
	res, err := f.RetrieveFeedOutcome(ctx, feedURL)
	if err != nil {
		return nil, err
	}
	return res.Feed, nil
}

// RetrieveFeedOutcome fetches feedURL and reports how the feed was obtained
func (f *FeedFetcher) RetrieveFeedOutcome(ctx context.Context, feedURL string) (*Result, error) {
	if err := validateURL(feedURL); err != nil {
		return nil, err
	}

	current := feedURL
	for hops := 0; ; hops++ {
		info, cached := f.lookup(ctx, current)

		resp, err := f.send(ctx, current, info)
		if err != nil {
			return nil, err
		}

		out := Interpret(current, resp, f.config.DefaultCharset)
		if out.Kind != OutcomeFetched {
			resp.Body().Close()
		}

		if out.Kind == OutcomeRedirected {
			if hops >= f.config.MaxRedirects {
				f.fire(domain.EventPolled, feedURL, nil)
				return nil, &fetcherrors.RedirectLoopError{
					URL:          feedURL,
					MaxRedirects: f.config.MaxRedirects,
					StatusCode:   out.StatusCode,
				}
			}
			f.deps.Logger.Debug("Following feed redirect", map[string]interface{}{
				"from":   current,
				"to":     out.Location,
				"status": out.StatusCode,
			})
			current = out.Location
			continue
		}

		f.fire(domain.EventPolled, feedURL, nil)

		switch out.Kind {
		case OutcomeFetched:
			feed, err := f.handleFetched(ctx, feedURL, current, info, cached, resp, out)
			if err != nil {
				return nil, err
			}
			return &Result{Feed: feed, URL: current, Kind: OutcomeFetched, Redirects: hops}, nil
		case OutcomeUnchanged:
			feed, err := f.handleUnchanged(ctx, feedURL, current, info, cached, out)
			if err != nil {
				return nil, err
			}
			return &Result{Feed: feed, URL: current, Kind: OutcomeUnchanged, Redirects: hops}, nil
		default:
			f.deps.Logger.Info("Feed request failed", map[string]interface{}{
				"url":    current,
				"status": out.StatusCode,
			})
			return nil, &fetcherrors.FetchError{URL: current, StatusCode: out.StatusCode}
		}
	}
}

func (f *FeedFetcher) send(ctx context.Context, target string, info *domain.FeedInfo) (interfaces.Response, error) {
	req := BuildRequest(target, info, f.config.UserAgent, f.config.DeltaEncoding)

	if f.config.Credentials != nil {
		creds, err := f.config.Credentials.Credentials(ctx, target)
		if err != nil {
			return nil, fetcherrors.WrapError(err, "failed to obtain credentials")
		}
		applyCredentials(req, creds)
	}

	resp, err := f.deps.HTTPClient.Do(ctx, req)
	if err != nil {
		return nil, &fetcherrors.TransportError{URL: target, Err: err}
	}
	return resp, nil
}

// handleFetched parses a 200 or 226 body. When cached is false the cache is
// neither merged from nor written for this call.
func (f *FeedFetcher) handleFetched(ctx context.Context, requested, current string, prev *domain.FeedInfo, cached bool, resp interfaces.Response, out Outcome) (*domain.Feed, error) {
	body := resp.Body()
	defer body.Close()

	feed, err := f.deps.Parser.Parse(body, interfaces.ParseOptions{
		Charset:          out.Charset,
		PreserveWireFeed: f.config.PreserveWireFeed,
	})
	if err != nil {
		return nil, &fetcherrors.ParseError{URL: current, Err: err}
	}

	var ids []string
	if out.Partial || (cached && f.config.DeltaEncoding) {
		// a 226 body only carries entries the server thinks are new
		feed, ids = Merge(feed, prev, f.config.MaxTrackedEntries)
	} else {
		ids = EntryIdentities(feed.Entries)
	}
	if cached {
		f.store(ctx, current, newFeedInfo(current, prev, feed, ids, out))
	}

	f.deps.Logger.Debug("Feed retrieved", map[string]interface{}{
		"url":     current,
		"entries": len(feed.Entries),
	})
	f.fire(domain.EventRetrieved, requested, feed)
	return feed, nil
}

func (f *FeedFetcher) handleUnchanged(ctx context.Context, requested, current string, info *domain.FeedInfo, cached bool, out Outcome) (*domain.Feed, error) {
	if info == nil || info.Feed == nil {
		// Only possible when the cache lost the entry between lookup and response
		return nil, &fetcherrors.FetchError{URL: current, StatusCode: out.StatusCode}
	}

	refreshed := false
	if out.ETag != "" && out.ETag != info.ETag {
		info.ETag = out.ETag
		refreshed = true
	}
	if out.LastModified != "" && out.LastModified != info.LastModified {
		info.LastModified = out.LastModified
		refreshed = true
	}
	if refreshed && cached {
		f.store(ctx, current, info)
	}

	feed := info.Feed.Clone()
	f.fire(domain.EventUnchanged, requested, feed)
	return feed, nil
}

// newFeedInfo builds the entry stored after a full retrieval. A validator the
// server did not send keeps its previous value.
func newFeedInfo(target string, prev *domain.FeedInfo, feed *domain.Feed, ids []string, out Outcome) *domain.FeedInfo {
	info := &domain.FeedInfo{
		URL:          target,
		ETag:         out.ETag,
		LastModified: out.LastModified,
		LastUpdated:  feed.LastUpdated(),
		Feed:         feed.WithoutWire(),
		EntryIDs:     ids,
	}
	if prev != nil {
		if info.ETag == "" {
			info.ETag = prev.ETag
		}
		if info.LastModified == "" {
			info.LastModified = prev.LastModified
		}
	}
	return info
}

// lookup reads the cache. ok is false when there is no cache or the read
// failed; the call then proceeds as if no cache were configured.
func (f *FeedFetcher) lookup(ctx context.Context, target string) (info *domain.FeedInfo, ok bool) {
	if f.deps.Cache == nil {
		return nil, false
	}
	info, err := f.deps.Cache.Get(ctx, target)
	if err != nil {
		f.warn(&fetcherrors.CacheError{Op: "get", URL: target, Err: err})
		return nil, false
	}
	return info, true
}

func (f *FeedFetcher) store(ctx context.Context, target string, info *domain.FeedInfo) {
	if err := f.deps.Cache.Put(ctx, target, info); err != nil {
		f.warn(&fetcherrors.CacheError{Op: "put", URL: target, Err: err})
	}
}

func (f *FeedFetcher) warn(err *fetcherrors.CacheError) {
	f.deps.Logger.Warn("Feed cache operation failed", map[string]interface{}{
		"op":    err.Op,
		"url":   err.URL,
		"error": err.Err.Error(),
	})
	if f.config.WarningHandler != nil {
		f.config.WarningHandler(err)
	}
}

func (f *FeedFetcher) fire(kind domain.EventType, feedURL string, feed *domain.Feed) {
	f.listeners.fire(domain.FetchEvent{Type: kind, URL: feedURL, Feed: feed}, f.deps.Logger)
}

func validateURL(feedURL string) error {
	if feedURL == "" {
		return &fetcherrors.ValidationError{Field: "url", Message: "feed URL cannot be empty"}
	}
	u, err := url.Parse(feedURL)
	if err != nil || u.Host == "" {
		return &fetcherrors.ValidationError{Field: "url", Message: "invalid URL format"}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return &fetcherrors.ValidationError{Field: "url", Message: "scheme must be http or https"}
	}
	return nil
}
