package fetcher

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"feedfetcher/core/domain"
)

// EntryIdentity returns the deduplication key of an entry: its ID when it
// has one, otherwise "fp:" + hex(sha256(link "\n" title "\n" published)).
// Published is formatted as RFC 3339 in UTC, or empty when unknown.
func EntryIdentity(e *domain.Entry) string {
	if e.ID != "" {
		return e.ID
	}

	published := ""
	if e.Published != nil {
		published = e.Published.UTC().Format(time.RFC3339)
	}
	sum := sha256.Sum256([]byte(e.Link + "\n" + e.Title + "\n" + published))
	return "fp:" + hex.EncodeToString(sum[:])
}

// EntryIdentities returns the identities of entries in order, without duplicates
func EntryIdentities(entries []domain.Entry) []string {
	ids := make([]string, 0, len(entries))
	seen := make(map[string]bool, len(entries))
	for i := range entries {
		id := EntryIdentity(&entries[i])
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids
}

// Merge combines a freshly parsed feed with the cached state. Entries the
// cache has never seen come first in feed order, followed by the cached
// entries in their previous order. Cached entries that reappear in fresh
// keep their position but take the fresh content. The result is capped at
// max(len(fresh.Entries), maxEntries), dropping the oldest tail.
//
// Feed level fields come from fresh. fresh is not modified.
func Merge(fresh *domain.Feed, cached *domain.FeedInfo, maxEntries int) (*domain.Feed, []string) {
	merged := fresh.Clone()
	if cached == nil || cached.Feed == nil {
		merged.Entries = dedupe(merged.Entries)
		ids := EntryIdentities(merged.Entries)
		return capEntries(merged, ids, len(fresh.Entries), maxEntries)
	}

	known := make(map[string]bool, len(cached.EntryIDs))
	for _, id := range cached.EntryIDs {
		known[id] = true
	}

	// Partition the fresh entries
	var genuinelyNew []domain.Entry
	freshSeen := make(map[string]domain.Entry)
	var seenOrder []string
	taken := make(map[string]bool)
	for _, e := range merged.Entries {
		id := EntryIdentity(&e)
		if taken[id] {
			continue
		}
		taken[id] = true
		if known[id] {
			freshSeen[id] = e
			seenOrder = append(seenOrder, id)
		} else {
			genuinelyNew = append(genuinelyNew, e)
		}
	}

	result := make([]domain.Entry, 0, len(genuinelyNew)+len(cached.Feed.Entries))
	result = append(result, genuinelyNew...)

	placed := make(map[string]bool, len(cached.Feed.Entries))
	for _, e := range cached.Feed.Entries {
		id := EntryIdentity(&e)
		if placed[id] || taken[id] && !known[id] {
			continue
		}
		placed[id] = true
		if fe, ok := freshSeen[id]; ok {
			result = append(result, fe)
			continue
		}
		result = append(result, e.Clone())
	}

	// Seen identities whose entry fell out of the snapshot
	for _, id := range seenOrder {
		if !placed[id] {
			placed[id] = true
			result = append(result, freshSeen[id])
		}
	}

	merged.Entries = result
	return capEntries(merged, EntryIdentities(result), len(fresh.Entries), maxEntries)
}

func dedupe(entries []domain.Entry) []domain.Entry {
	if entries == nil {
		return nil
	}
	out := make([]domain.Entry, 0, len(entries))
	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		id := EntryIdentity(&e)
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, e)
	}
	return out
}

func capEntries(feed *domain.Feed, ids []string, freshCount, maxEntries int) (*domain.Feed, []string) {
	limit := maxEntries
	if freshCount > limit {
		limit = freshCount
	}
	if len(feed.Entries) > limit {
		feed.Entries = feed.Entries[:limit]
	}
	if len(ids) > limit {
		ids = ids[:limit]
	}
	return feed, ids
}
