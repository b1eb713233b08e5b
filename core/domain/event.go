// ABOUTME: Fetch events delivered to listeners while a feed is retrieved
// ABOUTME: Event kinds are POLLED, RETRIEVED and UNCHANGED

package domain

// EventType identifies what happened during a fetch
type EventType string

const (
	// EventPolled fires once a terminal response for the feed was received
	EventPolled EventType = "POLLED"

	// EventRetrieved fires after a full retrieval was parsed
	EventRetrieved EventType = "RETRIEVED"

	// EventUnchanged fires when the server reported the feed as not modified
	EventUnchanged EventType = "UNCHANGED"
)

// FetchEvent is passed to every registered listener
type FetchEvent struct {
	Type EventType

	// URL is the URL the caller asked for
	URL string

	// Feed is set for RETRIEVED and UNCHANGED events
	Feed *Feed
}
