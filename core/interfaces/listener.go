package interfaces

import "feedfetcher/core/domain"

// Listener receives fetch events synchronously on the fetching goroutine
type Listener interface {
	OnFetchEvent(event domain.FetchEvent)
}

// ListenerFunc adapts a function to the Listener interface
type ListenerFunc func(event domain.FetchEvent)

// OnFetchEvent calls f(event)
func (f ListenerFunc) OnFetchEvent(event domain.FetchEvent) {
	f(event)
}
