package fetcher

import (
	"fmt"
	"sync"

	"feedfetcher/core/domain"
	"feedfetcher/core/interfaces"
)

// listenerRegistry delivers events to listeners in registration order
type listenerRegistry struct {
	mu      sync.RWMutex
	nextID  uint64
	entries []registeredListener
}

type registeredListener struct {
	id       uint64
	listener interfaces.Listener
}

// add registers l and returns a function that unregisters it
func (r *listenerRegistry) add(l interfaces.Listener) func() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	id := r.nextID
	r.entries = append(r.entries, registeredListener{id: id, listener: l})

	var once sync.Once
	return func() {
		once.Do(func() { r.remove(id) })
	}
}

func (r *listenerRegistry) remove(id uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, e := range r.entries {
		if e.id == id {
			r.entries = append(r.entries[:i:i], r.entries[i+1:]...)
			return
		}
	}
}

func (r *listenerRegistry) snapshot() []interfaces.Listener {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]interfaces.Listener, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.listener
	}
	return out
}

// fire calls every listener synchronously. A panicking listener is logged
// and skipped.
func (r *listenerRegistry) fire(event domain.FetchEvent, logger interfaces.Logger) {
	for _, l := range r.snapshot() {
		if err := deliver(l, event); err != nil {
			logger.Error("Fetch listener failed", map[string]interface{}{
				"event": string(event.Type),
				"url":   event.URL,
				"error": err.Error(),
			})
		}
	}
}

func deliver(l interfaces.Listener, event domain.FetchEvent) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("listener panic: %v", rec)
		}
	}()
	l.OnFetchEvent(event)
	return nil
}
