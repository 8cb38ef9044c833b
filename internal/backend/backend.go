package backend

import (
	"net/url"
	"sync"
)

// Backend is one worker replica in the routable pool. Readiness comes from
// the cluster controller's discovery data, not from in-process probing, so
// entries are stale by at most one pool refresh interval.
type Backend struct {
	url   *url.URL
	mutex sync.Mutex
	ready bool
}

// New creates a Backend for the given endpoint URL.
func New(url *url.URL, ready bool) *Backend {
	return &Backend{
		url:   url,
		ready: ready,
	}
}

// URL returns the backend's endpoint URL.
func (b *Backend) URL() *url.URL {
	return b.url
}

// Ready returns true if the backend is currently routable.
func (b *Backend) Ready() bool {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return b.ready
}

// SetReady updates readiness. Returns true if the status changed, false if
// it was already in that state.
func (b *Backend) SetReady(ready bool) (changed bool) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	if b.ready == ready {
		return false
	}

	b.ready = ready
	return true
}
