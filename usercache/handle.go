package usercache

import (
	"context"
	"sync"

	"github.com/campushq/go-placement-client/userdata"
)

// Handle is a consumer's view of the cache, the equivalent of mounting
// a component that needs user data. Creating one subscribes to the
// cache and, when the cache is empty and idle, triggers the initial
// fetch. Close unsubscribes.
type Handle struct {
	cache *Cache

	mu          sync.Mutex
	doc         *userdata.Document
	loading     bool
	unsubscribe func()
}

// NewHandle attaches a consumer to the cache. With no access token the
// handle reports a nil document and no loading, without touching the
// backend.
func (c *Cache) NewHandle(ctx context.Context) *Handle {
	h := &Handle{cache: c}
	if c.sess.AccessToken() == "" {
		return h
	}

	h.unsubscribe = c.Subscribe(func(doc *userdata.Document) {
		h.mu.Lock()
		h.doc = doc
		h.loading = false
		h.mu.Unlock()
	})

	h.mu.Lock()
	h.doc = c.Get()
	needsFetch := h.doc == nil && !c.IsFetching()
	h.loading = needsFetch
	h.mu.Unlock()

	if needsFetch {
		go func() {
			if _, err := c.FetchAndCache(ctx); err != nil {
				c.log.Error().Err(err).Msg("initial user data fetch failed")
				h.mu.Lock()
				h.loading = false
				h.mu.Unlock()
			}
		}()
	}
	return h
}

// Document returns the handle's current view of the user document.
func (h *Handle) Document() *userdata.Document {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.doc
}

// Loading reports whether the initial fetch is still outstanding.
func (h *Handle) Loading() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.loading
}

// Refetch forces an invalidate-and-refetch through the shared cache.
func (h *Handle) Refetch(ctx context.Context) error {
	_, err := h.cache.InvalidateAndRefetch(ctx)
	return err
}

// Close detaches the handle from the cache.
func (h *Handle) Close() {
	h.mu.Lock()
	unsubscribe := h.unsubscribe
	h.unsubscribe = nil
	h.mu.Unlock()
	if unsubscribe != nil {
		unsubscribe()
	}
}
