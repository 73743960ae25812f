// Package usercache holds the one shared snapshot of the signed-in
// user's profile document. Independent consumers subscribe to it
// instead of fetching their own copies, so mounting several views at
// once costs a single backend call.
package usercache

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	clienterrors "github.com/campushq/go-placement-client/internal/errors"
	"github.com/campushq/go-placement-client/userdata"
)

// Fetcher reads a user's profile document from the backend.
// *client.SessionClient satisfies it.
type Fetcher interface {
	FetchUserData(ctx context.Context, userID string) (*userdata.Document, error)
}

// SessionReader is the slice of the session store the cache needs.
type SessionReader interface {
	AccessToken() string
	UserID() string
}

// Listener is notified on every replacement of the cached document,
// including the nil replacement on clear.
type Listener func(*userdata.Document)

// Cache is the observable user-data snapshot.
type Cache struct {
	fetcher Fetcher
	sess    SessionReader
	log     zerolog.Logger

	mu          sync.RWMutex
	doc         *userdata.Document
	fetching    bool
	subscribers map[int]Listener
	nextSubID   int

	group singleflight.Group
}

// CacheOption configures optional Cache behaviour.
type CacheOption func(*Cache)

// WithLogger sets the cache logger.
func WithLogger(log zerolog.Logger) CacheOption {
	return func(c *Cache) {
		c.log = log
	}
}

// New creates a Cache backed by the given fetcher and session reader.
func New(fetcher Fetcher, sess SessionReader, options ...CacheOption) (*Cache, error) {
	if fetcher == nil {
		return nil, errors.New("[usercache.New] fetcher is required")
	}
	if sess == nil {
		return nil, errors.New("[usercache.New] session reader is required")
	}
	c := &Cache{
		fetcher:     fetcher,
		sess:        sess,
		log:         zerolog.Nop(),
		subscribers: make(map[int]Listener),
	}
	for _, opt := range options {
		opt(c)
	}
	return c, nil
}

// Get returns the current document, or nil. Never blocks on a fetch.
func (c *Cache) Get() *userdata.Document {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.doc
}

// Set replaces the document wholesale and synchronously notifies every
// subscriber. nil clears the cache.
func (c *Cache) Set(doc *userdata.Document) {
	c.mu.Lock()
	c.doc = doc
	listeners := make([]Listener, 0, len(c.subscribers))
	for _, l := range c.subscribers {
		listeners = append(listeners, l)
	}
	c.mu.Unlock()

	for _, l := range listeners {
		l(doc)
	}
}

// Clear empties the cache and notifies subscribers. Wired into the
// session store's on-clear hooks so logout empties both.
func (c *Cache) Clear() {
	c.Set(nil)
}

// HasData reports whether a document is currently cached.
func (c *Cache) HasData() bool {
	return c.Get() != nil
}

// IsFetching reports whether a fetch is currently in flight.
func (c *Cache) IsFetching() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.fetching
}

// Subscribe registers a listener and returns its unsubscribe function.
func (c *Cache) Subscribe(listener Listener) func() {
	c.mu.Lock()
	id := c.nextSubID
	c.nextSubID++
	c.subscribers[id] = listener
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.subscribers, id)
		c.mu.Unlock()
	}
}

// FetchAndCache loads the user document, validates it and stores it.
// Concurrent callers coalesce onto a single backend call and all
// receive the same resolved document. On failure the cache keeps its
// previous value (stale or nil) and the error is returned.
func (c *Cache) FetchAndCache(ctx context.Context) (*userdata.Document, error) {
	userID := c.sess.UserID()
	if userID == "" {
		return nil, errors.Wrap(clienterrors.ErrUnauthenticated, "[Cache.FetchAndCache] no user id in session")
	}

	v, err, shared := c.group.Do(userID, func() (interface{}, error) {
		c.setFetching(true)
		defer c.setFetching(false)

		doc, err := c.fetcher.FetchUserData(ctx, userID)
		if err != nil {
			return nil, errors.Wrap(err, "[Cache.FetchAndCache] fetch")
		}
		if err := userdata.Validate(doc); err != nil {
			return nil, err
		}
		c.Set(doc)
		return doc, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		c.log.Debug().Str("user_id", userID).Msg("coalesced concurrent user data fetch")
	}
	return v.(*userdata.Document), nil
}

// InvalidateAndRefetch clears the cache then fetches fresh data.
// Subscribers observe a transient nil followed by the new document, or
// stay nil if the refetch fails.
func (c *Cache) InvalidateAndRefetch(ctx context.Context) (*userdata.Document, error) {
	c.Clear()
	return c.FetchAndCache(ctx)
}

func (c *Cache) setFetching(fetching bool) {
	c.mu.Lock()
	c.fetching = fetching
	c.mu.Unlock()
}
