// Package portal assembles the session store, HTTP client, user cache
// and auth service into one wired unit, the way an embedding UI or the
// portalctl CLI consumes the library.
package portal

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/campushq/go-placement-client/auth"
	"github.com/campushq/go-placement-client/client"
	"github.com/campushq/go-placement-client/internal/config"
	"github.com/campushq/go-placement-client/session"
	"github.com/campushq/go-placement-client/usercache"
)

// Portal is the fully wired client stack.
type Portal struct {
	Store  *session.Store
	Client *client.SessionClient
	Cache  *usercache.Cache
	Auth   *auth.Service
}

type settings struct {
	log       zerolog.Logger
	storage   session.Storage
	navigator session.Navigator
}

// Option configures the assembled Portal.
type Option func(*settings)

// WithLogger sets the logger shared by every component.
func WithLogger(log zerolog.Logger) Option {
	return func(s *settings) {
		s.log = log
	}
}

// WithStorage overrides the file-backed session storage.
func WithStorage(storage session.Storage) Option {
	return func(s *settings) {
		s.storage = storage
	}
}

// WithNavigator wires the navigation surface used on terminal logout.
func WithNavigator(nav session.Navigator) Option {
	return func(s *settings) {
		s.navigator = nav
	}
}

// New builds a Portal from configuration. Wiring: clearing the session
// also clears the cache; successful profile mutations trigger a
// background cache refetch.
func New(cfg config.Config, options ...Option) (*Portal, error) {
	s := &settings{log: zerolog.Nop()}
	for _, opt := range options {
		opt(s)
	}
	if s.storage == nil {
		s.storage = session.NewFileStorage(cfg.GetTokenFile())
	}

	refreshTimeout, err := time.ParseDuration(cfg.GetRefreshTimeout())
	if err != nil {
		return nil, errors.Wrapf(err, "[portal.New] invalid refresh timeout %q", cfg.GetRefreshTimeout())
	}

	// The cache does not exist yet when the store and client are built,
	// so their hooks close over the variable and bind late.
	var cache *usercache.Cache

	storeOptions := []session.StoreOption{
		session.WithOnClear(func() {
			if cache != nil {
				cache.Clear()
			}
		}),
	}
	if s.navigator != nil {
		storeOptions = append(storeOptions, session.WithNavigator(s.navigator, cfg.GetLoginPath()))
	}
	store, err := session.NewStore(s.storage, storeOptions...)
	if err != nil {
		return nil, errors.Wrap(err, "[portal.New] session store")
	}

	sessionClient, err := client.New(cfg.GetBaseURL(), store,
		client.WithLogger(s.log),
		client.WithRefreshTimeout(refreshTimeout),
		client.WithInvalidationPaths(cfg.GetInvalidationPaths()),
		client.WithInvalidator(func(ctx context.Context) error {
			if cache == nil {
				return nil
			}
			_, err := cache.InvalidateAndRefetch(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, errors.Wrap(err, "[portal.New] session client")
	}

	cache, err = usercache.New(sessionClient, store, usercache.WithLogger(s.log))
	if err != nil {
		return nil, errors.Wrap(err, "[portal.New] user cache")
	}

	authService, err := auth.NewService(sessionClient, store, auth.WithLogger(s.log))
	if err != nil {
		return nil, errors.Wrap(err, "[portal.New] auth service")
	}

	return &Portal{
		Store:  store,
		Client: sessionClient,
		Cache:  cache,
		Auth:   authService,
	}, nil
}
