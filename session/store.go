// Package session owns the client-side credentials for the current
// portal session: access and refresh tokens, the signed-in user's id
// and role, and the logged-in flag. All state lives behind a Storage
// backend so it survives process restarts the way browser storage
// survives page reloads.
package session

import (
	"sync"

	"github.com/pkg/errors"
)

// Persisted storage keys.
const (
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
	KeyUserID       = "user_id"
	KeyRoleType     = "role_type"
	KeyLoggedIn     = "isLoggedIn"

	// Preserved across Clear: cross-session preferences.
	KeyTheme   = "theme"
	KeyMessage = "message"
)

var sessionKeys = []string{KeyAccessToken, KeyRefreshToken, KeyUserID, KeyRoleType, KeyLoggedIn}

// Navigator abstracts the navigation surface so a terminal session
// clear can force the user back to the login view. In the CLI this is
// a no-op shim; a UI embedding supplies a real implementation.
type Navigator interface {
	CurrentPath() string
	Navigate(path string)
}

// Store is the single source of truth for session credentials.
// The HTTP layer reads and writes tokens only through these accessors.
type Store struct {
	mu        sync.Mutex
	storage   Storage
	navigator Navigator
	loginPath string
	onClear   []func()
}

// StoreOption configures optional Store behaviour.
type StoreOption func(*Store)

// WithNavigator wires a navigation surface; Clear redirects to
// loginPath unless the current view already is the login surface.
func WithNavigator(nav Navigator, loginPath string) StoreOption {
	return func(s *Store) {
		s.navigator = nav
		s.loginPath = loginPath
	}
}

// WithOnClear registers a hook run whenever the session is cleared.
// The user cache registers itself here so logout empties both.
func WithOnClear(hook func()) StoreOption {
	return func(s *Store) {
		s.onClear = append(s.onClear, hook)
	}
}

// NewStore creates a Store over the given storage backend.
func NewStore(storage Storage, options ...StoreOption) (*Store, error) {
	if storage == nil {
		return nil, errors.New("[NewStore] storage is required")
	}
	s := &Store{storage: storage, loginPath: "/login"}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

// AccessToken returns the stored access token, or "" if absent.
func (s *Store) AccessToken() string {
	v, _ := s.storage.Get(KeyAccessToken)
	return v
}

// RefreshToken returns the stored refresh token, or "" if absent.
func (s *Store) RefreshToken() string {
	v, _ := s.storage.Get(KeyRefreshToken)
	return v
}

// UserID returns the signed-in user's id, or "" if absent.
func (s *Store) UserID() string {
	v, _ := s.storage.Get(KeyUserID)
	return v
}

// RoleType returns the signed-in user's role, or "" if absent.
func (s *Store) RoleType() string {
	v, _ := s.storage.Get(KeyRoleType)
	return v
}

// LoggedIn reports whether a session is currently marked active.
func (s *Store) LoggedIn() bool {
	v, _ := s.storage.Get(KeyLoggedIn)
	return v == "true"
}

// TokenOption adds optional fields to SetTokens.
type TokenOption func(*tokenUpdate)

type tokenUpdate struct {
	userID   string
	roleType string
}

// WithIdentity also records the user id and role. Login responses carry
// identity; refresh responses do not, and must not erase it.
func WithIdentity(userID, roleType string) TokenOption {
	return func(u *tokenUpdate) {
		u.userID = userID
		u.roleType = roleType
	}
}

// SetTokens overwrites the access and refresh tokens and marks the
// session logged in. Identity fields are only touched when provided.
func (s *Store) SetTokens(accessToken, refreshToken string, options ...TokenOption) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	update := &tokenUpdate{}
	for _, opt := range options {
		opt(update)
	}

	if err := s.storage.Set(KeyAccessToken, accessToken); err != nil {
		return errors.Wrap(err, "[Store.SetTokens] access token")
	}
	if err := s.storage.Set(KeyRefreshToken, refreshToken); err != nil {
		return errors.Wrap(err, "[Store.SetTokens] refresh token")
	}
	if update.userID != "" {
		if err := s.storage.Set(KeyUserID, update.userID); err != nil {
			return errors.Wrap(err, "[Store.SetTokens] user id")
		}
	}
	if update.roleType != "" {
		if err := s.storage.Set(KeyRoleType, update.roleType); err != nil {
			return errors.Wrap(err, "[Store.SetTokens] role type")
		}
	}
	if err := s.storage.Set(KeyLoggedIn, "true"); err != nil {
		return errors.Wrap(err, "[Store.SetTokens] logged in flag")
	}
	return nil
}

// SetPreference stores one of the cross-session preference keys.
func (s *Store) SetPreference(key, value string) error {
	if key != KeyTheme && key != KeyMessage {
		return errors.Errorf("[Store.SetPreference] %q is not a preference key", key)
	}
	return s.storage.Set(key, value)
}

// Preference reads one of the cross-session preference keys.
func (s *Store) Preference(key string) string {
	v, _ := s.storage.Get(key)
	return v
}

// Clear wipes the session keys, leaving theme and message untouched,
// then runs the registered on-clear hooks. If a navigator is wired and
// the user is not already on the login surface, it forces navigation
// there.
func (s *Store) Clear() {
	s.mu.Lock()
	for _, key := range sessionKeys {
		_ = s.storage.Delete(key)
	}
	hooks := s.onClear
	s.mu.Unlock()

	for _, hook := range hooks {
		hook()
	}

	if s.navigator != nil && s.navigator.CurrentPath() != s.loginPath {
		s.navigator.Navigate(s.loginPath)
	}
}
