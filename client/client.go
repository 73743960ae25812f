// Package client implements the authenticated HTTP pipeline for the
// placement portal backend. Every outbound call gets the stored access
// token attached; a 401 triggers at most one coordinated token refresh
// with queued replay of concurrent requests; successful mutations to
// profile resources kick off a background refetch of the cached user
// document.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	clienterrors "github.com/campushq/go-placement-client/internal/errors"
	"github.com/campushq/go-placement-client/session"
)

const (
	defaultRefreshTimeout    = 10 * time.Second
	defaultInvalidateTimeout = 30 * time.Second

	// RefreshPath is the token refresh endpoint. A 401 from this path is
	// terminal: the session is cleared rather than refreshed again.
	RefreshPath = "/auth/refresh"
)

// Doer executes a single HTTP request. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Invalidator is called after a successful mutation of a profile
// resource so cached reads observe fresh data.
type Invalidator func(ctx context.Context) error

// SessionClient wraps all portal API calls with auth-header injection,
// 401 recovery and post-mutation cache invalidation.
type SessionClient struct {
	httpClient        Doer
	baseURL           string
	store             *session.Store
	log               zerolog.Logger
	refreshTimeout    time.Duration
	invalidationPaths []string
	invalidate        Invalidator

	mu         sync.Mutex
	refreshing bool
	waiters    []chan refreshResult
}

// Option configures a SessionClient.
type Option func(*SessionClient)

// WithHTTPClient replaces the underlying HTTP doer.
func WithHTTPClient(doer Doer) Option {
	return func(c *SessionClient) {
		c.httpClient = doer
	}
}

// WithLogger sets the client logger.
func WithLogger(log zerolog.Logger) Option {
	return func(c *SessionClient) {
		c.log = log
	}
}

// WithRefreshTimeout bounds a token refresh call. A refresh that
// overruns is treated as failed so queued requests are never stuck
// behind a hung backend.
func WithRefreshTimeout(timeout time.Duration) Option {
	return func(c *SessionClient) {
		c.refreshTimeout = timeout
	}
}

// WithInvalidationPaths sets the path prefixes whose successful
// mutation triggers a background cache refetch.
func WithInvalidationPaths(paths []string) Option {
	return func(c *SessionClient) {
		c.invalidationPaths = paths
	}
}

// WithInvalidator wires the cache refetch run after a matched mutation.
func WithInvalidator(invalidate Invalidator) Option {
	return func(c *SessionClient) {
		c.invalidate = invalidate
	}
}

// New creates a SessionClient for the given backend base URL. The
// default underlying transport retries network flake and 5xx responses;
// 401 handling never lives there, it is this client's job.
func New(baseURL string, store *session.Store, options ...Option) (*SessionClient, error) {
	if baseURL == "" {
		return nil, errors.New("[client.New] baseURL is required")
	}
	if store == nil {
		return nil, errors.New("[client.New] session store is required")
	}

	c := &SessionClient{
		baseURL:        strings.TrimRight(baseURL, "/"),
		store:          store,
		log:            zerolog.Nop(),
		refreshTimeout: defaultRefreshTimeout,
	}
	for _, opt := range options {
		opt(c)
	}

	if c.httpClient == nil {
		rc := retryablehttp.NewClient()
		rc.Logger = nil
		rc.RetryMax = 2
		c.httpClient = rc.StandardClient()
	}
	return c, nil
}

// APIError is a non-2xx backend response.
type APIError struct {
	StatusCode int
	Method     string
	Path       string
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.StatusCode)
}

// Unwrap maps a 401 onto the ErrUnauthorized sentinel so callers can
// use errors.Is without inspecting status codes.
func (e *APIError) Unwrap() error {
	if e.StatusCode == http.StatusUnauthorized {
		return clienterrors.ErrUnauthorized
	}
	return nil
}

// request carries one logical API call through the pipeline, including
// the already-retried marker that stops a second refresh cycle.
type request struct {
	method  string
	path    string
	payload []byte
	retried bool
}

// Do performs an API call. body (if non-nil) is sent as JSON; out (if
// non-nil) receives the decoded JSON response.
func (c *SessionClient) Do(ctx context.Context, method, path string, body, out interface{}) error {
	req := &request{method: method, path: path}
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "[SessionClient.Do] marshal body")
		}
		req.payload = payload
	}

	data, err := c.send(ctx, req)
	if err != nil {
		return err
	}
	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return errors.Wrapf(err, "[SessionClient.Do] decode %s %s response", method, path)
		}
	}
	return nil
}

// Get issues an authenticated GET.
func (c *SessionClient) Get(ctx context.Context, path string, out interface{}) error {
	return c.Do(ctx, http.MethodGet, path, nil, out)
}

// Post issues an authenticated POST with a JSON body.
func (c *SessionClient) Post(ctx context.Context, path string, body, out interface{}) error {
	return c.Do(ctx, http.MethodPost, path, body, out)
}

// Put issues an authenticated PUT with a JSON body.
func (c *SessionClient) Put(ctx context.Context, path string, body, out interface{}) error {
	return c.Do(ctx, http.MethodPut, path, body, out)
}

// Patch issues an authenticated PATCH with a JSON body.
func (c *SessionClient) Patch(ctx context.Context, path string, body, out interface{}) error {
	return c.Do(ctx, http.MethodPatch, path, body, out)
}

// Delete issues an authenticated DELETE.
func (c *SessionClient) Delete(ctx context.Context, path string, out interface{}) error {
	return c.Do(ctx, http.MethodDelete, path, nil, out)
}

// send runs one attempt of a request plus, on a first 401, the refresh
// and replay protocol.
func (c *SessionClient) send(ctx context.Context, req *request) ([]byte, error) {
	httpReq, err := c.newHTTPRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, errors.Wrapf(err, "[SessionClient.send] %s %s", req.method, req.path)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "[SessionClient.send] read %s %s response", req.method, req.path)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		c.maybeInvalidate(req.method, req.path)
		return data, nil
	}

	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		Method:     req.method,
		Path:       req.path,
		Body:       string(data),
	}

	if resp.StatusCode != http.StatusUnauthorized {
		return nil, apiErr
	}
	return c.handleUnauthorized(ctx, req, apiErr)
}

func (c *SessionClient) newHTTPRequest(ctx context.Context, req *request) (*http.Request, error) {
	var body io.Reader
	if req.payload != nil {
		body = bytes.NewReader(req.payload)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.method, c.baseURL+req.path, body)
	if err != nil {
		return nil, errors.Wrapf(err, "[SessionClient] build %s %s", req.method, req.path)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", uuid.New().String())
	if req.payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if token := c.store.AccessToken(); token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}
	return httpReq, nil
}

// handleUnauthorized runs the 401 recovery protocol: terminal cases
// propagate (and clear the session where required); recoverable ones
// wait for the single in-flight refresh, then replay once.
func (c *SessionClient) handleUnauthorized(ctx context.Context, req *request, apiErr *APIError) ([]byte, error) {
	// A replayed request that fails again is terminal.
	if req.retried {
		return nil, errors.Wrap(apiErr, "request already retried after refresh")
	}

	// A 401 from the refresh endpoint itself ends the session.
	if req.path == RefreshPath {
		c.store.Clear()
		return nil, apiErr
	}

	req.retried = true
	initiated, err := c.awaitRefresh(ctx)
	if err != nil {
		c.log.Debug().Err(err).Str("path", req.path).Msg("token refresh failed")
		if initiated {
			// The request that triggered the refresh surfaces its own
			// original failure.
			return nil, apiErr
		}
		// Queued requests are rejected with the refresh error.
		return nil, errors.Wrapf(err, "[SessionClient] %s %s rejected", req.method, req.path)
	}

	c.log.Debug().Str("path", req.path).Msg("replaying request after token refresh")
	return c.send(ctx, req)
}
