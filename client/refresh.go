package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"

	clienterrors "github.com/campushq/go-placement-client/internal/errors"
)

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type refreshResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// refreshResult is delivered to every request waiting on a refresh.
type refreshResult struct {
	token string
	err   error
}

// awaitRefresh coordinates the single in-flight refresh. The first
// caller performs the refresh; callers arriving while it runs are
// queued FIFO and woken with the shared result once it settles.
// initiated reports whether this caller ran the refresh itself.
func (c *SessionClient) awaitRefresh(ctx context.Context) (initiated bool, err error) {
	c.mu.Lock()
	if c.refreshing {
		waiter := make(chan refreshResult, 1)
		c.waiters = append(c.waiters, waiter)
		c.mu.Unlock()

		select {
		case res := <-waiter:
			return false, res.err
		case <-ctx.Done():
			return false, ctx.Err()
		}
	}
	c.refreshing = true
	c.mu.Unlock()

	res := c.refresh(ctx)

	// Settle: wake every queued request exactly once, in enqueue order.
	c.mu.Lock()
	waiters := c.waiters
	c.waiters = nil
	c.refreshing = false
	c.mu.Unlock()

	for _, waiter := range waiters {
		waiter <- res
	}
	return true, res.err
}

// refresh exchanges the stored refresh token for a new token pair. On
// any failure the session is cleared: there is no way back from a dead
// refresh token other than logging in again.
func (c *SessionClient) refresh(ctx context.Context) refreshResult {
	refreshToken := c.store.RefreshToken()
	if refreshToken == "" {
		c.store.Clear()
		return refreshResult{err: clienterrors.ErrNoRefreshToken}
	}

	// The refresh outcome is shared by every queued request, so it must
	// not die with the initiating request's context. Bounded so a hung
	// backend cannot hold the queue forever.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.refreshTimeout)
	defer cancel()

	payload, err := json.Marshal(refreshRequest{RefreshToken: refreshToken})
	if err != nil {
		return refreshResult{err: errors.Wrap(err, "[SessionClient.refresh] marshal")}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+RefreshPath, bytes.NewReader(payload))
	if err != nil {
		return refreshResult{err: errors.Wrap(err, "[SessionClient.refresh] build request")}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	started := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.store.Clear()
		return refreshResult{err: errors.Wrap(clienterrors.ErrRefreshFailed, err.Error())}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.store.Clear()
		return refreshResult{err: errors.Wrap(clienterrors.ErrRefreshFailed, err.Error())}
	}

	if resp.StatusCode != http.StatusOK {
		c.store.Clear()
		return refreshResult{err: errors.Wrapf(clienterrors.ErrRefreshFailed, "status %d", resp.StatusCode)}
	}

	var tokens refreshResponse
	if err := json.Unmarshal(body, &tokens); err != nil {
		c.store.Clear()
		return refreshResult{err: errors.Wrap(clienterrors.ErrRefreshFailed, err.Error())}
	}
	if tokens.AccessToken == "" {
		c.store.Clear()
		return refreshResult{err: errors.Wrap(clienterrors.ErrRefreshFailed, "empty access token")}
	}

	// No identity options here: the refresh response carries no user id
	// or role and must not erase the stored ones.
	if err := c.store.SetTokens(tokens.AccessToken, tokens.RefreshToken); err != nil {
		return refreshResult{err: errors.Wrap(err, "[SessionClient.refresh] store tokens")}
	}

	c.log.Debug().Dur("took", time.Since(started)).Msg("access token refreshed")
	return refreshResult{token: tokens.AccessToken}
}
