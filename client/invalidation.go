package client

import (
	"context"
	"net/http"
	"strings"
)

var mutatingMethods = map[string]bool{
	http.MethodPost:   true,
	http.MethodPut:    true,
	http.MethodPatch:  true,
	http.MethodDelete: true,
}

// maybeInvalidate spawns a background cache refetch after a successful
// mutation of a watched resource. Fire and forget: a failed refetch is
// logged and never surfaced to the request that triggered it.
func (c *SessionClient) maybeInvalidate(method, path string) {
	if c.invalidate == nil || !mutatingMethods[method] {
		return
	}
	if !c.matchesInvalidationPath(path) {
		return
	}

	go func() {
		defer func() {
			if r := recover(); r != nil {
				c.log.Error().Interface("panic", r).Str("path", path).Msg("cache invalidation panicked")
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), defaultInvalidateTimeout)
		defer cancel()

		if err := c.invalidate(ctx); err != nil {
			c.log.Error().Err(err).Str("path", path).Msg("background cache refetch failed")
			return
		}
		c.log.Debug().Str("path", path).Msg("user cache refetched after mutation")
	}()
}

func (c *SessionClient) matchesInvalidationPath(path string) bool {
	for _, prefix := range c.invalidationPaths {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
