package errors

import (
	"errors"
	"fmt"
)

// Common error types for the placement portal client
var (
	// Authentication errors
	ErrUnauthenticated    = errors.New("not authenticated")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnknownRole        = errors.New("unknown role")

	// Token errors
	ErrNoAccessToken  = errors.New("no access token")
	ErrNoRefreshToken = errors.New("no refresh token")
	ErrRefreshFailed  = errors.New("token refresh failed")
	ErrSessionExpired = errors.New("session expired")
	ErrMalformedToken = errors.New("malformed token")
	ErrRequestRetried = errors.New("request already retried")
	ErrUnauthorized   = errors.New("unauthorized")

	// User data errors
	ErrValidationFailed = errors.New("user data failed validation")
	ErrNoUserID         = errors.New("no user id in session")

	// General errors
	ErrNotFound    = errors.New("not found")
	ErrInternal    = errors.New("internal error")
	ErrUnsupported = errors.New("unsupported operation")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
