package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"

	clienterrors "github.com/campushq/go-placement-client/internal/errors"
)

// TokenClaims is the client-side view of the stored access token's
// claims. The client never verifies the signature; it only needs the
// timing and identity fields for display and for deciding whether a
// token is already past its expiry.
type TokenClaims struct {
	Subject   string
	Role      string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Expired reports whether the token expiry has passed at the given time.
func (c TokenClaims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}

// Claims parses the stored access token without verification and
// returns its claims. Returns ErrNoAccessToken when no token is held.
func (s *Store) Claims() (*TokenClaims, error) {
	raw := s.AccessToken()
	if raw == "" {
		return nil, clienterrors.ErrNoAccessToken
	}

	token, _, err := jwt.NewParser().ParseUnverified(raw, jwt.MapClaims{})
	if err != nil {
		return nil, errors.Wrap(clienterrors.ErrMalformedToken, err.Error())
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.Wrap(clienterrors.ErrMalformedToken, "[Store.Claims] extracting claims")
	}

	claims := &TokenClaims{}
	claims.Subject, _ = mapClaims["sub"].(string)
	claims.Role, _ = mapClaims["role"].(string)
	if iat, ok := mapClaims["iat"].(float64); ok {
		claims.IssuedAt = time.Unix(int64(iat), 0)
	}
	if exp, ok := mapClaims["exp"].(float64); ok {
		claims.ExpiresAt = time.Unix(int64(exp), 0)
	}
	return claims, nil
}
