// Package auth implements login and logout against the portal backend
// and the role-to-dashboard mapping applied after a successful login.
package auth

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/campushq/go-placement-client/client"
	"github.com/campushq/go-placement-client/session"
)

const (
	loginPath  = "/auth/login"
	logoutPath = "/auth/logout"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	UserID       string `json:"user_id"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	RoleType     string `json:"role_type"`
}

type logoutRequest struct {
	JWTToken string `json:"jwt_token"`
}

// LoginResult is what the UI needs after a successful login.
type LoginResult struct {
	UserID      string
	Role        RoleType
	LandingPath string
}

// Service drives the session lifecycle: login stores credentials,
// logout tears them down.
type Service struct {
	client *client.SessionClient
	store  *session.Store
	log    zerolog.Logger
}

// ServiceOption configures optional Service behaviour.
type ServiceOption func(*Service)

// WithLogger sets the service logger.
func WithLogger(log zerolog.Logger) ServiceOption {
	return func(s *Service) {
		s.log = log
	}
}

// NewService creates an auth Service.
func NewService(sessionClient *client.SessionClient, store *session.Store, options ...ServiceOption) (*Service, error) {
	if sessionClient == nil {
		return nil, errors.New("[auth.NewService] session client is required")
	}
	if store == nil {
		return nil, errors.New("[auth.NewService] session store is required")
	}
	s := &Service{client: sessionClient, store: store, log: zerolog.Nop()}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

// Login exchanges credentials for a token pair, persists the session
// and resolves the role's landing path.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	var resp loginResponse
	if err := s.client.Post(ctx, loginPath, loginRequest{Email: email, Password: password}, &resp); err != nil {
		return nil, errors.Wrap(err, "[Service.Login] login request")
	}

	landing, err := LandingPath(RoleType(resp.RoleType))
	if err != nil {
		return nil, errors.Wrap(err, "[Service.Login] resolving landing path")
	}

	if err := s.store.SetTokens(resp.AccessToken, resp.RefreshToken,
		session.WithIdentity(resp.UserID, resp.RoleType)); err != nil {
		return nil, errors.Wrap(err, "[Service.Login] storing tokens")
	}

	s.log.Info().Str("user_id", resp.UserID).Str("role", resp.RoleType).Msg("logged in")
	return &LoginResult{
		UserID:      resp.UserID,
		Role:        RoleType(resp.RoleType),
		LandingPath: landing,
	}, nil
}

// Logout tells the backend the session is over, then clears local
// state. The backend call is best effort: a failure there never blocks
// the local clear.
func (s *Service) Logout(ctx context.Context) error {
	token := s.store.AccessToken()
	if token != "" {
		if err := s.client.Post(ctx, logoutPath, logoutRequest{JWTToken: token}, nil); err != nil {
			s.log.Warn().Err(err).Msg("backend logout failed, clearing local session anyway")
		}
	}
	s.store.Clear()
	return nil
}
