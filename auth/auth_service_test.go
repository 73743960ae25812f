package auth_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/campushq/go-placement-client/auth"
	"github.com/campushq/go-placement-client/client"
	clienterrors "github.com/campushq/go-placement-client/internal/errors"
	"github.com/campushq/go-placement-client/session"
)

const (
	testEmail    = "asha.rao@example.edu"
	testPassword = "password123"
	testUserID   = "user-42"
)

type authFixture struct {
	server  *httptest.Server
	store   *session.Store
	service *auth.Service
	cleared atomic.Int32
}

func newAuthFixture(t *testing.T, handler http.Handler) *authFixture {
	t.Helper()

	f := &authFixture{}
	f.server = httptest.NewServer(handler)
	t.Cleanup(f.server.Close)

	store, err := session.NewStore(session.NewMemoryStorage(),
		session.WithOnClear(func() { f.cleared.Add(1) }))
	require.NoError(t, err)
	f.store = store

	c, err := client.New(f.server.URL, store, client.WithHTTPClient(f.server.Client()))
	require.NoError(t, err)

	service, err := auth.NewService(c, store)
	require.NoError(t, err)
	f.service = service
	return f
}

func loginHandler(roleType string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/login" {
			http.NotFound(w, r)
			return
		}
		var creds struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&creds); err != nil || creds.Password != testPassword {
			http.Error(w, "bad credentials", http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"user_id":%q,"access_token":"access-1","refresh_token":"refresh-1","role_type":%q}`,
			testUserID, roleType)
	})
}

func TestLoginStoresTokensAndResolvesLandingPath(t *testing.T) {
	f := newAuthFixture(t, loginHandler("Student"))

	result, err := f.service.Login(context.Background(), testEmail, testPassword)
	require.NoError(t, err)
	require.Equal(t, testUserID, result.UserID)
	require.Equal(t, auth.RoleStudent, result.Role)
	require.Equal(t, "/student/dashboard", result.LandingPath)

	require.Equal(t, "access-1", f.store.AccessToken())
	require.Equal(t, "refresh-1", f.store.RefreshToken())
	require.Equal(t, testUserID, f.store.UserID())
	require.Equal(t, "Student", f.store.RoleType())
	require.True(t, f.store.LoggedIn())
}

func TestLoginWithBadCredentialsStoresNothing(t *testing.T) {
	f := newAuthFixture(t, loginHandler("Student"))

	_, err := f.service.Login(context.Background(), testEmail, "wrong")
	require.Error(t, err)
	require.Empty(t, f.store.AccessToken())
	require.False(t, f.store.LoggedIn())
}

func TestLoginWithUnknownRoleIsError(t *testing.T) {
	f := newAuthFixture(t, loginHandler("Intruder"))

	_, err := f.service.Login(context.Background(), testEmail, testPassword)
	require.ErrorIs(t, err, clienterrors.ErrUnknownRole)
	require.Empty(t, f.store.AccessToken(), "tokens must not be stored for an unknown role")
}

func TestLogoutClearsSessionEvenWhenBackendFails(t *testing.T) {
	f := newAuthFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	require.NoError(t, f.store.SetTokens("access-1", "refresh-1", session.WithIdentity(testUserID, "Student")))

	require.NoError(t, f.service.Logout(context.Background()))
	require.Empty(t, f.store.AccessToken())
	require.False(t, f.store.LoggedIn())
	require.Equal(t, int32(1), f.cleared.Load())
}

func TestLandingPathPerRole(t *testing.T) {
	tests := []struct {
		role auth.RoleType
		path string
	}{
		{auth.RoleStudent, "/student/dashboard"},
		{auth.RoleAlumni, "/alumni/dashboard"},
		{auth.RoleCompany, "/company/dashboard"},
		{auth.RoleDean, "/dean/dashboard"},
		{auth.RoleManagement, "/management/dashboard"},
		{auth.RoleAdmissionOffice, "/management/dashboard"},
		{auth.RoleParents, "/parents/dashboard"},
		{auth.RolePlacementOfficer, "/placement-officer/dashboard"},
	}
	for _, tc := range tests {
		path, err := auth.LandingPath(tc.role)
		require.NoError(t, err, "role %s", tc.role)
		require.Equal(t, tc.path, path)
	}

	_, err := auth.LandingPath("Visitor")
	require.ErrorIs(t, err, clienterrors.ErrUnknownRole)
}
