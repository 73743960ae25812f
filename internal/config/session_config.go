package config

import "strings"

const (
	refreshTimeoutVar    = "REFRESH_TIMEOUT"
	loginPathVar         = "LOGIN_PATH"
	invalidationPathsVar = "INVALIDATION_PATHS"
)

// Paths whose mutation should invalidate the cached user profile.
// Overridable via INVALIDATION_PATHS as a comma-separated list.
var defaultInvalidationPaths = []string{
	"/student/personal-details",
	"/student/contact-details",
	"/student/parent-details",
	"/student/education",
	"/student/semester",
	"/student/activity",
}

type Session struct{}

var _ SessionConfig = Session{}

// GetRefreshTimeout returns the bound on a token refresh call, as a
// time.ParseDuration string.
func (Session) GetRefreshTimeout() string {
	return GetEnv(refreshTimeoutVar, "10s")
}

func (Session) GetLoginPath() string {
	return GetEnv(loginPathVar, "/login")
}

func (Session) GetInvalidationPaths() []string {
	raw := GetEnv(invalidationPathsVar, "")
	if raw == "" {
		return defaultInvalidationPaths
	}
	paths := make([]string, 0)
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			paths = append(paths, p)
		}
	}
	return paths
}
