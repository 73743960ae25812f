package config

import (
	"os"
	"path/filepath"
)

const (
	baseURLVar   = "PORTAL_BASE_URL"
	appNameVar   = "APP_NAME"
	tokenFileVar = "PORTAL_TOKEN_FILE"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetBaseURL() string {
	return GetEnv(baseURLVar, "http://localhost:8000")
}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "Placement Portal")
}

// GetTokenFile returns the path of the persisted session file, the CLI
// equivalent of the browser's local storage.
func (EnvVars) GetTokenFile() string {
	if file := os.Getenv(tokenFileVar); file != "" {
		return file
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".portal_session.json"
	}
	return filepath.Join(home, ".portal_session.json")
}

func (EnvVars) GetEnv() string {
	env := os.Getenv("ENV")
	if env == "" {
		return "DEV"
	}
	return env
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
