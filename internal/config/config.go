package config

type Config interface {
	EnvConfig
	SessionConfig
}

type EnvConfig interface {
	GetBaseURL() string
	GetAppName() string
	GetTokenFile() string
	GetEnv() string
}

type SessionConfig interface {
	GetRefreshTimeout() string
	GetLoginPath() string
	GetInvalidationPaths() []string
}

type mainConfig struct {
	EnvVars
	Session
}

func New() Config {
	return mainConfig{}
}
