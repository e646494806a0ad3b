package config

import "time"

// SessionConfig configures session issuance and the validity gate.
type SessionConfig struct {
	JWTSecret   string
	Issuer      string
	AccessTTL   time.Duration
	RefreshTTL  time.Duration
	GraceWindow time.Duration
}

func loadSessionConfig() SessionConfig {
	return SessionConfig{
		JWTSecret:   getEnv("SESSION_JWT_SECRET", ""),
		Issuer:      getEnv("SESSION_ISSUER", "praxis"),
		AccessTTL:   getEnvDuration("SESSION_ACCESS_TTL", 15*time.Minute),
		RefreshTTL:  getEnvDuration("SESSION_REFRESH_TTL", 7*24*time.Hour),
		GraceWindow: getEnvDuration("SESSION_GRACE_WINDOW", 5*time.Minute),
	}
}
