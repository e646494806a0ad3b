package config

import "time"

// ChallengeStoreBackend selects where pending challenges live.
type ChallengeStoreBackend string

const (
	StoreMemory ChallengeStoreBackend = "memory"
	StoreRedis  ChallengeStoreBackend = "redis"
)

// TrustConfig configures the OTP issuance and verification engine.
type TrustConfig struct {
	CodeLength        int
	ChallengeLifetime time.Duration
	MaxAttempts       int
	ResendCooldown    time.Duration
	SweepInterval     time.Duration
	DispatchTimeout   time.Duration
	StoreBackend      ChallengeStoreBackend

	// DevCodeEcho returns the generated code in issuance responses.
	// Diagnostic aid for local development only; forced off in production
	// regardless of the environment variable.
	DevCodeEcho bool
}

func loadTrustConfig(env Environment) TrustConfig {
	echo := getEnvBool("TRUST_DEV_CODE_ECHO", false)
	if env == EnvProduction {
		echo = false
	}

	backend := StoreMemory
	if getEnv("TRUST_STORE_BACKEND", "memory") == "redis" {
		backend = StoreRedis
	}

	return TrustConfig{
		CodeLength:        getEnvInt("TRUST_CODE_LENGTH", 6),
		ChallengeLifetime: getEnvDuration("TRUST_CHALLENGE_LIFETIME", 10*time.Minute),
		MaxAttempts:       getEnvInt("TRUST_MAX_ATTEMPTS", 3),
		ResendCooldown:    getEnvDuration("TRUST_RESEND_COOLDOWN", 60*time.Second),
		SweepInterval:     getEnvDuration("TRUST_SWEEP_INTERVAL", 5*time.Minute),
		DispatchTimeout:   getEnvDuration("TRUST_DISPATCH_TIMEOUT", 5*time.Second),
		StoreBackend:      backend,
		DevCodeEcho:       echo,
	}
}
