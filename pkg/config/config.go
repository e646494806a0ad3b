// Package config loads typed configuration from the environment. Every
// security-relevant tunable is an explicit value here rather than a literal
// buried in logic, and all permissive variants default to the strict side.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Environment distinguishes production from development deployments.
// Development-only bypasses are unreachable unless the environment is
// explicitly set to development.
type Environment string

const (
	EnvProduction  Environment = "production"
	EnvDevelopment Environment = "development"
)

// Config aggregates all sections.
type Config struct {
	Environment Environment
	Server      ServerConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	Trust       TrustConfig
	Session     SessionConfig
	Dispatch    DispatchConfig
	Webhook     WebhookConfig
}

// Load reads the full configuration from the environment.
func Load() *Config {
	env := EnvProduction
	if strings.ToLower(getEnv("APP_ENV", "production")) == "development" {
		env = EnvDevelopment
	}

	return &Config{
		Environment: env,
		Server:      loadServerConfig(),
		Database:    loadDatabaseConfig(),
		Redis:       loadRedisConfig(),
		Trust:       loadTrustConfig(env),
		Session:     loadSessionConfig(),
		Dispatch:    loadDispatchConfig(),
		Webhook:     loadWebhookConfig(env),
	}
}

// IsProduction reports whether the strict production variant is active.
func (c *Config) IsProduction() bool { return c.Environment == EnvProduction }

// ---------------------------------------------------------------------------
// Env helpers
// ---------------------------------------------------------------------------

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
