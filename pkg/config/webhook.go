package config

import (
	"os"
	"strings"
)

const webhookSecretPrefix = "WEBHOOK_SECRET_"

// WebhookConfig configures inbound webhook signature enforcement.
// Secrets are read from WEBHOOK_SECRET_<INTEGRATION> variables, keyed by the
// lower-cased integration name.
type WebhookConfig struct {
	Secrets map[string]string

	// AllowUnsigned skips signature verification for integrations without a
	// configured secret. Only honored outside production; production always
	// fails closed.
	AllowUnsigned bool
}

func loadWebhookConfig(env Environment) WebhookConfig {
	allowUnsigned := getEnvBool("WEBHOOK_ALLOW_UNSIGNED", false)
	if env == EnvProduction {
		allowUnsigned = false
	}

	secrets := make(map[string]string)
	for _, kv := range os.Environ() {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(key, webhookSecretPrefix) {
			continue
		}
		name := strings.ToLower(strings.TrimPrefix(key, webhookSecretPrefix))
		if name != "" && value != "" {
			secrets[name] = value
		}
	}

	return WebhookConfig{
		Secrets:       secrets,
		AllowUnsigned: allowUnsigned,
	}
}
