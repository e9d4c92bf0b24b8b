package config

import (
	"encoding/base64"
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	DatabaseURL    string
	HTTPListenAddr string
	LogLevel       string
	ServiceName    string

	// VaultKey is the urlsafe-base64 encoded 32-byte key used to encrypt
	// API token secrets at rest. The process refuses to start without it.
	VaultKey string

	// SessionSecret signs operator session tokens (HS256).
	SessionSecret     string
	SessionTTLMinutes int

	// PolicyPath points at the hot-reloadable policy document.
	PolicyPath string

	OperatorUsername string
	OperatorPassword string
}

func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		HTTPListenAddr:    getEnv("HTTP_LISTEN_ADDR", ":8090"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		ServiceName:       getEnv("SERVICE_NAME", "platform-api"),
		VaultKey:          getEnv("VAULT_KEY", ""),
		SessionSecret:     getEnv("SESSION_SECRET", ""),
		SessionTTLMinutes: getEnvInt("SESSION_TTL_MINUTES", 60),
		PolicyPath:        getEnv("POLICY_PATH", "policy.yaml"),
		OperatorUsername:  getEnv("OPERATOR_USERNAME", "admin"),
		OperatorPassword:  getEnv("OPERATOR_PASSWORD", ""),
	}

	return cfg, nil
}

// Validate checks the hard startup preconditions. A missing or malformed
// vault key is fatal: tokens written under a bad key would be unreadable.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.VaultKey == "" {
		return fmt.Errorf("VAULT_KEY is required")
	}
	raw, err := base64.URLEncoding.DecodeString(c.VaultKey)
	if err != nil {
		return fmt.Errorf("VAULT_KEY is not valid urlsafe base64: %w", err)
	}
	if len(raw) != 32 {
		return fmt.Errorf("VAULT_KEY must decode to 32 bytes, got %d", len(raw))
	}
	if c.SessionSecret == "" {
		return fmt.Errorf("SESSION_SECRET is required")
	}
	if c.SessionTTLMinutes <= 0 {
		return fmt.Errorf("SESSION_TTL_MINUTES must be positive")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
