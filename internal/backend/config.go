package backend

import (
	"fmt"
	"strings"

	"finai/internal/config"
)

// DefaultMaxSessions bounds the in-memory store.
const DefaultMaxSessions = 1000

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	backendType := BackendType(appConfig.SessionBackend)
	if !backendType.IsValid() {
		return Config{}, fmt.Errorf("invalid session backend in config: %s", appConfig.SessionBackend)
	}

	return Config{
		Type:        backendType,
		TTL:         appConfig.SessionTTL,
		MaxSessions: DefaultMaxSessions,
		RedisAddr:   appConfig.RedisAddr,
	}, nil
}

// Validate validates the backend configuration
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type %q: must be one of %s", c.Type, strings.Join(GetBackendTypeStrings(), ", "))
	}
	if c.TTL <= 0 {
		return fmt.Errorf("session TTL must be positive, got %s", c.TTL)
	}

	switch c.Type {
	case MemoryBackend:
		if c.MaxSessions < 1 {
			return fmt.Errorf("memory backend needs room for at least one session")
		}
	case RedisBackend:
		if c.RedisAddr == "" {
			return fmt.Errorf("redis address is required for redis backend")
		}
	}

	return nil
}

// GetBackendTypeStrings returns all valid backend type strings
func GetBackendTypeStrings() []string {
	return []string{MemoryBackend.String(), RedisBackend.String()}
}
