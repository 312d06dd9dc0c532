package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	SessionBackendMemory = "memory"
	SessionBackendRedis  = "redis"
)

type Config struct {
	// HTTP Server
	Port               string
	RateLimitPerMinute int

	// Database
	SQLiteDBPath string
	UploadDir    string

	// AMQP
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Worker
	ScreenBatchSize int
	ScreenInterval  time.Duration

	// Chat
	AnthropicAPIKey string
	LLMModel        string
	LLMTimeout      time.Duration
	SessionBackend  string
	RedisAddr       string
	SessionTTL      time.Duration

	LogLevel string
}

func Load() *Config {
	cfg := &Config{
		Port:               getEnv("PORT", "8081"),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 60),

		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/finai.db"),
		UploadDir:    getEnv("UPLOAD_DIR", "./data/uploads"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "finai"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "kyc_screening"),

		ScreenBatchSize: getEnvInt("SCREEN_BATCH_SIZE", 10),
		ScreenInterval:  getEnvDuration("SCREEN_INTERVAL", 30*time.Second),

		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		LLMModel:        getEnv("LLM_MODEL", "claude-3-5-haiku-latest"),
		LLMTimeout:      getEnvDuration("LLM_TIMEOUT", 15*time.Second),
		SessionBackend:  getEnv("SESSION_BACKEND", SessionBackendMemory),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		SessionTTL:      getEnvDuration("SESSION_TTL", time.Hour),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	return cfg
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	// Validate port
	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.RateLimitPerMinute < 1 {
		errors = append(errors, fmt.Sprintf("invalid rate limit %d: must be at least 1 request per minute", c.RateLimitPerMinute))
	}

	// Validate SQLite configuration
	if c.SQLiteDBPath == "" {
		errors = append(errors, "SQLite database path cannot be empty")
	} else if err := ensureDir(filepath.Dir(c.SQLiteDBPath)); err != nil {
		errors = append(errors, fmt.Sprintf("cannot create SQLite database directory: %v", err))
	}

	if c.UploadDir == "" {
		errors = append(errors, "upload directory cannot be empty")
	} else if err := ensureDir(c.UploadDir); err != nil {
		errors = append(errors, fmt.Sprintf("cannot create upload directory: %v", err))
	}

	// Validate AMQP URL if provided
	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	// Validate worker configuration
	if c.ScreenBatchSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid screen batch size %d: must be at least 1", c.ScreenBatchSize))
	} else if c.ScreenBatchSize > 1000 {
		errors = append(errors, fmt.Sprintf("invalid screen batch size %d: must be at most 1000", c.ScreenBatchSize))
	}

	if c.ScreenInterval < time.Second {
		errors = append(errors, fmt.Sprintf("invalid screen interval %v: must be at least 1 second", c.ScreenInterval))
	} else if c.ScreenInterval > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid screen interval %v: must be at most 24 hours", c.ScreenInterval))
	}

	// Validate chat configuration
	if c.LLMTimeout < time.Second || c.LLMTimeout > 2*time.Minute {
		errors = append(errors, fmt.Sprintf("invalid LLM timeout %v: must be between 1 second and 2 minutes", c.LLMTimeout))
	}

	switch c.SessionBackend {
	case SessionBackendMemory:
	case SessionBackendRedis:
		if c.RedisAddr == "" {
			errors = append(errors, "REDIS_ADDR is required when using the redis session backend")
		}
	default:
		errors = append(errors, fmt.Sprintf("invalid session backend '%s': must be one of [%s %s]",
			c.SessionBackend, SessionBackendMemory, SessionBackendRedis))
	}

	if c.SessionTTL < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid session TTL %v: must be at least 1 minute", c.SessionTTL))
	}

	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		errors = append(errors, err.Error())
	}

	// Return combined errors
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// AIEnabled reports whether an Anthropic credential is configured.
func (c *Config) AIEnabled() bool {
	return strings.TrimSpace(c.AnthropicAPIKey) != ""
}

// SlogLevel returns the configured level, falling back to info.
func (c *Config) SlogLevel() slog.Level {
	level, err := ParseLogLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

// ParseLogLevel accepts debug, info, warn and error in any case.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("invalid log level '%s': must be one of [debug info warn error]", s)
}

func ensureDir(dir string) error {
	if dir == "." || dir == "" {
		return nil
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("'%s': %w", dir, err)
		}
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
