// Package backend builds the chat session store selected by configuration.
package backend

import (
	"context"
	"time"

	"finai/internal/cache"
	"finai/internal/chat"
)

// Stats is implemented by session stores that keep counters in process.
type Stats interface {
	Stats() cache.Stats
	Size() int
}

// CleanupFunc releases the resources held by a backend.
type CleanupFunc func() error

// Result holds the session store and what the server needs around it.
// Stats and Check are nil when the backend does not provide them.
type Result struct {
	Store   chat.SessionStore
	Stats   Stats
	Check   func(ctx context.Context) error
	Cleanup CleanupFunc
}

// Factory creates session backends based on configuration
type Factory interface {
	CreateSessionBackend(ctx context.Context, config Config) (*Result, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType
	TTL  time.Duration

	// Memory specific
	MaxSessions int

	// Redis specific
	RedisAddr string
}

// BackendType names a session backend
type BackendType string

const (
	MemoryBackend BackendType = "memory"
	RedisBackend  BackendType = "redis"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case MemoryBackend, RedisBackend:
		return true
	default:
		return false
	}
}
