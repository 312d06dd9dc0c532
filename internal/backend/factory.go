package backend

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"finai/internal/cache"
	"finai/internal/chat"
	"finai/internal/log"
)

// CleanupInterval is how often expired in-memory sessions are swept.
const CleanupInterval = 5 * time.Minute

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
	caches *cache.Manager
}

// NewFactory creates a backend factory. In-memory stores are registered
// with caches, which may be nil.
func NewFactory(logger *log.Logger, caches *cache.Manager) Factory {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentCache),
		caches: caches,
	}
}

// CreateSessionBackend implements Factory.CreateSessionBackend
func (f *DefaultFactory) CreateSessionBackend(ctx context.Context, config Config) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case MemoryBackend:
		return f.createMemoryBackend(config), nil
	case RedisBackend:
		return f.createRedisBackend(ctx, config), nil
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createMemoryBackend(config Config) *Result {
	store := chat.NewMemoryStore(config.MaxSessions, config.TTL)
	if f.caches != nil {
		f.caches.Register("chat_sessions", store)
	}

	f.logger.Info("Initialized memory session backend",
		"max_sessions", config.MaxSessions,
		"ttl", config.TTL)

	return &Result{Store: store, Stats: store}
}

// createRedisBackend does not fail when Redis is down: the readiness check
// reports it and chat degrades to sessionless replies.
func (f *DefaultFactory) createRedisBackend(ctx context.Context, config Config) *Result {
	client := redis.NewClient(&redis.Options{Addr: config.RedisAddr})
	store := chat.NewRedisStore(client, config.TTL)

	if err := store.Ping(ctx); err != nil {
		f.logger.WarnContext(ctx, "Redis not reachable yet, continuing",
			"addr", config.RedisAddr,
			log.FieldError, err)
	} else {
		f.logger.InfoContext(ctx, "Initialized redis session backend", "addr", config.RedisAddr)
	}

	return &Result{
		Store:   store,
		Check:   store.Ping,
		Cleanup: client.Close,
	}
}
