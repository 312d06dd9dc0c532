package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"finai/internal/cache"
)

// SessionStore keeps the rolling message history of each chat session.
type SessionStore interface {
	History(ctx context.Context, sessionID string) ([]Message, error)
	Save(ctx context.Context, sessionID string, history []Message) error
}

// MemoryStore keeps sessions in an in-process LRU cache. Idle sessions
// expire after the TTL; the least recently used ones are evicted when the
// cache is full.
type MemoryStore struct {
	sessions *cache.LRUCache[[]Message]
}

func NewMemoryStore(maxSessions int, ttl time.Duration) *MemoryStore {
	return &MemoryStore{sessions: cache.NewLRUCache[[]Message](maxSessions, ttl)}
}

func (s *MemoryStore) History(_ context.Context, sessionID string) ([]Message, error) {
	h, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, nil
	}
	out := make([]Message, len(h))
	copy(out, h)
	return out, nil
}

func (s *MemoryStore) Save(_ context.Context, sessionID string, history []Message) error {
	h := make([]Message, len(history))
	copy(h, history)
	s.sessions.Set(sessionID, h)
	return nil
}

// CleanExpired lets a cache.Manager sweep idle sessions.
func (s *MemoryStore) CleanExpired() int { return s.sessions.CleanExpired() }

func (s *MemoryStore) Stats() cache.Stats { return s.sessions.Stats() }

func (s *MemoryStore) Size() int { return s.sessions.Size() }

// RedisStore keeps each session as a JSON list under a prefixed key. Every
// save resets the key's TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl, prefix: "finai:chat:"}
}

func (s *RedisStore) key(sessionID string) string {
	return s.prefix + sessionID
}

func (s *RedisStore) History(ctx context.Context, sessionID string) ([]Message, error) {
	raw, err := s.client.Get(ctx, s.key(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", sessionID, err)
	}
	var history []Message
	if err := json.Unmarshal(raw, &history); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", sessionID, err)
	}
	return history, nil
}

func (s *RedisStore) Save(ctx context.Context, sessionID string, history []Message) error {
	raw, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", sessionID, err)
	}
	if err := s.client.Set(ctx, s.key(sessionID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("save session %s: %w", sessionID, err)
	}
	return nil
}

// Ping checks the Redis connection for readiness probes.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
