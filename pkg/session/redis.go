package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "sentinel:session:"

// RedisStore persists session state as JSON values with a sliding TTL.
// Multiple gateway instances sharing one Redis see the same sessions.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// RedisStoreOption is a functional option for configuring RedisStore.
type RedisStoreOption func(*RedisStore)

// WithTTL sets the idle TTL applied on every save.
func WithTTL(d time.Duration) RedisStoreOption {
	return func(s *RedisStore) {
		s.ttl = d
	}
}

// NewRedisStore wraps an existing Redis client. The caller keeps ownership
// of client configuration; Close closes the client.
func NewRedisStore(client *redis.Client, opts ...RedisStoreOption) *RedisStore {
	s := &RedisStore{
		client: client,
		ttl:    1 * time.Hour,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func redisKey(sessionID string) string {
	return redisKeyPrefix + sessionID
}

// Get retrieves a session by ID. A missing key reads as not found; Redis
// handles expiry itself via the key TTL.
func (s *RedisStore) Get(ctx context.Context, sessionID string) (*State, error) {
	data, err := s.client.Get(ctx, redisKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get session: %w", err)
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", sessionID, err)
	}
	return &state, nil
}

// Save writes the session JSON and resets its TTL.
func (s *RedisStore) Save(ctx context.Context, state *State) error {
	if state == nil {
		return fmt.Errorf("session state is nil")
	}
	if state.SessionID == "" {
		return fmt.Errorf("session ID is required")
	}

	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", state.SessionID, err)
	}
	if err := s.client.Set(ctx, redisKey(state.SessionID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis save session: %w", err)
	}
	return nil
}

// Delete removes a session.
func (s *RedisStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, redisKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("redis delete session: %w", err)
	}
	return nil
}

// Close closes the underlying client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

var _ Store = (*RedisStore)(nil)
