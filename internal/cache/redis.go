package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/open-cli-collective/substack-cli/internal/logger"
)

const (
	// RedisKey is the key holding the snapshot.
	RedisKey = "feed:posts"

	// DefaultRetention is how long Redis keeps a snapshot. It is longer than
	// DefaultTTL so an expired snapshot can still be served when the feed is down.
	DefaultRetention = 7 * 24 * time.Hour
)

// Connect creates a Redis (or Valkey) client and verifies it with a ping.
func Connect(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	logger.Debug("redis connected", "addr", addr)
	return client, nil
}

// RedisStore keeps the snapshot as a JSON value in Redis.
type RedisStore struct {
	client    *redis.Client
	retention time.Duration
}

// NewRedisStore creates a store backed by client. A zero retention uses DefaultRetention.
func NewRedisStore(client *redis.Client, retention time.Duration) *RedisStore {
	if retention == 0 {
		retention = DefaultRetention
	}
	return &RedisStore{client: client, retention: retention}
}

// Load fetches the snapshot.
func (s *RedisStore) Load(ctx context.Context) (*Snapshot, error) {
	val, err := s.client.Get(ctx, RedisKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cache key: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(val, &snap); err != nil {
		return nil, fmt.Errorf("failed to parse cache key: %w", err)
	}
	return &snap, nil
}

// Save stores the snapshot with the configured retention.
func (s *RedisStore) Save(ctx context.Context, snap *Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal cache: %w", err)
	}
	if err := s.client.Set(ctx, RedisKey, data, s.retention).Err(); err != nil {
		return fmt.Errorf("failed to write cache key: %w", err)
	}
	return nil
}

// Clear deletes the snapshot.
func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, RedisKey).Err(); err != nil {
		return fmt.Errorf("failed to delete cache key: %w", err)
	}
	return nil
}
