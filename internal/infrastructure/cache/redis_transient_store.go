package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shipkia/connector/internal/domain/connection"
)

// DefaultKeyPrefix namespaces transient keys in Redis
const DefaultKeyPrefix = "shipkia:transient:"

// RedisTransientStore implements connection.TransientStore using Redis.
// This is suitable for deployments where several instances share
// the connection check cadence.
type RedisTransientStore struct {
	client    *redis.Client
	keyPrefix string
}

var _ connection.TransientStore = (*RedisTransientStore)(nil)

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

// NewRedisTransientStore connects to Redis and verifies the connection
func NewRedisTransientStore(ctx context.Context, cfg RedisConfig) (*RedisTransientStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisTransientStoreWithClient(client, cfg.KeyPrefix), nil
}

// NewRedisTransientStoreWithClient creates a store with an existing Redis client
func NewRedisTransientStoreWithClient(client *redis.Client, keyPrefix string) *RedisTransientStore {
	if keyPrefix == "" {
		keyPrefix = DefaultKeyPrefix
	}
	return &RedisTransientStore{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// Get returns the value of key if it is set and unexpired
func (s *RedisTransientStore) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.client.Get(ctx, s.keyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read transient %s: %w", key, err)
	}
	return v, true, nil
}

// Set stores value under key for ttl. A non-positive ttl removes the key.
func (s *RedisTransientStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if ttl <= 0 {
		return s.Delete(ctx, key)
	}
	if err := s.client.Set(ctx, s.keyPrefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write transient %s: %w", key, err)
	}
	return nil
}

// Delete removes keys
func (s *RedisTransientStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = s.keyPrefix + k
	}
	if err := s.client.Del(ctx, full...).Err(); err != nil {
		return fmt.Errorf("failed to delete transients: %w", err)
	}
	return nil
}

// Ping checks the Redis connection
func (s *RedisTransientStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the Redis client
func (s *RedisTransientStore) Close() error {
	return s.client.Close()
}
