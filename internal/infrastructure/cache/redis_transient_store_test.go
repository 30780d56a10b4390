package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUnreachableStore(t *testing.T) *RedisTransientStore {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisTransientStoreWithClient(client, "")
}

func TestRedisTransientStore_DefaultPrefix(t *testing.T) {
	store := newUnreachableStore(t)
	assert.Equal(t, DefaultKeyPrefix, store.keyPrefix)
}

func TestRedisTransientStore_Errors(t *testing.T) {
	ctx := context.Background()
	store := newUnreachableStore(t)

	_, _, err := store.Get(ctx, "shipkia_connection_verified")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read transient shipkia_connection_verified")

	err = store.Set(ctx, "shipkia_connection_verified", "1", time.Hour)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to write transient")

	err = store.Delete(ctx, "a", "b")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to delete transients")

	assert.NoError(t, store.Delete(ctx))
	assert.Error(t, store.Ping(ctx))
}

func TestNewRedisTransientStore_Unreachable(t *testing.T) {
	_, err := NewRedisTransientStore(context.Background(), RedisConfig{Addr: "127.0.0.1:1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect to Redis")
}
