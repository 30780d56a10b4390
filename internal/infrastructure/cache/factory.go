package cache

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/shipkia/connector/internal/domain/connection"
	"github.com/shipkia/connector/internal/infrastructure/config"
)

// ClosableTransientStore is a transient store that owns resources
type ClosableTransientStore interface {
	connection.TransientStore
	io.Closer
	// Ping reports whether the store can serve requests
	Ping(ctx context.Context) error
}

// TransientStoreFactory creates transient stores based on configuration
type TransientStoreFactory struct {
	cacheConfig           config.CacheConfig
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// TransientStoreFactoryOption is a functional option for configuring the factory
type TransientStoreFactoryOption func(*TransientStoreFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) TransientStoreFactoryOption {
	return func(f *TransientStoreFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to the in-memory store
// when Redis is unavailable. Default is true.
func WithInMemoryFallback(allow bool) TransientStoreFactoryOption {
	return func(f *TransientStoreFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewTransientStoreFactory creates a new factory
func NewTransientStoreFactory(cacheCfg config.CacheConfig, redisCfg config.RedisConfig, opts ...TransientStoreFactoryOption) *TransientStoreFactory {
	f := &TransientStoreFactory{
		cacheConfig:           cacheCfg,
		redisConfig:           redisCfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// inMemoryStore creates an in-memory transient store.
// In-memory stores do not share state across process instances, so each
// instance runs its own connection check cadence.
func (f *TransientStoreFactory) inMemoryStore() ClosableTransientStore {
	return NewInMemoryTransientStore(f.cacheConfig.CleanupInterval)
}

func (f *TransientStoreFactory) redisStore(ctx context.Context) (ClosableTransientStore, error) {
	store, err := NewRedisTransientStore(ctx, RedisConfig{
		Addr:      f.redisConfig.Addr(),
		Password:  f.redisConfig.Password,
		DB:        f.redisConfig.DB,
		KeyPrefix: f.redisConfig.KeyPrefix,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Redis transient store: %w", err)
	}
	return store, nil
}

// CreateStore creates the configured store. With the redis driver it falls
// back to memory when Redis is unreachable and fallback is allowed.
func (f *TransientStoreFactory) CreateStore(ctx context.Context) (ClosableTransientStore, error) {
	if f.cacheConfig.Driver != config.CacheDriverRedis {
		f.logger.Info("using in-memory transient store")
		return f.inMemoryStore(), nil
	}

	store, err := f.redisStore(ctx)
	if err == nil {
		f.logger.Info("using Redis transient store", zap.String("addr", f.redisConfig.Addr()))
		return store, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("Redis required for transients but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory transient store",
		zap.Error(err),
	)
	return f.inMemoryStore(), nil
}
