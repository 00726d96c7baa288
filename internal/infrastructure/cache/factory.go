package cache

import (
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/wagginmeals/backend/internal/domain/shared"
	"github.com/wagginmeals/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// LockStoreFactory creates the billing lock store from configuration
type LockStoreFactory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// LockStoreFactoryOption is a functional option for configuring the factory
type LockStoreFactoryOption func(*LockStoreFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) LockStoreFactoryOption {
	return func(f *LockStoreFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether an unreachable Redis falls back to the in-memory store.
// Default is true.
func WithInMemoryFallback(allow bool) LockStoreFactoryOption {
	return func(f *LockStoreFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewLockStoreFactory creates a new factory
func NewLockStoreFactory(cfg config.RedisConfig, opts ...LockStoreFactoryOption) *LockStoreFactory {
	f := &LockStoreFactory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Connect opens a Redis client from the configuration
func (f *LockStoreFactory) Connect() (*redis.Client, error) {
	return NewRedisClient(RedisConfig{
		Host:     f.redisConfig.Host,
		Port:     f.redisConfig.Port,
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	})
}

// CreateStore returns a Redis store when Redis is enabled and reachable.
// The returned client is nil for the in-memory store and is shared with
// other Redis-backed components such as the token blacklist.
func (f *LockStoreFactory) CreateStore() (shared.LockStore, *redis.Client, error) {
	if !f.redisConfig.Enabled {
		f.logger.Info("Redis disabled, using in-memory billing lock store")
		return NewInMemoryLockStore(), nil, nil
	}

	client, err := f.Connect()
	if err == nil {
		f.logger.Info("using Redis billing lock store", zap.String("addr", f.redisConfig.Addr()))
		return NewRedisLockStoreWithClient(client, ""), client, nil
	}

	if !f.allowInMemoryFallback {
		return nil, nil, fmt.Errorf("redis required for billing locks but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory billing lock store. "+
		"Concurrent server instances may race on the same billing cycle.",
		zap.Error(err),
	)
	return NewInMemoryLockStore(), nil, nil
}
