package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/wagginmeals/backend/internal/domain/shared"
)

const defaultLockPrefix = "wm:lock:"

// releaseScript deletes the key only while it still holds our token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLockStore implements LockStore with SET NX PX.
// It is suitable when several server instances run the billing job.
type RedisLockStore struct {
	client    *redis.Client
	keyPrefix string
	ownClient bool

	mu     sync.Mutex
	tokens map[string]string
}

// NewRedisClient connects to Redis and pings it
func NewRedisClient(cfg RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisLockStore creates a lock store with its own connection
func NewRedisLockStore(cfg RedisConfig) (*RedisLockStore, error) {
	client, err := NewRedisClient(cfg)
	if err != nil {
		return nil, err
	}
	store := NewRedisLockStoreWithClient(client, "")
	store.ownClient = true
	return store, nil
}

// NewRedisLockStoreWithClient creates a store on a shared client.
// Close leaves a shared client open.
func NewRedisLockStoreWithClient(client *redis.Client, keyPrefix string) *RedisLockStore {
	if keyPrefix == "" {
		keyPrefix = defaultLockPrefix
	}
	return &RedisLockStore{
		client:    client,
		keyPrefix: keyPrefix,
		tokens:    make(map[string]string),
	}
}

// Acquire sets the key if absent with the given TTL
func (s *RedisLockStore) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	token := uuid.NewString()
	ok, err := s.client.SetNX(ctx, s.keyPrefix+key, token, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire lock %s: %w", key, err)
	}
	if ok {
		s.mu.Lock()
		s.tokens[key] = token
		s.mu.Unlock()
	}
	return ok, nil
}

// Release deletes the key if this store still owns it
func (s *RedisLockStore) Release(ctx context.Context, key string) error {
	s.mu.Lock()
	token, ok := s.tokens[key]
	delete(s.tokens, key)
	s.mu.Unlock()
	if !ok {
		return nil
	}

	if err := releaseScript.Run(ctx, s.client, []string{s.keyPrefix + key}, token).Err(); err != nil && err != redis.Nil {
		return fmt.Errorf("failed to release lock %s: %w", key, err)
	}
	return nil
}

// Close closes the Redis client when the store created it
func (s *RedisLockStore) Close() error {
	if !s.ownClient {
		return nil
	}
	return s.client.Close()
}

var _ shared.LockStore = (*RedisLockStore)(nil)
