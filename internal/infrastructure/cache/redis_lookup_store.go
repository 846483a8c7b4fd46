package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLookupStore implements LookupStore using Redis.
// This is suitable for distributed deployments where multiple instances
// should share lookup results
type RedisLookupStore struct {
	client    *redis.Client
	keyPrefix string
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisLookupStore creates a new Redis-based lookup store
func NewRedisLookupStore(cfg RedisConfig) (*RedisLookupStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisLookupStore{
		client:    client,
		keyPrefix: "allocation:lookup:",
	}, nil
}

// NewRedisLookupStoreWithClient creates a store with an existing Redis client.
// This is useful for testing or when sharing a client across components
func NewRedisLookupStoreWithClient(client *redis.Client, keyPrefix string) *RedisLookupStore {
	if keyPrefix == "" {
		keyPrefix = "allocation:lookup:"
	}
	return &RedisLookupStore{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// Get retrieves a cached value by key
func (s *RedisLookupStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := s.client.Get(ctx, s.keyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read lookup cache: %w", err)
	}
	return value, true, nil
}

// Set stores a value with a TTL
func (s *RedisLookupStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := s.client.Set(ctx, s.keyPrefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write lookup cache: %w", err)
	}
	return nil
}

// Delete removes a cached value
func (s *RedisLookupStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("failed to delete lookup cache entry: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (s *RedisLookupStore) Close() error {
	return s.client.Close()
}

// Ensure RedisLookupStore implements LookupStore
var _ LookupStore = (*RedisLookupStore)(nil)
