package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/storefront/backend/internal/domain/integration"
)

// defaultLockPrefix namespaces sync lock keys in Redis
const defaultLockPrefix = "sync:lock:"

// RedisSyncLock implements SyncLock using Redis. Suitable for distributed
// deployments where multiple instances may trigger sync runs; the TTL bounds
// how long a crashed run can keep an integration locked.
type RedisSyncLock struct {
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

// NewRedisSyncLock creates a Redis-backed sync lock
func NewRedisSyncLock(cfg RedisConfig) (*RedisSyncLock, error) {
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

	return &RedisSyncLock{
		client:    client,
		keyPrefix: defaultLockPrefix,
	}, nil
}

// NewRedisSyncLockWithClient creates a lock with an existing Redis client.
// This is useful for testing or when sharing a client across components.
func NewRedisSyncLockWithClient(client *redis.Client, keyPrefix string) *RedisSyncLock {
	if keyPrefix == "" {
		keyPrefix = defaultLockPrefix
	}
	return &RedisSyncLock{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// Acquire attempts to take the run lock for one integration.
// Uses SETNX with TTL in a single atomic operation; returns false when
// another run already holds the lock.
func (l *RedisSyncLock) Acquire(ctx context.Context, integrationID uuid.UUID, ttl time.Duration) (bool, error) {
	key := l.keyPrefix + integrationID.String()

	acquired, err := l.client.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire sync lock: %w", err)
	}
	return acquired, nil
}

// Release frees the run lock for one integration
func (l *RedisSyncLock) Release(ctx context.Context, integrationID uuid.UUID) error {
	key := l.keyPrefix + integrationID.String()

	if err := l.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to release sync lock: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (l *RedisSyncLock) Close() error {
	return l.client.Close()
}

// Ensure RedisSyncLock implements SyncLock
var _ integration.SyncLock = (*RedisSyncLock)(nil)
