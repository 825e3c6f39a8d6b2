// Package cache provides a Redis-backed key-value store with TTLs, used for
// cache-aside reads and short-lived status records.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/coprra/coprra/internal/metrics"
	"github.com/redis/go-redis/v9"
)

// Store is the cache port handed to services: get/set/forget by key with TTL.
type Store interface {
	// Get unmarshals the cached value into dest and reports whether the key was present.
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Forget(ctx context.Context, key string) error
	Ping(ctx context.Context) error
}

// NewClient creates a Redis client and verifies connectivity.
func NewClient(ctx context.Context, addr, pass string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: pass,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// Redis is the Store implementation backed by a Redis client. Keys get a
// common prefix so several services can share one database.
type Redis struct {
	client *redis.Client
	prefix string
}

// NewRedis creates a Redis-backed Store with the given key prefix.
func NewRedis(client *redis.Client, prefix string) *Redis {
	return &Redis{client: client, prefix: prefix}
}

func (r *Redis) key(key string) string {
	return r.prefix + key
}

// Get retrieves and unmarshals a cached value. A missing key is a miss, not an error.
func (r *Redis) Get(ctx context.Context, key string, dest any) (bool, error) {
	data, err := r.client.Get(ctx, r.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			metrics.CacheMisses.Inc()
			return false, nil
		}
		return false, fmt.Errorf("cache get failed for key %s: %w", key, err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("cache unmarshal failed for key %s: %w", key, err)
	}
	metrics.CacheHits.Inc()
	return true, nil
}

// Set marshals and stores a value with the given TTL.
func (r *Redis) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal failed for key %s: %w", key, err)
	}
	if err := r.client.Set(ctx, r.key(key), data, ttl).Err(); err != nil {
		return fmt.Errorf("cache set failed for key %s: %w", key, err)
	}
	return nil
}

// Forget removes a key. Removing an absent key is not an error.
func (r *Redis) Forget(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.key(key)).Err(); err != nil {
		return fmt.Errorf("cache delete failed for key %s: %w", key, err)
	}
	return nil
}

// Ping verifies the Redis connection, used by the health endpoint.
func (r *Redis) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("cache ping failed: %w", err)
	}
	return nil
}
