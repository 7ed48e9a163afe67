// ABOUTME: Redis-backed cache for serialized stats payloads.
// ABOUTME: Optional collaborator; the stats service works without it.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/velolab/velo/internal/telemetry"
)

// Redis caches small JSON payloads with a TTL.
type Redis struct {
	client *redis.Client
	ctx    context.Context
	ttl    time.Duration
}

// NewRedis connects to Redis and verifies the connection.
func NewRedis(addr, password string, db int, ttl time.Duration) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return &Redis{client: client, ctx: ctx, ttl: ttl}, nil
}

// Get returns the cached payload for key, if present.
func (r *Redis) Get(key string) ([]byte, bool) {
	data, err := r.client.Get(r.ctx, key).Bytes()
	if err == redis.Nil {
		telemetry.CacheOperations.WithLabelValues("get", "miss").Inc()
		return nil, false
	}
	if err != nil {
		telemetry.CacheOperations.WithLabelValues("get", "error").Inc()
		return nil, false
	}
	telemetry.CacheOperations.WithLabelValues("get", "hit").Inc()
	return data, true
}

// Set stores the payload under key with the configured TTL.
func (r *Redis) Set(key string, value []byte) {
	if err := r.client.Set(r.ctx, key, value, r.ttl).Err(); err != nil {
		telemetry.CacheOperations.WithLabelValues("set", "error").Inc()
		return
	}
	telemetry.CacheOperations.WithLabelValues("set", "success").Inc()
}

// Ping verifies the connection is alive.
func (r *Redis) Ping() error {
	return r.client.Ping(r.ctx).Err()
}

// Close closes the underlying client.
func (r *Redis) Close() error {
	return r.client.Close()
}
