package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Cache stores JSON-encoded values under namespaced keys.
type Cache interface {
	// Get decodes the cached value into dest and reports whether it was present.
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any) error
	// Key builds "<service>:<operation>:<part>[:<part>...]".
	Key(operation string, parts ...string) string
}

type redisCache struct {
	client      *redis.Client
	serviceName string
	ttl         time.Duration
	logger      zerolog.Logger
}

// NewRedisCache creates a Redis-backed cache. Entries expire after ttl.
func NewRedisCache(client *redis.Client, serviceName string, ttl time.Duration, logger zerolog.Logger) Cache {
	return &redisCache{
		client:      client,
		serviceName: serviceName,
		ttl:         ttl,
		logger:      logger.With().Str("component", "redis-cache").Logger(),
	}
}

// NewRedisClient connects to Redis and verifies the connection.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", addr, err)
	}

	return client, nil
}

func (c *redisCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read cache key %s: %w", key, err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("failed to decode cache key %s: %w", key, err)
	}

	c.logger.Debug().Str("key", key).Msg("cache hit")
	return true, nil
}

func (c *redisCache) Set(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode cache value for %s: %w", key, err)
	}

	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write cache key %s: %w", key, err)
	}
	return nil
}

func (c *redisCache) Key(operation string, parts ...string) string {
	return buildKey(c.serviceName, operation, parts...)
}

func buildKey(service, operation string, parts ...string) string {
	return strings.Join(append([]string{service, operation}, parts...), ":")
}

// noopCache is used when Redis is disabled; every lookup misses.
type noopCache struct{}

// NewNoop returns a Cache that stores nothing.
func NewNoop() Cache {
	return noopCache{}
}

func (noopCache) Get(context.Context, string, any) (bool, error) { return false, nil }

func (noopCache) Set(context.Context, string, any) error { return nil }

func (noopCache) Key(operation string, parts ...string) string {
	return buildKey("noop", operation, parts...)
}
