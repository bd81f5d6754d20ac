// Package cache keeps rendered report exports in Redis for a short TTL so
// repeated downloads of the same report skip the render.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "taskflow:export:"

type ExportCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewExportCache connects to Redis and verifies the connection.
func NewExportCache(ctx context.Context, addr string, ttl time.Duration) (*ExportCache, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return &ExportCache{client: client, ttl: ttl}, nil
}

// Get returns the cached bytes. A miss is (nil, false, nil).
func (c *ExportCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := c.client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (c *ExportCache) Set(ctx context.Context, key string, body []byte) error {
	return c.client.Set(ctx, keyPrefix+key, body, c.ttl).Err()
}

func (c *ExportCache) Close() error {
	return c.client.Close()
}
