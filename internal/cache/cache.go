// Package cache wraps the device-local Redis instance used as a durable
// key-value cache for serialized snapshots. It stands in for the mobile app's
// async storage: a small blob per key, read on cold start, written after
// every mutation.
package cache

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// ErrNotFound is returned when a key has never been written.
var ErrNotFound = errors.New("cache: key not found")

type Cache struct {
	client *redis.Client
}

// New connects to Redis and verifies the connection.
func New(ctx context.Context, addr, password string) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return &Cache{client: client}, nil
}

// Get returns the blob stored under key, or ErrNotFound.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("cache get: %w", err)
	}

	return data, nil
}

// Set stores the blob under key with no expiry. Snapshots must survive
// restarts, so nothing here is allowed to expire.
func (c *Cache) Set(ctx context.Context, key string, data []byte) error {
	if err := c.client.Set(ctx, key, data, 0).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}

	return nil
}

// Close releases the underlying client.
func (c *Cache) Close() error {
	return c.client.Close()
}
