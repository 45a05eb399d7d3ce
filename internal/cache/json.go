package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// JSONCache stores JSON encoded values, used for computed read models such
// as analytics.
type JSONCache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
}

const jsonKeyPrefix = "stockbook:cache:"

// NewJSONCache picks redis when a client is available.
func NewJSONCache(client *redis.Client) JSONCache {
	if client == nil {
		return NewMemoryJSONCache()
	}
	return &redisJSONCache{client: client}
}

type redisJSONCache struct {
	client *redis.Client
}

func (c *redisJSONCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	data, err := c.client.Get(ctx, jsonKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, err
	}
	return true, nil
}

func (c *redisJSONCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, jsonKeyPrefix+key, data, ttl).Err()
}

type memoryJSONCache struct {
	store Cache[string, []byte]
}

func NewMemoryJSONCache() JSONCache {
	return &memoryJSONCache{store: NewTTLCache[string, []byte]()}
}

func (c *memoryJSONCache) Get(_ context.Context, key string, dst any) (bool, error) {
	data, ok := c.store.Get(key)
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, err
	}
	return true, nil
}

func (c *memoryJSONCache) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.store.Set(key, data, ttl)
	return nil
}
