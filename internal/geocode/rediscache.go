package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache stores geocoding results in Redis with a long expiry; places
// rarely change, and a stale name is harmless.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache wraps a Redis client as a geocoding cache.
func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client, ttl: 30 * 24 * time.Hour}
}

func (c *RedisCache) Get(ctx context.Context, key string) (Place, bool, error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return Place{}, false, nil
	}
	if err != nil {
		return Place{}, false, err
	}

	var place Place
	if err := json.Unmarshal(raw, &place); err != nil {
		return Place{}, false, err
	}
	return place, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, place Place) error {
	raw, err := json.Marshal(place)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, raw, c.ttl).Err()
}
