package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cargo-delivery/pkg/utils"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Cache is the read-through cache contract used by the services. Get
// returns (nil, nil) on a miss so callers can fall through to the store.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	DeleteByPrefix(ctx context.Context, prefix string) error
	Ping(ctx context.Context) error
}

type redisCache struct {
	client *redis.Client
	log    *zap.Logger
}

// NewRedisCache connects to redis and verifies the connection.
func NewRedisCache(config utils.RedisConfig, log *zap.Logger) (Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &redisCache{
		client: client,
		log:    log.With(zap.String("component", "cache")),
	}, nil
}

func (c *redisCache) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		c.log.Error("Failed to get cache key", zap.Error(err), zap.String("key", key))
		return nil, fmt.Errorf("get cache key %s: %w", key, err)
	}
	return data, nil
}

func (c *redisCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal cache value for %s: %w", key, err)
	}

	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		c.log.Error("Failed to set cache key", zap.Error(err), zap.String("key", key))
		return fmt.Errorf("set cache key %s: %w", key, err)
	}
	return nil
}

func (c *redisCache) DeleteByPrefix(ctx context.Context, prefix string) error {
	iter := c.client.Scan(ctx, 0, prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			c.log.Error("Failed to delete cache key", zap.Error(err), zap.String("key", iter.Val()))
			return fmt.Errorf("delete cache key %s: %w", iter.Val(), err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scan cache prefix %s: %w", prefix, err)
	}
	return nil
}

func (c *redisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
