package redis

import (
	"context"
	"time"

	"asklaw-backend/internal/config"

	"github.com/go-redis/redis/v8"
)

type RedisClient interface {
	Ping(ctx context.Context) error
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Expire(ctx context.Context, key string, expiration time.Duration) error
	Del(ctx context.Context, keys ...string) error
	HSet(ctx context.Context, key string, fields map[string]interface{}) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HDel(ctx context.Context, key string, fields ...string) error
	LPush(ctx context.Context, key string, value interface{}) error
	LRem(ctx context.Context, key string, count int64, value interface{}) error
	LRange(ctx context.Context, key string, start, stop int64) ([]string, error)
	BRPopLPush(ctx context.Context, source, destination string, timeout time.Duration) (string, error)
	Close() error
}

var _ RedisClient = (*redClient)(nil)

type redClient struct {
	cli *redis.Client
}

func NewClient(ctx context.Context, cfg *config.RedisConfig) (*redClient, error) {
	opts := &redis.Options{
		Addr:     cfg.URL,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
	c := redis.NewClient(opts)
	if err := c.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return &redClient{cli: c}, nil
}

func (c *redClient) Ping(ctx context.Context) error { return c.cli.Ping(ctx).Err() }

func (c *redClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return c.cli.Set(ctx, key, value, expiration).Err()
}

func (c *redClient) Get(ctx context.Context, key string) (string, error) {
	return c.cli.Get(ctx, key).Result()
}

func (c *redClient) Expire(ctx context.Context, key string, expiration time.Duration) error {
	return c.cli.Expire(ctx, key, expiration).Err()
}

func (c *redClient) Del(ctx context.Context, keys ...string) error {
	return c.cli.Del(ctx, keys...).Err()
}

func (c *redClient) HSet(ctx context.Context, key string, fields map[string]interface{}) error {
	return c.cli.HSet(ctx, key, fields).Err()
}

func (c *redClient) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	return c.cli.HGetAll(ctx, key).Result()
}

func (c *redClient) HDel(ctx context.Context, key string, fields ...string) error {
	return c.cli.HDel(ctx, key, fields...).Err()
}

func (c *redClient) LPush(ctx context.Context, key string, value interface{}) error {
	return c.cli.LPush(ctx, key, value).Err()
}

func (c *redClient) LRem(ctx context.Context, key string, count int64, value interface{}) error {
	return c.cli.LRem(ctx, key, count, value).Err()
}

func (c *redClient) LRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	return c.cli.LRange(ctx, key, start, stop).Result()
}

func (c *redClient) BRPopLPush(ctx context.Context, source, destination string, timeout time.Duration) (string, error) {
	return c.cli.BRPopLPush(ctx, source, destination, timeout).Result()
}

func (c *redClient) Close() error { return c.cli.Close() }

// IsNil reports whether err is the go-redis missing-key sentinel.
func IsNil(err error) bool { return err == redis.Nil }
