// redis/client.go
package redis

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// RedisClient is the narrow surface the unread index needs from Redis.
type RedisClient interface {
	HSet(ctx context.Context, key, field string, value interface{}) error
	HGet(ctx context.Context, key, field string) (string, error)
	HDel(ctx context.Context, key string, fields ...string) error
	Ping(ctx context.Context) error
}

// redisClient is the concrete RedisClient backed by go-redis.
type redisClient struct {
	client *redis.Client
}

func (r *redisClient) HSet(ctx context.Context, key, field string, value interface{}) error {
	return r.client.HSet(ctx, key, field, value).Err()
}

func (r *redisClient) HGet(ctx context.Context, key, field string) (string, error) {
	return r.client.HGet(ctx, key, field).Result()
}

func (r *redisClient) HDel(ctx context.Context, key string, fields ...string) error {
	return r.client.HDel(ctx, key, fields...).Err()
}

func (r *redisClient) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// NewRedisClient creates a RedisClient over a fresh go-redis connection.
func NewRedisClient(addr string, password string, db int) RedisClient {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	return &redisClient{client: rdb}
}

// IsNil reports whether the error is the go-redis missing-key sentinel.
func IsNil(err error) bool {
	return err == redis.Nil
}
