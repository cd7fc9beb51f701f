package adapter

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/utkogui/voluntariado-sub002/internal/infrastructure/cache/port"
)

const connectTimeout = 3 * time.Second

// RedisCache backs the cache port with a go-redis v9 client. Every key is
// namespaced so the messaging service can share a Redis instance with the
// asynq broker without key collisions.
type RedisCache struct {
	client    *redis.Client
	namespace string
}

// NewRedisAdapter connects using REDIS_URL. REDIS_NAMESPACE overrides the
// default key namespace.
func NewRedisAdapter() (*RedisCache, error) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		return nil, errors.New("redis: REDIS_URL environment variable is not set")
	}
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis: parse url: %w", err)
	}

	namespace := os.Getenv("REDIS_NAMESPACE")
	if namespace == "" {
		namespace = "voluntariado"
	}

	c := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := c.Ping(ctx).Err(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("redis: ping: %w", err)
	}
	return &RedisCache{client: c, namespace: namespace}, nil
}

var _ port.Cache = (*RedisCache)(nil)

func (r *RedisCache) key(k string) string {
	return r.namespace + ":" + k
}

func (r *RedisCache) Get(ctx context.Context, key string) (string, error) {
	res, err := r.client.Get(ctx, r.key(key)).Result()
	if err == redis.Nil {
		return "", port.ErrMiss
	}
	if err != nil {
		return "", err
	}
	return res, nil
}

func (r *RedisCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	return r.client.Set(ctx, r.key(key), value, ttl).Err()
}

func (r *RedisCache) Del(ctx context.Context, keys ...string) (int64, error) {
	if len(keys) == 0 {
		return 0, nil
	}
	namespaced := make([]string, len(keys))
	for i, k := range keys {
		namespaced[i] = r.key(k)
	}
	return r.client.Del(ctx, namespaced...).Result()
}

func (r *RedisCache) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisCache) Close() error {
	return r.client.Close()
}
