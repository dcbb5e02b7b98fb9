package prefs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "wthr:prefs"

// RedisStore keeps preferences in Redis under wthr:prefs:<scope>:<key>.
type RedisStore struct {
	client redis.Cmdable
}

// NewRedisStore wraps an existing client.
func NewRedisStore(client redis.Cmdable) *RedisStore {
	return &RedisStore{client: client}
}

// NewRedisClient connects and pings.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:            addr,
		Password:        password,
		DB:              db,
		ConnMaxLifetime: time.Hour,
	})

	if _, err := client.Ping(ctx).Result(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}
	return client, nil
}

func redisKey(scope, key string) string {
	return redisKeyPrefix + ":" + scope + ":" + key
}

func (s *RedisStore) GetPreference(ctx context.Context, scope, key string) (string, bool, error) {
	val, err := s.client.Get(ctx, redisKey(scope, key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (s *RedisStore) SetPreference(ctx context.Context, scope, key, value string) error {
	return s.client.Set(ctx, redisKey(scope, key), value, 0).Err()
}

// Ping reports whether Redis is reachable.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
