package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"github.com/kjstillabower/weather-widget/internal/models"
)

// redisClient is the subset of *redisv9.Client the store uses.
type redisClient interface {
	Get(ctx context.Context, key string) *redisv9.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redisv9.StatusCmd
	Ping(ctx context.Context) *redisv9.StatusCmd
	Close() error
}

// RedisStore implements ResultStore with a single redis string key holding JSON.
type RedisStore struct {
	client redisClient
	key    string
}

// NewRedisStore connects lazily to addr. An empty key uses DefaultKey.
func NewRedisStore(addr, key string) *RedisStore {
	return newRedisStore(redisv9.NewClient(&redisv9.Options{Addr: addr}), key)
}

func newRedisStore(client redisClient, key string) *RedisStore {
	if key == "" {
		key = DefaultKey
	}
	return &RedisStore{client: client, key: key}
}

// Load implements ResultStore.Load. redis.Nil is a miss, not an error.
func (s *RedisStore) Load(ctx context.Context) (models.WeatherResult, bool, error) {
	val, err := s.client.Get(ctx, s.key).Result()
	if err != nil {
		if errors.Is(err, redisv9.Nil) {
			return models.WeatherResult{}, false, nil
		}
		return models.WeatherResult{}, false, err
	}
	var result models.WeatherResult
	if err := json.Unmarshal([]byte(val), &result); err != nil {
		return models.WeatherResult{}, false, err
	}
	return result, true, nil
}

// Replace implements ResultStore.Replace. The key has no expiry.
func (s *RedisStore) Replace(ctx context.Context, result models.WeatherResult) error {
	raw, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key, raw, 0).Err()
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
