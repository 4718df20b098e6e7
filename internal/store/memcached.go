package store

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/bradfitz/gomemcache/memcache"

	"github.com/kjstillabower/weather-widget/internal/models"
)

// MemcachedStore implements ResultStore using memcached. Entries never expire.
type MemcachedStore struct {
	client *memcache.Client
	key    string
}

// NewMemcachedStore creates a MemcachedStore. addrs is a comma-separated list
// (e.g. "localhost:11211" or "host1:11211,host2:11211"). timeout and maxIdleConns
// use package defaults if zero; an empty key uses DefaultKey.
func NewMemcachedStore(addrs, key string, timeout time.Duration, maxIdleConns int) *MemcachedStore {
	servers := parseAddrs(addrs)
	if len(servers) == 0 {
		servers = []string{"localhost:11211"}
	}
	client := memcache.New(servers...)
	if timeout > 0 {
		client.Timeout = timeout
	}
	if maxIdleConns > 0 {
		client.MaxIdleConns = maxIdleConns
	}
	if key == "" {
		key = DefaultKey
	}
	return &MemcachedStore{client: client, key: key}
}

func parseAddrs(s string) []string {
	var out []string
	for _, a := range strings.Split(s, ",") {
		a = strings.TrimSpace(a)
		if a != "" {
			out = append(out, a)
		}
	}
	return out
}

// Load implements ResultStore.Load. Returns false, nil on a miss.
func (s *MemcachedStore) Load(ctx context.Context) (models.WeatherResult, bool, error) {
	if ctx.Err() != nil {
		return models.WeatherResult{}, false, ctx.Err()
	}
	item, err := s.client.Get(s.key)
	if err != nil {
		if errors.Is(err, memcache.ErrCacheMiss) {
			return models.WeatherResult{}, false, nil
		}
		return models.WeatherResult{}, false, err
	}
	var result models.WeatherResult
	if err := json.Unmarshal(item.Value, &result); err != nil {
		return models.WeatherResult{}, false, err
	}
	return result, true, nil
}

// Replace implements ResultStore.Replace.
func (s *MemcachedStore) Replace(ctx context.Context, result models.WeatherResult) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	raw, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return s.client.Set(&memcache.Item{Key: s.key, Value: raw})
}

// Ping checks if memcached is reachable. Used for health checks.
func (s *MemcachedStore) Ping(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return s.client.Ping()
}

// Close closes the memcached client connections. Call during shutdown.
func (s *MemcachedStore) Close() error {
	return s.client.Close()
}
