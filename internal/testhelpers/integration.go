//go:build integration
// +build integration

package testhelpers

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/kjstillabower/weather-widget/internal/client"
	"github.com/kjstillabower/weather-widget/internal/store"
	"github.com/kjstillabower/weather-widget/internal/widget"
)

// IntegrationTestConfig holds configuration for integration tests.
type IntegrationTestConfig struct {
	APIKey        string
	APIURL        string
	StoreBackend  string // "in_memory", "memcached" or "redis"
	MemcachedAddr string
	RedisAddr     string
}

// GetIntegrationConfig loads integration test configuration from environment.
// Skips test if WEATHER_API_KEY is not set.
func GetIntegrationConfig(t *testing.T) IntegrationTestConfig {
	apiKey := os.Getenv("WEATHER_API_KEY")
	if apiKey == "" {
		t.Skip("WEATHER_API_KEY not set, skipping integration test")
	}

	apiURL := os.Getenv("WEATHER_API_URL")
	if apiURL == "" {
		apiURL = client.DefaultAPIURL
	}

	memcachedAddr := os.Getenv("MEMCACHED_ADDRS")
	if memcachedAddr == "" {
		memcachedAddr = "localhost:11211"
	}
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}

	return IntegrationTestConfig{
		APIKey:        apiKey,
		APIURL:        apiURL,
		StoreBackend:  os.Getenv("INTEGRATION_STORE_BACKEND"),
		MemcachedAddr: memcachedAddr,
		RedisAddr:     redisAddr,
	}
}

// SetupIntegrationClient creates a live provider client for integration tests.
func SetupIntegrationClient(t *testing.T, cfg IntegrationTestConfig) *client.OpenWeatherClient {
	return client.NewOpenWeatherClient(cfg.APIKey, cfg.APIURL, 10*time.Second)
}

// SetupIntegrationStore returns the configured result store, falling back to in-memory
// when the remote backend is unreachable, plus a cleanup function.
func SetupIntegrationStore(t *testing.T, cfg IntegrationTestConfig) (store.ResultStore, func()) {
	key := store.DefaultKey + ":it:" + t.Name()
	switch cfg.StoreBackend {
	case "memcached":
		mc := store.NewMemcachedStore(cfg.MemcachedAddr, key, 500*time.Millisecond, 2)
		if err := mc.Ping(context.Background()); err == nil {
			t.Logf("Using Memcached store at %s", cfg.MemcachedAddr)
			return mc, func() { _ = mc.Close() }
		} else {
			t.Logf("Memcached not available (%v), using in-memory store", err)
		}
		_ = mc.Close()
	case "redis":
		rs := store.NewRedisStore(cfg.RedisAddr, key)
		if err := rs.Ping(context.Background()); err == nil {
			t.Logf("Using Redis store at %s", cfg.RedisAddr)
			return rs, func() { _ = rs.Close() }
		} else {
			t.Logf("Redis not available (%v), using in-memory store", err)
		}
		_ = rs.Close()
	}
	return store.NewInMemoryStore(), func() {}
}

// SetupIntegrationWidget builds a mounted widget against the live provider and waits for
// the mount-time fetch to resolve.
func SetupIntegrationWidget(t *testing.T, cfg IntegrationTestConfig, defaultLocation string) (*widget.Widget, store.ResultStore, func()) {
	st, cleanup := SetupIntegrationStore(t, cfg)
	w := widget.New(SetupIntegrationClient(t, cfg), st, nil, widget.Options{DefaultLocation: defaultLocation})
	w.Mount(context.Background())
	WaitForFetches(t, w)
	return w, st, cleanup
}

// WaitForFetches blocks until the widget has no fetch in flight, failing after 15s.
func WaitForFetches(t *testing.T, w *widget.Widget) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := w.Wait(ctx); err != nil {
		t.Fatalf("fetches did not resolve: %v", err)
	}
}
