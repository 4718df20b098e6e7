package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultLocation seeds the widget when widget.default_location is unset.
const DefaultLocation = "Irvine, USA"

// Config holds service configuration loaded from YAML, .env and env.
type Config struct {
	ServerPort string

	// WeatherAPIKey may be empty: fetching is then disabled, not fatal.
	WeatherAPIKey      string
	WeatherAPIURL      string
	WeatherAPITimeout  time.Duration // 0 means no client timeout
	WeatherIconBaseURL string

	DefaultLocation       string
	DiscardStaleResponses bool

	StoreBackend string // "in_memory", "memcached" or "redis"

	MemcachedAddrs        string
	MemcachedTimeout      time.Duration
	MemcachedMaxIdleConns int

	RedisAddr string
	RedisKey  string

	RateLimitRPS   int // 0 disables the submit limiter
	RateLimitBurst int

	ShutdownTimeout           time.Duration
	ShutdownFetchDrainTimeout time.Duration
}

type fileConfig struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`

	WeatherAPI struct {
		URL         string `yaml:"url"`
		Timeout     string `yaml:"timeout"`
		IconBaseURL string `yaml:"icon_base_url"`
	} `yaml:"weather_api"`

	Widget struct {
		DefaultLocation       *string `yaml:"default_location"`
		DiscardStaleResponses bool    `yaml:"discard_stale_responses"`
	} `yaml:"widget"`

	Store struct {
		Backend string `yaml:"backend"`
		Memcached struct {
			Addrs        string `yaml:"addrs"`
			Timeout      string `yaml:"timeout"`
			MaxIdleConns int    `yaml:"max_idle_conns"`
		} `yaml:"memcached"`
		Redis struct {
			Addr string `yaml:"addr"`
			Key  string `yaml:"key"`
		} `yaml:"redis"`
	} `yaml:"store"`

	Reliability struct {
		RateLimitRPS   int `yaml:"rate_limit_rps"`
		RateLimitBurst int `yaml:"rate_limit_burst"`
	} `yaml:"reliability"`

	Shutdown struct {
		Timeout           string `yaml:"timeout"`
		FetchDrainTimeout string `yaml:"fetch_drain_timeout"`
	} `yaml:"shutdown"`
}

type secretsFile struct {
	WeatherAPIKey string `yaml:"weather_api_key"`
}

// Load reads configuration from config/{ENV_NAME}.yaml (default dev), then .env, then
// config/secrets.yaml. Process env wins over .env. Call from project root.
func Load() (*Config, error) {
	env := os.Getenv("ENV_NAME")
	if env == "" {
		env = "dev"
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("config: get working directory: %w", err)
	}
	configPath := filepath.Join(cwd, "config", env+".yaml")
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", configPath)
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	dotenv, err := godotenv.Read(filepath.Join(cwd, ".env"))
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read .env file: %w", err)
		}
		dotenv = map[string]string{}
	}
	lookup := func(name string) string {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			return v
		}
		return strings.TrimSpace(dotenv[name])
	}

	cfg := &Config{}

	cfg.ServerPort = fc.Server.Port
	if cfg.ServerPort == "" {
		cfg.ServerPort = "8080"
	}

	cfg.WeatherAPIKey = lookup("WEATHER_API_KEY")
	if cfg.WeatherAPIKey == "" {
		key, err := loadAPIKeyFromSecrets(cwd)
		if err != nil {
			return nil, err
		}
		cfg.WeatherAPIKey = key
	}

	cfg.WeatherAPIURL = fc.WeatherAPI.URL
	if cfg.WeatherAPIURL == "" {
		cfg.WeatherAPIURL = "https://api.openweathermap.org/data/2.5/weather"
	}
	cfg.WeatherAPITimeout = parseDurationOrZero(fc.WeatherAPI.Timeout, 0)
	cfg.WeatherIconBaseURL = fc.WeatherAPI.IconBaseURL
	if cfg.WeatherIconBaseURL == "" {
		cfg.WeatherIconBaseURL = "http://openweathermap.org/img/w/"
	}

	// An explicit empty default_location is kept: it skips the mount-time fetch.
	cfg.DefaultLocation = DefaultLocation
	if fc.Widget.DefaultLocation != nil {
		cfg.DefaultLocation = *fc.Widget.DefaultLocation
	}
	cfg.DiscardStaleResponses = fc.Widget.DiscardStaleResponses

	cfg.StoreBackend = strings.ToLower(lookup("STORE_BACKEND"))
	if cfg.StoreBackend == "" {
		cfg.StoreBackend = strings.TrimSpace(strings.ToLower(fc.Store.Backend))
	}
	if cfg.StoreBackend == "" {
		cfg.StoreBackend = "in_memory"
	}
	cfg.MemcachedAddrs = lookup("MEMCACHED_ADDRS")
	if cfg.MemcachedAddrs == "" {
		cfg.MemcachedAddrs = strings.TrimSpace(fc.Store.Memcached.Addrs)
	}
	if cfg.MemcachedAddrs == "" {
		cfg.MemcachedAddrs = "localhost:11211"
	}
	cfg.MemcachedTimeout = parseDuration(fc.Store.Memcached.Timeout, 500*time.Millisecond)
	cfg.MemcachedMaxIdleConns = fc.Store.Memcached.MaxIdleConns
	if cfg.MemcachedMaxIdleConns <= 0 {
		cfg.MemcachedMaxIdleConns = 2
	}
	cfg.RedisAddr = lookup("REDIS_ADDR")
	if cfg.RedisAddr == "" {
		cfg.RedisAddr = strings.TrimSpace(fc.Store.Redis.Addr)
	}
	if cfg.RedisAddr == "" {
		cfg.RedisAddr = "localhost:6379"
	}
	cfg.RedisKey = strings.TrimSpace(fc.Store.Redis.Key)
	if cfg.RedisKey == "" {
		cfg.RedisKey = "weather-widget:result"
	}

	cfg.RateLimitRPS = fc.Reliability.RateLimitRPS
	cfg.RateLimitBurst = fc.Reliability.RateLimitBurst
	if cfg.RateLimitRPS > 0 && cfg.RateLimitBurst <= 0 {
		cfg.RateLimitBurst = cfg.RateLimitRPS
	}

	cfg.ShutdownTimeout = parseDuration(fc.Shutdown.Timeout, 30*time.Second)
	cfg.ShutdownFetchDrainTimeout = parseDuration(fc.Shutdown.FetchDrainTimeout, 5*time.Second)

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadAPIKeyFromSecrets reads weather_api_key from config/secrets.yaml. A missing file
// yields "".
func loadAPIKeyFromSecrets(cwd string) (string, error) {
	secretsData, err := os.ReadFile(filepath.Join(cwd, "config", "secrets.yaml"))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("read secrets file: %w", err)
	}
	var sec secretsFile
	if err := yaml.Unmarshal(secretsData, &sec); err != nil {
		return "", fmt.Errorf("parse secrets file: %w", err)
	}
	return strings.TrimSpace(sec.WeatherAPIKey), nil
}

// parseDuration parses a duration string and returns defaultVal if parsing fails or result is <= 0.
func parseDuration(s string, defaultVal time.Duration) time.Duration {
	d := parseDurationOrZero(s, defaultVal)
	if d <= 0 {
		return defaultVal
	}
	return d
}

// parseDurationOrZero parses a duration string, returning defaultVal on empty string or parse error.
// Returns zero or negative durations as-is (caller should handle fallback).
func parseDurationOrZero(s string, defaultVal time.Duration) time.Duration {
	s = strings.TrimSpace(s)
	if s == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return defaultVal
	}
	return d
}

// validate performs post-load validation of configuration values.
func validate(cfg *Config) error {
	if cfg.WeatherAPITimeout < 0 {
		return fmt.Errorf("weather_api.timeout must not be negative, got %s", cfg.WeatherAPITimeout)
	}
	if cfg.RateLimitRPS < 0 {
		return fmt.Errorf("reliability.rate_limit_rps must not be negative, got %d", cfg.RateLimitRPS)
	}
	switch cfg.StoreBackend {
	case "in_memory", "memcached", "redis":
		// valid
	default:
		return fmt.Errorf("store.backend must be in_memory, memcached or redis, got %q", cfg.StoreBackend)
	}
	return nil
}
