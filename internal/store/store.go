// Package store holds the widget's result store: the last fetched WeatherResult,
// always replaced wholesale.
package store

import (
	"context"
	"sync"

	"github.com/kjstillabower/weather-widget/internal/models"
)

// DefaultKey is the key remote backends keep the result under.
const DefaultKey = "weather-widget:result"

// ResultStore keeps exactly one WeatherResult. Load returns ok=false before the first
// Replace. Replace overwrites the whole value.
type ResultStore interface {
	Load(ctx context.Context) (models.WeatherResult, bool, error)
	Replace(ctx context.Context, result models.WeatherResult) error
}

// Pinger is implemented by backends that can report reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// InMemoryStore is the default ResultStore. Safe for concurrent use.
type InMemoryStore struct {
	mu     sync.RWMutex
	result models.WeatherResult
	set    bool
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Load(ctx context.Context) (models.WeatherResult, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.result, s.set, nil
}

func (s *InMemoryStore) Replace(ctx context.Context, result models.WeatherResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.result = result
	s.set = true
	return nil
}
