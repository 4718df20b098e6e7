package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kjstillabower/weather-widget/internal/models"
	"github.com/kjstillabower/weather-widget/internal/observability"
)

// DefaultAPIURL is the OpenWeatherMap current-weather endpoint.
const DefaultAPIURL = "https://api.openweathermap.org/data/2.5/weather"

// WeatherClient fetches the provider payload for a location query.
type WeatherClient interface {
	// Enabled reports whether an API key is configured.
	Enabled() bool
	// RequestURL derives the outbound URL from the query and the configured key.
	RequestURL(location string) string
	Fetch(ctx context.Context, location string) (models.WeatherResult, error)
}

var (
	// ErrNotConfigured is returned without any network call when the key or location is empty.
	ErrNotConfigured = errors.New("weather client not configured")
	ErrRequest       = errors.New("weather request failed")
	ErrDecode        = errors.New("weather response decode failed")
)

// OpenWeatherClient issues a single GET per Fetch. It never retries, sends no custom
// headers, and decodes the body whatever the HTTP status is.
type OpenWeatherClient struct {
	apiKey string
	apiURL string
	client *http.Client
}

// NewOpenWeatherClient returns a client for apiURL (DefaultAPIURL when empty). An empty
// apiKey is allowed and leaves the client disabled. A zero timeout means no client timeout.
func NewOpenWeatherClient(apiKey, apiURL string, timeout time.Duration) *OpenWeatherClient {
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	return &OpenWeatherClient{
		apiKey: apiKey,
		apiURL: apiURL,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *OpenWeatherClient) Enabled() bool {
	return c.apiKey != ""
}

// RequestURL builds <apiURL>?q=<escaped location>&appid=<key>. q always precedes appid.
func (c *OpenWeatherClient) RequestURL(location string) string {
	sep := "?"
	if strings.Contains(c.apiURL, "?") {
		sep = "&"
	}
	return c.apiURL + sep + "q=" + url.QueryEscape(location) + "&appid=" + url.QueryEscape(c.apiKey)
}

// Fetch performs the GET and decodes the body into a WeatherResult. Network, read and
// decode failures come back wrapped in ErrRequest or ErrDecode; HTTP error statuses do not
// produce an error.
func (c *OpenWeatherClient) Fetch(ctx context.Context, location string) (models.WeatherResult, error) {
	if location == "" || !c.Enabled() {
		return models.WeatherResult{}, ErrNotConfigured
	}
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.RequestURL(location), nil)
	if err != nil {
		observability.WeatherAPICallsTotal.WithLabelValues("error").Inc()
		return models.WeatherResult{}, fmt.Errorf("%w: build request: %w", ErrRequest, err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		observability.WeatherAPICallsTotal.WithLabelValues("error").Inc()
		observability.WeatherAPIDuration.WithLabelValues("error").Observe(time.Since(start).Seconds())
		return models.WeatherResult{}, fmt.Errorf("%w: %w", ErrRequest, err)
	}
	defer resp.Body.Close()

	status := statusLabel(resp.StatusCode)
	observability.WeatherAPICallsTotal.WithLabelValues(status).Inc()
	observability.WeatherAPIDuration.WithLabelValues(status).Observe(time.Since(start).Seconds())

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.WeatherResult{}, fmt.Errorf("%w: read response body: %w", ErrRequest, err)
	}

	var result models.WeatherResult
	if err := json.Unmarshal(body, &result); err != nil {
		return models.WeatherResult{}, fmt.Errorf("%w: HTTP %d: %w", ErrDecode, resp.StatusCode, err)
	}
	return result, nil
}

func statusLabel(statusCode int) string {
	if statusCode >= 200 && statusCode < 300 {
		return "success"
	}
	if statusCode == http.StatusTooManyRequests {
		return "rate_limited"
	}
	if statusCode >= 400 && statusCode < 500 {
		return "client_error"
	}
	if statusCode >= 500 {
		return "server_error"
	}
	return "error"
}
