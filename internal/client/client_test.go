package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

const irvineBody = `{"weather":[{"id":800,"main":"Clear","description":"clear sky","icon":"01d"}],
"main":{"temp":300,"temp_min":295,"temp_max":305},"sys":{"country":"US"},"name":"Irvine","cod":200}`

func TestOpenWeatherClient_Enabled(t *testing.T) {
	if NewOpenWeatherClient("", "", 0).Enabled() {
		t.Error("Enabled() = true with empty key, want false")
	}
	if !NewOpenWeatherClient("k", "", 0).Enabled() {
		t.Error("Enabled() = false with key, want true")
	}
}

// TestOpenWeatherClient_RequestURL verifies that the URL is derived from the query and
// key only, with the query escaped and q placed before appid.
func TestOpenWeatherClient_RequestURL(t *testing.T) {
	tests := []struct {
		name     string
		apiURL   string
		location string
		want     string
	}{
		{
			name:     "default endpoint",
			apiURL:   "",
			location: "Irvine, USA",
			want:     "https://api.openweathermap.org/data/2.5/weather?q=Irvine%2C+USA&appid=secret",
		},
		{
			name:     "reserved characters escaped",
			apiURL:   "http://example.test/weather",
			location: "a&b=c",
			want:     "http://example.test/weather?q=a%26b%3Dc&appid=secret",
		},
		{
			name:     "endpoint with existing query",
			apiURL:   "http://example.test/weather?lang=en",
			location: "Paris",
			want:     "http://example.test/weather?lang=en&q=Paris&appid=secret",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewOpenWeatherClient("secret", tt.apiURL, 0)
			if got := c.RequestURL(tt.location); got != tt.want {
				t.Errorf("RequestURL(%q) = %q, want %q", tt.location, got, tt.want)
			}
		})
	}
}

func TestOpenWeatherClient_Fetch_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		if got := r.URL.Query().Get("q"); got != "Irvine, USA" {
			t.Errorf("q = %q, want %q", got, "Irvine, USA")
		}
		if got := r.URL.Query().Get("appid"); got != "test-key" {
			t.Errorf("appid = %q, want test-key", got)
		}
		if r.URL.Query().Has("units") {
			t.Error("units must not be sent; temperatures are expected in Kelvin")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(irvineBody))
	}))
	defer server.Close()

	c := NewOpenWeatherClient("test-key", server.URL, 2*time.Second)
	got, err := c.Fetch(context.Background(), "Irvine, USA")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if !got.Loaded() {
		t.Fatal("Fetch() result not loaded")
	}
	if got.Main.Temp != 300 || got.Name != "Irvine" || got.CountryCode() != "US" {
		t.Errorf("Fetch() = %+v", got)
	}
}

// TestOpenWeatherClient_Fetch_ErrorStatusStillDecoded verifies that HTTP error statuses
// are not treated as errors: the body is decoded and returned as-is.
func TestOpenWeatherClient_Fetch_ErrorStatusStillDecoded(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"cod":"404","message":"city not found"}`))
	}))
	defer server.Close()

	c := NewOpenWeatherClient("test-key", server.URL, 0)
	got, err := c.Fetch(context.Background(), "Nowhere")
	if err != nil {
		t.Fatalf("Fetch() error = %v, want nil for 404 with JSON body", err)
	}
	if got.Loaded() {
		t.Error("404 body should decode to an unloaded result")
	}
	if got.Message != "city not found" {
		t.Errorf("Message = %q", got.Message)
	}
}

func TestOpenWeatherClient_Fetch_DecodeError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>bad gateway</html>"))
	}))
	defer server.Close()

	c := NewOpenWeatherClient("test-key", server.URL, 0)
	_, err := c.Fetch(context.Background(), "Irvine")
	if !errors.Is(err, ErrDecode) {
		t.Fatalf("Fetch() error = %v, want ErrDecode", err)
	}
	if CategorizeError(err) != ErrorCategoryParsing {
		t.Errorf("CategorizeError() = %v, want parsing", CategorizeError(err))
	}
}

func TestOpenWeatherClient_Fetch_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	c := NewOpenWeatherClient("test-key", url, 0)
	_, err := c.Fetch(context.Background(), "Irvine")
	if !errors.Is(err, ErrRequest) {
		t.Fatalf("Fetch() error = %v, want ErrRequest", err)
	}
}

func TestOpenWeatherClient_Fetch_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	c := NewOpenWeatherClient("test-key", server.URL, 50*time.Millisecond)
	_, err := c.Fetch(context.Background(), "Irvine")
	if err == nil {
		t.Fatal("Fetch() expected timeout error, got nil")
	}
	if CategorizeError(err) != ErrorCategoryTimeout {
		t.Errorf("CategorizeError() = %v, want timeout (err = %v)", CategorizeError(err), err)
	}
}

// TestOpenWeatherClient_Fetch_NotConfigured verifies that no request is sent when the
// key or the location is empty.
func TestOpenWeatherClient_Fetch_NotConfigured(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	if _, err := NewOpenWeatherClient("", server.URL, 0).Fetch(context.Background(), "Irvine"); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("Fetch() without key error = %v, want ErrNotConfigured", err)
	}
	if _, err := NewOpenWeatherClient("k", server.URL, 0).Fetch(context.Background(), ""); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("Fetch() with empty location error = %v, want ErrNotConfigured", err)
	}
	if calls.Load() != 0 {
		t.Errorf("server received %d calls, want 0", calls.Load())
	}
}

func TestStatusLabel(t *testing.T) {
	tests := map[int]string{200: "success", 204: "success", 301: "error", 404: "client_error", 429: "rate_limited", 503: "server_error"}
	for code, want := range tests {
		if got := statusLabel(code); got != want {
			t.Errorf("statusLabel(%d) = %q, want %q", code, got, want)
		}
	}
}
