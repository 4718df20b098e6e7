package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kjstillabower/weather-widget/internal/lifecycle"
	"github.com/kjstillabower/weather-widget/internal/models"
	"github.com/kjstillabower/weather-widget/internal/observability"
	"github.com/kjstillabower/weather-widget/internal/outcome"
	"github.com/kjstillabower/weather-widget/internal/render"
	"github.com/kjstillabower/weather-widget/internal/store"
)

// Widget is the widget surface the handlers drive.
type Widget interface {
	Input(value string)
	Submit(ctx context.Context)
	Snapshot(ctx context.Context) (string, models.WeatherResult)
	FetchingEnabled() bool
	InFlight() int64
	RecentOutcomes(window time.Duration) outcome.Counts
}

// outcomeWindow is the window health reports fetch outcomes over.
const outcomeWindow = time.Minute

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	widget      Widget
	iconBaseURL string
	// storePing, when set, is called to check result store reachability.
	storePing func(ctx context.Context) error
	logger    *zap.Logger
}

// NewHandler returns a new Handler. When s implements store.Pinger, health reports its
// reachability.
func NewHandler(w Widget, s store.ResultStore, iconBaseURL string, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Handler{
		widget:      w,
		iconBaseURL: iconBaseURL,
		logger:      logger,
	}
	if p, ok := s.(store.Pinger); ok {
		h.storePing = p.Ping
	}
	return h
}

func (h *Handler) view(ctx context.Context) render.View {
	input, result := h.widget.Snapshot(ctx)
	return render.Render(input, result, h.iconBaseURL)
}

// GetPage handles GET /.
func (h *Handler) GetPage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := render.WritePage(w, h.view(r.Context())); err != nil {
		requestLogger(r, h.logger).Error("page render failed", zap.Error(err))
	}
}

// GetView handles GET /api/view.
func (h *Handler) GetView(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.view(r.Context()))
}

// PostInput handles POST /input. The body carries the full current input text as field
// "value", form-encoded or JSON.
func (h *Handler) PostInput(w http.ResponseWriter, r *http.Request) {
	value, ok, err := readField(r, "value")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_BODY", "request body could not be parsed")
		return
	}
	if !ok {
		writeError(w, r, http.StatusBadRequest, "MISSING_VALUE", "value is required")
		return
	}
	h.widget.Input(value)
	w.WriteHeader(http.StatusNoContent)
}

// PostSubmit handles POST /submit. A "location" field, when present, goes through the
// input controller first. Empty and whitespace-only values are submitted as-is.
func (h *Handler) PostSubmit(w http.ResponseWriter, r *http.Request) {
	value, ok, err := readField(r, "location")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_BODY", "request body could not be parsed")
		return
	}
	if ok {
		h.widget.Input(value)
	}
	h.widget.Submit(r.Context())

	if wantsJSON(r) {
		writeJSON(w, http.StatusAccepted, h.view(r.Context()))
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// GetHealth handles GET /health.
func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	status, statusCode := "ok", http.StatusOK
	checks := make(map[string]string)

	if h.storePing != nil {
		if err := h.storePing(r.Context()); err != nil {
			checks["store"] = "unhealthy"
			status, statusCode = "degraded", http.StatusServiceUnavailable
			requestLogger(r, h.logger).Debug("result store ping failed", zap.Error(err))
		} else {
			checks["store"] = "healthy"
		}
	}
	if lifecycle.IsShuttingDown() {
		status, statusCode = "shutting-down", http.StatusServiceUnavailable
	}

	_, result := h.widget.Snapshot(r.Context())
	state := "loading"
	if result.Loaded() {
		state = "loaded"
	}

	recent := map[string]interface{}{
		"window":   outcomeWindow.String(),
		"outcomes": h.widget.RecentOutcomes(outcomeWindow),
	}
	resp := map[string]interface{}{
		"status":          status,
		"service":         observability.ServiceName,
		"version":         "dev",
		"fetching":        h.widget.FetchingEnabled(),
		"state":           state,
		"inFlightFetches": h.widget.InFlight(),
		"recentFetches":   recent,
		"checks":          checks,
		"timestamp":       time.Now().UTC().Format(time.RFC3339),
	}
	writeJSON(w, statusCode, resp)
}

// readField returns the named field from a JSON object body or a form body. ok is false
// when the field is absent. An empty body is not an error.
func readField(r *http.Request, name string) (value string, ok bool, err error) {
	if isJSON(r.Header.Get("Content-Type")) {
		var body map[string]*string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			if errors.Is(err, io.EOF) {
				return "", false, nil
			}
			return "", false, err
		}
		v, present := body[name]
		if !present || v == nil {
			return "", false, nil
		}
		return *v, true, nil
	}
	if err := r.ParseForm(); err != nil {
		return "", false, err
	}
	if _, present := r.PostForm[name]; !present {
		return "", false, nil
	}
	return r.PostForm.Get(name), true, nil
}

func isJSON(contentType string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(contentType)), "application/json")
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(strings.ToLower(r.Header.Get("Accept")), "application/json")
}

// requestLogger returns the correlation-scoped logger from the request context, or fallback.
func requestLogger(r *http.Request, fallback *zap.Logger) *zap.Logger {
	if logger, ok := r.Context().Value("logger").(*zap.Logger); ok && logger != nil {
		return logger
	}
	return fallback
}

// writeJSON writes a JSON response with the specified HTTP status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes an error response in the standard error format with code, message,
// and requestId (correlation ID) if available in request context.
func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	corrID := ""
	if v, ok := r.Context().Value("correlation_id").(string); ok {
		corrID = v
	}
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]string{
			"code":      code,
			"message":   message,
			"requestId": corrID,
		},
	})
}
