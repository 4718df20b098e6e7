package http

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kjstillabower/weather-widget/internal/lifecycle"
	"github.com/kjstillabower/weather-widget/internal/observability"
)

// NewRouter wires the widget routes. limiter guards POST /submit only and may be nil.
// tracker counts in-flight requests for graceful shutdown and may be nil.
func NewRouter(h *Handler, logger *zap.Logger, limiter *rate.Limiter, tracker *lifecycle.InFlightTracker) *mux.Router {
	router := mux.NewRouter()
	router.Use(CorrelationIDMiddleware(logger))
	router.Use(MetricsMiddleware)
	if tracker != nil {
		router.Use(InFlightMiddleware(tracker))
	}

	router.HandleFunc("/", h.GetPage).Methods(http.MethodGet)
	router.HandleFunc("/api/view", h.GetView).Methods(http.MethodGet)
	router.HandleFunc("/input", h.PostInput).Methods(http.MethodPost)
	router.Handle("/submit", RateLimitMiddleware(limiter)(http.HandlerFunc(h.PostSubmit))).Methods(http.MethodPost)
	router.HandleFunc("/health", h.GetHealth).Methods(http.MethodGet)
	router.Handle("/metrics", observability.MetricsHandler())
	return router
}
