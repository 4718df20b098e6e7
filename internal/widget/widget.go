// Package widget holds the weather widget's state: the input controller, the query
// trigger, and the fetch effect that keeps the result store in sync with the query.
package widget

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kjstillabower/weather-widget/internal/client"
	"github.com/kjstillabower/weather-widget/internal/lifecycle"
	"github.com/kjstillabower/weather-widget/internal/models"
	"github.com/kjstillabower/weather-widget/internal/observability"
	"github.com/kjstillabower/weather-widget/internal/outcome"
	"github.com/kjstillabower/weather-widget/internal/store"
)

// Options configures a Widget.
type Options struct {
	// DefaultLocation seeds the input and the query at construction. Empty means the
	// mount-time fetch is skipped.
	DefaultLocation string
	// DiscardStaleResponses drops a response whose request was issued before the last
	// applied one. Off by default: the last response to resolve wins.
	DiscardStaleResponses bool
}

// Widget is safe for concurrent use. All state changes go through mu; the result store
// is only written under mu so replacements never interleave.
type Widget struct {
	client       client.WeatherClient
	store        store.ResultStore
	logger       *zap.Logger
	discardStale bool

	mu      sync.Mutex
	input   string
	query   string
	lastURL string
	mounted bool
	issued  uint64
	applied uint64
	// hasResult is set once this process has replaced the stored result. Until then a
	// remote store may still hold a previous process's value, which is not shown.
	hasResult bool

	inFlight lifecycle.InFlightTracker
	outcomes outcome.Tracker
}

// New returns an unmounted Widget. Call Mount to run the initial fetch.
func New(c client.WeatherClient, s store.ResultStore, logger *zap.Logger, opts Options) *Widget {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Widget{
		client:       c,
		store:        s,
		logger:       logger,
		discardStale: opts.DiscardStaleResponses,
		input:        opts.DefaultLocation,
		query:        opts.DefaultLocation,
	}
}

// Mount runs the fetch effect once for the current query. Later calls are no-ops.
func (w *Widget) Mount(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.mounted {
		return
	}
	w.mounted = true
	w.runEffectLocked(ctx)
}

// Input replaces the held input text. No validation, no trimming.
func (w *Widget) Input(value string) {
	w.mu.Lock()
	w.input = value
	w.mu.Unlock()
}

// Submit copies the input into the query, unconditionally. The fetch effect runs when
// the derived request URL differs from the one it last ran for.
func (w *Widget) Submit(ctx context.Context) {
	observability.SubmissionsTotal.Inc()
	w.mu.Lock()
	defer w.mu.Unlock()
	w.query = w.input
	if !w.mounted {
		return
	}
	if w.client.RequestURL(w.query) == w.lastURL {
		loggerFromContext(ctx, w.logger).Debug("query unchanged, fetch effect not rerun", zap.String("location", w.query))
		return
	}
	w.runEffectLocked(ctx)
}

// InputValue returns the current input text.
func (w *Widget) InputValue() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.input
}

// Query returns the last submitted location.
func (w *Widget) Query() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.query
}

// FetchingEnabled reports whether an API key is configured.
func (w *Widget) FetchingEnabled() bool {
	return w.client.Enabled()
}

// Snapshot returns the input and the current result for rendering. Before the first
// result applied by this widget, and on a store read error, the result is empty, which
// renders as loading.
func (w *Widget) Snapshot(ctx context.Context) (string, models.WeatherResult) {
	w.mu.Lock()
	input, hasResult := w.input, w.hasResult
	w.mu.Unlock()
	if !hasResult {
		return input, models.WeatherResult{}
	}
	result, ok, err := w.store.Load(ctx)
	if err != nil {
		observability.ResultStoreErrorsTotal.WithLabelValues("load").Inc()
		loggerFromContext(ctx, w.logger).Warn("result store load failed", zap.Error(err))
		return input, models.WeatherResult{}
	}
	if !ok {
		return input, models.WeatherResult{}
	}
	return input, result
}

// InFlight returns the number of fetches that have not resolved yet.
func (w *Widget) InFlight() int64 {
	return w.inFlight.Count()
}

// RecentOutcomes returns fetch outcome counts within window.
func (w *Widget) RecentOutcomes(window time.Duration) outcome.Counts {
	return w.outcomes.Window(window)
}

// Wait blocks until every started fetch has resolved or ctx is done.
func (w *Widget) Wait(ctx context.Context) error {
	return w.inFlight.WaitForZero(ctx, 5*time.Millisecond)
}

// runEffectLocked records the URL the effect ran for and, unless guarded, starts one
// fetch. Caller must hold w.mu.
func (w *Widget) runEffectLocked(ctx context.Context) {
	logger := loggerFromContext(ctx, w.logger)
	query := w.query
	w.lastURL = w.client.RequestURL(query)

	if query == "" {
		observability.FetchSkippedTotal.WithLabelValues("empty_location").Inc()
		logger.Debug("fetch skipped", zap.String("reason", "empty_location"))
		return
	}
	if !w.client.Enabled() {
		observability.FetchSkippedTotal.WithLabelValues("missing_api_key").Inc()
		logger.Debug("fetch skipped", zap.String("reason", "missing_api_key"))
		return
	}

	w.issued++
	seq := w.issued
	w.inFlight.Start()
	// Detached from the caller's cancellation: a fetch outlives the request that
	// triggered it and is never aborted.
	go w.fetch(context.WithoutCancel(ctx), seq, query)
}

func (w *Widget) fetch(ctx context.Context, seq uint64, query string) {
	defer w.inFlight.Done()
	logger := loggerFromContext(ctx, w.logger)
	start := time.Now()

	result, err := w.client.Fetch(ctx, query)
	if err != nil {
		// Failed fetches leave the store untouched; the page keeps showing loading.
		category := client.CategorizeError(err)
		observability.WeatherFetchFailuresTotal.WithLabelValues(string(category)).Inc()
		w.outcomes.RecordFailed()
		logger.Warn("weather fetch failed, result unchanged",
			zap.String("location", query),
			zap.String("category", string(category)),
			zap.Uint64("seq", seq),
			zap.Error(err))
		return
	}
	w.apply(ctx, logger, seq, query, result, time.Since(start))
}

func (w *Widget) apply(ctx context.Context, logger *zap.Logger, seq uint64, query string, result models.WeatherResult, took time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.discardStale && seq < w.applied {
		observability.StaleResponsesDiscardedTotal.Inc()
		w.outcomes.RecordDiscarded()
		logger.Debug("stale response discarded",
			zap.String("location", query),
			zap.Uint64("seq", seq),
			zap.Uint64("applied", w.applied))
		return
	}
	if err := w.store.Replace(ctx, result); err != nil {
		observability.ResultStoreErrorsTotal.WithLabelValues("replace").Inc()
		logger.Error("result store replace failed", zap.String("location", query), zap.Error(err))
		return
	}
	if seq > w.applied {
		w.applied = seq
	}
	w.hasResult = true
	w.outcomes.RecordApplied()
	logger.Debug("weather result replaced",
		zap.String("location", query),
		zap.Bool("loaded", result.Loaded()),
		zap.Uint64("seq", seq),
		zap.Duration("duration", took))
}

// loggerFromContext returns the request-scoped logger set by the correlation ID
// middleware, or fallback.
func loggerFromContext(ctx context.Context, fallback *zap.Logger) *zap.Logger {
	if v := ctx.Value("logger"); v != nil {
		if l, ok := v.(*zap.Logger); ok && l != nil {
			return l
		}
	}
	return fallback
}
