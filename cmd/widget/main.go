package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kjstillabower/weather-widget/internal/client"
	"github.com/kjstillabower/weather-widget/internal/config"
	httphandler "github.com/kjstillabower/weather-widget/internal/http"
	"github.com/kjstillabower/weather-widget/internal/lifecycle"
	"github.com/kjstillabower/weather-widget/internal/observability"
	"github.com/kjstillabower/weather-widget/internal/store"
	"github.com/kjstillabower/weather-widget/internal/widget"
)

func main() {
	logger, err := observability.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("config", zap.Error(err))
	}

	weatherClient := client.NewOpenWeatherClient(cfg.WeatherAPIKey, cfg.WeatherAPIURL, cfg.WeatherAPITimeout)
	if !weatherClient.Enabled() {
		logger.Warn("WEATHER_API_KEY not set; weather fetching disabled, page will stay loading")
	}

	resultStore, closeStore, err := newResultStore(cfg)
	if err != nil {
		logger.Fatal("result store", zap.Error(err))
	}
	logger.Info("result store backend", zap.String("backend", cfg.StoreBackend))

	w := widget.New(weatherClient, resultStore, logger, widget.Options{
		DefaultLocation:       cfg.DefaultLocation,
		DiscardStaleResponses: cfg.DiscardStaleResponses,
	})
	w.Mount(context.Background())

	var limiter *rate.Limiter
	if cfg.RateLimitRPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)
	}
	var requests lifecycle.InFlightTracker
	handler := httphandler.NewHandler(w, resultStore, cfg.WeatherIconBaseURL, logger)
	router := httphandler.NewRouter(handler, logger, limiter, &requests)

	srv := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server starting", zap.String("addr", ":"+cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	<-ctx.Done()
	stop()

	logger.Info("graceful shutdown triggered")
	lifecycle.SetShuttingDown(true)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err), zap.Int64("in_flight_requests", requests.Count()))
	}

	logger.Info("waiting for in-flight fetches", zap.Int64("count", w.InFlight()))
	drainCtx, drainCancel := context.WithTimeout(context.Background(), cfg.ShutdownFetchDrainTimeout)
	defer drainCancel()
	if err := w.Wait(drainCtx); err != nil {
		logger.Warn("in-flight fetches not completed", zap.Error(err), zap.Int64("remaining", w.InFlight()))
	}

	if err := observability.FlushTelemetry(context.Background(), logger); err != nil {
		logger.Error("telemetry flush", zap.Error(err))
	}
	if err := closeStore(); err != nil {
		logger.Error("result store close", zap.Error(err))
	}
	logger.Info("shutdown complete")
}

// newResultStore builds the configured backend and its close function. Remote backends
// must answer a ping at startup.
func newResultStore(cfg *config.Config) (store.ResultStore, func() error, error) {
	switch cfg.StoreBackend {
	case "memcached":
		mc := store.NewMemcachedStore(cfg.MemcachedAddrs, store.DefaultKey, cfg.MemcachedTimeout, cfg.MemcachedMaxIdleConns)
		if err := mc.Ping(context.Background()); err != nil {
			_ = mc.Close()
			return nil, nil, fmt.Errorf("memcached %s: %w", cfg.MemcachedAddrs, err)
		}
		return mc, mc.Close, nil
	case "redis":
		rs := store.NewRedisStore(cfg.RedisAddr, cfg.RedisKey)
		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := rs.Ping(pingCtx); err != nil {
			_ = rs.Close()
			return nil, nil, fmt.Errorf("redis %s: %w", cfg.RedisAddr, err)
		}
		return rs, rs.Close, nil
	default:
		return store.NewInMemoryStore(), func() error { return nil }, nil
	}
}
