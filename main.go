package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fakhrymubarak/skytrackr/internal/config"
	"github.com/fakhrymubarak/skytrackr/internal/handler"
	"github.com/fakhrymubarak/skytrackr/internal/middleware"
	"github.com/fakhrymubarak/skytrackr/internal/redis"
	"github.com/fakhrymubarak/skytrackr/internal/repository"
	"github.com/fakhrymubarak/skytrackr/internal/service"
	"github.com/fakhrymubarak/skytrackr/internal/storage"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// app holds the wired request pipeline.
type app struct {
	handler http.Handler
	limiter *middleware.RateLimiter
	store   *storage.Store
}

// newKV uses Redis when it answers a ping and falls back to process memory otherwise.
func newKV(logger *zap.SugaredLogger) storage.KV {
	client := redis.GetClient()
	if err := redis.Ping(client, 2*time.Second); err != nil {
		logger.Warnw("Redis unavailable, saved cities are kept in memory", "addr", config.GetRedisAddr(), "error", err)
		return storage.NewMemoryKV()
	}
	logger.Infow("Connected to Redis", "addr", config.GetRedisAddr())
	return storage.NewRedisKV(client, config.GetStoragePrefix())
}

func newApp(kv storage.KV, weatherRepo repository.WeatherRepository, newsRepo repository.NewsRepository, logger *zap.SugaredLogger) *app {
	store := storage.NewStore(kv, logger)
	weatherService := service.NewWeatherService(weatherRepo, store)
	newsService := service.NewNewsService(newsRepo)

	limiter := middleware.NewRateLimiterFromConfig()
	router := handler.NewRouter(handler.Handlers{
		Weather:     handler.NewWeatherHandler(weatherService, service.NewGenerations()),
		SavedCities: handler.NewSavedCitiesHandler(store),
		News:        handler.NewNewsHandler(newsService),
	}, limiter)
	return &app{
		handler: middleware.RequestLogger(logger)(router),
		limiter: limiter,
		store:   store,
	}
}

func newServer(h http.Handler) *http.Server {
	return &http.Server{
		Addr:              ":" + config.GetServerPort(),
		Handler:           h,
		ReadHeaderTimeout: config.GetServerTimeoutDuration("read_header_timeout", 15*time.Second),
		ReadTimeout:       config.GetServerTimeoutDuration("read_timeout", 15*time.Second),
		WriteTimeout:      config.GetServerTimeoutDuration("write_timeout", 20*time.Second),
		IdleTimeout:       config.GetServerTimeoutDuration("idle_timeout", 30*time.Second),
	}
}

func main() {
	logger := config.GetLogger()
	defer func() { _ = logger.Sync() }()

	if config.GetOpenWeatherMapAPIKey() == "" {
		logger.Warnw("OPENWEATHERMAP_API_KEY is not set, weather requests will fail")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := newApp(newKV(logger), repository.NewWeatherRepository(), repository.NewNewsRepository(""), logger)
	a.limiter.StartCleanup(ctx)
	srv := newServer(a.handler)

	serverErr := make(chan error, 1)
	go func() {
		logger.Infow("SkyTrackr API server running", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		logger.Fatalw("Server failed", "error", err)
	case <-ctx.Done():
	}

	logger.Infow("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorw("Graceful shutdown failed", "error", err)
	}
	if err := redis.GetClient().Close(); err != nil {
		logger.Debugw("Closing redis client", "error", err)
	}
}
