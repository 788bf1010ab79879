package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/sleeper-trades/external/sleeper"
	"github.com/riskibarqy/sleeper-trades/internal/config"
	"github.com/riskibarqy/sleeper-trades/internal/interfaces/httpapi"
	"github.com/riskibarqy/sleeper-trades/internal/observability"
	"github.com/riskibarqy/sleeper-trades/internal/platform/cache"
	"github.com/riskibarqy/sleeper-trades/internal/platform/logging"
	"github.com/riskibarqy/sleeper-trades/internal/platform/resilience"
	"github.com/riskibarqy/sleeper-trades/internal/usecase"
)

// App bundles the HTTP server with everything that needs an orderly stop:
// telemetry exporters, the profiler, and the fetch worker pool.
type App struct {
	Server *http.Server

	pool     *ants.Pool
	logger   *logging.Logger
	shutdown []func(context.Context) error
}

func New(cfg config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	engineLogger := logging.NewJSON(cfg.LogLevel)
	logging.SetDefault(engineLogger)

	a := &App{logger: engineLogger}

	uptraceShutdown, err := observability.InitUptrace(cfg, engineLogger)
	if err != nil {
		return nil, fmt.Errorf("init uptrace: %w", err)
	}
	a.shutdown = append(a.shutdown, uptraceShutdown)

	pyroscopeStop, err := observability.InitPyroscope(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("init pyroscope: %w", err)
	}
	a.shutdown = append(a.shutdown, func(context.Context) error { return pyroscopeStop() })

	// The pool runs round fetches; the client's gate is what actually caps
	// network concurrency, so the pool is sized above it to keep the gate fed.
	pool, err := ants.NewPool(cfg.SleeperMaxConcurrent * 4)
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	a.pool = pool

	client := sleeper.NewClient(sleeper.ClientConfig{
		BaseURL:       cfg.SleeperBaseURL,
		Timeout:       cfg.SleeperTimeout,
		MaxConcurrent: cfg.SleeperMaxConcurrent,
		MaxRetries:    cfg.SleeperMaxRetries,
		Logger:        engineLogger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.SleeperCircuitEnabled,
			FailureThreshold: cfg.SleeperCircuitFailureCount,
			OpenTimeout:      cfg.SleeperCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.SleeperCircuitHalfOpenMaxReq,
		},
	})

	playerFile := sleeper.NewPlayerFile(cfg.PlayersFile, engineLogger)
	playersCache := cache.NewStore(cfg.PlayersTTL, 1)
	usersCache := cache.NewStore(cfg.UserCacheTTL, cfg.UserCacheSize)
	resultsCache := cache.NewStore(cfg.ResultCacheTTL, cfg.ResultCacheMax)

	directorySvc := usecase.NewDirectoryService(client, playerFile, playersCache, engineLogger)
	resolver := usecase.NewIdentityResolver(client, usersCache, engineLogger)
	collector := usecase.NewTransactionCollector(client, pool, engineLogger)
	tradeSvc := usecase.NewTradeService(client, directorySvc, resolver, collector, resultsCache, engineLogger)

	handler := httpapi.NewHandler(tradeSvc, logger)
	router := httpapi.NewRouter(handler, logger, cfg.CORSAllowedOrigins)

	a.Server = &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	if a.Server.Addr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	return a, nil
}

// Shutdown stops background components after the HTTP server has drained.
func (a *App) Shutdown(ctx context.Context) error {
	var firstErr error
	for i := len(a.shutdown) - 1; i >= 0; i-- {
		if err := a.shutdown[i](ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if a.pool != nil {
		a.pool.Release()
	}
	if err := a.logger.Sync(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
