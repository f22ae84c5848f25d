package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpAdapter "github.com/iho/gowallet/internal/adapter/http"
	"github.com/iho/gowallet/internal/adapter/http/handler"
	"github.com/iho/gowallet/internal/adapter/http/middleware"
	"github.com/iho/gowallet/internal/adapter/repository/memory"
	postgresRepo "github.com/iho/gowallet/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/gowallet/internal/adapter/repository/redis"
	"github.com/iho/gowallet/internal/infrastructure/config"
	"github.com/iho/gowallet/internal/infrastructure/logger"
	"github.com/iho/gowallet/internal/infrastructure/metrics"
	"github.com/iho/gowallet/internal/infrastructure/postgres"
	"github.com/iho/gowallet/internal/infrastructure/redis"
	"github.com/iho/gowallet/internal/usecase"
)

const limiterCleanupInterval = 10 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	log.Logger = appLogger

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, appLogger); err != nil {
		appLogger.Fatal().Err(err).Msg("server failed")
	}
}

func run(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	app, err := buildApp(ctx, cfg, logger, registry)
	if err != nil {
		return err
	}
	defer app.Close()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      app.handler,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info().Str("port", cfg.HTTPPort).Str("storage", cfg.StorageDriver).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info().Msg("server stopped")
	return nil
}

// app is the wired HTTP handler plus the resources it holds.
type app struct {
	handler http.Handler
	closers []func()
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// storage bundles the repository implementations for one driver.
type storage struct {
	txManager  usecase.TransactionManager
	entryRepo  usecase.EntryRepository
	ledgerRepo usecase.LedgerRepository
	retrier    usecase.Retrier
	checks     map[string]handler.Check
	close      func()
	// cacheScope keys the Redis entry cache to this ledger. A ledger that
	// does not outlive the process gets a fresh scope per start.
	cacheScope string
}

func buildApp(ctx context.Context, cfg *config.Config, logger zerolog.Logger, reg prometheus.Registerer) (*app, error) {
	a := &app{}

	store, err := openStorage(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, store.close)

	var (
		cache            usecase.EntryCache
		idempotencyStore usecase.IdempotencyStore
	)
	if cfg.RedisEnabled() {
		redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		a.closers = append(a.closers, func() { redisClient.Close() })
		logger.Info().Msg("connected to redis")

		cache = redisRepo.NewEntryCache(redisClient, store.cacheScope, cfg.BalanceCacheTTL)
		idempotencyStore = redisRepo.NewIdempotencyStore(redisClient, cfg.WalletID)
		store.checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}

	walletMetrics := metrics.New(reg)

	walletUC := usecase.NewWalletUseCase(usecase.WalletConfig{
		TxManager: store.txManager,
		EntryRepo: store.entryRepo,
		IDGen:     postgresRepo.NewULIDGenerator(),
		Retrier:   store.retrier,
		Cache:     cache,
		Metrics:   walletMetrics,
		Logger:    &logger,
		WalletID:  cfg.WalletID,
	})

	routerCfg := httpAdapter.RouterConfig{
		WalletHandler:    handler.NewWalletHandler(walletUC),
		LedgerHandler:    handler.NewLedgerHandler(usecase.NewLedgerUseCase(store.ledgerRepo)),
		HealthHandler:    handler.NewHealthHandler(store.checks),
		HTTPMetrics:      middleware.NewHTTPMetrics(reg),
		IdempotencyStore: idempotencyStore,
		IdempotencyTTL:   cfg.IdempotencyTTL,
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		Logger:           logger,
	}
	if gatherer, ok := reg.(prometheus.Gatherer); ok {
		routerCfg.MetricsHandler = promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
	}
	if cfg.RateLimitRPS > 0 {
		limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
		routerCfg.RateLimiter = limiter
		a.closers = append(a.closers, startLimiterCleanup(limiter))
	}

	a.handler = httpAdapter.NewRouter(routerCfg)
	return a, nil
}

func openStorage(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*storage, error) {
	switch cfg.StorageDriver {
	case config.StorageDriverMemory:
		store := memory.NewStore()
		logger.Warn().Msg("using in-memory storage; balances are lost on restart")
		return &storage{
			txManager:  store,
			entryRepo:  store,
			ledgerRepo: store,
			checks:     map[string]handler.Check{},
			close:      func() {},
			cacheScope: cfg.WalletID + ":" + postgresRepo.NewULIDGenerator().Generate(),
		}, nil

	case config.StorageDriverPostgres:
		if cfg.AutoMigrate {
			if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
				return nil, err
			}
		}

		pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
			DatabaseURL:    cfg.DatabaseURL,
			MaxConns:       cfg.DatabaseMaxConns,
			MinConns:       cfg.DatabaseMinConns,
			ConnectTimeout: cfg.DatabaseTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		logger.Info().Msg("connected to postgres")

		return &storage{
			txManager:  postgresRepo.NewTxManager(pool),
			entryRepo:  postgresRepo.NewEntryRepository(pool, cfg.WalletID),
			ledgerRepo: postgresRepo.NewLedgerRepository(pool, cfg.WalletID),
			retrier:    postgresRepo.NewRetrier(logger),
			checks:     map[string]handler.Check{"postgres": pool.Ping},
			close:      pool.Close,
			cacheScope: cfg.WalletID,
		}, nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

func startLimiterCleanup(limiter *middleware.RateLimiter) func() {
	ticker := time.NewTicker(limiterCleanupInterval)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-ticker.C:
				limiter.CleanupLimiters(time.Hour)
			case <-done:
				return
			}
		}
	}()

	return func() {
		ticker.Stop()
		close(done)
	}
}
