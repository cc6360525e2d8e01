package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	httpAdapter "github.com/iho/loanledger/internal/adapter/http"
	"github.com/iho/loanledger/internal/adapter/http/handler"
	postgresRepo "github.com/iho/loanledger/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/loanledger/internal/adapter/repository/redis"
	"github.com/iho/loanledger/internal/calendar"
	"github.com/iho/loanledger/internal/infrastructure/config"
	"github.com/iho/loanledger/internal/infrastructure/logger"
	"github.com/iho/loanledger/internal/infrastructure/metrics"
	"github.com/iho/loanledger/internal/infrastructure/postgres"
	"github.com/iho/loanledger/internal/infrastructure/redis"
	"github.com/iho/loanledger/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New(logger.Config{Level: "info", Format: "console", Service: "loanledger"})
		bootLog.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Service: "loanledger"})

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}

func run(cfg *config.Config, log zerolog.Logger) error {
	engine, err := engineConfig(cfg)
	if err != nil {
		return err
	}
	simCfg, err := simulationConfig(cfg, engine)
	if err != nil {
		return err
	}

	ctx := context.Background()

	if cfg.RunMigrations {
		if err := postgres.NewMigrator(cfg.DatabaseURL, cfg.MigrationsPath, log).Up(); err != nil {
			return err
		}
	}

	// Connect to PostgreSQL
	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
		DatabaseURL:    cfg.DatabaseURL,
		MaxConns:       cfg.DatabaseMaxConns,
		MinConns:       cfg.DatabaseMinConns,
		ConnectTimeout: cfg.DatabaseTimeout,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to postgres: %w", err)
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	// Connect to Redis; without it previews are unlimited and summaries are not cached.
	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}

	var (
		cache            usecase.Cache
		quota            usecase.InterestCheckQuota
		idempotencyStore usecase.IdempotencyStore
	)
	checks := []handler.HealthCheck{handler.PostgresCheck(pool)}
	if redisClient != nil {
		defer redisClient.Close()
		cache = redisRepo.NewCache(redisClient)
		quota = redisRepo.NewInterestCheckQuota(redisClient)
		idempotencyStore = redisRepo.NewIdempotencyStore(redisClient)
		checks = append(checks, handler.RedisCheck(redisClient))
		log.Info().Msg("connected to redis")
	} else {
		log.Warn().Msg("REDIS_URL not set: idempotency, report cache and interest check limits disabled")
	}

	m := metrics.New()
	clock := calendar.SystemClock{}

	// Initialize repositories
	txManager := postgresRepo.NewTxManager(pool)
	loanRepo := postgresRepo.NewLoanRepository(pool)
	eventRepo := postgresRepo.NewEventRepository(pool)
	idGen := postgresRepo.NewULIDGenerator()
	retrier := postgresRepo.NewRetrier(log)

	// Initialize use cases
	loanUC := usecase.NewLoanUseCase(txManager, loanRepo, eventRepo, idGen, clock, engine, m, log)
	ledgerUC := usecase.NewLedgerUseCase(txManager, loanRepo, eventRepo, idGen, retrier, clock, engine, m, log)
	simulationUC := usecase.NewSimulationUseCase(loanRepo, eventRepo, cache, quota, clock, simCfg, m, log)
	reconciliationUC := usecase.NewReconciliationUseCase(loanRepo, eventRepo, clock, engine, simCfg.Policy, m, log)

	limiter := rateLimiter(cfg)
	if limiter != nil {
		cleanupCtx, stopCleanup := context.WithCancel(ctx)
		defer stopCleanup()
		go limiter.RunCleanup(cleanupCtx, 10*time.Minute, time.Hour)
	} else {
		log.Warn().Msg("RATE_LIMIT_RPS is 0: engine routes are not rate limited")
	}

	// Create router
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		LoanHandler:           handler.NewLoanHandler(loanUC),
		LedgerHandler:         handler.NewLedgerHandler(ledgerUC, log),
		SimulationHandler:     handler.NewSimulationHandler(simulationUC, log),
		ReconciliationHandler: handler.NewReconciliationHandler(reconciliationUC),
		HealthHandler:         handler.NewHealthHandler(checks...),
		IdempotencyStore:      idempotencyStore,
		IdempotencyTTL:        cfg.IdempotencyTTL,
		RateLimiter:           limiter,
		Metrics:               m,
		CORSAllowedOrigins:    cfg.CORSAllowedOrigins,
		Logger:                log,
	})

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	// Start server in goroutine
	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serverErr:
		return err
	case <-quit:
	}

	log.Info().Msg("shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info().Msg("server stopped")
	return nil
}
