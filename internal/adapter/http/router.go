package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/iho/loanledger/internal/adapter/http/handler"
	"github.com/iho/loanledger/internal/adapter/http/middleware"
	"github.com/iho/loanledger/internal/infrastructure/metrics"
	"github.com/iho/loanledger/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	LoanHandler       *handler.LoanHandler
	LedgerHandler     *handler.LedgerHandler
	SimulationHandler *handler.SimulationHandler
	// ReconciliationHandler is optional; nil leaves the consistency route unmounted.
	ReconciliationHandler *handler.ReconciliationHandler
	HealthHandler         *handler.HealthHandler

	// IdempotencyStore is optional; nil disables Idempotency-Key handling.
	IdempotencyStore usecase.IdempotencyStore
	IdempotencyTTL   time.Duration

	// RateLimiter is optional; it guards the routes that run the accrual engine.
	RateLimiter *middleware.RateLimiter

	// Metrics is optional. Gatherer defaults to the default Prometheus registry.
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer

	CORSAllowedOrigins []string
	Logger             zerolog.Logger
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery(cfg.Logger))
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.CORSAllowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Content-Type", middleware.IdempotencyKeyHeader},
			ExposedHeaders:   []string{"Content-Disposition", middleware.IdempotencyReplayHeader},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)

	gatherer := cfg.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	// Engine runs cost time linear in the simulated span.
	limited := func(h http.HandlerFunc) http.Handler {
		if cfg.RateLimiter == nil {
			return h
		}
		return cfg.RateLimiter.Limit(h)
	}

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL, cfg.Logger)
			r.Use(idempotencyMiddleware.Wrap)
		}

		// Loans
		r.Route("/loans", func(r chi.Router) {
			r.Post("/", cfg.LoanHandler.Create)
			r.Get("/", cfg.LoanHandler.List)
			r.Get("/{id}", cfg.LoanHandler.Get)
			r.Post("/{id}/close", cfg.LoanHandler.Close)

			r.Post("/{id}/ledger", cfg.LedgerHandler.Record)
			r.Get("/{id}/ledger", cfg.LedgerHandler.List)
			r.Get("/{id}/ledger.csv", cfg.LedgerHandler.ExportCSV)

			r.Method(http.MethodGet, "/{id}/simulation", limited(cfg.SimulationHandler.Simulate))
			r.Method(http.MethodGet, "/{id}/simulation.csv", limited(cfg.SimulationHandler.SimulateCSV))
			r.Method(http.MethodPost, "/{id}/interest-preview", limited(cfg.SimulationHandler.InterestPreview))
			r.Get("/{id}/interest-preview", cfg.SimulationHandler.ChecksRemaining)
			r.Method(http.MethodGet, "/{id}/ledger-summary", limited(cfg.SimulationHandler.Summary))
			r.Method(http.MethodGet, "/{id}/ledger-summary.csv", limited(cfg.SimulationHandler.SummaryCSV))

			if cfg.ReconciliationHandler != nil {
				r.Method(http.MethodGet, "/{id}/consistency", limited(cfg.ReconciliationHandler.CheckConsistency))
			}
		})

		// Unsaved loans
		r.Method(http.MethodPost, "/simulations", limited(cfg.SimulationHandler.Playground))
	})

	return r
}
