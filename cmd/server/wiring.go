package main

import (
	"fmt"

	"github.com/iho/loanledger/internal/accrual"
	"github.com/iho/loanledger/internal/adapter/http/middleware"
	"github.com/iho/loanledger/internal/aggregate"
	"github.com/iho/loanledger/internal/infrastructure/config"
	"github.com/iho/loanledger/internal/usecase"
)

// engineConfig builds the accrual settings shared by every use case.
func engineConfig(cfg *config.Config) (usecase.EngineConfig, error) {
	strategy, err := accrual.ParseStrategy(cfg.AccrualStrategy)
	if err != nil {
		return usecase.EngineConfig{}, fmt.Errorf("ACCRUAL_STRATEGY: %w", err)
	}
	return usecase.EngineConfig{Strategy: strategy, MaxDays: cfg.SimulationMaxDays}, nil
}

func simulationConfig(cfg *config.Config, engine usecase.EngineConfig) (usecase.SimulationConfig, error) {
	policy := aggregate.Policy{
		DailyMaxDays:   cfg.GranularityDailyMaxDays,
		MonthlyMaxDays: cfg.GranularityMonthlyMaxDays,
	}
	if err := policy.Validate(); err != nil {
		return usecase.SimulationConfig{}, err
	}

	return usecase.SimulationConfig{
		Engine:         engine,
		Policy:         policy,
		CacheTTL:       cfg.ReportCacheTTL,
		ChecksPerMonth: cfg.InterestChecksPerMonth,
	}, nil
}

// rateLimiter returns nil when RATE_LIMIT_RPS is zero.
func rateLimiter(cfg *config.Config) *middleware.RateLimiter {
	if cfg.RateLimitRPS <= 0 {
		return nil
	}
	return middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
}
