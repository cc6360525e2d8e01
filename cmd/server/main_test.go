package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/loanledger/internal/accrual"
	"github.com/iho/loanledger/internal/infrastructure/config"
)

func testConfig() *config.Config {
	return &config.Config{
		AccrualStrategy:           "daily",
		SimulationMaxDays:         36500,
		GranularityDailyMaxDays:   90,
		GranularityMonthlyMaxDays: 730,
		ReportCacheTTL:            10 * time.Minute,
		InterestChecksPerMonth:    3,
	}
}

func TestEngineConfig(t *testing.T) {
	cfg := testConfig()
	cfg.AccrualStrategy = "closed_form"

	engine, err := engineConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, accrual.ClosedForm, engine.Strategy)
	assert.Equal(t, 36500, engine.MaxDays)
}

func TestEngineConfigRejectsUnknownStrategy(t *testing.T) {
	cfg := testConfig()
	cfg.AccrualStrategy = "compound"

	_, err := engineConfig(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ACCRUAL_STRATEGY")
}

func TestSimulationConfig(t *testing.T) {
	cfg := testConfig()
	engine, err := engineConfig(cfg)
	require.NoError(t, err)

	sim, err := simulationConfig(cfg, engine)
	require.NoError(t, err)
	assert.Equal(t, 90, sim.Policy.DailyMaxDays)
	assert.Equal(t, 730, sim.Policy.MonthlyMaxDays)
	assert.Equal(t, 10*time.Minute, sim.CacheTTL)
	assert.Equal(t, 3, sim.ChecksPerMonth)
	assert.Equal(t, engine, sim.Engine)
}

func TestSimulationConfigRejectsInvertedThresholds(t *testing.T) {
	cfg := testConfig()
	cfg.GranularityDailyMaxDays = 800

	engine, err := engineConfig(cfg)
	require.NoError(t, err)

	_, err = simulationConfig(cfg, engine)
	assert.Error(t, err)
}

func TestRateLimiter(t *testing.T) {
	cfg := testConfig()
	assert.Nil(t, rateLimiter(cfg))

	cfg.RateLimitRPS = 5
	cfg.RateLimitBurst = 10
	assert.NotNil(t, rateLimiter(cfg))
}
