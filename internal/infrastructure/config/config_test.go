package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/iho/loanledger/internal/infrastructure/config"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Chdir(t.TempDir())

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if cfg.DatabaseURL == "" {
		t.Fatalf("expected default database URL to be set")
	}

	if cfg.HTTPPort != "8080" {
		t.Fatalf("expected default HTTP port 8080, got %s", cfg.HTTPPort)
	}

	if cfg.SimulationMaxDays != 36500 || cfg.AccrualStrategy != "daily" {
		t.Fatalf("unexpected accrual defaults: max_days=%d strategy=%s", cfg.SimulationMaxDays, cfg.AccrualStrategy)
	}

	if cfg.GranularityDailyMaxDays != 90 || cfg.GranularityMonthlyMaxDays != 730 {
		t.Fatalf("unexpected granularity defaults: %d/%d", cfg.GranularityDailyMaxDays, cfg.GranularityMonthlyMaxDays)
	}

	if cfg.InterestChecksPerMonth != 3 || cfg.ReportCacheTTL != 10*time.Minute {
		t.Fatalf("unexpected reporting defaults: checks=%d ttl=%s", cfg.InterestChecksPerMonth, cfg.ReportCacheTTL)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("REDIS_URL", "redis://example")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("DATABASE_TIMEOUT", "45s")
	t.Setenv("ACCRUAL_STRATEGY", "closed_form")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("GRANULARITY_DAILY_MAX_DAYS", "30")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if cfg.DatabaseURL != "postgres://example" {
		t.Fatalf("expected custom database URL, got %s", cfg.DatabaseURL)
	}

	if cfg.RedisURL != "redis://example" {
		t.Fatalf("expected custom redis URL, got %s", cfg.RedisURL)
	}

	if cfg.HTTPPort != "9090" {
		t.Fatalf("expected HTTP port override, got %s", cfg.HTTPPort)
	}

	if cfg.DatabaseTimeout != 45*time.Second {
		t.Fatalf("expected database timeout override, got %s", cfg.DatabaseTimeout)
	}

	if cfg.AccrualStrategy != "closed_form" || cfg.GranularityDailyMaxDays != 30 {
		t.Fatalf("expected accrual overrides, got strategy=%s daily=%d", cfg.AccrualStrategy, cfg.GranularityDailyMaxDays)
	}

	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://b.example" {
		t.Fatalf("expected two CORS origins, got %v", cfg.CORSAllowedOrigins)
	}
}

func TestLoadDotEnvFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("INTEREST_CHECKS_PER_MONTH=7\nHTTP_PORT=7000\n"), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Chdir(dir)
	t.Setenv("HTTP_PORT", "9191")
	t.Setenv("INTEREST_CHECKS_PER_MONTH", "")
	os.Unsetenv("INTEREST_CHECKS_PER_MONTH")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if cfg.InterestChecksPerMonth != 7 {
		t.Fatalf("expected value from .env, got %d", cfg.InterestChecksPerMonth)
	}
	if cfg.HTTPPort != "9191" {
		t.Fatalf("expected environment to win over .env, got %s", cfg.HTTPPort)
	}
}

func TestLoadRejectsNegativeLimits(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SIMULATION_MAX_DAYS", "-1")

	if _, err := config.Load(); err == nil {
		t.Fatalf("expected error for negative span limit")
	}
}

func TestLoadInvalidDuration(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HTTP_READ_TIMEOUT", "not-a-duration")

	if _, err := config.Load(); err == nil {
		t.Fatalf("expected error for invalid duration")
	}
}

func TestLoadRateLimit(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}
	if cfg.RateLimitRPS != 5 || cfg.RateLimitBurst != 10 {
		t.Fatalf("unexpected rate limit defaults: rps=%v burst=%d", cfg.RateLimitRPS, cfg.RateLimitBurst)
	}

	t.Setenv("RATE_LIMIT_RPS", "0")
	t.Setenv("RATE_LIMIT_BURST", "0")
	if _, err := config.Load(); err != nil {
		t.Fatalf("expected zero RPS to disable limiting without error, got %v", err)
	}

	t.Setenv("RATE_LIMIT_RPS", "2.5")
	if _, err := config.Load(); err == nil {
		t.Fatalf("expected error for zero burst with limiting on")
	}

	t.Setenv("RATE_LIMIT_RPS", "-1")
	if _, err := config.Load(); err == nil {
		t.Fatalf("expected error for negative RPS")
	}
}
