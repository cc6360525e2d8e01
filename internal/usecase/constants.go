package usecase

import "time"

const (
	// DefaultTransactionTimeout is the maximum duration for a database transaction
	// This prevents long-running transactions from blocking tables
	DefaultTransactionTimeout = 10 * time.Second

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour

	// IdempotencyProcessing is the value held under a key while its first request runs
	IdempotencyProcessing = "processing"

	// DefaultReportCacheTTL is how long an aggregated ledger summary stays cached
	DefaultReportCacheTTL = 10 * time.Minute

	// DefaultInterestChecksPerMonth limits interest previews per loan per calendar month
	DefaultInterestChecksPerMonth = 3

	// DefaultSimulationMaxDays bounds the day span a single simulation may cover
	DefaultSimulationMaxDays = 36500

	defaultListLimit = 20
	maxListLimit     = 100
)

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}
