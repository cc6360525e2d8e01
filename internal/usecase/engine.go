package usecase

import (
	"errors"
	"time"

	"github.com/iho/loanledger/internal/accrual"
	"github.com/iho/loanledger/internal/calendar"
	"github.com/iho/loanledger/internal/domain"
	"github.com/iho/loanledger/internal/infrastructure/metrics"
)

// EngineConfig selects how the accrual engine runs for every use case.
type EngineConfig struct {
	Strategy accrual.Strategy
	// MaxDays bounds the simulated span; zero means unbounded.
	MaxDays int
}

// DefaultEngineConfig is day-stepped accrual bounded by DefaultSimulationMaxDays.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{Strategy: accrual.DayStepped, MaxDays: DefaultSimulationMaxDays}
}

// runEngine simulates loan with its own rate and allocation mode.
func runEngine(
	loan *domain.Loan,
	events []domain.Event,
	asOf calendar.Day,
	strategy accrual.Strategy,
	maxDays int,
	m *metrics.Metrics,
) (accrual.Result, error) {
	start := time.Now()
	res, err := accrual.Simulate(accrual.Params{
		Events:     events,
		AnnualRate: loan.AnnualRate,
		Mode:       loan.Allocation,
		AsOf:       asOf,
		Strategy:   strategy,
		MaxDays:    maxDays,
	})
	if m != nil {
		if err != nil {
			m.SimulationError.WithLabelValues(engineErrorType(err)).Inc()
		} else {
			m.SimulationsRun.WithLabelValues(strategy.String()).Inc()
			m.SimulationSpan.Observe(float64(res.Days))
			m.SimulationTime.Observe(time.Since(start).Seconds())
		}
	}
	return res, err
}

func engineErrorType(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidEventOrder):
		return "invalid_event_order"
	case errors.Is(err, domain.ErrInvalidDate):
		return "invalid_date"
	case errors.Is(err, domain.ErrNonPositiveAmount), errors.Is(err, domain.ErrAmountTooLarge):
		return "invalid_amount"
	case errors.Is(err, domain.ErrSpanTooLarge):
		return "span_too_large"
	default:
		return "other"
	}
}
