package aggregate

import (
	"fmt"

	"github.com/iho/loanledger/internal/calendar"
)

// Policy picks a reporting granularity from loan age. Loans younger than DailyMaxDays are
// reported daily, younger than MonthlyMaxDays monthly, and quarterly after that.
type Policy struct {
	DailyMaxDays   int
	MonthlyMaxDays int
}

// Default thresholds.
const (
	DefaultDailyMaxDays   = 90
	DefaultMonthlyMaxDays = 730
)

func DefaultPolicy() Policy {
	return Policy{DailyMaxDays: DefaultDailyMaxDays, MonthlyMaxDays: DefaultMonthlyMaxDays}
}

// Validate rejects tables that would not coarsen monotonically with age.
func (p Policy) Validate() error {
	if p.DailyMaxDays < 0 || p.MonthlyMaxDays < 0 {
		return fmt.Errorf("granularity thresholds must not be negative: daily=%d monthly=%d", p.DailyMaxDays, p.MonthlyMaxDays)
	}
	if p.DailyMaxDays > p.MonthlyMaxDays {
		return fmt.Errorf("daily threshold %d exceeds monthly threshold %d", p.DailyMaxDays, p.MonthlyMaxDays)
	}
	return nil
}

// Choose returns the granularity for a loan of the given age in days.
func (p Policy) Choose(ageDays int) calendar.Granularity {
	switch {
	case ageDays < p.DailyMaxDays:
		return calendar.Daily
	case ageDays < p.MonthlyMaxDays:
		return calendar.Monthly
	default:
		return calendar.Quarterly
	}
}
