package accrual

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/iho/loanledger/internal/calendar"
	"github.com/iho/loanledger/internal/domain"
)

// Kind labels a ledger row.
type Kind string

const (
	KindDisbursal Kind = "DISBURSAL"
	KindPayment   Kind = "PAYMENT"
	KindInterest  Kind = "INTEREST"
)

const (
	noteDisbursal = "Loan given"
	notePayment   = "Payment from user"
	noteInterest  = "Interest for the day"
)

// Row is one simulated day of interest or one applied event, with the balances after it.
type Row struct {
	Date           calendar.Day    `json:"date"`
	Kind           Kind            `json:"kind"`
	Change         decimal.Decimal `json:"change"`
	PrincipalAfter decimal.Decimal `json:"principal_after"`
	InterestAfter  decimal.Decimal `json:"interest_after"`
	Note           string          `json:"note"`
	EventID        string          `json:"event_id,omitempty"`
}

// Balance is the running state of a loan. Either side may be negative after an overpayment.
type Balance struct {
	Principal decimal.Decimal `json:"principal"`
	Interest  decimal.Decimal `json:"interest"`
}

// Outstanding is principal plus interest.
func (b Balance) Outstanding() decimal.Decimal { return b.Principal.Add(b.Interest) }

// Summary is the state at the as-of date together with flow totals.
type Summary struct {
	Principal   decimal.Decimal `json:"principal"`
	Interest    decimal.Decimal `json:"interest"`
	TotalLoaned decimal.Decimal `json:"total_loaned"`
	TotalPaid   decimal.Decimal `json:"total_paid"`
	// InterestAccrued is the cumulative interest charged, before payments reduced it.
	InterestAccrued decimal.Decimal `json:"interest_accrued"`
}

// Outstanding is principal plus interest.
func (s Summary) Outstanding() decimal.Decimal { return s.Principal.Add(s.Interest) }

// Result is the engine output.
type Result struct {
	Rows    []Row   `json:"rows"`
	Summary Summary `json:"summary"`
	// Days is the number of days stepped after the first disbursal.
	Days int `json:"days"`
}

// Strategy selects how accrual between events is computed.
type Strategy int

const (
	// DayStepped accrues one day at a time and emits one INTEREST row per day.
	DayStepped Strategy = iota
	// ClosedForm accrues each event-free span at once and emits one INTEREST row per span.
	ClosedForm
)

func (s Strategy) String() string {
	switch s {
	case DayStepped:
		return "daily"
	case ClosedForm:
		return "closed_form"
	default:
		return fmt.Sprintf("strategy(%d)", int(s))
	}
}

// ParseStrategy accepts "daily" and "closed_form". The empty string is DayStepped.
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "daily", "day_stepped":
		return DayStepped, nil
	case "closed_form", "closed-form", "closedform":
		return ClosedForm, nil
	default:
		return DayStepped, fmt.Errorf("unknown accrual strategy %q", s)
	}
}

// Params are the engine inputs. Rate and Mode come from the loan, not from engine defaults.
type Params struct {
	Events []domain.Event
	// AnnualRate is a percentage, 12 meaning 12% a year.
	AnnualRate decimal.Decimal
	Mode       domain.AllocationMode
	AsOf       calendar.Day
	Strategy   Strategy
	// MaxDays bounds the simulated span; zero means unbounded.
	MaxDays int
}
