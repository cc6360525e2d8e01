package domain

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/loanledger/internal/calendar"
)

// AllocationMode decides which balance a payment reduces first.
type AllocationMode string

const (
	InterestFirst  AllocationMode = "interest_first"
	PrincipalFirst AllocationMode = "principal_first"
)

func (m AllocationMode) IsValid() bool {
	return m == InterestFirst || m == PrincipalFirst
}

// RepaymentMode is informational: how the borrower is expected to repay.
type RepaymentMode string

const (
	RepaymentEMI    RepaymentMode = "emi"
	RepaymentNormal RepaymentMode = "normal"
)

func (m RepaymentMode) IsValid() bool {
	return m == RepaymentEMI || m == RepaymentNormal
}

// LoanStatus is the lifecycle state of a loan.
type LoanStatus string

const (
	LoanStatusActive LoanStatus = "active"
	LoanStatusClosed LoanStatus = "closed"
)

// Loan carries the per-loan policy the engine runs with: rate and allocation mode.
type Loan struct {
	CreatedAt    time.Time
	UpdatedAt    time.Time
	ClosedAt     *time.Time
	TenureMonths *int
	ID           string
	BorrowerName string
	BorrowerRef  string
	Note         string
	Allocation   AllocationMode
	Repayment    RepaymentMode
	Status       LoanStatus
	StartDate    calendar.Day
	Principal    decimal.Decimal
	// AnnualRate is a percentage, 12 meaning 12% a year.
	AnnualRate decimal.Decimal
}

// IsClosed reports whether the loan no longer accepts entries.
func (l *Loan) IsClosed() bool { return l.Status == LoanStatusClosed }

// AgeDays is the number of days between the loan start and asOf, never negative.
func (l *Loan) AgeDays(asOf calendar.Day) int {
	age := l.StartDate.DaysUntil(asOf)
	if age < 0 {
		return 0
	}
	return age
}

// Validate checks a loan before it is stored.
func (l *Loan) Validate() error {
	if err := ValidateBorrowerName(l.BorrowerName); err != nil {
		return err
	}
	if err := ValidateAmount(l.Principal); err != nil {
		return err
	}
	if err := ValidateRate(l.AnnualRate); err != nil {
		return err
	}
	if !l.Allocation.IsValid() {
		return ErrInvalidAllocationMode
	}
	if !l.Repayment.IsValid() {
		return ErrInvalidRepaymentMode
	}
	if l.StartDate.IsZero() {
		return ErrInvalidDate
	}
	return nil
}
