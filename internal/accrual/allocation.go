package accrual

import (
	"github.com/shopspring/decimal"

	"github.com/iho/loanledger/internal/domain"
)

// interestPrecision is the number of decimal places kept for one day's interest.
const interestPrecision = 16

var daysPerYearPercent = decimal.NewFromInt(36500)

// DailyInterest is one day of simple interest: principal * rate/100 / 365.
func DailyInterest(principal, annualRate decimal.Decimal) decimal.Decimal {
	return principal.Mul(annualRate).DivRound(daysPerYearPercent, interestPrecision)
}

// Disburse adds amount to principal.
func Disburse(b Balance, amount decimal.Decimal) Balance {
	b.Principal = b.Principal.Add(amount)
	return b
}

// Pay applies a payment under mode. In interest-first mode the part exceeding accrued interest
// spills onto principal and interest is left at exactly zero; principal-first is symmetric.
func Pay(b Balance, amount decimal.Decimal, mode domain.AllocationMode) Balance {
	if mode == domain.PrincipalFirst {
		b.Principal = b.Principal.Sub(amount)
		if b.Principal.IsNegative() {
			b.Interest = b.Interest.Add(b.Principal)
			b.Principal = decimal.Zero
		}
		return b
	}

	b.Interest = b.Interest.Sub(amount)
	if b.Interest.IsNegative() {
		b.Principal = b.Principal.Add(b.Interest)
		b.Interest = decimal.Zero
	}
	return b
}
