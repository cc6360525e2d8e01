package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/iho/loanledger/internal/calendar"
)

// Validation constants
const (
	MaxBorrowerNameLength = 255
	MaxNarrationLength    = 500
	MaxEventAmount        = "1000000000000" // 1 trillion
	MaxAnnualRate         = "1000"          // percent
)

var (
	maxEventAmount = decimal.RequireFromString(MaxEventAmount)
	maxAnnualRate  = decimal.RequireFromString(MaxAnnualRate)
)

// ValidateAmount validates a disbursal or payment amount.
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: got %s", ErrNonPositiveAmount, amount)
	}
	if amount.GreaterThan(maxEventAmount) {
		return fmt.Errorf("%w: maximum amount is %s", ErrAmountTooLarge, MaxEventAmount)
	}
	return nil
}

// ValidateRate validates an annual percentage rate.
func ValidateRate(rate decimal.Decimal) error {
	if rate.IsNegative() {
		return fmt.Errorf("%w: got %s", ErrInvalidRate, rate)
	}
	if rate.GreaterThan(maxAnnualRate) {
		return fmt.Errorf("%w: maximum is %s%%", ErrInvalidRate, MaxAnnualRate)
	}
	return nil
}

// ValidateBorrowerName validates the borrower display name.
func ValidateBorrowerName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidBorrower)
	}
	if len(name) > MaxBorrowerNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidBorrower, MaxBorrowerNameLength)
	}
	return nil
}

// ParseDate parses a calendar day, mapping failures onto ErrInvalidDate.
func ParseDate(s string) (calendar.Day, error) {
	d, err := calendar.Parse(strings.TrimSpace(s))
	if err != nil {
		return calendar.Day{}, fmt.Errorf("%w: %v", ErrInvalidDate, err)
	}
	return d, nil
}

// ParseAmount parses a decimal amount and validates it.
func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q is not a number", ErrNonPositiveAmount, s)
	}
	if err := ValidateAmount(d); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}
