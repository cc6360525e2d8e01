package accrual

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/iho/loanledger/internal/domain"
)

func TestDailyInterest(t *testing.T) {
	tests := []struct {
		principal string
		rate      string
		want      string
	}{
		{"1000", "36.5", "1"},
		{"100000", "12", "32.8767123287671233"},
		{"0", "12", "0"},
		{"1000", "0", "0"},
		{"-100", "36.5", "-0.1"},
	}

	for _, tt := range tests {
		got := DailyInterest(dec(tt.principal), dec(tt.rate))
		assertDecimal(t, tt.want, got, "principal %s rate %s", tt.principal, tt.rate)
	}
}

func TestPay_PostConditions(t *testing.T) {
	balances := []Balance{
		{Principal: dec("1000"), Interest: dec("0")},
		{Principal: dec("1000"), Interest: dec("12.5")},
		{Principal: dec("0"), Interest: dec("7")},
		{Principal: dec("-20"), Interest: dec("-0.4")},
	}
	amounts := []string{"0.01", "5", "12.5", "999", "1000", "1012.5", "5000"}

	for _, b := range balances {
		for _, a := range amounts {
			amount := dec(a)
			before := b.Outstanding()

			got := Pay(b, amount, domain.InterestFirst)
			assert.False(t, got.Interest.IsNegative(), "interest-first left negative interest: %+v pay %s", b, a)
			assert.True(t, got.Outstanding().Equal(before.Sub(amount)), "interest-first must conserve the total")

			got = Pay(b, amount, domain.PrincipalFirst)
			assert.False(t, got.Principal.IsNegative(), "principal-first left negative principal: %+v pay %s", b, a)
			assert.True(t, got.Outstanding().Equal(before.Sub(amount)), "principal-first must conserve the total")
		}
	}
}

func TestPay_SpillLeavesExactZero(t *testing.T) {
	got := Pay(Balance{Principal: dec("100"), Interest: dec("3")}, dec("50"), domain.InterestFirst)
	assert.True(t, got.Interest.Equal(decimal.Zero))
	assertDecimal(t, "53", got.Principal)

	got = Pay(Balance{Principal: dec("100"), Interest: dec("3")}, dec("101"), domain.PrincipalFirst)
	assert.True(t, got.Principal.Equal(decimal.Zero))
	assertDecimal(t, "2", got.Interest)
}

func TestDisburse(t *testing.T) {
	got := Disburse(Balance{Principal: dec("-5"), Interest: dec("1")}, dec("10"))
	assertDecimal(t, "5", got.Principal)
	assertDecimal(t, "1", got.Interest)
}
