package dto

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/iho/loanledger/internal/accrual"
	"github.com/iho/loanledger/internal/calendar"
	"github.com/iho/loanledger/internal/domain"
	"github.com/iho/loanledger/internal/usecase"
)

// CreateLoanRequest represents a request to create a loan.
type CreateLoanRequest struct {
	BorrowerName  string          `json:"borrower_name"`
	BorrowerRef   string          `json:"borrower_ref,omitempty"`
	Principal     decimal.Decimal `json:"principal"`
	AnnualRate    decimal.Decimal `json:"annual_rate"`
	Allocation    string          `json:"allocation,omitempty"`
	RepaymentMode string          `json:"repayment_mode,omitempty"`
	TenureMonths  *int            `json:"tenure_months,omitempty"`
	StartDate     calendar.Day    `json:"start_date"`
	Note          string          `json:"note,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateLoanRequest) ToUseCaseInput() usecase.CreateLoanInput {
	return usecase.CreateLoanInput{
		BorrowerName: strings.TrimSpace(r.BorrowerName),
		BorrowerRef:  r.BorrowerRef,
		Principal:    r.Principal,
		AnnualRate:   r.AnnualRate,
		Allocation:   domain.AllocationMode(r.Allocation),
		Repayment:    domain.RepaymentMode(r.RepaymentMode),
		TenureMonths: r.TenureMonths,
		StartDate:    r.StartDate,
		Note:         r.Note,
	}
}

// RecordEntryRequest represents a request to append a ledger entry.
type RecordEntryRequest struct {
	Narration string          `json:"narration"`
	Kind      string          `json:"kind"`
	Date      calendar.Day    `json:"date"`
	Amount    decimal.Decimal `json:"amount"`
}

// ToUseCaseInput converts to use case input.
func (r *RecordEntryRequest) ToUseCaseInput(loanID string) usecase.RecordEntryInput {
	return usecase.RecordEntryInput{
		LoanID:    loanID,
		Narration: r.Narration,
		Kind:      domain.EntryKind(r.Kind),
		Date:      r.Date,
		Amount:    r.Amount,
	}
}

// InterestPreviewRequest asks for the interest owed as of a day. A zero day means today.
type InterestPreviewRequest struct {
	AsOf calendar.Day `json:"as_of"`
}

// PlaygroundEvent is one inline cash flow of an unsaved loan.
type PlaygroundEvent struct {
	ID        string          `json:"id,omitempty"`
	Type      string          `json:"type"`
	Date      calendar.Day    `json:"date"`
	Amount    decimal.Decimal `json:"amount"`
	Narration string          `json:"narration,omitempty"`
}

// PlaygroundRequest runs the engine on inline events.
type PlaygroundRequest struct {
	AnnualRate decimal.Decimal   `json:"annual_rate"`
	Allocation string            `json:"allocation,omitempty"`
	Strategy   string            `json:"strategy,omitempty"`
	AsOf       calendar.Day      `json:"as_of"`
	Events     []PlaygroundEvent `json:"events"`
}

// ToUseCaseInput converts to use case input. Events keep their input order as sequence.
func (r *PlaygroundRequest) ToUseCaseInput() (usecase.PlaygroundInput, error) {
	input := usecase.PlaygroundInput{
		AnnualRate: r.AnnualRate,
		Mode:       domain.AllocationMode(r.Allocation),
		AsOf:       r.AsOf,
		Events:     make([]domain.Event, len(r.Events)),
	}

	if r.Strategy != "" {
		s, err := accrual.ParseStrategy(r.Strategy)
		if err != nil {
			return usecase.PlaygroundInput{}, err
		}
		input.Strategy = &s
	}

	for i, e := range r.Events {
		t := domain.EventType(strings.ToLower(e.Type))
		if !t.IsValid() {
			return usecase.PlaygroundInput{}, fmt.Errorf("%w: event %d has type %q", domain.ErrInvalidEventType, i, e.Type)
		}
		input.Events[i] = domain.Event{
			ID:        e.ID,
			Type:      t,
			Date:      e.Date,
			Amount:    e.Amount,
			Narration: e.Narration,
		}
	}

	return input, nil
}
