package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/loanledger/internal/accrual"
	"github.com/iho/loanledger/internal/calendar"
	"github.com/iho/loanledger/internal/domain"
	"github.com/iho/loanledger/internal/usecase"
)

// LoanResponse represents a loan in API responses.
type LoanResponse struct {
	ID            string          `json:"id"`
	BorrowerName  string          `json:"borrower_name"`
	BorrowerRef   string          `json:"borrower_ref,omitempty"`
	Principal     decimal.Decimal `json:"principal"`
	AnnualRate    decimal.Decimal `json:"annual_rate"`
	Allocation    string          `json:"allocation"`
	RepaymentMode string          `json:"repayment_mode"`
	TenureMonths  *int            `json:"tenure_months,omitempty"`
	StartDate     calendar.Day    `json:"start_date"`
	Status        string          `json:"status"`
	Note          string          `json:"note,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	ClosedAt      *time.Time      `json:"closed_at,omitempty"`
}

// LoanFromDomain converts a domain loan to a response.
func LoanFromDomain(l *domain.Loan) *LoanResponse {
	return &LoanResponse{
		ID:            l.ID,
		BorrowerName:  l.BorrowerName,
		BorrowerRef:   l.BorrowerRef,
		Principal:     l.Principal,
		AnnualRate:    l.AnnualRate,
		Allocation:    string(l.Allocation),
		RepaymentMode: string(l.Repayment),
		TenureMonths:  l.TenureMonths,
		StartDate:     l.StartDate,
		Status:        string(l.Status),
		Note:          l.Note,
		CreatedAt:     l.CreatedAt,
		UpdatedAt:     l.UpdatedAt,
		ClosedAt:      l.ClosedAt,
	}
}

// LoansFromDomain converts domain loans to responses.
func LoansFromDomain(loans []*domain.Loan) []*LoanResponse {
	result := make([]*LoanResponse, len(loans))
	for i, l := range loans {
		result[i] = LoanFromDomain(l)
	}
	return result
}

// ListLoansResponse represents a page of loans.
type ListLoansResponse struct {
	Loans []*LoanResponse `json:"loans"`
	Total int64           `json:"total"`
}

// EntryResponse represents a stored ledger entry.
type EntryResponse struct {
	ID        string          `json:"id"`
	LoanID    string          `json:"loan_id"`
	Seq       int64           `json:"seq"`
	Type      string          `json:"type"`
	Kind      string          `json:"kind"`
	Date      calendar.Day    `json:"date"`
	Amount    decimal.Decimal `json:"amount"`
	Narration string          `json:"narration"`
	CreatedAt time.Time       `json:"created_at"`
}

// EntryFromDomain converts a domain event to a response.
func EntryFromDomain(e *domain.Event) *EntryResponse {
	return &EntryResponse{
		ID:        e.ID,
		LoanID:    e.LoanID,
		Seq:       e.Seq,
		Type:      string(e.Type),
		Kind:      string(e.Kind),
		Date:      e.Date,
		Amount:    e.Amount,
		Narration: e.Narration,
		CreatedAt: e.CreatedAt,
	}
}

// SimulationResponse is the engine output for a stored or inline loan.
type SimulationResponse struct {
	LoanID      string          `json:"loan_id,omitempty"`
	AsOf        calendar.Day    `json:"as_of"`
	Strategy    string          `json:"strategy"`
	Days        int             `json:"days"`
	Rows        []accrual.Row   `json:"rows"`
	Summary     accrual.Summary `json:"summary"`
	Outstanding decimal.Decimal `json:"outstanding"`
}

// SimulationFromOutput converts a stored-loan simulation to a response.
func SimulationFromOutput(out *usecase.SimulationOutput) *SimulationResponse {
	resp := SimulationFromResult(out.Result, out.AsOf, out.Strategy)
	resp.LoanID = out.Loan.ID
	return resp
}

// SimulationFromResult converts an engine result to a response.
func SimulationFromResult(res accrual.Result, asOf calendar.Day, strategy accrual.Strategy) *SimulationResponse {
	return &SimulationResponse{
		AsOf:        asOf,
		Strategy:    strategy.String(),
		Days:        res.Days,
		Rows:        res.Rows,
		Summary:     res.Summary,
		Outstanding: res.Summary.Outstanding(),
	}
}

// ChecksRemainingResponse reports interest previews left this month. -1 means unlimited.
type ChecksRemainingResponse struct {
	LoanID          string `json:"loan_id"`
	ChecksRemaining int    `json:"checks_remaining"`
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
