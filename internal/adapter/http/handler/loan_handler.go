package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/loanledger/internal/adapter/http/dto"
	"github.com/iho/loanledger/internal/domain"
	"github.com/iho/loanledger/internal/usecase"
)

// LoanService defines the behavior needed by LoanHandler.
type LoanService interface {
	CreateLoan(ctx context.Context, input usecase.CreateLoanInput) (*domain.Loan, error)
	GetLoan(ctx context.Context, id string) (*domain.Loan, error)
	ListLoans(ctx context.Context, input usecase.ListLoansInput) ([]*domain.Loan, error)
	CloseLoan(ctx context.Context, id string) (*domain.Loan, error)
}

// LoanHandler handles loan-related HTTP requests.
type LoanHandler struct {
	loanUC LoanService
}

// NewLoanHandler creates a new LoanHandler.
func NewLoanHandler(loanUC LoanService) *LoanHandler {
	return &LoanHandler{loanUC: loanUC}
}

// Create creates a new loan together with its first disbursal.
func (h *LoanHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateLoanRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	loan, err := h.loanUC.CreateLoan(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, "failed to create loan", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.LoanFromDomain(loan))
}

// Get retrieves a loan by ID.
func (h *LoanHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing loan ID", "")
		return
	}

	loan, err := h.loanUC.GetLoan(r.Context(), id)
	if err != nil {
		writeDomainError(w, "failed to get loan", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.LoanFromDomain(loan))
}

// List lists loans.
func (h *LoanHandler) List(w http.ResponseWriter, r *http.Request) {
	loans, err := h.loanUC.ListLoans(r.Context(), usecase.ListLoansInput{
		Limit:  parseIntQuery(r, "limit", 20),
		Offset: parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list loans", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListLoansResponse{
		Loans: dto.LoansFromDomain(loans),
		Total: int64(len(loans)),
	})
}

// Close closes a fully repaid loan.
func (h *LoanHandler) Close(w http.ResponseWriter, r *http.Request) {
	loan, err := h.loanUC.CloseLoan(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "failed to close loan", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.LoanFromDomain(loan))
}
