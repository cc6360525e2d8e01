package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/loanledger/internal/usecase"
)

// ReconciliationService defines the behavior needed by ReconciliationHandler.
type ReconciliationService interface {
	ReconcileLoan(ctx context.Context, input usecase.ReconcileLoanInput) (*usecase.ReconciliationResult, error)
}

// ReconciliationHandler handles loan consistency checks.
type ReconciliationHandler struct {
	reconciliationUC ReconciliationService
}

// NewReconciliationHandler creates a new ReconciliationHandler.
func NewReconciliationHandler(reconciliationUC ReconciliationService) *ReconciliationHandler {
	return &ReconciliationHandler{reconciliationUC: reconciliationUC}
}

// CheckConsistency compares the detailed and aggregated ledgers of a loan with the engine.
// An inconsistent loan answers 409 with the failing checks in the body.
func (h *ReconciliationHandler) CheckConsistency(w http.ResponseWriter, r *http.Request) {
	asOf, err := parseDayQuery(r, "as_of")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid as_of", err.Error())
		return
	}

	result, err := h.reconciliationUC.ReconcileLoan(r.Context(), usecase.ReconcileLoanInput{
		LoanID: chi.URLParam(r, "id"),
		AsOf:   asOf,
	})
	if err != nil {
		writeDomainError(w, "failed to check consistency", err)
		return
	}

	status := http.StatusOK
	if !result.Consistent {
		status = http.StatusConflict
	}
	writeJSON(w, status, result)
}
