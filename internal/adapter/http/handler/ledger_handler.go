package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/iho/loanledger/internal/adapter/http/dto"
	"github.com/iho/loanledger/internal/domain"
	"github.com/iho/loanledger/internal/report"
	"github.com/iho/loanledger/internal/usecase"
)

// LedgerService defines the behavior needed by LedgerHandler.
type LedgerService interface {
	RecordEntry(ctx context.Context, input usecase.RecordEntryInput) (*domain.Event, error)
	ListLedger(ctx context.Context, input usecase.ListLedgerInput) (*report.Ledger, error)
}

// LedgerHandler handles ledger entry requests.
type LedgerHandler struct {
	ledgerUC LedgerService
	logger   zerolog.Logger
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(ledgerUC LedgerService, logger zerolog.Logger) *LedgerHandler {
	return &LedgerHandler{ledgerUC: ledgerUC, logger: logger}
}

// Record appends an entry to a loan's ledger.
func (h *LedgerHandler) Record(w http.ResponseWriter, r *http.Request) {
	var req dto.RecordEntryRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	event, err := h.ledgerUC.RecordEntry(r.Context(), req.ToUseCaseInput(chi.URLParam(r, "id")))
	if err != nil {
		writeDomainError(w, "failed to record entry", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.EntryFromDomain(event))
}

// List returns the detailed ledger with running balances.
func (h *LedgerHandler) List(w http.ResponseWriter, r *http.Request) {
	ledger, ok := h.load(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, ledger)
}

// ExportCSV writes the detailed ledger as CSV in the admin or customer view.
func (h *LedgerHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	view, err := report.ParseView(r.URL.Query().Get("view"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid view", err.Error())
		return
	}

	ledger, ok := h.load(w, r)
	if !ok {
		return
	}

	csvHeaders(w, "ledger-"+chi.URLParam(r, "id")+".csv")
	if err := report.WriteLedgerCSV(w, view, *ledger); err != nil {
		h.logger.Error().Err(err).Str("loan_id", chi.URLParam(r, "id")).Msg("ledger csv export failed")
	}
}

func (h *LedgerHandler) load(w http.ResponseWriter, r *http.Request) (*report.Ledger, bool) {
	asOf, err := parseDayQuery(r, "as_of")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid as_of", err.Error())
		return nil, false
	}

	ledger, err := h.ledgerUC.ListLedger(r.Context(), usecase.ListLedgerInput{
		LoanID: chi.URLParam(r, "id"),
		AsOf:   asOf,
	})
	if err != nil {
		writeDomainError(w, "failed to list ledger", err)
		return nil, false
	}

	return ledger, true
}
