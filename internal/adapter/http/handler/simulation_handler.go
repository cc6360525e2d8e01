package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/iho/loanledger/internal/accrual"
	"github.com/iho/loanledger/internal/adapter/http/dto"
	"github.com/iho/loanledger/internal/aggregate"
	"github.com/iho/loanledger/internal/report"
	"github.com/iho/loanledger/internal/usecase"
)

// SimulationService defines the behavior needed by SimulationHandler.
type SimulationService interface {
	Simulate(ctx context.Context, input usecase.SimulateInput) (*usecase.SimulationOutput, error)
	Playground(ctx context.Context, input usecase.PlaygroundInput) (*usecase.SimulationOutput, error)
	InterestPreview(ctx context.Context, input usecase.InterestPreviewInput) (*usecase.InterestPreview, error)
	ChecksRemaining(ctx context.Context, loanID string) (int, error)
	Summary(ctx context.Context, input usecase.SummaryInput) (*aggregate.Report, error)
}

// SimulationHandler serves engine and aggregator output.
type SimulationHandler struct {
	simUC  SimulationService
	logger zerolog.Logger
}

// NewSimulationHandler creates a new SimulationHandler.
func NewSimulationHandler(simUC SimulationService, logger zerolog.Logger) *SimulationHandler {
	return &SimulationHandler{simUC: simUC, logger: logger}
}

// Simulate returns the day-by-day rows and summary of a stored loan.
func (h *SimulationHandler) Simulate(w http.ResponseWriter, r *http.Request) {
	out, ok := h.simulate(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, dto.SimulationFromOutput(out))
}

// SimulateCSV writes the simulation rows as CSV.
func (h *SimulationHandler) SimulateCSV(w http.ResponseWriter, r *http.Request) {
	out, ok := h.simulate(w, r)
	if !ok {
		return
	}

	csvHeaders(w, "simulation-"+out.Loan.ID+".csv")
	if err := report.WriteSimulationCSV(w, out.Result); err != nil {
		h.logger.Error().Err(err).Str("loan_id", out.Loan.ID).Msg("simulation csv export failed")
	}
}

func (h *SimulationHandler) simulate(w http.ResponseWriter, r *http.Request) (*usecase.SimulationOutput, bool) {
	asOf, err := parseDayQuery(r, "as_of")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid as_of", err.Error())
		return nil, false
	}

	input := usecase.SimulateInput{LoanID: chi.URLParam(r, "id"), AsOf: asOf}
	if s := r.URL.Query().Get("strategy"); s != "" {
		strategy, err := accrual.ParseStrategy(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid strategy", err.Error())
			return nil, false
		}
		input.Strategy = &strategy
	}

	out, err := h.simUC.Simulate(r.Context(), input)
	if err != nil {
		writeDomainError(w, "failed to simulate loan", err)
		return nil, false
	}

	return out, true
}

// Playground runs the engine on inline events without storing anything.
func (h *SimulationHandler) Playground(w http.ResponseWriter, r *http.Request) {
	var req dto.PlaygroundRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	input, err := req.ToUseCaseInput()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid simulation", err.Error())
		return
	}

	out, err := h.simUC.Playground(r.Context(), input)
	if err != nil {
		writeDomainError(w, "failed to simulate", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.SimulationFromOutput(out))
}

// InterestPreview returns the principal and unpaid interest as of a day. Each call is
// counted against the loan's monthly limit.
func (h *SimulationHandler) InterestPreview(w http.ResponseWriter, r *http.Request) {
	var req dto.InterestPreviewRequest
	if err := decodeJSON(w, r, &req, true); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	preview, err := h.simUC.InterestPreview(r.Context(), usecase.InterestPreviewInput{
		LoanID: chi.URLParam(r, "id"),
		AsOf:   req.AsOf,
	})
	if err != nil {
		writeDomainError(w, "failed to preview interest", err)
		return
	}

	writeJSON(w, http.StatusOK, preview)
}

// ChecksRemaining reports how many interest previews are left this month.
func (h *SimulationHandler) ChecksRemaining(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	left, err := h.simUC.ChecksRemaining(r.Context(), id)
	if err != nil {
		writeDomainError(w, "failed to read interest check quota", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ChecksRemainingResponse{LoanID: id, ChecksRemaining: left})
}

// Summary returns the ledger aggregated into calendar periods.
func (h *SimulationHandler) Summary(w http.ResponseWriter, r *http.Request) {
	rep, ok := h.summary(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, rep)
}

// SummaryCSV writes the aggregated ledger as CSV.
func (h *SimulationHandler) SummaryCSV(w http.ResponseWriter, r *http.Request) {
	rep, ok := h.summary(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	csvHeaders(w, "ledger-summary-"+id+".csv")
	if err := report.WritePeriodsCSV(w, *rep); err != nil {
		h.logger.Error().Err(err).Str("loan_id", id).Msg("summary csv export failed")
	}
}

func (h *SimulationHandler) summary(w http.ResponseWriter, r *http.Request) (*aggregate.Report, bool) {
	asOf, err := parseDayQuery(r, "as_of")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid as_of", err.Error())
		return nil, false
	}

	rep, err := h.simUC.Summary(r.Context(), usecase.SummaryInput{LoanID: chi.URLParam(r, "id"), AsOf: asOf})
	if err != nil {
		writeDomainError(w, "failed to summarize ledger", err)
		return nil, false
	}

	return rep, true
}
