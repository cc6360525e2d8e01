package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/loanledger/internal/aggregate"
	"github.com/iho/loanledger/internal/domain"
	"github.com/iho/loanledger/internal/report"
	"github.com/iho/loanledger/internal/usecase"
)

func withID(r *http.Request, id string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

type stubLoanService struct {
	createFn func(ctx context.Context, input usecase.CreateLoanInput) (*domain.Loan, error)
	getFn    func(ctx context.Context, id string) (*domain.Loan, error)
	listFn   func(ctx context.Context, input usecase.ListLoansInput) ([]*domain.Loan, error)
	closeFn  func(ctx context.Context, id string) (*domain.Loan, error)
}

func (s *stubLoanService) CreateLoan(ctx context.Context, input usecase.CreateLoanInput) (*domain.Loan, error) {
	return s.createFn(ctx, input)
}

func (s *stubLoanService) GetLoan(ctx context.Context, id string) (*domain.Loan, error) {
	return s.getFn(ctx, id)
}

func (s *stubLoanService) ListLoans(ctx context.Context, input usecase.ListLoansInput) ([]*domain.Loan, error) {
	return s.listFn(ctx, input)
}

func (s *stubLoanService) CloseLoan(ctx context.Context, id string) (*domain.Loan, error) {
	return s.closeFn(ctx, id)
}

type stubLedgerService struct {
	recordFn func(ctx context.Context, input usecase.RecordEntryInput) (*domain.Event, error)
	listFn   func(ctx context.Context, input usecase.ListLedgerInput) (*report.Ledger, error)
}

func (s *stubLedgerService) RecordEntry(ctx context.Context, input usecase.RecordEntryInput) (*domain.Event, error) {
	return s.recordFn(ctx, input)
}

func (s *stubLedgerService) ListLedger(ctx context.Context, input usecase.ListLedgerInput) (*report.Ledger, error) {
	return s.listFn(ctx, input)
}

type stubSimulationService struct {
	simulateFn   func(ctx context.Context, input usecase.SimulateInput) (*usecase.SimulationOutput, error)
	playgroundFn func(ctx context.Context, input usecase.PlaygroundInput) (*usecase.SimulationOutput, error)
	previewFn    func(ctx context.Context, input usecase.InterestPreviewInput) (*usecase.InterestPreview, error)
	remainingFn  func(ctx context.Context, loanID string) (int, error)
	summaryFn    func(ctx context.Context, input usecase.SummaryInput) (*aggregate.Report, error)
}

func (s *stubSimulationService) Simulate(ctx context.Context, input usecase.SimulateInput) (*usecase.SimulationOutput, error) {
	return s.simulateFn(ctx, input)
}

func (s *stubSimulationService) Playground(ctx context.Context, input usecase.PlaygroundInput) (*usecase.SimulationOutput, error) {
	return s.playgroundFn(ctx, input)
}

func (s *stubSimulationService) InterestPreview(ctx context.Context, input usecase.InterestPreviewInput) (*usecase.InterestPreview, error) {
	return s.previewFn(ctx, input)
}

func (s *stubSimulationService) ChecksRemaining(ctx context.Context, loanID string) (int, error) {
	return s.remainingFn(ctx, loanID)
}

func (s *stubSimulationService) Summary(ctx context.Context, input usecase.SummaryInput) (*aggregate.Report, error) {
	return s.summaryFn(ctx, input)
}
