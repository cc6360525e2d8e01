package usecase_test

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/iho/loanledger/internal/accrual"
	"github.com/iho/loanledger/internal/aggregate"
	"github.com/iho/loanledger/internal/calendar"
	"github.com/iho/loanledger/internal/domain"
	"github.com/iho/loanledger/internal/infrastructure/metrics"
	"github.com/iho/loanledger/internal/usecase"
	"github.com/iho/loanledger/internal/usecase/mocks"
)

func reconciledEvents() []domain.Event {
	return []domain.Event{
		{ID: "e3", Seq: 3, Type: domain.EventPayment, Kind: domain.EntryKindEMI, Date: d("2020-03-15"), Amount: amt("400")},
		{ID: "e1", Seq: 1, Type: domain.EventDisbursal, Kind: domain.EntryKindDisbursal, Date: d("2020-01-01"), Amount: amt("100000")},
		{ID: "e2", Seq: 2, Type: domain.EventPayment, Kind: domain.EntryKindEMI, Date: d("2020-01-05"), Amount: amt("500")},
	}
}

func newReconciliation(t *testing.T, engine usecase.EngineConfig, m *metrics.Metrics) (*usecase.ReconciliationUseCase, *mocks.MockLoanRepository, *mocks.MockEventRepository, *mocks.MockClock) {
	ctrl := gomock.NewController(t)
	loanRepo := mocks.NewMockLoanRepository(ctrl)
	eventRepo := mocks.NewMockEventRepository(ctrl)
	clock := mocks.NewMockClock(ctrl)
	uc := usecase.NewReconciliationUseCase(loanRepo, eventRepo, clock, engine, aggregate.DefaultPolicy(), m, zerolog.Nop())
	return uc, loanRepo, eventRepo, clock
}

func TestReconciliationUseCase_ReconcileLoan(t *testing.T) {
	for _, strategy := range []accrual.Strategy{accrual.DayStepped, accrual.ClosedForm} {
		t.Run(strategy.String(), func(t *testing.T) {
			engine := usecase.DefaultEngineConfig()
			engine.Strategy = strategy
			uc, loanRepo, eventRepo, _ := newReconciliation(t, engine, nil)
			loanRepo.EXPECT().GetByID(gomock.Any(), "loan-1").Return(activeLoan("12"), nil)
			eventRepo.EXPECT().ListByLoan(gomock.Any(), "loan-1").Return(reconciledEvents(), nil)

			result, err := uc.ReconcileLoan(context.Background(), usecase.ReconcileLoanInput{LoanID: "loan-1", AsOf: d("2020-01-31")})
			require.NoError(t, err)

			assert.True(t, result.Consistent)
			assert.Equal(t, calendar.Daily, result.Granularity)
			require.Len(t, result.Checks, 6)
			for _, c := range result.Checks {
				assert.True(t, c.OK, c.Name)
			}

			byName := map[string]usecase.ConsistencyCheck{}
			for _, c := range result.Checks {
				byName[c.Name] = c
			}
			// The payment dated after the as-of day stays out of the detailed ledger.
			assert.True(t, byName[usecase.CheckLedgerTotalReceived].Actual.Equal(amt("500")))
			assert.True(t, byName[usecase.CheckLedgerTotalPaid].Actual.Equal(amt("100000")))
			assert.True(t, byName[usecase.CheckSummaryInterest].Actual.IsPositive())
		})
	}
}

func TestReconciliationUseCase_ReconcileLoan_DefaultsToToday(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewWithRegisterer(reg)
	uc, loanRepo, eventRepo, clock := newReconciliation(t, usecase.DefaultEngineConfig(), m)
	loanRepo.EXPECT().GetByID(gomock.Any(), "loan-1").Return(activeLoan("12"), nil)
	eventRepo.EXPECT().ListByLoan(gomock.Any(), "loan-1").Return(reconciledEvents(), nil)
	clock.EXPECT().Today().Return(d("2020-12-31"))

	result, err := uc.ReconcileLoan(context.Background(), usecase.ReconcileLoanInput{LoanID: "loan-1"})
	require.NoError(t, err)

	assert.True(t, result.Consistent)
	assert.Equal(t, d("2020-12-31"), result.AsOf)
	assert.Equal(t, calendar.Monthly, result.Granularity)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Reconciliations.WithLabelValues("consistent")))
}

func TestReconciliationUseCase_ReconcileLoan_Errors(t *testing.T) {
	t.Run("loan not found", func(t *testing.T) {
		uc, loanRepo, _, _ := newReconciliation(t, usecase.DefaultEngineConfig(), nil)
		loanRepo.EXPECT().GetByID(gomock.Any(), "missing").Return(nil, domain.ErrLoanNotFound)

		_, err := uc.ReconcileLoan(context.Background(), usecase.ReconcileLoanInput{LoanID: "missing", AsOf: d("2020-01-31")})
		assert.ErrorIs(t, err, domain.ErrLoanNotFound)
	})

	t.Run("span too large", func(t *testing.T) {
		engine := usecase.DefaultEngineConfig()
		engine.MaxDays = 10
		uc, loanRepo, eventRepo, _ := newReconciliation(t, engine, nil)
		loanRepo.EXPECT().GetByID(gomock.Any(), "loan-1").Return(activeLoan("12"), nil)
		eventRepo.EXPECT().ListByLoan(gomock.Any(), "loan-1").Return(reconciledEvents(), nil)

		_, err := uc.ReconcileLoan(context.Background(), usecase.ReconcileLoanInput{LoanID: "loan-1", AsOf: d("2020-01-31")})
		assert.ErrorIs(t, err, domain.ErrSpanTooLarge)
	})
}
