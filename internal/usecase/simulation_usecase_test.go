package usecase_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/iho/loanledger/internal/accrual"
	"github.com/iho/loanledger/internal/aggregate"
	"github.com/iho/loanledger/internal/calendar"
	"github.com/iho/loanledger/internal/domain"
	"github.com/iho/loanledger/internal/usecase"
	"github.com/iho/loanledger/internal/usecase/mocks"
)

type simDeps struct {
	loanRepo  *mocks.MockLoanRepository
	eventRepo *mocks.MockEventRepository
	cache     *mocks.MockCache
	quota     *mocks.MockInterestCheckQuota
	clock     *mocks.MockClock
}

func newSimDeps(ctrl *gomock.Controller) simDeps {
	return simDeps{
		loanRepo:  mocks.NewMockLoanRepository(ctrl),
		eventRepo: mocks.NewMockEventRepository(ctrl),
		cache:     mocks.NewMockCache(ctrl),
		quota:     mocks.NewMockInterestCheckQuota(ctrl),
		clock:     mocks.NewMockClock(ctrl),
	}
}

func (deps simDeps) useCase() *usecase.SimulationUseCase {
	return usecase.NewSimulationUseCase(deps.loanRepo, deps.eventRepo, deps.cache, deps.quota, deps.clock,
		usecase.DefaultSimulationConfig(), nil, zerolog.Nop())
}

func (deps simDeps) expectLoad(loan *domain.Loan, events []domain.Event) {
	deps.loanRepo.EXPECT().GetByID(gomock.Any(), loan.ID).Return(loan, nil)
	deps.eventRepo.EXPECT().ListByLoan(gomock.Any(), loan.ID).Return(events, nil)
}

func scenarioEvents() []domain.Event {
	return []domain.Event{
		{ID: "e1", Seq: 1, Type: domain.EventDisbursal, Date: d("2020-01-01"), Amount: amt("100000")},
	}
}

func TestSimulationUseCase_Simulate(t *testing.T) {
	ctrl := gomock.NewController(t)
	deps := newSimDeps(ctrl)
	deps.expectLoad(activeLoan("12"), scenarioEvents())

	out, err := deps.useCase().Simulate(context.Background(), usecase.SimulateInput{LoanID: "loan-1", AsOf: d("2020-01-11")})
	require.NoError(t, err)

	assert.Equal(t, accrual.DayStepped, out.Strategy)
	assert.Len(t, out.Result.Rows, 11)
	assert.True(t, out.Result.Summary.Interest.Round(3).Equal(amt("328.767")))
}

func TestSimulationUseCase_Simulate_StrategyOverride(t *testing.T) {
	ctrl := gomock.NewController(t)
	deps := newSimDeps(ctrl)
	deps.expectLoad(activeLoan("12"), scenarioEvents())
	deps.clock.EXPECT().Today().Return(d("2020-01-11"))

	closed := accrual.ClosedForm
	out, err := deps.useCase().Simulate(context.Background(), usecase.SimulateInput{LoanID: "loan-1", Strategy: &closed})
	require.NoError(t, err)

	assert.Equal(t, d("2020-01-11"), out.AsOf)
	assert.Len(t, out.Result.Rows, 2)
	assert.Equal(t, "Interest for 10 days", out.Result.Rows[1].Note)
}

func TestSimulationUseCase_Simulate_SpanLimit(t *testing.T) {
	ctrl := gomock.NewController(t)
	deps := newSimDeps(ctrl)
	deps.expectLoad(activeLoan("12"), scenarioEvents())

	cfg := usecase.DefaultSimulationConfig()
	cfg.Engine.MaxDays = 5
	uc := usecase.NewSimulationUseCase(deps.loanRepo, deps.eventRepo, nil, nil, deps.clock, cfg, nil, zerolog.Nop())

	_, err := uc.Simulate(context.Background(), usecase.SimulateInput{LoanID: "loan-1", AsOf: d("2020-01-11")})
	assert.ErrorIs(t, err, domain.ErrSpanTooLarge)
}

func TestSimulationUseCase_Simulate_LoanNotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	deps := newSimDeps(ctrl)
	deps.loanRepo.EXPECT().GetByID(gomock.Any(), "missing").Return(nil, domain.ErrLoanNotFound)

	_, err := deps.useCase().Simulate(context.Background(), usecase.SimulateInput{LoanID: "missing"})
	assert.ErrorIs(t, err, domain.ErrLoanNotFound)
}

func TestSimulationUseCase_Playground(t *testing.T) {
	ctrl := gomock.NewController(t)
	deps := newSimDeps(ctrl)

	out, err := deps.useCase().Playground(context.Background(), usecase.PlaygroundInput{
		Events: []domain.Event{
			{Type: domain.EventDisbursal, Date: d("2020-01-01"), Amount: amt("1000")},
			{Type: domain.EventPayment, Date: d("2020-01-01"), Amount: amt("1000")},
		},
		AnnualRate: amt("0"),
		AsOf:       d("2020-01-31"),
	})
	require.NoError(t, err)
	assert.Equal(t, "2020-01-31", out.AsOf.String())
	assert.Equal(t, accrual.DayStepped, out.Strategy)

	res := out.Result
	require.Len(t, res.Rows, 2)
	assert.Equal(t, "e0001", res.Rows[0].EventID)
	assert.Equal(t, "e0002", res.Rows[1].EventID)
	assert.True(t, res.Summary.Principal.IsZero())
	assert.True(t, res.Summary.Interest.IsZero())
}

func TestSimulationUseCase_Playground_RejectsEarlyPayment(t *testing.T) {
	ctrl := gomock.NewController(t)
	deps := newSimDeps(ctrl)

	_, err := deps.useCase().Playground(context.Background(), usecase.PlaygroundInput{
		Events: []domain.Event{
			{Type: domain.EventDisbursal, Date: d("2020-01-10"), Amount: amt("1000")},
			{Type: domain.EventPayment, Date: d("2020-01-09"), Amount: amt("10")},
		},
		AnnualRate: amt("12"),
		Mode:       domain.PrincipalFirst,
		AsOf:       d("2020-01-31"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidEventOrder)
}

func TestSimulationUseCase_InterestPreview(t *testing.T) {
	t.Run("within quota", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		deps := newSimDeps(ctrl)
		deps.expectLoad(activeLoan("12"), scenarioEvents())
		deps.clock.EXPECT().Today().Return(d("2020-01-20"))
		gomock.InOrder(
			deps.quota.EXPECT().Used(gomock.Any(), "loan-1", d("2020-01-20")).Return(int64(0), nil),
			deps.quota.EXPECT().Consume(gomock.Any(), "loan-1", d("2020-01-20")).Return(int64(1), nil),
		)

		preview, err := deps.useCase().InterestPreview(context.Background(), usecase.InterestPreviewInput{LoanID: "loan-1", AsOf: d("2020-01-11")})
		require.NoError(t, err)

		assert.Equal(t, 2, preview.ChecksRemaining)
		assert.Equal(t, d("2020-01-11"), preview.AsOf)
		assert.True(t, preview.OutstandingPrincipal.Equal(amt("100000")))
		assert.True(t, preview.InterestAccrued.Round(3).Equal(amt("328.767")))
	})

	t.Run("quota exhausted", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		deps := newSimDeps(ctrl)
		deps.expectLoad(activeLoan("12"), scenarioEvents())
		deps.clock.EXPECT().Today().Return(d("2020-01-20"))
		deps.quota.EXPECT().Used(gomock.Any(), "loan-1", gomock.Any()).Return(int64(3), nil)

		_, err := deps.useCase().InterestPreview(context.Background(), usecase.InterestPreviewInput{LoanID: "loan-1"})
		assert.ErrorIs(t, err, domain.ErrInterestCheckLimit)
	})

	t.Run("last check taken concurrently", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		deps := newSimDeps(ctrl)
		deps.expectLoad(activeLoan("12"), scenarioEvents())
		deps.clock.EXPECT().Today().Return(d("2020-01-20"))
		deps.quota.EXPECT().Used(gomock.Any(), "loan-1", gomock.Any()).Return(int64(2), nil)
		deps.quota.EXPECT().Consume(gomock.Any(), "loan-1", gomock.Any()).Return(int64(4), nil)

		_, err := deps.useCase().InterestPreview(context.Background(), usecase.InterestPreviewInput{LoanID: "loan-1"})
		assert.ErrorIs(t, err, domain.ErrInterestCheckLimit)
	})

	t.Run("engine failure keeps the check", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		deps := newSimDeps(ctrl)
		events := append(scenarioEvents(),
			domain.Event{ID: "e0", Seq: 2, Type: domain.EventPayment, Date: d("2019-12-31"), Amount: amt("10")})
		deps.expectLoad(activeLoan("12"), events)
		deps.clock.EXPECT().Today().Return(d("2020-01-20"))
		deps.quota.EXPECT().Used(gomock.Any(), "loan-1", gomock.Any()).Return(int64(0), nil)
		deps.quota.EXPECT().Consume(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		_, err := deps.useCase().InterestPreview(context.Background(), usecase.InterestPreviewInput{LoanID: "loan-1"})
		assert.ErrorIs(t, err, domain.ErrInvalidEventOrder)
	})

	t.Run("quota store down", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		deps := newSimDeps(ctrl)
		deps.expectLoad(activeLoan("12"), scenarioEvents())
		deps.clock.EXPECT().Today().Return(d("2020-01-20"))
		deps.quota.EXPECT().Used(gomock.Any(), "loan-1", gomock.Any()).Return(int64(0), errors.New("redis down"))

		_, err := deps.useCase().InterestPreview(context.Background(), usecase.InterestPreviewInput{LoanID: "loan-1"})
		assert.EqualError(t, err, "redis down")
	})
}

func TestSimulationUseCase_ChecksRemaining(t *testing.T) {
	ctrl := gomock.NewController(t)
	deps := newSimDeps(ctrl)
	deps.clock.EXPECT().Today().Return(d("2020-01-20")).Times(2)
	deps.quota.EXPECT().Used(gomock.Any(), "loan-1", gomock.Any()).Return(int64(1), nil)
	deps.quota.EXPECT().Used(gomock.Any(), "loan-1", gomock.Any()).Return(int64(7), nil)

	left, err := deps.useCase().ChecksRemaining(context.Background(), "loan-1")
	require.NoError(t, err)
	assert.Equal(t, 2, left)

	left, err = deps.useCase().ChecksRemaining(context.Background(), "loan-1")
	require.NoError(t, err)
	assert.Equal(t, 0, left)
}

func TestSimulationUseCase_Summary(t *testing.T) {
	tests := []struct {
		name  string
		asOf  string
		want  calendar.Granularity
		nrows int
	}{
		{"young loan is daily", "2020-01-31", calendar.Daily, 31},
		{"medium loan is monthly", "2020-12-31", calendar.Monthly, 12},
		{"old loan is quarterly", "2022-12-31", calendar.Quarterly, 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			deps := newSimDeps(ctrl)
			deps.expectLoad(activeLoan("12"), scenarioEvents())
			deps.cache.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, nil)
			deps.cache.EXPECT().Set(gomock.Any(), gomock.Any(), gomock.Any(), usecase.DefaultReportCacheTTL).Return(nil)

			rep, err := deps.useCase().Summary(context.Background(), usecase.SummaryInput{LoanID: "loan-1", AsOf: d(tt.asOf)})
			require.NoError(t, err)

			assert.Equal(t, tt.want, rep.Granularity)
			assert.Len(t, rep.Rows, tt.nrows)
			assert.True(t, rep.Totals.TotalPaid.Equal(amt("100000")))
		})
	}
}

func TestSimulationUseCase_Summary_CacheHit(t *testing.T) {
	ctrl := gomock.NewController(t)
	deps := newSimDeps(ctrl)
	deps.expectLoad(activeLoan("12"), scenarioEvents())

	cached := aggregate.Report{
		Rows:        []aggregate.Period{{Label: "2020-01", ClosingBalance: amt("1")}},
		Totals:      aggregate.Totals{ClosingBalance: amt("1")},
		Granularity: calendar.Monthly,
	}
	data, err := json.Marshal(cached)
	require.NoError(t, err)

	deps.cache.EXPECT().Get(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, key string) ([]byte, error) {
		assert.True(t, strings.HasPrefix(key, "summary:loan-1:1:1:2020-06-30:"), key)
		return data, nil
	})

	rep, err := deps.useCase().Summary(context.Background(), usecase.SummaryInput{LoanID: "loan-1", AsOf: d("2020-06-30")})
	require.NoError(t, err)

	require.Len(t, rep.Rows, 1)
	assert.Equal(t, "2020-01", rep.Rows[0].Label)
}

func TestSimulationUseCase_Summary_CacheFailureIsNotFatal(t *testing.T) {
	ctrl := gomock.NewController(t)
	deps := newSimDeps(ctrl)
	deps.expectLoad(activeLoan("12"), scenarioEvents())
	deps.cache.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, errors.New("redis down"))
	deps.cache.EXPECT().Set(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("redis down"))

	rep, err := deps.useCase().Summary(context.Background(), usecase.SummaryInput{LoanID: "loan-1", AsOf: d("2020-03-15")})
	require.NoError(t, err)
	assert.Equal(t, calendar.Daily, rep.Granularity)
}

func TestSimulationUseCase_Summary_NoCache(t *testing.T) {
	ctrl := gomock.NewController(t)
	deps := newSimDeps(ctrl)
	deps.expectLoad(activeLoan("12"), scenarioEvents())

	cfg := usecase.DefaultSimulationConfig()
	cfg.CacheTTL = time.Duration(0)
	uc := usecase.NewSimulationUseCase(deps.loanRepo, deps.eventRepo, deps.cache, nil, deps.clock, cfg, nil, zerolog.Nop())

	_, err := uc.Summary(context.Background(), usecase.SummaryInput{LoanID: "loan-1", AsOf: d("2020-03-15")})
	require.NoError(t, err)
}
