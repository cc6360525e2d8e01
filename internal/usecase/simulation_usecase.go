package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/loanledger/internal/accrual"
	"github.com/iho/loanledger/internal/aggregate"
	"github.com/iho/loanledger/internal/calendar"
	"github.com/iho/loanledger/internal/domain"
	"github.com/iho/loanledger/internal/infrastructure/metrics"
)

// SimulationConfig holds the policy knobs of the simulation use case.
type SimulationConfig struct {
	Engine EngineConfig
	Policy aggregate.Policy
	// CacheTTL is how long a ledger summary stays cached; zero disables caching.
	CacheTTL time.Duration
	// ChecksPerMonth limits interest previews per loan; zero means unlimited.
	ChecksPerMonth int
}

// DefaultSimulationConfig returns the defaults used when nothing is configured.
func DefaultSimulationConfig() SimulationConfig {
	return SimulationConfig{
		Engine:         DefaultEngineConfig(),
		Policy:         aggregate.DefaultPolicy(),
		CacheTTL:       DefaultReportCacheTTL,
		ChecksPerMonth: DefaultInterestChecksPerMonth,
	}
}

// SimulationUseCase runs the accrual engine and the period aggregator for loans.
type SimulationUseCase struct {
	loanRepo  LoanRepository
	eventRepo EventRepository
	cache     Cache
	quota     InterestCheckQuota
	clock     Clock
	cfg       SimulationConfig
	metrics   *metrics.Metrics
	logger    zerolog.Logger
}

// NewSimulationUseCase creates a new SimulationUseCase. cache and quota may be nil.
func NewSimulationUseCase(
	loanRepo LoanRepository,
	eventRepo EventRepository,
	cache Cache,
	quota InterestCheckQuota,
	clock Clock,
	cfg SimulationConfig,
	metrics *metrics.Metrics,
	logger zerolog.Logger,
) *SimulationUseCase {
	return &SimulationUseCase{
		loanRepo:  loanRepo,
		eventRepo: eventRepo,
		cache:     cache,
		quota:     quota,
		clock:     clock,
		cfg:       cfg,
		metrics:   metrics,
		logger:    logger,
	}
}

// SimulateInput represents input for simulating a stored loan.
type SimulateInput struct {
	// Strategy overrides the configured strategy when set.
	Strategy *accrual.Strategy
	LoanID   string
	// AsOf defaults to today.
	AsOf calendar.Day
}

// SimulationOutput is the engine result for a stored loan.
type SimulationOutput struct {
	Loan     *domain.Loan
	Result   accrual.Result
	AsOf     calendar.Day
	Strategy accrual.Strategy
}

// Simulate reconstructs the loan's day-by-day balances up to the as-of day.
func (uc *SimulationUseCase) Simulate(ctx context.Context, input SimulateInput) (*SimulationOutput, error) {
	loan, events, err := uc.load(ctx, input.LoanID)
	if err != nil {
		return nil, err
	}

	asOf := uc.asOf(input.AsOf)
	strategy := uc.cfg.Engine.Strategy
	if input.Strategy != nil {
		strategy = *input.Strategy
	}

	res, err := runEngine(loan, events, asOf, strategy, uc.cfg.Engine.MaxDays, uc.metrics)
	if err != nil {
		return nil, err
	}

	uc.logger.Debug().
		Str("loan_id", loan.ID).
		Str("as_of", asOf.String()).
		Str("strategy", strategy.String()).
		Int("rows", len(res.Rows)).
		Msg("loan simulated")

	return &SimulationOutput{Loan: loan, Result: res, AsOf: asOf, Strategy: strategy}, nil
}

// PlaygroundInput is an unsaved loan described inline.
type PlaygroundInput struct {
	Strategy   *accrual.Strategy
	Events     []domain.Event
	AnnualRate decimal.Decimal
	Mode       domain.AllocationMode
	AsOf       calendar.Day
}

// Playground runs the engine on inline events without touching the store. Events without an
// id or sequence get one from their position in the input.
func (uc *SimulationUseCase) Playground(_ context.Context, input PlaygroundInput) (*SimulationOutput, error) {
	events := make([]domain.Event, len(input.Events))
	copy(events, input.Events)
	for i := range events {
		if events[i].ID == "" {
			events[i].ID = fmt.Sprintf("e%04d", i+1)
		}
		if events[i].Seq == 0 {
			events[i].Seq = int64(i + 1)
		}
	}

	strategy := uc.cfg.Engine.Strategy
	if input.Strategy != nil {
		strategy = *input.Strategy
	}
	mode := input.Mode
	if mode == "" {
		mode = domain.InterestFirst
	}

	loan := &domain.Loan{AnnualRate: input.AnnualRate, Allocation: mode}
	asOf := uc.asOf(input.AsOf)
	res, err := runEngine(loan, events, asOf, strategy, uc.cfg.Engine.MaxDays, uc.metrics)
	if err != nil {
		return nil, err
	}

	return &SimulationOutput{Loan: loan, Result: res, AsOf: asOf, Strategy: strategy}, nil
}

// InterestPreviewInput represents input for an interest preview.
type InterestPreviewInput struct {
	LoanID string
	AsOf   calendar.Day
}

// InterestPreview is the borrower-facing snapshot of a loan on one day.
type InterestPreview struct {
	AsOf                 calendar.Day    `json:"as_of"`
	OutstandingPrincipal decimal.Decimal `json:"outstanding_principal"`
	InterestAccrued      decimal.Decimal `json:"interest_accrued"`
	// ChecksRemaining is -1 when previews are unlimited.
	ChecksRemaining int `json:"checks_remaining"`
}

// InterestPreview returns principal and unpaid interest as of a day. Each successful call uses
// one of the loan's checks for the current calendar month; a call the engine rejects does not.
func (uc *SimulationUseCase) InterestPreview(ctx context.Context, input InterestPreviewInput) (*InterestPreview, error) {
	loan, events, err := uc.load(ctx, input.LoanID)
	if err != nil {
		return nil, err
	}

	limited := uc.cfg.ChecksPerMonth > 0 && uc.quota != nil
	today := uc.clock.Today()
	if limited {
		used, err := uc.quota.Used(ctx, loan.ID, today)
		if err != nil {
			return nil, err
		}
		if used >= int64(uc.cfg.ChecksPerMonth) {
			return nil, uc.checkLimitReached()
		}
	}

	asOf := input.AsOf
	if asOf.IsZero() {
		asOf = today
	}
	res, err := runEngine(loan, events, asOf, uc.cfg.Engine.Strategy, uc.cfg.Engine.MaxDays, uc.metrics)
	if err != nil {
		uc.countCheck("error")
		return nil, err
	}

	remaining := -1
	if limited {
		used, err := uc.quota.Consume(ctx, loan.ID, today)
		if err != nil {
			return nil, err
		}
		// A concurrent preview may have taken the last check between Used and Consume.
		if used > int64(uc.cfg.ChecksPerMonth) {
			return nil, uc.checkLimitReached()
		}
		remaining = uc.cfg.ChecksPerMonth - int(used)
	}
	uc.countCheck("ok")

	return &InterestPreview{
		AsOf:                 asOf,
		OutstandingPrincipal: res.Summary.Principal,
		InterestAccrued:      res.Summary.Interest,
		ChecksRemaining:      remaining,
	}, nil
}

func (uc *SimulationUseCase) checkLimitReached() error {
	uc.countCheck("limited")
	return fmt.Errorf("%w: %d checks per month", domain.ErrInterestCheckLimit, uc.cfg.ChecksPerMonth)
}

// ChecksRemaining reports the interest previews left this month, or -1 when unlimited.
func (uc *SimulationUseCase) ChecksRemaining(ctx context.Context, loanID string) (int, error) {
	if uc.cfg.ChecksPerMonth <= 0 || uc.quota == nil {
		return -1, nil
	}
	used, err := uc.quota.Used(ctx, loanID, uc.clock.Today())
	if err != nil {
		return 0, err
	}
	if left := uc.cfg.ChecksPerMonth - int(used); left > 0 {
		return left, nil
	}
	return 0, nil
}

// SummaryInput represents input for the aggregated ledger.
type SummaryInput struct {
	LoanID string
	AsOf   calendar.Day
}

// Summary aggregates the loan's simulated ledger into calendar periods. The granularity always
// comes from the policy table and the loan's age at the as-of day; callers cannot pick it.
func (uc *SimulationUseCase) Summary(ctx context.Context, input SummaryInput) (*aggregate.Report, error) {
	loan, events, err := uc.load(ctx, input.LoanID)
	if err != nil {
		return nil, err
	}

	asOf := uc.asOf(input.AsOf)
	granularity := uc.cfg.Policy.Choose(loan.AgeDays(asOf))

	key := summaryCacheKey(loan.ID, events, asOf, granularity)
	if cached, ok := uc.cachedReport(ctx, key); ok {
		return cached, nil
	}

	res, err := runEngine(loan, events, asOf, uc.cfg.Engine.Strategy, uc.cfg.Engine.MaxDays, uc.metrics)
	if err != nil {
		return nil, err
	}
	rep := aggregate.Aggregate(aggregate.FromRows(res.Rows), granularity, asOf)

	uc.storeReport(ctx, key, &rep)
	return &rep, nil
}

func (uc *SimulationUseCase) load(ctx context.Context, loanID string) (*domain.Loan, []domain.Event, error) {
	loan, err := uc.loanRepo.GetByID(ctx, loanID)
	if err != nil {
		return nil, nil, err
	}
	events, err := uc.eventRepo.ListByLoan(ctx, loanID)
	if err != nil {
		return nil, nil, err
	}
	return loan, events, nil
}

func (uc *SimulationUseCase) asOf(d calendar.Day) calendar.Day {
	if d.IsZero() {
		return uc.clock.Today()
	}
	return d
}

func (uc *SimulationUseCase) countCheck(outcome string) {
	if uc.metrics != nil {
		uc.metrics.InterestChecks.WithLabelValues(outcome).Inc()
	}
}

func (uc *SimulationUseCase) countCache(result string) {
	if uc.metrics != nil {
		uc.metrics.ReportCache.WithLabelValues(result).Inc()
	}
}

// summaryCacheKey changes whenever an event is appended, so cached reports never go stale.
func summaryCacheKey(loanID string, events []domain.Event, asOf calendar.Day, g calendar.Granularity) string {
	var lastSeq int64
	for i := range events {
		if events[i].Seq > lastSeq {
			lastSeq = events[i].Seq
		}
	}
	return "summary:" + loanID + ":" + strconv.Itoa(len(events)) + ":" + strconv.FormatInt(lastSeq, 10) +
		":" + asOf.String() + ":" + g.String()
}

func (uc *SimulationUseCase) cachedReport(ctx context.Context, key string) (*aggregate.Report, bool) {
	if uc.cache == nil || uc.cfg.CacheTTL <= 0 {
		return nil, false
	}
	data, err := uc.cache.Get(ctx, key)
	if err != nil {
		uc.logger.Warn().Err(err).Str("key", key).Msg("report cache read failed")
		return nil, false
	}
	if data == nil {
		uc.countCache("miss")
		return nil, false
	}

	var rep aggregate.Report
	if err := json.Unmarshal(data, &rep); err != nil {
		uc.logger.Warn().Err(err).Str("key", key).Msg("discarding unreadable cached report")
		return nil, false
	}
	uc.countCache("hit")
	return &rep, true
}

func (uc *SimulationUseCase) storeReport(ctx context.Context, key string, rep *aggregate.Report) {
	if uc.cache == nil || uc.cfg.CacheTTL <= 0 {
		return
	}
	data, err := json.Marshal(rep)
	if err != nil {
		uc.logger.Warn().Err(err).Msg("failed to encode report for cache")
		return
	}
	if err := uc.cache.Set(ctx, key, data, uc.cfg.CacheTTL); err != nil {
		uc.logger.Warn().Err(err).Str("key", key).Msg("report cache write failed")
	}
}
