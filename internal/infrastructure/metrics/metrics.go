package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Engine metrics
	SimulationsRun  *prometheus.CounterVec
	SimulationSpan  prometheus.Histogram
	SimulationTime  prometheus.Histogram
	SimulationError *prometheus.CounterVec

	// Ledger metrics
	LoansCreated   prometheus.Counter
	LoansClosed    prometheus.Counter
	EntriesCreated *prometheus.CounterVec
	InterestChecks *prometheus.CounterVec

	// Report cache metrics
	ReportCache     *prometheus.CounterVec
	Reconciliations *prometheus.CounterVec

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
	HTTPInFlight prometheus.Gauge
}

// New creates and registers all Prometheus metrics on the default registerer.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer creates all Prometheus metrics and registers them on reg.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		// Engine metrics
		SimulationsRun: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loanledger_simulations_total",
				Help: "Total accrual simulations by strategy",
			},
			[]string{"strategy"},
		),
		SimulationSpan: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "loanledger_simulation_span_days",
			Help:    "Days between first disbursal and as-of date per simulation",
			Buckets: []float64{30, 90, 180, 365, 730, 1825, 3650, 7300},
		}),
		SimulationTime: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "loanledger_simulation_duration_seconds",
			Help:    "Duration of accrual simulations",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
		}),
		SimulationError: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loanledger_simulation_errors_total",
				Help: "Total rejected simulations by error type",
			},
			[]string{"error_type"},
		),

		// Ledger metrics
		LoansCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "loanledger_loans_created_total",
			Help: "Total number of loans created",
		}),
		LoansClosed: f.NewCounter(prometheus.CounterOpts{
			Name: "loanledger_loans_closed_total",
			Help: "Total number of loans closed",
		}),
		EntriesCreated: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loanledger_entries_created_total",
				Help: "Total ledger entries recorded by kind",
			},
			[]string{"kind"},
		),
		InterestChecks: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loanledger_interest_checks_total",
				Help: "Total interest previews by outcome",
			},
			[]string{"outcome"},
		),

		// Report cache metrics
		ReportCache: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loanledger_report_cache_total",
				Help: "Ledger summary cache lookups by result",
			},
			[]string{"result"},
		),
		Reconciliations: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loanledger_reconciliations_total",
				Help: "Loan consistency checks by outcome",
			},
			[]string{"outcome"},
		),

		// API metrics
		HTTPRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loanledger_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "loanledger_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		HTTPInFlight: f.NewGauge(prometheus.GaugeOpts{
			Name: "loanledger_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		}),
	}
}
