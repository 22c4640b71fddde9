package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "ledger"

// Ledger holds the service metrics.
type Ledger struct {
	// Ledger metrics
	Operations        *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec
	Conflicts         *prometheus.CounterVec
	MovementAmount    *prometheus.HistogramVec
	RecorderFailures  prometheus.Counter

	// API metrics
	HTTPRequests  *prometheus.CounterVec
	HTTPDuration  *prometheus.HistogramVec
	RateLimitHits prometheus.Counter

	// Redis metrics
	CacheLookups *prometheus.CounterVec
}

// New creates and registers all metrics on the default registerer.
func New() *Ledger {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer creates and registers all metrics on reg.
func NewWithRegisterer(reg prometheus.Registerer) *Ledger {
	factory := promauto.With(reg)

	return &Ledger{
		Operations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "operations_total",
				Help:      "Ledger operations by outcome",
			},
			[]string{"operation", "outcome"},
		),
		OperationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "operation_duration_seconds",
				Help:      "Duration of ledger operations including retries",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		Conflicts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "optimistic_conflicts_total",
				Help:      "Version conflicts detected on commit",
			},
			[]string{"operation"},
		),
		MovementAmount: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "movement_amount",
				Help:      "Committed movement amounts",
				Buckets:   []float64{1, 10, 100, 1000, 10000, 100000, 1000000},
			},
			[]string{"operation"},
		),
		RecorderFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recorder_failures_total",
			Help:      "Committed movements the recorder failed to accept",
		}),

		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_duration_seconds",
				Help:      "HTTP request duration",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		RateLimitHits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limit_hits_total",
			Help:      "Requests rejected by the rate limiter",
		}),

		CacheLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_lookups_total",
				Help:      "Account number cache lookups by result",
			},
			[]string{"result"},
		),
	}
}

// ObserveOperation records one finished operation.
func (m *Ledger) ObserveOperation(operation, outcome string, duration time.Duration) {
	m.Operations.WithLabelValues(operation, outcome).Inc()
	m.OperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// ObserveConflict records a version conflict.
func (m *Ledger) ObserveConflict(operation string) {
	m.Conflicts.WithLabelValues(operation).Inc()
}

// ObserveAmount records a committed amount.
func (m *Ledger) ObserveAmount(operation string, amount float64) {
	m.MovementAmount.WithLabelValues(operation).Observe(amount)
}

// ObserveRecorderFailure records a movement the recorder rejected.
func (m *Ledger) ObserveRecorderFailure() {
	m.RecorderFailures.Inc()
}

// ObserveCacheLookup records a cache hit or miss.
func (m *Ledger) ObserveCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.WithLabelValues(result).Inc()
}
