package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the verification module.
type Metrics struct {
	// External lookup latencies by source
	LookupLatency *prometheus.HistogramVec

	// Lookup outcomes by source and outcome (found, not_found, or an error category)
	LookupOutcome *prometheus.CounterVec

	// Per-credential results by credential type and status
	ResultStatus *prometheus.CounterVec

	// Overall statuses produced by verify/recompute
	OverallStatus *prometheus.CounterVec

	// Full verify latency including persistence
	VerifyLatency prometheus.Histogram

	// Credentials skipped because a usable result already existed
	SkippedChecks prometheus.Counter

	// Status cache effectiveness
	CacheHits   prometheus.Counter
	CacheMisses prometheus.Counter

	// Notification publishing failures
	NotifyFailures prometheus.Counter
}

// New creates a new Metrics instance with all verification metrics registered.
func New() *Metrics {
	return &Metrics{
		LookupLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "credverify_lookup_duration_seconds",
			Help:    "Duration of external credential lookups by source",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
		}, []string{"source"}),

		LookupOutcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "credverify_lookup_outcomes_total",
			Help: "External lookup outcomes by source",
		}, []string{"source", "outcome"}),

		ResultStatus: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "credverify_results_total",
			Help: "Verification results written by credential type and status",
		}, []string{"credential_type", "status"}),

		OverallStatus: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "credverify_overall_status_total",
			Help: "Overall verification statuses computed by trigger",
		}, []string{"status", "trigger"}),

		VerifyLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "credverify_verify_duration_seconds",
			Help:    "Duration of a verify run including persistence",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
		}),

		SkippedChecks: promauto.NewCounter(prometheus.CounterOpts{
			Name: "credverify_skipped_checks_total",
			Help: "Credential checks skipped because a usable result existed",
		}),

		CacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "credverify_status_cache_hits_total",
			Help: "Status cache hits",
		}),

		CacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "credverify_status_cache_misses_total",
			Help: "Status cache misses",
		}),

		NotifyFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "credverify_notify_failures_total",
			Help: "Notification events that could not be published",
		}),
	}
}

func (m *Metrics) ObserveLookup(source, outcome string, d time.Duration) {
	if m != nil {
		m.LookupLatency.WithLabelValues(source).Observe(d.Seconds())
		m.LookupOutcome.WithLabelValues(source, outcome).Inc()
	}
}

func (m *Metrics) IncrementResult(credentialType, status string) {
	if m != nil {
		m.ResultStatus.WithLabelValues(credentialType, status).Inc()
	}
}

func (m *Metrics) IncrementOverall(status, trigger string) {
	if m != nil {
		m.OverallStatus.WithLabelValues(status, trigger).Inc()
	}
}

func (m *Metrics) ObserveVerifyLatency(d time.Duration) {
	if m != nil {
		m.VerifyLatency.Observe(d.Seconds())
	}
}

func (m *Metrics) IncrementSkipped() {
	if m != nil {
		m.SkippedChecks.Inc()
	}
}

func (m *Metrics) IncrementCacheHit() {
	if m != nil {
		m.CacheHits.Inc()
	}
}

func (m *Metrics) IncrementCacheMiss() {
	if m != nil {
		m.CacheMisses.Inc()
	}
}
