package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the manual review queue.
type Metrics struct {
	// Items enqueued by review type and priority
	Enqueued *prometheus.CounterVec

	// Items resolved by terminal status and resolver kind (reviewer or recheck)
	Resolved *prometheus.CounterVec

	// Items escalated by the SLA sweeper
	SLAEscalations prometheus.Counter

	// Time from enqueue to resolution
	ResolutionLatency prometheus.Histogram
}

func New() *Metrics {
	return &Metrics{
		Enqueued: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "credverify_reviews_enqueued_total",
			Help: "Manual review items enqueued by review type and priority",
		}, []string{"review_type", "priority"}),

		Resolved: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "credverify_reviews_resolved_total",
			Help: "Manual review items resolved by status and resolver",
		}, []string{"status", "resolver"}),

		SLAEscalations: promauto.NewCounter(prometheus.CounterOpts{
			Name: "credverify_review_sla_escalations_total",
			Help: "Review items escalated because their SLA deadline passed",
		}),

		ResolutionLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "credverify_review_resolution_hours",
			Help:    "Hours between enqueue and resolution of a review item",
			Buckets: []float64{1, 4, 12, 24, 36, 48, 72, 120},
		}),
	}
}

func (m *Metrics) IncrementEnqueued(reviewType, priority string) {
	if m != nil {
		m.Enqueued.WithLabelValues(reviewType, priority).Inc()
	}
}

func (m *Metrics) IncrementResolved(status, resolver string, age time.Duration) {
	if m != nil {
		m.Resolved.WithLabelValues(status, resolver).Inc()
		m.ResolutionLatency.Observe(age.Hours())
	}
}

func (m *Metrics) IncrementSLAEscalations(n int) {
	if m != nil {
		m.SLAEscalations.Add(float64(n))
	}
}
