package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SettlementMetrics records settlement attempts across notification channels.
type SettlementMetrics struct {
	attempts       *prometheus.CounterVec
	settled        prometheus.Counter
	alreadySettled prometheus.Counter
	failures       *prometheus.CounterVec
	duration       prometheus.Histogram
}

// NewSettlementMetrics registers the settlement metrics on the provided registerer.
func NewSettlementMetrics(reg prometheus.Registerer) *SettlementMetrics {
	if reg == nil {
		return &SettlementMetrics{}
	}
	attempts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "settlement_attempts_total",
		Help: "Settlement attempts by notification channel.",
	}, []string{"channel"})
	settled := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "settlement_settled_total",
		Help: "Orders marked paid by the reconciler.",
	})
	alreadySettled := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "settlement_duplicate_total",
		Help: "Settlement attempts against an already-paid order.",
	})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "settlement_failures_total",
		Help: "Failed settlement attempts by reason.",
	}, []string{"reason"})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "settlement_duration_seconds",
		Help:    "Duration of settlement attempts in seconds.",
		Buckets: prometheus.DefBuckets,
	})
	reg.MustRegister(attempts, settled, alreadySettled, failures, duration)
	return &SettlementMetrics{
		attempts:       attempts,
		settled:        settled,
		alreadySettled: alreadySettled,
		failures:       failures,
		duration:       duration,
	}
}

// IncAttempt counts an attempt arriving on the named channel (redirect/webhook).
func (m *SettlementMetrics) IncAttempt(channel string) {
	if m == nil || m.attempts == nil {
		return
	}
	m.attempts.WithLabelValues(normalizeLabel(channel)).Inc()
}

// IncSettled counts a first-time settlement.
func (m *SettlementMetrics) IncSettled() {
	if m == nil || m.settled == nil {
		return
	}
	m.settled.Inc()
}

// IncAlreadySettled counts a duplicate notification short-circuited by the paid gate.
func (m *SettlementMetrics) IncAlreadySettled() {
	if m == nil || m.alreadySettled == nil {
		return
	}
	m.alreadySettled.Inc()
}

// IncFailure counts a failed attempt with the given reason.
func (m *SettlementMetrics) IncFailure(reason string) {
	if m == nil || m.failures == nil {
		return
	}
	m.failures.WithLabelValues(normalizeLabel(reason)).Inc()
}

// ObserveDuration records the wall time of one settlement attempt.
func (m *SettlementMetrics) ObserveDuration(duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.Observe(duration.Seconds())
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
