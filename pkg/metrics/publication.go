package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PublicationMetrics records per-channel publish attempts.
type PublicationMetrics struct {
	attempts *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewPublicationMetrics registers the publication metrics on the provided registerer.
func NewPublicationMetrics(reg prometheus.Registerer) *PublicationMetrics {
	if reg == nil {
		return &PublicationMetrics{}
	}
	attempts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "publication_attempts_total",
		Help: "Channel publish attempts by outcome.",
	}, []string{"channel", "outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "publication_adapter_duration_seconds",
		Help:    "Duration of channel adapter calls in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"channel"})
	reg.MustRegister(attempts, duration)
	return &PublicationMetrics{
		attempts: attempts,
		duration: duration,
	}
}

// ObserveAttempt counts one per-channel result.
func (p *PublicationMetrics) ObserveAttempt(channel, outcome string) {
	if p == nil || p.attempts == nil {
		return
	}
	p.attempts.WithLabelValues(normalizeLabel(channel), normalizeLabel(outcome)).Inc()
}

// ObserveAdapterDuration records how long an adapter call took.
func (p *PublicationMetrics) ObserveAdapterDuration(channel string, d time.Duration) {
	if p == nil || p.duration == nil {
		return
	}
	p.duration.WithLabelValues(normalizeLabel(channel)).Observe(d.Seconds())
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
