// Package metrics provides Prometheus metrics for the AI pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "morningreport"

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	// Provider / fallback metrics
	ProviderAttempts *prometheus.CounterVec // labels: provider, capability, outcome
	ChainExhausted   *prometheus.CounterVec // labels: capability
	AuthFailures     *prometheus.CounterVec // labels: provider

	// Normalization metrics
	NormalizationWarnings prometheus.Counter

	// Job metrics
	JobsSubmitted prometheus.Counter
	JobsCompleted prometheus.Counter
	JobsFailed    prometheus.Counter

	// Realtime session metrics
	SessionsActive     prometheus.Gauge
	ReconnectsTotal    prometheus.Counter
	SessionsExhausted  prometheus.Counter
	TranscriptEvicted  prometheus.Counter
	AudioBytesReceived prometheus.Counter
}

// Default is the process-wide metrics instance.
var Default = New()

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		ProviderAttempts: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_attempts_total",
			Help:      "Provider invocations by provider, capability and outcome",
		}, []string{"provider", "capability", "outcome"}),
		ChainExhausted: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chain_exhausted_total",
			Help:      "Fallback chains exhausted without success",
		}, []string{"capability"}),
		AuthFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_auth_failures_total",
			Help:      "Credential failures per provider (operator attention needed)",
		}, []string{"provider"}),
		NormalizationWarnings: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "normalization_warnings_total",
			Help:      "Vendor response fields that failed to parse and were degraded",
		}),
		JobsSubmitted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "jobs_submitted_total",
			Help:      "Analysis jobs accepted",
		}),
		JobsCompleted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "jobs_completed_total",
			Help:      "Analysis jobs completed successfully",
		}),
		JobsFailed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "jobs_failed_total",
			Help:      "Analysis jobs that ended in failure",
		}),
		SessionsActive: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "realtime_sessions_active",
			Help:      "Currently open realtime transcription sessions",
		}),
		ReconnectsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "realtime_reconnects_total",
			Help:      "Upstream reconnection attempts across all sessions",
		}),
		SessionsExhausted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "realtime_sessions_exhausted_total",
			Help:      "Sessions that hit the reconnect budget and went terminal",
		}),
		TranscriptEvicted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "realtime_transcript_evictions_total",
			Help:      "Times the bounded live transcript buffer evicted old text",
		}),
		AudioBytesReceived: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "realtime_audio_bytes_total",
			Help:      "PCM bytes received over realtime sessions",
		}),
	}
}
