package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthAttempts records login/registration attempts by result (success|failure).
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "podel_auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
		[]string{"kind", "result"},
	)

	// ActiveSessions tracks sessions that have been issued and not yet destroyed.
	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "podel_active_sessions",
			Help: "Number of live sessions",
		},
	)

	// SessionValidations counts token validations by outcome
	// (ok|malformed|expired|not_found|storage).
	SessionValidations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "podel_session_validations_total",
			Help: "Total number of session token validations",
		},
		[]string{"outcome"},
	)

	// APILatency observes request duration per route.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "podel_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
