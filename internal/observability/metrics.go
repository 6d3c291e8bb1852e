package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quill_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "quill_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// SessionsIssued counts sessions established, by trigger.
	SessionsIssued = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quill_sessions_issued_total",
		Help: "Total number of sessions issued, by trigger (register, login, renew)",
	}, []string{"trigger"})

	// SessionsRevoked counts explicit logouts.
	SessionsRevoked = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quill_sessions_revoked_total",
		Help: "Total number of sessions revoked by logout",
	})
)

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}
