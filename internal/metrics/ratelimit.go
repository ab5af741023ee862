package metrics

import (
	"github.com/devfolio/devfolio/internal/observability"
)

// Rate limiter metric names
const (
	RateLimitDecisionsTotal   = "ratelimit_decisions_total"
	RateLimitCleanupRunsTotal = "ratelimit_cleanup_runs_total"
	RateLimitCleanupDeleted   = "ratelimit_cleanup_deleted"
	RateLimitStoreErrorsTotal = "ratelimit_store_errors_total"
)

// Decision outcomes
const (
	OutcomeAllowed  = "allowed"
	OutcomeRejected = "rejected"
)

// RecordRateLimitDecision counts one limiter decision for a route identifier.
func RecordRateLimitDecision(route string, allowed bool) {
	outcome := OutcomeAllowed
	if !allowed {
		outcome = OutcomeRejected
	}

	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Counter(
			RateLimitDecisionsTotal,
			1,
			map[string]string{
				"route":   route,
				"outcome": outcome,
			},
		)
	}
}

// RecordRateLimitCleanup records a sweep and how many expired records it removed.
func RecordRateLimitCleanup(deleted int) {
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Counter(RateLimitCleanupRunsTotal, 1, nil)
		_ = observability.TelemetrySystem.Gauge(RateLimitCleanupDeleted, float64(deleted), nil)
	}
}

// RecordRateLimitStoreError counts a backing store failure that made the limiter fail open.
func RecordRateLimitStoreError(op string) {
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Counter(
			RateLimitStoreErrorsTotal,
			1,
			map[string]string{"op": op},
		)
	}
}
