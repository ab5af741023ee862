package metrics

import (
	"time"

	"github.com/devfolio/devfolio/internal/observability"
)

// Application-level metrics following Prometheus conventions
const (
	// Operations metrics
	OperationsTotal = "devfolio_operations_total"

	// Upstream dependency metrics
	BreakerStateChangesTotal = "devfolio_breaker_state_changes_total"

	// Contact form metrics
	ContactSubmissionsTotal = "devfolio_contact_submissions_total"

	// Health check metrics
	HealthCheckTotal    = "devfolio_health_check_total"
	HealthCheckDuration = "devfolio_health_check_duration_ms"

	// Server lifecycle metrics
	ServerStartTime = "devfolio_server_start_time_seconds"
)

// RecordOperation records an application operation with status
func RecordOperation(operation string, success bool) {
	status := "success"
	if !success {
		status = "failure"
	}

	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Counter(
			OperationsTotal,
			1,
			map[string]string{
				"operation": operation,
				"status":    status,
			},
		)
	}
}

// RecordBreakerState counts a circuit breaker transition into state.
func RecordBreakerState(breaker, state string) {
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Counter(
			BreakerStateChangesTotal,
			1,
			map[string]string{
				"breaker": breaker,
				"state":   state,
			},
		)
	}
}

// RecordContactSubmission counts an accepted contact form message by sink.
func RecordContactSubmission(sink string) {
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Counter(
			ContactSubmissionsTotal,
			1,
			map[string]string{"sink": sink},
		)
	}
}

// RecordHealthCheck records a health check execution
func RecordHealthCheck(checkName string, healthy bool, duration time.Duration) {
	status := "healthy"
	if !healthy {
		status = "unhealthy"
	}

	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Counter(
			HealthCheckTotal,
			1,
			map[string]string{
				"check":  checkName,
				"status": status,
			},
		)

		_ = observability.TelemetrySystem.Histogram(
			HealthCheckDuration,
			duration,
			map[string]string{
				"check": checkName,
			},
		)
	}
}

// SetServerStartTime records the server start time (Unix timestamp)
func SetServerStartTime(timestamp int64) {
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Gauge(
			ServerStartTime,
			float64(timestamp),
			nil,
		)
	}
}
