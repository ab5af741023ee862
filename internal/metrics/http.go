package metrics

import (
	"strconv"
	"time"

	"github.com/devfolio/devfolio/internal/observability"
)

// HTTP metric names
const (
	HTTPRequestsTotal    = "http_requests_total"
	HTTPRequestDuration  = "http_request_duration_ms"
	HTTPResponseSize     = "http_response_size_bytes"
	HTTPRateLimitedTotal = "http_rate_limited_total"
)

// NoLimitRoute labels requests on routes without a rate limit.
const NoLimitRoute = "none"

// HTTPRequest is one completed request as seen by the metrics middleware.
type HTTPRequest struct {
	Method        string
	Endpoint      string
	Status        int
	Duration      time.Duration
	ResponseBytes int64
	// LimitRoute is the rate limit identifier the request was checked
	// against, empty when the route is not limited.
	LimitRoute string
	Limited    bool
}

// Labels returns the bounded label set shared by the request metrics.
func (r HTTPRequest) Labels() map[string]string {
	route := r.LimitRoute
	if route == "" {
		route = NoLimitRoute
	}
	return map[string]string{
		"method":      r.Method,
		"endpoint":    r.Endpoint,
		"status":      strconv.Itoa(r.Status),
		"class":       StatusClass(r.Status),
		"limit_route": route,
	}
}

// StatusClass buckets a status code as "2xx", "4xx" and so on.
func StatusClass(status int) string {
	if status < 100 || status > 599 {
		return "unknown"
	}
	return strconv.Itoa(status/100) + "xx"
}

// RecordHTTPRequest emits the counter, duration and size for req, plus
// http_rate_limited_total when the limiter rejected it.
func RecordHTTPRequest(req HTTPRequest) {
	if observability.TelemetrySystem == nil {
		return
	}

	labels := req.Labels()
	_ = observability.TelemetrySystem.Counter(HTTPRequestsTotal, 1, labels)
	_ = observability.TelemetrySystem.Histogram(HTTPRequestDuration, req.Duration, labels)
	_ = observability.TelemetrySystem.Gauge(HTTPResponseSize, float64(req.ResponseBytes), map[string]string{
		"method":   req.Method,
		"endpoint": req.Endpoint,
	})

	if req.Limited {
		_ = observability.TelemetrySystem.Counter(HTTPRateLimitedTotal, 1, map[string]string{
			"endpoint":    req.Endpoint,
			"limit_route": labels["limit_route"],
		})
	}
}
