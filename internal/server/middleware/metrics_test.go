package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fulmenhq/gofulmen/telemetry"
	telemetrytesting "github.com/fulmenhq/gofulmen/telemetry/testing"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devfolio/devfolio/internal/metrics"
	"github.com/devfolio/devfolio/internal/observability"
	"github.com/devfolio/devfolio/internal/ratelimit"
)

func setupTelemetry(t *testing.T) *telemetrytesting.FakeCollector {
	t.Helper()

	collector := telemetrytesting.NewFakeCollector()
	config := &telemetry.Config{
		Enabled: true,
		Emitter: collector,
	}

	sys, err := telemetry.NewSystem(config)
	require.NoError(t, err)

	originalTelemetry := observability.TelemetrySystem
	observability.TelemetrySystem = sys

	t.Cleanup(func() {
		observability.TelemetrySystem = originalTelemetry
	})

	return collector
}

// captureRequests replaces the recorder and returns what it was given.
func captureRequests(t *testing.T) *[]metrics.HTTPRequest {
	t.Helper()

	var got []metrics.HTTPRequest
	original := recordHTTPRequest
	recordHTTPRequest = func(req metrics.HTTPRequest) {
		got = append(got, req)
		original(req)
	}
	t.Cleanup(func() { recordHTTPRequest = original })

	return &got
}

func TestRequestMetrics_UsesRoutePattern(t *testing.T) {
	collector := setupTelemetry(t)
	got := captureRequests(t)

	r := chi.NewRouter()
	r.Use(RequestMetrics)
	r.Get("/api/github/{user}", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/github/octocat", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, *got, 1)
	req := (*got)[0]
	assert.Equal(t, "/api/github/{user}", req.Endpoint)
	assert.Equal(t, http.StatusOK, req.Status)
	assert.EqualValues(t, 2, req.ResponseBytes)
	assert.Empty(t, req.LimitRoute)
	assert.False(t, req.Limited)

	assert.Greater(t, collector.CountMetricsByName(metrics.HTTPRequestsTotal), 0)
	assert.Greater(t, collector.CountMetricsByName(metrics.HTTPRequestDuration), 0)
	assert.Greater(t, collector.CountMetricsByName(metrics.HTTPResponseSize), 0)
	assert.Equal(t, 0, collector.CountMetricsByName(metrics.HTTPRateLimitedTotal))
}

func TestRequestMetrics_UnmatchedPathUsesFallback(t *testing.T) {
	setupTelemetry(t)
	got := captureRequests(t)

	r := chi.NewRouter()
	r.Use(RequestMetrics)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/wp-admin/install.php", nil))

	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Len(t, *got, 1)
	assert.Equal(t, unmatchedEndpoint, (*got)[0].Endpoint)
	assert.Equal(t, http.StatusNotFound, (*got)[0].Status)
}

func TestRequestMetrics_TagsRateLimitOutcome(t *testing.T) {
	collector := setupTelemetry(t)
	got := captureRequests(t)

	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	cfg := ratelimit.Config{MaxRequests: 1, Window: time.Minute, Identifier: "contact-form"}

	r := chi.NewRouter()
	r.Use(RequestMetrics)
	r.With(RateLimit(newLimiterAt(now), cfg, nil)).Post("/api/contact", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})

	send := func() int {
		req := httptest.NewRequest(http.MethodPost, "/api/contact", nil)
		req.RemoteAddr = "203.0.113.7:5555"
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusCreated, send())
	assert.Equal(t, http.StatusTooManyRequests, send())

	require.Len(t, *got, 2)

	allowed, limited := (*got)[0], (*got)[1]
	assert.Equal(t, "contact-form", allowed.LimitRoute)
	assert.False(t, allowed.Limited)
	assert.Equal(t, "/api/contact", limited.Endpoint)
	assert.Equal(t, "contact-form", limited.LimitRoute)
	assert.True(t, limited.Limited)
	assert.Equal(t, http.StatusTooManyRequests, limited.Status)

	assert.Equal(t, 1, collector.CountMetricsByName(metrics.HTTPRateLimitedTotal))
	assert.Equal(t, 2, collector.CountMetricsByName(metrics.HTTPRequestsTotal))
}

func TestRequestMetrics_TelemetryDisabled(t *testing.T) {
	original := observability.TelemetrySystem
	observability.TelemetrySystem = nil
	t.Cleanup(func() { observability.TelemetrySystem = original })

	handler := RequestMetrics(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	rec := httptest.NewRecorder()
	assert.NotPanics(t, func() {
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/github", nil))
	})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestResponseWriter_KeepsFirstStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := &responseWriter{ResponseWriter: rec, statusCode: http.StatusOK}

	_, _ = rw.Write([]byte("body"))
	rw.WriteHeader(http.StatusTeapot)

	assert.Equal(t, http.StatusOK, rw.statusCode)
	assert.EqualValues(t, 4, rw.bytesWritten)
	assert.Same(t, rec, rw.Unwrap())
}

func TestHTTPRequestLabels(t *testing.T) {
	labels := metrics.HTTPRequest{Method: "POST", Endpoint: "/api/contact", Status: 429}.Labels()

	assert.Equal(t, "429", labels["status"])
	assert.Equal(t, "4xx", labels["class"])
	assert.Equal(t, metrics.NoLimitRoute, labels["limit_route"])

	labels = metrics.HTTPRequest{Status: 200, LimitRoute: "github-activity-api"}.Labels()
	assert.Equal(t, "github-activity-api", labels["limit_route"])
	assert.Equal(t, "unknown", metrics.StatusClass(42))
}
