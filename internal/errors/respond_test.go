package errors

import (
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fulmenhq/gofulmen/telemetry"
	telemetrytesting "github.com/fulmenhq/gofulmen/telemetry/testing"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devfolio/devfolio/internal/metrics"
	"github.com/devfolio/devfolio/internal/observability"
)

func setupTelemetry(t *testing.T) *telemetrytesting.FakeCollector {
	t.Helper()

	collector := telemetrytesting.NewFakeCollector()
	sys, err := telemetry.NewSystem(&telemetry.Config{
		Enabled: true,
		Emitter: collector,
	})
	require.NoError(t, err)

	original := observability.TelemetrySystem
	observability.TelemetrySystem = sys
	t.Cleanup(func() { observability.TelemetrySystem = original })

	return collector
}

func TestRespondWithError_WritesNormalizedBody(t *testing.T) {
	collector := setupTelemetry(t)

	req := httptest.NewRequest(http.MethodGet, "/api/github/activity", nil)
	rec := httptest.NewRecorder()

	RespondWithError(rec, req, stderrors.New("repository not found"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body APIError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, CodeNotFound, body.Code)
	assert.Equal(t, http.StatusNotFound, body.StatusCode)

	assert.Greater(t, collector.CountMetricsByName(metrics.ErrorsTotalName), 0)
	assert.Greater(t, collector.CountMetricsByName(metrics.ErrorsByEndpointName), 0)
}

func TestRespondWithError_NilError(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondWithError(rec, httptest.NewRequest(http.MethodGet, "/", nil), nil)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var wire map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &wire))
	assert.Equal(t, false, wire["success"])
	assert.Equal(t, MessageUnexpected, wire["message"])
}

func TestRespondWithAPIError_UsesStatusFromCode(t *testing.T) {
	rec := httptest.NewRecorder()
	apiErr := NewErrorResponse(CodeValidation, "All fields are required",
		map[string]any{"missingFields": []string{"email"}})

	RespondWithAPIError(rec, httptest.NewRequest(http.MethodPost, "/api/contact", nil), apiErr)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"missingFields":["email"]`)
	assert.NotContains(t, rec.Body.String(), "stack")
}

func TestRespondWithAPIError_NilWriter(t *testing.T) {
	assert.NotPanics(t, func() {
		RespondWithAPIError(nil, nil, NewErrorResponse(CodeServer, "x", nil))
	})
}

func TestRespondWithSuccess(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondWithSuccess(rec, httptest.NewRequest(http.MethodPost, "/api/contact", nil),
		http.StatusCreated, map[string]any{"received": true})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body APIResponse[map[string]bool]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Data["received"])
}
