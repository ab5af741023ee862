package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/devfolio/devfolio/internal/errors"
)

type stubChecker struct {
	err error
}

func (s stubChecker) CheckHealth(ctx context.Context) error {
	return s.err
}

func TestHealthHandlerReturnsHealthyStatus(t *testing.T) {
	manager := NewHealthManager("1.2.3")
	manager.RegisterChecker("ok", stubChecker{err: nil})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	manager.HealthHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp apperrors.APIResponse[HealthResponse]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, StatusHealthy, resp.Data.Status)
	assert.Equal(t, "1.2.3", resp.Data.Version)
	assert.Equal(t, StatusHealthy, resp.Data.Checks["ok"])
}

func TestHealthHandlerReturnsServiceUnavailableWhenUnhealthy(t *testing.T) {
	manager := NewHealthManager("1.2.3")
	manager.RegisterChecker("db", stubChecker{err: errors.New("down")})
	manager.RegisterChecker("redis", CheckerFunc(func(context.Context) error { return nil }))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	manager.HealthHandler(rec, req)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var resp apperrors.APIError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, apperrors.CodeServiceUnavailable, resp.Code)

	checks, ok := resp.Details["checks"].(map[string]any)
	require.True(t, ok, "expected checks in error details")
	assert.Equal(t, StatusUnhealthy, checks["db"])
	assert.Equal(t, StatusHealthy, checks["redis"])
	assert.Equal(t, []any{"db"}, resp.Details["unhealthyChecks"])
}

func TestReadinessHandlerReportsProbe(t *testing.T) {
	manager := NewHealthManager("dev")

	rec := httptest.NewRecorder()
	manager.ReadinessHandler(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp apperrors.APIResponse[ProbeResponse]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, ProbeResponse{Status: StatusHealthy, Probe: "ready"}, resp.Data)
}

func TestLivenessIgnoresFailingDependencies(t *testing.T) {
	manager := NewHealthManager("dev")
	manager.RegisterChecker("db", stubChecker{err: errors.New("down")})

	rec := httptest.NewRecorder()
	manager.LivenessHandler(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGlobalHandlersWithoutManager(t *testing.T) {
	original := globalHealthManager
	globalHealthManager = nil
	t.Cleanup(func() { globalHealthManager = original })

	rec := httptest.NewRecorder()
	StartupHandler(rec, httptest.NewRequest(http.MethodGet, "/health/startup", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestDetermineOverallStatusTreatsTimeoutAsDegraded(t *testing.T) {
	manager := NewHealthManager("dev")

	status := manager.determineOverallStatus(map[string]string{
		"db": StatusTimeout,
	})

	assert.Equal(t, StatusDegraded, status)
}

func TestRunHealthChecksMarksCancelledContextAsTimeout(t *testing.T) {
	manager := NewHealthManager("dev")
	manager.RegisterChecker("db", stubChecker{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	checks := manager.runHealthChecks(ctx)
	assert.Equal(t, StatusTimeout, checks["db"])
}
