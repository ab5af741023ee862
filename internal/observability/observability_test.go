package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fulmenhq/gofulmen/crucible"
	"github.com/fulmenhq/gofulmen/logging"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestParseLogLevel(t *testing.T) {
	cases := map[string]string{
		"trace":   "TRACE",
		"debug":   "DEBUG",
		"info":    "INFO",
		"warn":    "WARN",
		"warning": "WARN",
		" Error ": "ERROR",
		"":        "INFO",
		"verbose": "INFO",
	}
	for in, want := range cases {
		assert.Equal(t, want, parseLogLevel(in), "level %q", in)
	}
}

func TestServerLoggerConfig(t *testing.T) {
	t.Setenv(EnvironmentVar, "staging")

	cfg := ServerLoggerConfig("devfolio", "debug", "devfolio")
	assert.Equal(t, logging.ProfileStructured, cfg.Profile)
	assert.Equal(t, "DEBUG", cfg.DefaultLevel)
	assert.Equal(t, "staging", cfg.Environment)
	assert.Equal(t, "devfolio", cfg.StaticFields["namespace"])
	require.Len(t, cfg.Sinks, 1)
	assert.Equal(t, "json", cfg.Sinks[0].Format)

	noNamespace := ServerLoggerConfig("devfolio", "info")
	assert.NotContains(t, noNamespace.StaticFields, "namespace")
}

func TestEnvironmentDefault(t *testing.T) {
	t.Setenv(EnvironmentVar, "")
	assert.Equal(t, "production", environment())
}

func TestInitLoggers(t *testing.T) {
	InitCLILogger("devfolio-test", true)
	require.NotNil(t, CLILogger)
	CLILogger.Debug("cli logger ready", zap.String("test", t.Name()))

	InitServerLogger("devfolio-test", "info", "devfolio")
	require.NotNil(t, ServerLogger)
	ServerLogger.Info("server logger ready", zap.String("component", "test"))
}

func TestRequestIDFromContext(t *testing.T) {
	assert.Empty(t, RequestIDFromContext(context.Background()))

	ctx := WithRequestID(context.Background(), "req-1")
	assert.Equal(t, "req-1", RequestIDFromContext(ctx))

	var fromChi string
	handler := chimw.RequestID(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		fromChi = RequestIDFromContext(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(chimw.RequestIDHeader, "from-header")
	handler.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "from-header", fromChi)
}

func TestResolvePort(t *testing.T) {
	port, err := resolvePort("[::]:9464")
	require.NoError(t, err)
	assert.Equal(t, 9464, port)

	_, err = resolvePort("no-port")
	assert.Error(t, err)
}

func TestMetricNamespace(t *testing.T) {
	assert.Equal(t, "svc", metricNamespace("svc", nil))
	assert.Equal(t, "svc", metricNamespace("svc", []string{""}))
	assert.Equal(t, "ns", metricNamespace("svc", []string{"ns"}))
}

func TestCrucibleVersion(t *testing.T) {
	version := crucible.GetVersion()
	assert.NotEmpty(t, version.Gofulmen)
	assert.NotEmpty(t, version.Crucible)
}
