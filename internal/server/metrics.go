package server

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/fulmenhq/gofulmen/errors"
	"go.uber.org/zap"

	"github.com/devfolio/devfolio/internal/observability"
)

var metricsProxyClient = &http.Client{
	Timeout: 5 * time.Second,
}

// Hop-by-hop headers; net/http handles them.
var hopHeaders = map[string]bool{
	"Connection":          true,
	"Keep-Alive":          true,
	"Proxy-Authenticate":  true,
	"Proxy-Authorization": true,
	"Te":                  true,
	"Trailer":             true,
	"Transfer-Encoding":   true,
	"Upgrade":             true,
}

// metricsHandler proxies Prometheus metrics from the internal exporter so
// callers can scrape /metrics on the main HTTP server. fallbackPort is used
// when the exporter's bound port is unknown.
func metricsHandler(fallbackPort int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if observability.PrometheusExporter == nil {
			HandleError(w, r, errors.NewErrorEnvelope("SERVICE_UNAVAILABLE", "Metrics exporter not initialized"))
			return
		}

		metricsPort := observability.GetMetricsPort()
		if metricsPort == 0 {
			metricsPort = fallbackPort
		}
		if metricsPort == 0 {
			metricsPort = 9090
		}
		metricsURL := fmt.Sprintf("http://127.0.0.1:%d/metrics", metricsPort)

		req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, metricsURL, nil)
		if err != nil {
			logProxyFailure(metricsURL, err)
			HandleError(w, r, errors.NewErrorEnvelope("INTERNAL_ERROR", "Unable to construct metrics request"))
			return
		}

		// Preserve caller hint for content negotiation
		if accept := r.Header.Get("Accept"); accept != "" {
			req.Header.Set("Accept", accept)
		}

		resp, err := metricsProxyClient.Do(req)
		if err != nil {
			logProxyFailure(metricsURL, err)
			HandleError(w, r, errors.NewErrorEnvelope("EXTERNAL_SERVICE_ERROR", "Prometheus exporter unavailable"))
			return
		}
		defer func() {
			if err := resp.Body.Close(); err != nil && observability.ServerLogger != nil {
				observability.ServerLogger.Warn("Failed to close metrics response body", zap.Error(err))
			}
		}()

		for key, values := range resp.Header {
			if hopHeaders[http.CanonicalHeaderKey(key)] {
				continue
			}
			for _, v := range values {
				w.Header().Add(key, v)
			}
		}

		// Ensure we always advertise Prometheus content type
		if resp.Header.Get("Content-Type") == "" {
			w.Header().Set("Content-Type", "text/plain; version=0.0.4")
		}

		w.WriteHeader(resp.StatusCode)
		if _, err := io.Copy(w, resp.Body); err != nil && observability.ServerLogger != nil {
			observability.ServerLogger.Warn("Failed to write metrics response", zap.Error(err))
		}
	}
}

func logProxyFailure(metricsURL string, err error) {
	if observability.ServerLogger != nil {
		observability.ServerLogger.Warn("Metrics proxy failed",
			zap.String("metrics_url", metricsURL),
			zap.Error(err))
	}
}
