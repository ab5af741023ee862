package observability

import (
	"fmt"
	"net"
	"strconv"

	"github.com/fulmenhq/gofulmen/telemetry"
	"github.com/fulmenhq/gofulmen/telemetry/exporters"
)

// DefaultMetricsPort is assumed when the exporter was asked for a random
// port and its bound address cannot be read back.
const DefaultMetricsPort = 9090

var (
	// TelemetrySystem receives every counter, gauge and histogram in internal/metrics.
	TelemetrySystem *telemetry.System

	// PrometheusExporter serves the scrape endpoint on its own port. The main
	// router's /metrics proxies to it.
	PrometheusExporter *exporters.PrometheusExporter

	metricsPort int
)

// InitMetrics starts the Prometheus exporter on port (0 picks a free port) and
// installs a telemetry system that emits to it. Metric names are prefixed with
// namespace, or serviceName when namespace is empty.
func InitMetrics(serviceName string, port int, namespace ...string) error {
	if port < 0 {
		port = 0
	}
	metricsPort = port

	exporter := exporters.NewPrometheusExporter(metricNamespace(serviceName, namespace), fmt.Sprintf(":%d", port))
	if err := exporter.Start(); err != nil {
		return fmt.Errorf("start prometheus exporter on :%d: %w", port, err)
	}
	PrometheusExporter = exporter

	switch bound, err := resolvePort(exporter.GetAddr()); {
	case err == nil:
		metricsPort = bound
	case port == 0:
		metricsPort = DefaultMetricsPort
	}

	sys, err := telemetry.NewSystem(&telemetry.Config{
		Enabled: true,
		Emitter: exporter,
	})
	if err != nil {
		return fmt.Errorf("create telemetry system: %w", err)
	}
	TelemetrySystem = sys
	return nil
}

// GetMetricsPort returns the port the exporter listens on, 0 before InitMetrics.
func GetMetricsPort() int {
	return metricsPort
}

func metricNamespace(serviceName string, namespace []string) string {
	if len(namespace) > 0 && namespace[0] != "" {
		return namespace[0]
	}
	return serviceName
}

func resolvePort(addr string) (int, error) {
	_, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(portStr)
}
