package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/devfolio/devfolio/internal/metrics"
	"github.com/devfolio/devfolio/internal/observability"
)

// unmatchedEndpoint labels requests chi could not route, keeping 404 scans
// out of the label space.
const unmatchedEndpoint = "/unknown"

// recordHTTPRequest is swapped in tests.
var recordHTTPRequest = metrics.RecordHTTPRequest

// responseWriter captures the status code and body size.
type responseWriter struct {
	http.ResponseWriter
	statusCode   int
	wroteHeader  bool
	bytesWritten int64
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.statusCode = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	n, err := rw.ResponseWriter.Write(b)
	rw.bytesWritten += int64(n)
	return n, err
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (rw *responseWriter) Unwrap() http.ResponseWriter { return rw.ResponseWriter }

// requestTags collects what inner middleware learned about a request.
type requestTags struct {
	limitRoute string
	limited    bool
}

type requestTagsKey struct{}

// tagRateLimit records the limiter decision on the request's tags, if
// RequestMetrics is upstream.
func tagRateLimit(r *http.Request, route string, limited bool) {
	if tags, ok := r.Context().Value(requestTagsKey{}).(*requestTags); ok {
		tags.limitRoute = route
		tags.limited = limited
	}
}

// endpointPattern returns the chi route pattern, or unmatchedEndpoint.
func endpointPattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return unmatchedEndpoint
}

// RequestMetrics emits per-request metrics labelled by route pattern and rate
// limit route, and logs each completed request with its request ID.
func RequestMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		tags := &requestTags{}

		next.ServeHTTP(wrapped, r.WithContext(context.WithValue(r.Context(), requestTagsKey{}, tags)))

		req := metrics.HTTPRequest{
			Method:        r.Method,
			Endpoint:      endpointPattern(r),
			Status:        wrapped.statusCode,
			Duration:      time.Since(start),
			ResponseBytes: wrapped.bytesWritten,
			LimitRoute:    tags.limitRoute,
			Limited:       tags.limited,
		}
		recordHTTPRequest(req)
		logRequest(r, req)
	})
}

func logRequest(r *http.Request, req metrics.HTTPRequest) {
	logger := observability.ServerLogger
	if logger == nil {
		return
	}

	fields := []zap.Field{
		zap.String("method", req.Method),
		zap.String("path", r.URL.Path),
		zap.String("endpoint", req.Endpoint),
		zap.Int("status", req.Status),
		zap.Duration("duration", req.Duration),
		zap.Int64("response_size", req.ResponseBytes),
		zap.String("request_id", GetRequestID(r.Context())),
	}
	if req.LimitRoute != "" {
		fields = append(fields,
			zap.String("limit_route", req.LimitRoute),
			zap.Bool("rate_limited", req.Limited))
	}

	if req.Status >= http.StatusInternalServerError {
		logger.Warn("HTTP request failed", fields...)
		return
	}
	logger.Info("HTTP request completed", fields...)
}
