package errors

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/devfolio/devfolio/internal/metrics"
	"github.com/devfolio/devfolio/internal/observability"
)

// RespondWithError classifies err through HandleError and writes the result.
func RespondWithError(w http.ResponseWriter, r *http.Request, err error) {
	apiErr := HandleError(err)
	if err != nil {
		logCause(r, err, apiErr)
	}
	RespondWithAPIError(w, r, apiErr)
}

// RespondWithAPIError writes an already built APIError, logging it and
// emitting error metrics.
func RespondWithAPIError(w http.ResponseWriter, r *http.Request, apiErr APIError) {
	if w == nil {
		return
	}

	statusCode := apiErr.HTTPStatus()
	logHTTPError(r, apiErr, statusCode)
	emitErrorMetrics(r, apiErr, statusCode)

	writeJSON(w, statusCode, apiErr)
}

// RespondWithSuccess wraps data in the success shape and writes it with status.
func RespondWithSuccess[T any](w http.ResponseWriter, r *http.Request, status int, data T) {
	if w == nil {
		return
	}
	if status == 0 {
		status = http.StatusOK
	}
	writeJSON(w, status, NewSuccessResponse(data))
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	payload, err := json.Marshal(body)
	if err != nil {
		if observability.ServerLogger != nil {
			observability.ServerLogger.Error("Failed to encode response", zap.Error(err))
		}
		status = http.StatusInternalServerError
		payload, _ = json.Marshal(NewErrorResponse(CodeServer, MessageUnexpected, nil))
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(payload)
}

func logCause(r *http.Request, cause error, apiErr APIError) {
	if observability.ServerLogger == nil || apiErr.Code.IsClientError() {
		return
	}
	fields := []zap.Field{
		zap.String("error_code", apiErr.Code.String()),
		zap.Error(cause),
	}
	if r != nil {
		if id := observability.RequestIDFromContext(r.Context()); id != "" {
			fields = append(fields, zap.String("request_id", id))
		}
	}
	observability.ServerLogger.Debug("Classified error", fields...)
}

func logHTTPError(r *http.Request, apiErr APIError, statusCode int) {
	if observability.ServerLogger == nil {
		return
	}

	fields := []zap.Field{
		zap.String("error_code", apiErr.Code.String()),
		zap.Int("http_status", statusCode),
	}

	if r != nil {
		fields = append(fields,
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
		)
		if id := observability.RequestIDFromContext(r.Context()); id != "" {
			fields = append(fields, zap.String("request_id", id))
		}
	}

	if statusCode >= http.StatusInternalServerError {
		observability.ServerLogger.Error(apiErr.Message, fields...)
		return
	}
	observability.ServerLogger.Warn(apiErr.Message, fields...)
}

func emitErrorMetrics(r *http.Request, apiErr APIError, statusCode int) {
	metrics.RecordError(apiErr.Code.String(), statusCode)
	if r != nil {
		metrics.RecordErrorByEndpoint(endpointPattern(r), apiErr.Code.String())
	}
}

// endpointPattern prefers the chi route pattern to keep label cardinality bounded.
func endpointPattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "/unknown"
}
