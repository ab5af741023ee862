package middleware

import (
	"net/http"
	"runtime/debug"

	"go.uber.org/zap"

	apperrors "github.com/devfolio/devfolio/internal/errors"
	"github.com/devfolio/devfolio/internal/metrics"
	"github.com/devfolio/devfolio/internal/observability"
)

// Recovery middleware recovers from panics, classifies the panic value
// through HandleError and answers with the normalized error body.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			metrics.RecordPanic()

			if observability.ServerLogger != nil {
				observability.ServerLogger.Error("Recovered from panic",
					zap.Any("panic", rec),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.String("request_id", GetRequestID(r.Context())),
					zap.String("stack_trace", string(debug.Stack())))
			}

			apperrors.RespondWithAPIError(w, r, apperrors.HandleError(rec))
		}()

		next.ServeHTTP(w, r)
	})
}
