package middleware

import (
	"net/http"

	"go.uber.org/zap"

	apperrors "github.com/devfolio/devfolio/internal/errors"
	"github.com/devfolio/devfolio/internal/metrics"
	"github.com/devfolio/devfolio/internal/observability"
	"github.com/devfolio/devfolio/internal/ratelimit"
)

// RateLimitedMessage is the message of every 429 answer.
const RateLimitedMessage = "Too many requests, please try again later"

// RateLimit checks each request against cfg before calling next. Rate-limit
// headers are set on every answer; rejected requests get HTTP 429 with
// details.retryAfter and never reach next.
func RateLimit(limiter *ratelimit.Limiter, cfg ratelimit.Config, keyFn ratelimit.KeyFunc) func(http.Handler) http.Handler {
	if keyFn == nil {
		keyFn = ratelimit.DefaultKeyFunc("", false)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller := keyFn(r)
			result := limiter.Check(r.Context(), caller, cfg)

			ratelimit.ApplyHeaders(w.Header(), result)
			metrics.RecordRateLimitDecision(cfg.Identifier, result.Success)
			tagRateLimit(r, cfg.Identifier, !result.Success)

			if result.Success {
				next.ServeHTTP(w, r)
				return
			}

			retryAfter := 0
			if result.RetryAfter != nil {
				retryAfter = *result.RetryAfter
			}

			if observability.ServerLogger != nil {
				observability.ServerLogger.Info("Rate limit exceeded",
					zap.String("caller", caller),
					zap.String("route", cfg.Identifier),
					zap.Int("retry_after", retryAfter),
					zap.String("request_id", GetRequestID(r.Context())))
			}

			apperrors.RespondWithAPIError(w, r, apperrors.NewErrorResponse(
				apperrors.CodeRateLimited,
				RateLimitedMessage,
				map[string]any{"retryAfter": retryAfter},
			))
		})
	}
}
