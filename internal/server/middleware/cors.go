package middleware

import (
	"net/http"

	"github.com/go-chi/cors"

	"github.com/devfolio/devfolio/internal/ratelimit"
)

// CORSOptions are the browser access settings for the portfolio site.
type CORSOptions struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
	MaxAge         int
}

// CORS returns the cross-origin middleware. Rate-limit and request ID headers
// are exposed so the site can show retry hints.
func CORS(opts CORSOptions) func(http.Handler) http.Handler {
	methods := opts.AllowedMethods
	if len(methods) == 0 {
		methods = []string{http.MethodGet, http.MethodPost, http.MethodOptions}
	}
	headers := opts.AllowedHeaders
	if len(headers) == 0 {
		headers = []string{"Accept", "Content-Type", RequestIDHeader}
	}
	maxAge := opts.MaxAge
	if maxAge <= 0 {
		maxAge = 300
	}

	return cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: methods,
		AllowedHeaders: headers,
		ExposedHeaders: []string{
			RequestIDHeader,
			ratelimit.HeaderRemaining,
			ratelimit.HeaderReset,
			ratelimit.HeaderRetryAfter,
		},
		MaxAge: maxAge,
	})
}
