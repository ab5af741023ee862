package ratelimit

import (
	"net/http"
	"strconv"
	"time"
)

// Response header names
const (
	HeaderRemaining  = "X-RateLimit-Remaining"
	HeaderReset      = "X-RateLimit-Reset"
	HeaderRetryAfter = "Retry-After"
)

const resetLayout = "2006-01-02T15:04:05.000Z07:00"

// Headers renders the response headers for result. Retry-After is present
// only when the request was rejected.
func Headers(result Result) map[string]string {
	headers := map[string]string{
		HeaderRemaining: strconv.Itoa(result.Remaining),
		HeaderReset:     result.ResetTime.UTC().Format(resetLayout),
	}
	if result.RetryAfter != nil {
		headers[HeaderRetryAfter] = strconv.Itoa(*result.RetryAfter)
	}
	return headers
}

// ApplyHeaders writes Headers(result) onto h.
func ApplyHeaders(h http.Header, result Result) {
	for name, value := range Headers(result) {
		h.Set(name, value)
	}
}

// ParseReset reads an X-RateLimit-Reset value.
func ParseReset(value string) (time.Time, error) {
	return time.Parse(time.RFC3339, value)
}
