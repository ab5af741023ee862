package ratelimit

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeaders_Success(t *testing.T) {
	reset := time.Date(2025, 1, 1, 0, 15, 0, 0, time.UTC)
	headers := Headers(Result{Success: true, Remaining: 4, ResetTime: reset})

	assert.Equal(t, map[string]string{
		HeaderRemaining: "4",
		HeaderReset:     "2025-01-01T00:15:00.000Z",
	}, headers)
}

func TestHeaders_FailureIncludesRetryAfter(t *testing.T) {
	retry := 42
	reset := time.Date(2025, 1, 1, 0, 15, 0, 250_000_000, time.FixedZone("CET", 3600))
	headers := Headers(Result{Success: false, ResetTime: reset, RetryAfter: &retry})

	assert.Equal(t, "0", headers[HeaderRemaining])
	assert.Equal(t, "2024-12-31T23:15:00.250Z", headers[HeaderReset])
	assert.Equal(t, "42", headers[HeaderRetryAfter])
}

func TestApplyHeaders(t *testing.T) {
	h := http.Header{}
	ApplyHeaders(h, Result{Success: true, Remaining: 1, ResetTime: time.Unix(0, 0)})

	assert.Equal(t, "1", h.Get("X-Ratelimit-Remaining"))
	assert.Empty(t, h.Get(HeaderRetryAfter))

	parsed, err := ParseReset(h.Get(HeaderReset))
	require.NoError(t, err)
	assert.True(t, parsed.Equal(time.Unix(0, 0)))
}
