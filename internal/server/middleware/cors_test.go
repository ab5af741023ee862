package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/devfolio/devfolio/internal/ratelimit"
)

func TestCORS_AllowsConfiguredOrigin(t *testing.T) {
	handler := CORS(CORSOptions{AllowedOrigins: []string{"https://devfolio.example"}})(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }))

	req := httptest.NewRequest(http.MethodGet, "/api/github/activity", nil)
	req.Header.Set("Origin", "https://devfolio.example")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, "https://devfolio.example", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Expose-Headers"), ratelimit.HeaderRetryAfter)
}

func TestCORS_IgnoresUnknownOrigin(t *testing.T) {
	handler := CORS(CORSOptions{AllowedOrigins: []string{"https://devfolio.example"}})(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }))

	req := httptest.NewRequest(http.MethodGet, "/api/github/activity", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
