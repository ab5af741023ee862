// Package github fetches a user's recent public activity for the portfolio
// feed. Outbound calls are paced with a token bucket and guarded by a circuit
// breaker; every failure comes back as a classified apperrors.Error.
package github

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	apperrors "github.com/devfolio/devfolio/internal/errors"
	"github.com/devfolio/devfolio/internal/metrics"
	"github.com/devfolio/devfolio/internal/observability"
)

// DefaultBaseURL is the public GitHub REST API.
const DefaultBaseURL = "https://api.github.com"

const breakerName = "github-api"

// Options configures a Client.
type Options struct {
	BaseURL           string
	Token             string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
	BreakerFailures   uint32
	BreakerTimeout    time.Duration
	HTTPClient        *http.Client
}

// Client is a minimal GitHub REST client.
type Client struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
	Limiter *rate.Limiter
	Breaker *gobreaker.CircuitBreaker[[]Event]
}

// NewClient builds a client with pacing and a breaker configured from opts.
func NewClient(opts Options) *Client {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	rps := opts.RequestsPerSecond
	if rps <= 0 {
		rps = 1
	}
	burst := opts.Burst
	if burst <= 0 {
		burst = 1
	}

	return &Client{
		BaseURL: baseURL,
		Token:   opts.Token,
		HTTP:    httpClient,
		Limiter: rate.NewLimiter(rate.Limit(rps), burst),
		Breaker: newBreaker(opts.BreakerFailures, opts.BreakerTimeout),
	}
}

func newBreaker(failures uint32, timeout time.Duration) *gobreaker.CircuitBreaker[[]Event] {
	if failures == 0 {
		failures = 5
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return gobreaker.NewCircuitBreaker[[]Event](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		// Client-class answers (unknown user, bad credentials) say nothing
		// about upstream health.
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			e, ok := apperrors.As(err)
			return ok && (e.Code == apperrors.CodeNotFound || e.Code == apperrors.CodeRateLimited)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.RecordBreakerState(name, to.String())
			if observability.ServerLogger != nil {
				observability.ServerLogger.Warn("Circuit breaker state change",
					zap.String("breaker", name),
					zap.String("from", from.String()),
					zap.String("to", to.String()))
			}
		},
	})
}

// RecentActivity returns up to limit public events of user, newest first.
func (c *Client) RecentActivity(ctx context.Context, user string, limit int) ([]Activity, error) {
	user = strings.TrimSpace(user)
	if user == "" {
		return nil, apperrors.New(apperrors.CodeServiceUnavailable, "GitHub activity is not configured")
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	events, err := c.Breaker.Execute(func() ([]Event, error) {
		return c.fetchEvents(ctx, user, limit)
	})
	metrics.RecordOperation("github_events", err == nil)
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, apperrors.WrapServiceUnavailable(err, "GitHub is temporarily unavailable")
		}
		return nil, err
	}

	return ToActivities(events, limit), nil
}

func (c *Client) fetchEvents(ctx context.Context, user string, limit int) ([]Event, error) {
	if err := c.Limiter.Wait(ctx); err != nil {
		return nil, apperrors.WrapTimeout(err, "Request timeout")
	}

	reqURL := fmt.Sprintf("%s/users/%s/events/public?per_page=%d", c.BaseURL, url.PathEscape(user), limit)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeServer, "Failed to build GitHub request")
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	if token := strings.TrimSpace(c.Token); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, classifyTransport(err)
	}
	defer resp.Body.Close() // nolint:errcheck // best-effort cleanup on HTTP response body

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return nil, statusError(resp)
	}

	var events []Event
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4<<20)).Decode(&events); err != nil {
		return nil, apperrors.WrapExternalAPIError(err, "GitHub returned an unreadable response")
	}
	return events, nil
}

func classifyTransport(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.WrapTimeout(err, "Request timeout")
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return apperrors.WrapTimeout(err, "Request timeout")
	}
	return apperrors.WrapExternalAPIError(err, "GitHub request failed")
}

func statusError(resp *http.Response) error {
	status := resp.StatusCode
	switch {
	case status == http.StatusNotFound:
		return apperrors.NewNotFoundError("GitHub user not found").WithDetail("upstreamStatus", status)
	case status == http.StatusTooManyRequests,
		status == http.StatusForbidden && resp.Header.Get("X-RateLimit-Remaining") == "0":
		e := apperrors.NewRateLimitedError("GitHub rate limit exceeded").WithDetail("upstreamStatus", status)
		if wait, ok := retryAfter(resp); ok {
			e = e.WithDetail("retryAfter", wait)
		}
		return e
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return apperrors.New(apperrors.CodeExternalAPI, "GitHub rejected the configured credentials").
			WithDetail("upstreamStatus", status)
	default:
		return apperrors.New(apperrors.CodeExternalAPI, "Unexpected GitHub response").
			WithDetail("upstreamStatus", status)
	}
}

// retryAfter reads Retry-After (seconds or HTTP date), falling back to
// X-RateLimit-Reset (unix seconds). Returns whole seconds.
func retryAfter(resp *http.Response) (int, bool) {
	if v := strings.TrimSpace(resp.Header.Get("Retry-After")); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs >= 0 {
			return secs, true
		}
		if at, err := http.ParseTime(v); err == nil {
			return ceilSeconds(time.Until(at)), true
		}
	}
	if v := strings.TrimSpace(resp.Header.Get("X-RateLimit-Reset")); v != "" {
		if unix, err := strconv.ParseInt(v, 10, 64); err == nil {
			return ceilSeconds(time.Until(time.Unix(unix, 0))), true
		}
	}
	return 0, false
}

func ceilSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int((d + time.Second - 1) / time.Second)
}
