package errors

import (
	"fmt"
	"maps"
	"net/http"
	"time"

	"github.com/goccy/go-json"
)

// TimestampLayout is the wire format for response timestamps: ISO-8601, millisecond precision, UTC.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// now is swapped in tests.
var now = time.Now

// FormatTimestamp renders t in the wire timestamp format.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// Response is implemented only by APIError and APIResponse. Callers switch on
// the concrete type, so success data is unreachable from an error value.
type Response interface {
	HTTPStatus() int
	isResponse()
}

// APIError is the error shape every failing route returns.
type APIError struct {
	Error      Code
	Message    string
	Code       Code
	Timestamp  time.Time
	StatusCode int
	Details    map[string]any
}

func (APIError) isResponse() {}

// HTTPStatus returns the status the error is written with.
func (e APIError) HTTPStatus() int {
	if e.StatusCode == 0 {
		return StatusCode(e.Code)
	}
	return e.StatusCode
}

type apiErrorJSON struct {
	Success    bool           `json:"success"`
	Error      Code           `json:"error"`
	Message    string         `json:"message"`
	Code       Code           `json:"code"`
	Timestamp  string         `json:"timestamp"`
	StatusCode int            `json:"statusCode"`
	Details    map[string]any `json:"details,omitempty"`
}

// MarshalJSON writes the error wire shape with success=false.
func (e APIError) MarshalJSON() ([]byte, error) {
	return json.Marshal(apiErrorJSON{
		Success:    false,
		Error:      e.Error,
		Message:    e.Message,
		Code:       e.Code,
		Timestamp:  FormatTimestamp(e.Timestamp),
		StatusCode: e.HTTPStatus(),
		Details:    e.Details,
	})
}

// UnmarshalJSON reads the error wire shape, rejecting success bodies.
func (e *APIError) UnmarshalJSON(data []byte) error {
	var raw apiErrorJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Success {
		return fmt.Errorf("decode api error: body has success=true")
	}
	ts, err := parseTimestamp(raw.Timestamp)
	if err != nil {
		return err
	}
	*e = APIError{
		Error:      raw.Error,
		Message:    raw.Message,
		Code:       raw.Code,
		Timestamp:  ts,
		StatusCode: raw.StatusCode,
		Details:    raw.Details,
	}
	return nil
}

// APIResponse is the success shape. It carries no message.
type APIResponse[T any] struct {
	Data      T
	Timestamp time.Time
}

func (APIResponse[T]) isResponse() {}

// HTTPStatus for success responses is always 200; routes that need another
// 2xx pass it to RespondWithSuccess directly.
func (APIResponse[T]) HTTPStatus() int { return http.StatusOK }

type apiResponseJSON[T any] struct {
	Success   bool   `json:"success"`
	Data      T      `json:"data"`
	Timestamp string `json:"timestamp"`
}

// MarshalJSON writes the success wire shape with success=true.
func (r APIResponse[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(apiResponseJSON[T]{
		Success:   true,
		Data:      r.Data,
		Timestamp: FormatTimestamp(r.Timestamp),
	})
}

// UnmarshalJSON reads the success wire shape, rejecting error bodies.
func (r *APIResponse[T]) UnmarshalJSON(data []byte) error {
	var raw apiResponseJSON[T]
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if !raw.Success {
		return fmt.Errorf("decode api response: body has success=false")
	}
	ts, err := parseTimestamp(raw.Timestamp)
	if err != nil {
		return err
	}
	r.Data = raw.Data
	r.Timestamp = ts
	return nil
}

func parseTimestamp(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return ts, nil
}

// NewErrorResponse builds an APIError for an already classified failure.
// The details map is copied, never retained.
func NewErrorResponse(code Code, message string, details map[string]any) APIError {
	return APIError{
		Error:      code,
		Message:    message,
		Code:       code,
		Timestamp:  now().UTC(),
		StatusCode: StatusCode(code),
		Details:    maps.Clone(details),
	}
}

// NewSuccessResponse wraps data in the success shape. The optional message is
// accepted for call-site compatibility but is not part of the wire shape.
func NewSuccessResponse[T any](data T, message ...string) APIResponse[T] {
	return APIResponse[T]{
		Data:      data,
		Timestamp: now().UTC(),
	}
}
