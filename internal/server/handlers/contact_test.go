package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/devfolio/devfolio/internal/errors"
	"github.com/devfolio/devfolio/internal/store"
)

type recordingSink struct {
	subs []ContactSubmission
	err  error
}

func (s *recordingSink) Name() string { return "recording" }

func (s *recordingSink) Submit(_ context.Context, sub ContactSubmission) error {
	if s.err != nil {
		return s.err
	}
	s.subs = append(s.subs, sub)
	return nil
}

type fakeSaver struct {
	saved []store.ContactMessage
	err   error
}

func (f *fakeSaver) SaveContactMessage(_ context.Context, msg store.ContactMessage) error {
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, msg)
	return nil
}

func postContact(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = "192.0.2.10:4000"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeAPIError(t *testing.T, rec *httptest.ResponseRecorder) apperrors.APIError {
	t.Helper()
	var body apperrors.APIError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestContactHandlerAcceptsSubmission(t *testing.T) {
	sink := &recordingSink{}
	h := NewContactHandler(sink, 0, func(*http.Request) string { return "192.0.2.10" })
	fixed := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	h.Now = func() time.Time { return fixed }

	rec := postContact(t, h, `{"name":" Ada ","email":"ada@example.com","subject":"Hi","message":"Hello there"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp apperrors.APIResponse[ContactResponse]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Data.Received)
	_, err := uuid.Parse(resp.Data.ID)
	assert.NoError(t, err)

	require.Len(t, sink.subs, 1)
	sub := sink.subs[0]
	assert.Equal(t, resp.Data.ID, sub.ID)
	assert.Equal(t, "Ada", sub.Name)
	assert.Equal(t, "Hi", sub.Subject)
	assert.Equal(t, "192.0.2.10", sub.Caller)
	assert.Equal(t, fixed, sub.ReceivedAt)
}

func TestContactHandlerMissingFields(t *testing.T) {
	h := NewContactHandler(&recordingSink{}, 0, nil)

	tests := []struct {
		name    string
		body    string
		missing []any
	}{
		{name: "empty body", body: "", missing: []any{"name", "email", "message"}},
		{name: "blank values", body: `{"name":"  ","email":"a@b.co","message":""}`, missing: []any{"name", "message"}},
		{name: "null email", body: `{"name":"Ada","email":null,"message":"hi"}`, missing: []any{"email"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postContact(t, h, tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)

			body := decodeAPIError(t, rec)
			assert.Equal(t, apperrors.CodeValidation, body.Code)
			assert.Equal(t, MessageFieldsRequired, body.Message)
			assert.Equal(t, tt.missing, body.Details["missingFields"])
		})
	}
}

func TestContactHandlerRejectsNonTextFields(t *testing.T) {
	sink := &recordingSink{}
	h := NewContactHandler(sink, 0, nil)

	tests := []struct {
		name    string
		body    string
		invalid []any
	}{
		{name: "number and bool", body: `{"name":1,"email":"a@b.co","message":true}`, invalid: []any{"name", "message"}},
		{name: "object subject", body: `{"name":"Ada","email":"a@b.co","subject":{"x":1},"message":"hi"}`, invalid: []any{"subject"}},
		{name: "array email", body: `{"name":"Ada","email":["a@b.co"],"message":"hi"}`, invalid: []any{"email"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postContact(t, h, tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)

			body := decodeAPIError(t, rec)
			assert.Equal(t, apperrors.CodeValidation, body.Code)
			assert.Equal(t, MessageFieldsNotText, body.Message)
			assert.Equal(t, tt.invalid, body.Details["invalidFields"])
		})
	}
	assert.Empty(t, sink.subs)
}

func TestContactHandlerInvalidEmail(t *testing.T) {
	h := NewContactHandler(&recordingSink{}, 0, nil)

	rec := postContact(t, h, `{"name":"Ada","email":"not-an-email","message":"hi"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	body := decodeAPIError(t, rec)
	assert.Equal(t, apperrors.CodeValidation, body.Code)
	assert.Equal(t, MessageInvalidEmail, body.Message)
}

func TestContactHandlerMessageTooLong(t *testing.T) {
	h := NewContactHandler(&recordingSink{}, 10, nil)

	rec := postContact(t, h, `{"name":"Ada","email":"ada@example.com","message":"12345678901"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	body := decodeAPIError(t, rec)
	assert.Equal(t, apperrors.CodeValidation, body.Code)
	assert.EqualValues(t, 10, body.Details["maxLength"])
}

func TestContactHandlerMalformedBody(t *testing.T) {
	h := NewContactHandler(&recordingSink{}, 0, nil)

	for _, body := range []string{`{"name":`, `["a"]`, `null`} {
		rec := postContact(t, h, body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.Equal(t, apperrors.CodeBadRequest, decodeAPIError(t, rec).Code, body)
	}
}

func TestContactHandlerSinkFailure(t *testing.T) {
	h := NewContactHandler(StoreSink{Store: &fakeSaver{err: errors.New("disk full")}}, 0, nil)

	rec := postContact(t, h, `{"name":"Ada","email":"ada@example.com","message":"hi"}`)
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	body := decodeAPIError(t, rec)
	assert.Equal(t, apperrors.CodeDatabase, body.Code)
	assert.NotContains(t, rec.Body.String(), "disk full")
}

func TestStoreSinkPersists(t *testing.T) {
	saver := &fakeSaver{}
	sink := StoreSink{Store: saver}

	err := sink.Submit(context.Background(), ContactSubmission{ID: "id-1", Name: "Ada", Email: "ada@example.com", Message: "hi"})
	require.NoError(t, err)
	require.Len(t, saver.saved, 1)
	assert.Equal(t, "id-1", saver.saved[0].ID)
}

func TestLogSinkAcceptsEverything(t *testing.T) {
	assert.NoError(t, LogSink{}.Submit(context.Background(), ContactSubmission{ID: "x"}))
	assert.Equal(t, "log", LogSink{}.Name())
}
