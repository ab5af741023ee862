package handlers

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/devfolio/devfolio/internal/errors"
	"github.com/devfolio/devfolio/internal/metrics"
	"github.com/devfolio/devfolio/internal/observability"
	"github.com/devfolio/devfolio/internal/ratelimit"
	"github.com/devfolio/devfolio/internal/store"
)

// Contact form limits and messages
const (
	DefaultMaxMessageLength = 5000
	maxContactBodyBytes     = 64 << 10

	MessageFieldsRequired = "All fields are required"
	MessageInvalidEmail   = "Invalid email address"
	MessageInvalidBody    = "Request body must be a JSON object"
	MessageFieldsNotText  = "Contact fields must be text"
)

var contactRequiredFields = []string{"name", "email", "message"}

// ContactSubmission is a validated contact form message.
type ContactSubmission struct {
	ID         string
	Name       string
	Email      string
	Subject    string
	Message    string
	Caller     string
	ReceivedAt time.Time
}

// ContactSink receives accepted submissions.
type ContactSink interface {
	Name() string
	Submit(ctx context.Context, sub ContactSubmission) error
}

// ContactSaver is the persistence dependency of StoreSink.
type ContactSaver interface {
	SaveContactMessage(ctx context.Context, msg store.ContactMessage) error
}

// StoreSink persists submissions in the libsql store.
type StoreSink struct {
	Store ContactSaver
}

func (StoreSink) Name() string { return "store" }

func (s StoreSink) Submit(ctx context.Context, sub ContactSubmission) error {
	if err := s.Store.SaveContactMessage(ctx, store.ContactMessage{
		ID:        sub.ID,
		Name:      sub.Name,
		Email:     sub.Email,
		Subject:   sub.Subject,
		Message:   sub.Message,
		Caller:    sub.Caller,
		CreatedAt: sub.ReceivedAt,
	}); err != nil {
		return apperrors.WrapDatabaseError(err, "Failed to save your message")
	}
	return nil
}

// LogSink only logs submissions.
type LogSink struct{}

func (LogSink) Name() string { return "log" }

func (LogSink) Submit(_ context.Context, sub ContactSubmission) error {
	if observability.ServerLogger != nil {
		observability.ServerLogger.Info("Contact form submission",
			zap.String("id", sub.ID),
			zap.String("name", sub.Name),
			zap.String("email", sub.Email),
			zap.String("subject", sub.Subject),
			zap.Int("message_length", utf8.RuneCountInString(sub.Message)))
	}
	return nil
}

// ContactResponse is the success payload of POST /api/contact.
type ContactResponse struct {
	Received bool   `json:"received"`
	ID       string `json:"id"`
}

// ContactHandler accepts contact form submissions.
type ContactHandler struct {
	Sink             ContactSink
	MaxMessageLength int
	KeyFunc          ratelimit.KeyFunc
	Now              func() time.Time
}

// NewContactHandler builds a handler writing to sink. A nil sink logs only.
func NewContactHandler(sink ContactSink, maxMessageLength int, keyFn ratelimit.KeyFunc) *ContactHandler {
	if sink == nil {
		sink = LogSink{}
	}
	if maxMessageLength <= 0 {
		maxMessageLength = DefaultMaxMessageLength
	}
	return &ContactHandler{Sink: sink, MaxMessageLength: maxMessageLength, KeyFunc: keyFn}
}

func (h *ContactHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	fields, apiErr, ok := decodeContact(w, r)
	if !ok {
		respondWithAPIError(w, r, apiErr)
		return
	}

	if result := apperrors.ValidateRequiredFields(fields, contactRequiredFields); !result.IsValid {
		respondWithAPIError(w, r, apperrors.NewErrorResponse(apperrors.CodeValidation, MessageFieldsRequired,
			map[string]any{"missingFields": result.MissingFields}))
		return
	}

	if invalid := nonTextFields(fields, "name", "email", "subject", "message"); len(invalid) > 0 {
		respondWithAPIError(w, r, apperrors.NewErrorResponse(apperrors.CodeValidation, MessageFieldsNotText,
			map[string]any{"invalidFields": invalid}))
		return
	}

	sub := ContactSubmission{
		Name:    stringField(fields, "name"),
		Email:   stringField(fields, "email"),
		Subject: stringField(fields, "subject"),
		Message: stringField(fields, "message"),
	}

	if !apperrors.ValidateEmail(sub.Email) {
		respondWithAPIError(w, r, apperrors.NewErrorResponse(apperrors.CodeValidation, MessageInvalidEmail, nil))
		return
	}

	if n := utf8.RuneCountInString(sub.Message); n > h.MaxMessageLength {
		respondWithAPIError(w, r, apperrors.NewErrorResponse(apperrors.CodeValidation, "Message is too long",
			map[string]any{"maxLength": h.MaxMessageLength, "length": n}))
		return
	}

	sub.ID = uuid.NewString()
	sub.ReceivedAt = h.now()
	if h.KeyFunc != nil {
		sub.Caller = h.KeyFunc(r)
	}

	if err := h.Sink.Submit(r.Context(), sub); err != nil {
		metrics.RecordOperation("contact_submit", false)
		respondWithError(w, r, err)
		return
	}
	metrics.RecordOperation("contact_submit", true)
	metrics.RecordContactSubmission(h.Sink.Name())

	apperrors.RespondWithSuccess(w, r, http.StatusOK, ContactResponse{Received: true, ID: sub.ID})
}

func (h *ContactHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

func decodeContact(w http.ResponseWriter, r *http.Request) (map[string]any, apperrors.APIError, bool) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxContactBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, apperrors.NewErrorResponse(apperrors.CodeBadRequest, "Request body is too large",
				map[string]any{"maxBytes": tooLarge.Limit}), false
		}
		return nil, apperrors.NewErrorResponse(apperrors.CodeBadRequest, MessageInvalidBody, nil), false
	}

	// An empty body is a form with every field missing.
	if len(bytes.TrimSpace(raw)) == 0 {
		return map[string]any{}, apperrors.APIError{}, true
	}

	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return nil, apperrors.NewErrorResponse(apperrors.CodeBadRequest, MessageInvalidBody, nil), false
	}
	return fields, apperrors.APIError{}, true
}

// nonTextFields lists the named fields that are present but not strings.
// Absent and null fields are left to the required-field check.
func nonTextFields(fields map[string]any, names ...string) []string {
	var invalid []string
	for _, name := range names {
		value, ok := fields[name]
		if !ok || value == nil {
			continue
		}
		if _, isText := value.(string); !isText {
			invalid = append(invalid, name)
		}
	}
	return invalid
}

func stringField(fields map[string]any, name string) string {
	s, _ := fields[name].(string)
	return strings.TrimSpace(s)
}
