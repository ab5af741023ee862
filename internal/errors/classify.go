package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"strings"

	fulerrors "github.com/fulmenhq/gofulmen/errors"
)

// Generic messages substituted for the original error text.
const (
	MessageUnexpected  = "An unexpected error occurred"
	MessageTimeout     = "Request timeout"
	MessageRateLimited = "Rate limit exceeded"
)

// Rule classifies one family of errors. Rules are evaluated in order and the
// first whose Match returns true wins. Match receives the error and its
// lower-cased message.
//
// When Build is set it produces the response directly. Otherwise the response
// uses Code, and Message if non-empty or the error's own message if empty.
type Rule struct {
	Name    string
	Match   func(err error, lower string) bool
	Code    Code
	Message string
	Build   func(err error) APIError
}

// DefaultRules is the classification table HandleError uses. Already
// classified errors run first, then the substring rules, whose order matters:
// "invalid token unauthorized" classifies as VALIDATION_ERROR. Deadline and
// net timeouts go last so a message like "profile not found" keeps its code
// even when the cause is a deadline.
var DefaultRules = []Rule{
	{Name: "classified", Match: isClassified, Build: fromClassified},
	{Name: "envelope", Match: isEnvelope, Build: fromEnvelope},
	{Name: "validation", Match: containsAny("validation", "invalid"), Code: CodeValidation},
	{Name: "not_found", Match: containsAny("not found", "404"), Code: CodeNotFound},
	{Name: "unauthorized", Match: containsAny("unauthorized", "401"), Code: CodeUnauthorized},
	{Name: "timeout", Match: containsAny("timeout", "etimedout"), Code: CodeTimeout, Message: MessageTimeout},
	{Name: "rate_limit", Match: containsAny("rate limit", "429"), Code: CodeRateLimited, Message: MessageRateLimited},
	{Name: "deadline", Match: isTimeout, Code: CodeTimeout, Message: MessageTimeout},
}

// HandleError classifies any caught value into an APIError using DefaultRules.
// It never panics.
func HandleError(v any) APIError {
	return Classify(v, DefaultRules)
}

// Classify runs v through rules. Values that are not errors, including nil,
// become SERVER_ERROR with the value's string form in details.originalError.
// Errors that match no rule become SERVER_ERROR keeping their message.
func Classify(v any, rules []Rule) APIError {
	err, ok := v.(error)
	if !ok || err == nil {
		return NewErrorResponse(CodeServer, MessageUnexpected, map[string]any{
			"originalError": fmt.Sprint(v),
		})
	}

	msg := safeMessage(err)
	lower := strings.ToLower(msg)

	for _, rule := range rules {
		if !matches(rule, err, lower) {
			continue
		}
		if rule.Build != nil {
			return rule.Build(err)
		}
		message := rule.Message
		if message == "" {
			message = msg
		}
		return NewErrorResponse(rule.Code, message, nil)
	}

	message := msg
	if message == "" {
		message = MessageUnexpected
	}
	return NewErrorResponse(CodeServer, message, map[string]any{
		"originalError": msg,
	})
}

func matches(rule Rule, err error, lower string) (ok bool) {
	if rule.Match == nil {
		return false
	}
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	return rule.Match(err, lower)
}

// safeMessage guards against typed-nil errors whose Error method panics.
func safeMessage(err error) (msg string) {
	defer func() {
		if r := recover(); r != nil {
			msg = fmt.Sprintf("%T", err)
		}
	}()
	return err.Error()
}

func containsAny(needles ...string) func(error, string) bool {
	return func(_ error, lower string) bool {
		for _, needle := range needles {
			if strings.Contains(lower, needle) {
				return true
			}
		}
		return false
	}
}

func isClassified(err error, _ string) bool {
	e, ok := As(err)
	return ok && e.Code.Valid()
}

func fromClassified(err error) APIError {
	e, _ := As(err)
	message := e.Message
	if message == "" {
		message = MessageUnexpected
	}
	return NewErrorResponse(e.Code, message, e.Details)
}

func isEnvelope(err error, _ string) bool {
	var env *fulerrors.ErrorEnvelope
	return stderrors.As(err, &env) && env != nil
}

func fromEnvelope(err error) APIError {
	var env *fulerrors.ErrorEnvelope
	stderrors.As(err, &env)
	message := env.Message
	if message == "" {
		message = MessageUnexpected
	}
	return NewErrorResponse(CodeFromEnvelope(env.Code), message, EnvelopeDetails(env))
}

func isTimeout(err error, _ string) bool {
	if stderrors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return stderrors.As(err, &netErr) && netErr.Timeout()
}

// CodeFromEnvelope maps a gofulmen envelope code onto the wire code set.
func CodeFromEnvelope(code string) Code {
	switch code {
	case "INVALID_INPUT", "VALIDATION_FAILED", "VALIDATION_ERROR":
		return CodeValidation
	case "NOT_FOUND":
		return CodeNotFound
	case "UNAUTHORIZED":
		return CodeUnauthorized
	case "FORBIDDEN":
		return CodeForbidden
	case "TIMEOUT":
		return CodeTimeout
	case "EXTERNAL_SERVICE_ERROR", "EXTERNAL_API_ERROR":
		return CodeExternalAPI
	case "SERVICE_UNAVAILABLE":
		return CodeServiceUnavailable
	case "DATABASE_ERROR":
		return CodeDatabase
	case "RATE_LIMITED":
		return CodeRateLimited
	case "BAD_REQUEST", "METHOD_NOT_ALLOWED":
		return CodeBadRequest
	default:
		return CodeServer
	}
}

// EnvelopeDetails merges envelope details and context into one API-safe map.
// Details win on key collisions.
func EnvelopeDetails(env *fulerrors.ErrorEnvelope) map[string]any {
	if env == nil {
		return nil
	}

	details := make(map[string]any, len(env.Details)+len(env.Context))
	for key, value := range env.Context {
		details[key] = value
	}
	for key, value := range env.Details {
		details[key] = value
	}

	if len(details) == 0 {
		return nil
	}
	return details
}
