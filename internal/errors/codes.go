// Package errors normalizes every failure an API route can hit into one
// wire-stable error shape, and builds the matching success shape.
//
// Routes never format error bodies themselves: proactive validation failures
// go through NewErrorResponse, everything caught at the boundary goes through
// HandleError, and RespondWithError/RespondWithAPIError write the result.
package errors

import "net/http"

// Code is the closed set of error codes exposed on the wire.
type Code string

// Client errors (4xx)
const (
	CodeValidation   Code = "VALIDATION_ERROR"
	CodeUnauthorized Code = "UNAUTHORIZED"
	CodeForbidden    Code = "FORBIDDEN"
	CodeNotFound     Code = "NOT_FOUND"
	CodeRateLimited  Code = "RATE_LIMITED"
	CodeBadRequest   Code = "BAD_REQUEST"
)

// Server errors (5xx)
const (
	CodeServer             Code = "SERVER_ERROR"
	CodeServiceUnavailable Code = "SERVICE_UNAVAILABLE"
	CodeTimeout            Code = "TIMEOUT"
	CodeDatabase           Code = "DATABASE_ERROR"
	CodeExternalAPI        Code = "EXTERNAL_API_ERROR"
)

var allCodes = []Code{
	CodeValidation,
	CodeUnauthorized,
	CodeForbidden,
	CodeNotFound,
	CodeRateLimited,
	CodeBadRequest,
	CodeServer,
	CodeServiceUnavailable,
	CodeTimeout,
	CodeDatabase,
	CodeExternalAPI,
}

// AllCodes returns every defined code, client errors first.
func AllCodes() []Code {
	out := make([]Code, len(allCodes))
	copy(out, allCodes)
	return out
}

// Valid reports whether c is one of the defined codes.
func (c Code) Valid() bool {
	switch c {
	case CodeValidation, CodeUnauthorized, CodeForbidden, CodeNotFound, CodeRateLimited, CodeBadRequest,
		CodeServer, CodeServiceUnavailable, CodeTimeout, CodeDatabase, CodeExternalAPI:
		return true
	}
	return false
}

// IsClientError reports whether the code maps to a 4xx status.
func (c Code) IsClientError() bool {
	status := StatusCode(c)
	return status >= 400 && status < 500
}

func (c Code) String() string { return string(c) }

// StatusCode resolves the HTTP status for an error code. Unknown codes map to 500.
func StatusCode(code Code) int {
	switch code {
	case CodeValidation, CodeBadRequest:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeRateLimited:
		return http.StatusTooManyRequests
	case CodeServer, CodeDatabase:
		return http.StatusInternalServerError
	case CodeServiceUnavailable:
		return http.StatusServiceUnavailable
	case CodeTimeout:
		return http.StatusGatewayTimeout
	case CodeExternalAPI:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
