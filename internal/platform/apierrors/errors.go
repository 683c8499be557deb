// Package apierrors defines the unified error envelope used by every
// ingress stage, handler and search-core failure path.
package apierrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is a stable, machine-readable error identifier.
type Code string

const (
	CodeInvalidQuery       Code = "INVALID_QUERY"
	CodeAuthRequired       Code = "AUTH_REQUIRED"
	CodeAuthFailed         Code = "AUTH_FAILED"
	CodeIPBlocked          Code = "IP_BLOCKED"
	CodeCircuitOpen        Code = "CIRCUIT_BREAKER_OPEN"
	CodeRateLimitExceeded  Code = "RATE_LIMIT_EXCEEDED"
	CodeMagicLinkInvalid   Code = "MAGIC_LINK_INVALID"
	CodeConfigInvalid      Code = "CONFIG_INVALID"
	CodeNotFound           Code = "NOT_FOUND"
	CodeRequestTimeout     Code = "REQUEST_TIMEOUT"
	CodeInternal           Code = "INTERNAL_ERROR"
	CodeCaptchaEncountered Code = "CAPTCHA_ENCOUNTERED"
	CodeUnavailable        Code = "SERVICE_UNAVAILABLE"
)

// ServiceError is the single internal error type: every ingress rejection
// and handler failure is expressed as one of these before it reaches the
// wire, so the JSON envelope is always produced from the one code path in
// WriteError.
type ServiceError struct {
	Code       Code
	Message    string
	HTTPStatus int
	Details    string
	Err        error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ServiceError) Unwrap() error { return e.Err }

// New constructs a ServiceError with no wrapped cause.
func New(code Code, status int, message string) *ServiceError {
	return &ServiceError{Code: code, HTTPStatus: status, Message: message}
}

// Wrap constructs a ServiceError around an existing error.
func Wrap(code Code, status int, message string, err error) *ServiceError {
	return &ServiceError{Code: code, HTTPStatus: status, Message: message, Err: err}
}

// WithDetails attaches a human-facing detail string and returns the receiver.
func (e *ServiceError) WithDetails(details string) *ServiceError {
	e.Details = details
	return e
}

func InvalidQuery(message string) *ServiceError {
	return New(CodeInvalidQuery, http.StatusBadRequest, message)
}

func AuthRequired() *ServiceError {
	return New(CodeAuthRequired, http.StatusUnauthorized, "authentication required")
}

func AuthFailed(message string) *ServiceError {
	return New(CodeAuthFailed, http.StatusUnauthorized, message)
}

func IPBlocked(reason string) *ServiceError {
	return New(CodeIPBlocked, http.StatusForbidden, reason)
}

func CircuitOpen() *ServiceError {
	return New(CodeCircuitOpen, http.StatusServiceUnavailable, "circuit breaker is open")
}

func RateLimitExceeded(retryAfterSeconds int) *ServiceError {
	return New(CodeRateLimitExceeded, http.StatusTooManyRequests,
		fmt.Sprintf("rate limit exceeded, retry after %ds", retryAfterSeconds))
}

func MagicLinkInvalid() *ServiceError {
	return New(CodeMagicLinkInvalid, http.StatusUnauthorized, "magic link token invalid or expired")
}

func ConfigInvalid(message string) *ServiceError {
	return New(CodeConfigInvalid, http.StatusInternalServerError, message)
}

func NotFound(message string) *ServiceError {
	return New(CodeNotFound, http.StatusNotFound, message)
}

func RequestTimeout() *ServiceError {
	return New(CodeRequestTimeout, http.StatusGatewayTimeout, "request timed out")
}

func Internal(err error) *ServiceError {
	return Wrap(CodeInternal, http.StatusInternalServerError, "internal error", err)
}

func Unavailable(message string) *ServiceError {
	return New(CodeUnavailable, http.StatusServiceUnavailable, message)
}

// AsServiceError unwraps err looking for a *ServiceError, returning ok=false
// if none is found anywhere in the chain.
func AsServiceError(err error) (*ServiceError, bool) {
	var se *ServiceError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// HTTPStatus returns the status code to use for err, defaulting to 500 for
// errors that are not a ServiceError.
func HTTPStatus(err error) int {
	if se, ok := AsServiceError(err); ok {
		return se.HTTPStatus
	}
	return http.StatusInternalServerError
}
