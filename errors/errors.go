package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// Error is the unified solrkit error type.
type Error struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried.
	Retryable bool `json:"retryable"`
	// TransportCode is the error number of a failed exchange (ErrCodeRequestFailed only).
	TransportCode TransportCode `json:"transport_code,omitempty"`
	// StatusCode is the HTTP status of an error response (ErrCodeHTTPStatus only).
	StatusCode int `json:"status_code,omitempty"`
	// Body is the response body of an error response, if any.
	Body []byte `json:"-"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *Error) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *Error) WithDetail(key string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new Error with automatic retryable detection.
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:      code,
		Message:   message,
		Retryable: IsRetryableCode(code),
	}
}

// RequestFailed creates the error returned when an HTTP exchange fails before a
// response could be read. Any partial response data is discarded by the caller.
func RequestFailed(code TransportCode, message string, cause error) *Error {
	return &Error{
		Code:          ErrCodeRequestFailed,
		Message:       fmt.Sprintf("HTTP request failed, %s", message),
		Retryable:     code.Retryable(),
		TransportCode: code,
		Cause:         cause,
	}
}

// HTTPStatus creates the error for a response with an error status code.
func HTTPStatus(statusCode int, statusMessage string, body []byte) *Error {
	if statusMessage == "" {
		statusMessage = http.StatusText(statusCode)
	}
	return &Error{
		Code:       ErrCodeHTTPStatus,
		Message:    fmt.Sprintf("Solr HTTP error: %s (%d)", statusMessage, statusCode),
		StatusCode: statusCode,
		Body:       body,
		Retryable: statusCode == http.StatusTooManyRequests ||
			statusCode == http.StatusBadGateway ||
			statusCode == http.StatusServiceUnavailable ||
			statusCode == http.StatusGatewayTimeout,
	}
}

// InvalidArgument creates an error for a value the caller should not have passed.
func InvalidArgument(message string) *Error {
	return New(ErrCodeInvalidArgument, message)
}

// InvalidArgumentf is InvalidArgument with formatting.
func InvalidArgumentf(format string, args ...any) *Error {
	return New(ErrCodeInvalidArgument, fmt.Sprintf(format, args...))
}

// UnexpectedValue creates an error for a missing or malformed value.
func UnexpectedValue(message string) *Error {
	return New(ErrCodeUnexpectedValue, message)
}

// Runtime creates an error for a local failure, e.g. an unreadable upload file.
func Runtime(message string, cause error) *Error {
	return &Error{Code: ErrCodeRuntime, Message: message, Cause: cause}
}

// CircuitOpen creates the error returned while an endpoint's circuit is open.
func CircuitOpen(endpoint string) *Error {
	return New(ErrCodeCircuitOpen, fmt.Sprintf("circuit open for endpoint %q", endpoint)).
		WithDetail("endpoint", endpoint)
}

// RateLimited creates the error returned when the client-side limiter gives up.
func RateLimited(cause error) *Error {
	return New(ErrCodeRateLimited, "client-side rate limit exceeded").WithCause(cause)
}

// --- Predicates ---

// As converts an error to an *Error if possible.
func As(err error) (*Error, bool) {
	var e *Error
	if stderrors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// Is reports whether err is an *Error with the given code.
func Is(err error, code ErrorCode) bool {
	e, ok := As(err)
	return ok && e.Code == code
}

// IsRequestFailed checks if an error is a transport failure.
func IsRequestFailed(err error) bool { return Is(err, ErrCodeRequestFailed) }

// IsHTTPStatus checks if an error is an error-status response.
func IsHTTPStatus(err error) bool { return Is(err, ErrCodeHTTPStatus) }

// IsInvalidArgument checks if an error is an invalid argument error.
func IsInvalidArgument(err error) bool { return Is(err, ErrCodeInvalidArgument) }

// IsUnexpectedValue checks if an error is an unexpected value error.
func IsUnexpectedValue(err error) bool { return Is(err, ErrCodeUnexpectedValue) }

// IsRetryable checks if an error is retryable.
func IsRetryable(err error) bool {
	e, ok := As(err)
	return ok && e.Retryable
}
