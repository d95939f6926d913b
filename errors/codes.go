package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Transport errors
const (
	// ErrCodeRequestFailed indicates the HTTP exchange itself failed (DNS, connect, TLS, timeout...).
	ErrCodeRequestFailed ErrorCode = "HTTP_REQUEST_FAILED"
	// ErrCodeHTTPStatus indicates the server answered with an error status (>= 400).
	ErrCodeHTTPStatus ErrorCode = "HTTP_STATUS"
	// ErrCodeCircuitOpen indicates requests to an endpoint are being short-circuited.
	ErrCodeCircuitOpen ErrorCode = "CIRCUIT_OPEN"
	// ErrCodeRateLimited indicates the client-side rate limiter rejected the request.
	ErrCodeRateLimited ErrorCode = "RATE_LIMITED"
)

// Caller errors
const (
	// ErrCodeInvalidArgument indicates an invalid value was passed in (e.g. unsupported method).
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
	// ErrCodeUnexpectedValue indicates a required value was missing or malformed.
	ErrCodeUnexpectedValue ErrorCode = "UNEXPECTED_VALUE"
	// ErrCodeRuntime indicates a local failure unrelated to the remote service.
	ErrCodeRuntime ErrorCode = "RUNTIME"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeRequestFailed:   true,
	ErrCodeRateLimited:     true,
	ErrCodeHTTPStatus:      false,
	ErrCodeCircuitOpen:     false,
	ErrCodeInvalidArgument: false,
	ErrCodeUnexpectedValue: false,
	ErrCodeRuntime:         false,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
