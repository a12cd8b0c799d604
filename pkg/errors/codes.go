package errors

import "net/http"

// ErrorCode represents a standardized error code
type ErrorCode int

// Error code categories:
// 1xxx - Request errors
// 3xxx - System errors
// 4xxx - Routing errors
const (
	// Request errors (1xxx)
	CodeInvalidInput      ErrorCode = 1001
	CodeValidationFailed  ErrorCode = 1000
	CodeInvalidJSON       ErrorCode = 1008
	CodeInvalidQueryParam ErrorCode = 1009

	// System errors (3xxx)
	CodeInternalServerError ErrorCode = 3000
	CodeServiceUnavailable  ErrorCode = 3002
	CodeTimeout             ErrorCode = 3003
	CodeRateLimitExceeded   ErrorCode = 3004
	CodeNotImplemented      ErrorCode = 3006
	CodeConfigurationError  ErrorCode = 3009
	CodeMarshalError        ErrorCode = 3012

	// Routing errors (4xxx)
	CodeResourceNotFound ErrorCode = 4001
	CodeMethodNotAllowed ErrorCode = 4010
	CodeHandlerFailed    ErrorCode = 4011
)

var errorMessages = map[ErrorCode]string{
	CodeInvalidInput:      "Invalid input provided",
	CodeValidationFailed:  "Validation failed",
	CodeInvalidJSON:       "Invalid JSON format",
	CodeInvalidQueryParam: "Invalid query parameter",

	CodeInternalServerError: "Internal server error",
	CodeServiceUnavailable:  "Service temporarily unavailable",
	CodeTimeout:             "Request timeout",
	CodeRateLimitExceeded:   "Rate limit exceeded",
	CodeNotImplemented:      "Feature not implemented",
	CodeConfigurationError:  "Configuration error",
	CodeMarshalError:        "Data marshaling error",

	CodeResourceNotFound: "Not Found",
	CodeMethodNotAllowed: "Method Not Allowed",
	CodeHandlerFailed:    "Handler failed",
}

var codeToHTTPStatus = map[ErrorCode]int{
	CodeInvalidInput:      http.StatusBadRequest,
	CodeValidationFailed:  http.StatusBadRequest,
	CodeInvalidJSON:       http.StatusBadRequest,
	CodeInvalidQueryParam: http.StatusBadRequest,

	CodeInternalServerError: http.StatusInternalServerError,
	CodeServiceUnavailable:  http.StatusServiceUnavailable,
	CodeTimeout:             http.StatusGatewayTimeout,
	CodeRateLimitExceeded:   http.StatusTooManyRequests,
	CodeNotImplemented:      http.StatusNotImplemented,
	CodeConfigurationError:  http.StatusInternalServerError,
	CodeMarshalError:        http.StatusInternalServerError,

	CodeResourceNotFound: http.StatusNotFound,
	CodeMethodNotAllowed: http.StatusMethodNotAllowed,
	CodeHandlerFailed:    http.StatusInternalServerError,
}

// Message returns the default message for an error code
func (e ErrorCode) Message() string {
	if msg, ok := errorMessages[e]; ok {
		return msg
	}
	return "Unknown error"
}

// Int returns the error code as an integer
func (e ErrorCode) Int() int {
	return int(e)
}

// HTTPStatus returns the HTTP status for an error code, 500 when unmapped
func (e ErrorCode) HTTPStatus() int {
	if status, ok := codeToHTTPStatus[e]; ok {
		return status
	}
	return http.StatusInternalServerError
}
