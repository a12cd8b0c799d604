package errors

import (
	"time"
)

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Success     bool                   `json:"success"`
	ErrorDetail ErrorDetail            `json:"error"`
	Timestamp   time.Time              `json:"timestamp"`
	RequestID   string                 `json:"request_id,omitempty"`
	Meta        map[string]interface{} `json:"meta,omitempty"`

	status int
}

// ErrorDetail contains detailed error information
type ErrorDetail struct {
	Code    int                    `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// Error implements the error interface
func (e *ErrorResponse) Error() string {
	return e.ErrorDetail.Message
}

// StatusCode returns the HTTP status this error should be answered with
func (e *ErrorResponse) StatusCode() int {
	if e.status != 0 {
		return e.status
	}
	return ErrorCode(e.ErrorDetail.Code).HTTPStatus()
}

// New creates a new error response with the given code and message
func New(code ErrorCode, message string) *ErrorResponse {
	return &ErrorResponse{
		Success: false,
		ErrorDetail: ErrorDetail{
			Code:    code.Int(),
			Message: message,
		},
		Timestamp: time.Now().UTC(),
	}
}

// NewFromCode creates a new error response using the default message for the code
func NewFromCode(code ErrorCode) *ErrorResponse {
	return New(code, code.Message())
}

// WithStatus overrides the HTTP status derived from the code
func (e *ErrorResponse) WithStatus(status int) *ErrorResponse {
	e.status = status
	return e
}

// WithRequestID adds request ID to the error response
func (e *ErrorResponse) WithRequestID(requestID string) *ErrorResponse {
	e.RequestID = requestID
	return e
}

// WithDetail adds a single detail to the error response
func (e *ErrorResponse) WithDetail(key string, value interface{}) *ErrorResponse {
	if e.ErrorDetail.Details == nil {
		e.ErrorDetail.Details = make(map[string]interface{})
	}
	e.ErrorDetail.Details[key] = value
	return e
}
