package response

import "net/http"

// StandardResponse represents a standard API response envelope
type StandardResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Code    int         `json:"code,omitempty"`
}

// Success stores a successful envelope as the JSON body
func Success(r *Response, statusCode int, data interface{}) {
	r.SetStatus(statusCode)
	r.SetJSON(StandardResponse{
		Success: true,
		Data:    data,
	})
}

// Error stores an error envelope as the JSON body
func Error(r *Response, statusCode int, message string) {
	r.SetStatus(statusCode)
	r.SetJSON(StandardResponse{
		Success: false,
		Error:   message,
		Code:    statusCode,
	})
}

// BadRequest stores a 400 Bad Request envelope
func BadRequest(r *Response, message string) {
	Error(r, http.StatusBadRequest, message)
}

// NotFound stores a 404 Not Found envelope
func NotFound(r *Response, message string) {
	Error(r, http.StatusNotFound, message)
}

// InternalServerError stores a 500 Internal Server Error envelope
func InternalServerError(r *Response, message string) {
	Error(r, http.StatusInternalServerError, message)
}
