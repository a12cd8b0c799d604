package middleware

import (
	"github.com/google/uuid"

	"github.com/yshengliao/turbohttp/core/types"
	"github.com/yshengliao/turbohttp/response"
)

// RequestIDKey is the request value key holding the request ID.
const RequestIDKey = types.RequestIDKey

// RequestIDConfig defines the config for RequestID middleware.
type RequestIDConfig struct {
	// Skipper defines a function to skip middleware.
	Skipper func(*types.Request) bool

	// Generator defines a function to generate an ID.
	// Optional. Defaults to UUID v4.
	Generator func() string

	// TargetHeader defines the header name to look for existing request ID.
	// Optional. Defaults to X-Request-ID
	TargetHeader string
}

// DefaultSkipper returns false which processes the middleware for all requests.
func DefaultSkipper(*types.Request) bool {
	return false
}

// DefaultRequestIDConfig is the default RequestID middleware config.
var DefaultRequestIDConfig = RequestIDConfig{
	Skipper:      DefaultSkipper,
	Generator:    generateRequestID,
	TargetHeader: "X-Request-ID",
}

// generateRequestID generates a new request ID using UUID v4
func generateRequestID() string {
	return uuid.New().String()
}

type requestID struct {
	config RequestIDConfig
}

// RequestID returns a middleware that tags every request with a unique ID.
// An incoming ID in the target header is reused, otherwise a UUID v4 is
// generated. The ID is stored under RequestIDKey and echoed back in the
// response header.
func RequestID() Middleware {
	return RequestIDWithConfig(DefaultRequestIDConfig)
}

// RequestIDWithConfig returns a RequestID middleware with config.
func RequestIDWithConfig(config RequestIDConfig) Middleware {
	if config.Skipper == nil {
		config.Skipper = DefaultRequestIDConfig.Skipper
	}
	if config.Generator == nil {
		config.Generator = DefaultRequestIDConfig.Generator
	}
	if config.TargetHeader == "" {
		config.TargetHeader = DefaultRequestIDConfig.TargetHeader
	}
	return &requestID{config: config}
}

func (m *requestID) BeforeDispatch(req *types.Request) {
	if m.config.Skipper(req) {
		return
	}
	rid := req.Header().Get(m.config.TargetHeader)
	if rid == "" {
		rid = m.config.Generator()
	}
	req.Set(RequestIDKey, rid)
}

func (m *requestID) AfterDispatch(req *types.Request, resp *response.Response) {
	if rid := GetRequestID(req); rid != "" {
		resp.Header().Set(m.config.TargetHeader, rid)
	}
}

// GetRequestID retrieves the request ID stored by RequestID
func GetRequestID(req *types.Request) string {
	if rid, ok := req.Get(RequestIDKey).(string); ok {
		return rid
	}
	return ""
}
