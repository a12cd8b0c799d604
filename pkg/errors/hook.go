package errors

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/yshengliao/turbohttp/core/types"
	"github.com/yshengliao/turbohttp/response"
)

// HookConfig contains configuration for the JSON exception hook
type HookConfig struct {
	// Logger is used to log handler failures
	Logger *zap.Logger
	// HideInternalServerErrorDetails hides the actual error message in production
	HideInternalServerErrorDetails bool
	// DefaultMessage is the message used when hiding internal server error details
	DefaultMessage string
	// Registry maps business errors to responses; DefaultRegistry when nil
	Registry *Registry
}

// DefaultHookConfig returns the default configuration
func DefaultHookConfig() *HookConfig {
	return &HookConfig{
		HideInternalServerErrorDetails: true,
		DefaultMessage:                 "An internal error occurred",
	}
}

// JSONExceptionHook returns an exception hook that answers handler failures
// with an ErrorResponse envelope. An *ErrorResponse returned by the handler is
// sent as is with its own status, a registered business error gets its
// mapping and anything else becomes a 500.
func JSONExceptionHook(config *HookConfig) types.ExceptionHook {
	if config == nil {
		config = DefaultHookConfig()
	}
	if config.DefaultMessage == "" {
		config.DefaultMessage = "An internal error occurred"
	}
	registry := config.Registry
	if registry == nil {
		registry = DefaultRegistry()
	}

	return func(req *types.Request, resp *response.Response, err error) {
		requestID, _ := req.Get(types.RequestIDKey).(string)

		errResp, ok := registry.Resolve(err)
		if !ok {
			message := err.Error()
			if config.HideInternalServerErrorDetails {
				message = config.DefaultMessage
			}
			errResp = New(CodeInternalServerError, message).WithStatus(http.StatusInternalServerError)

			if config.Logger != nil {
				config.Logger.Error("Handler failed",
					zap.Error(err),
					zap.String("request_id", requestID),
					zap.String("method", req.Method()),
					zap.String("path", req.Path()))
			}
		}

		if errResp.RequestID == "" {
			errResp.RequestID = requestID
		}
		resp.SetStatus(errResp.StatusCode())
		resp.SetJSON(errResp)
	}
}
