package middleware

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/yshengliao/turbohttp/core/types"
	"github.com/yshengliao/turbohttp/response"
)

const loggerStartKey = "logger.start"

// LoggerConfig contains configuration for the logger middleware
type LoggerConfig struct {
	// Logger is the zap logger to use
	Logger *zap.Logger
	// SkipPaths is a list of paths to skip logging
	SkipPaths []string
	// LogResponseBody logs the resolved response body (be careful with sensitive data)
	LogResponseBody bool
	// BodyLogLimit is the maximum size of body to log
	BodyLogLimit int
}

// DefaultLoggerConfig returns the default configuration
func DefaultLoggerConfig(logger *zap.Logger) *LoggerConfig {
	return &LoggerConfig{
		Logger:       logger,
		SkipPaths:    []string{"/health", "/metrics"},
		BodyLogLimit: 1024, // 1KB
	}
}

type accessLogger struct {
	config *LoggerConfig
	skip   map[string]struct{}
}

// Logger returns a middleware that logs every dispatched request
func Logger(logger *zap.Logger) Middleware {
	return LoggerWithConfig(DefaultLoggerConfig(logger))
}

// LoggerWithConfig returns a middleware with custom configuration
func LoggerWithConfig(config *LoggerConfig) Middleware {
	if config == nil {
		panic("LoggerConfig cannot be nil")
	}
	if config.Logger == nil {
		panic("Logger cannot be nil")
	}
	if config.BodyLogLimit == 0 {
		config.BodyLogLimit = 1024
	}

	skip := make(map[string]struct{}, len(config.SkipPaths))
	for _, p := range config.SkipPaths {
		skip[p] = struct{}{}
	}
	return &accessLogger{config: config, skip: skip}
}

func (m *accessLogger) BeforeDispatch(req *types.Request) {
	if _, ok := m.skip[req.Path()]; ok {
		return
	}
	req.Set(loggerStartKey, time.Now())
}

func (m *accessLogger) AfterDispatch(req *types.Request, resp *response.Response) {
	start, ok := req.Get(loggerStartKey).(time.Time)
	if !ok {
		return
	}

	status := resp.StatusCode()
	if status == 0 {
		status = http.StatusOK
	}

	fields := []zap.Field{
		zap.String("method", req.Method()),
		zap.String("path", req.Path()),
		zap.Int("status", status),
		zap.Duration("latency", time.Since(start)),
		zap.String("remote_ip", req.RealIP()),
	}
	if rid := GetRequestID(req); rid != "" {
		fields = append(fields, zap.String("request_id", rid))
	}
	if m.config.LogResponseBody {
		if body, _, err := resp.Resolve(); err == nil {
			if len(body) > m.config.BodyLogLimit {
				body = body[:m.config.BodyLogLimit]
			}
			fields = append(fields, zap.ByteString("response_body", body))
		}
	}

	switch {
	case status >= http.StatusInternalServerError:
		m.config.Logger.Error("HTTP request", fields...)
	case status >= http.StatusBadRequest:
		m.config.Logger.Warn("HTTP request", fields...)
	default:
		m.config.Logger.Info("HTTP request", fields...)
	}
}
