package middleware

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/yshengliao/turbohttp/core/types"
	"github.com/yshengliao/turbohttp/response"
)

// Default tracer name for turbohttp applications.
const defaultTracerName = "turbohttp"

const traceContextKey = "tracing.context"

// TracingConfig configures the OpenTelemetry middleware.
type TracingConfig struct {
	// TracerName is the name of the tracer (default: "turbohttp").
	TracerName string

	// TracerProvider overrides the global provider.
	TracerProvider trace.TracerProvider

	// Filter determines which requests to trace.
	// Return true to trace the request. If nil, all requests are traced.
	Filter func(req *types.Request) bool

	// AttributeExtractor extracts custom attributes from the request.
	AttributeExtractor func(req *types.Request) []attribute.KeyValue
}

// TracingOption configures the OpenTelemetry middleware.
type TracingOption func(*TracingConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) TracingOption {
	return func(c *TracingConfig) {
		c.TracerName = name
	}
}

// WithTracerProvider sets the tracer provider.
func WithTracerProvider(tp trace.TracerProvider) TracingOption {
	return func(c *TracingConfig) {
		c.TracerProvider = tp
	}
}

// WithTraceFilter sets a filter function for requests.
func WithTraceFilter(filter func(req *types.Request) bool) TracingOption {
	return func(c *TracingConfig) {
		c.Filter = filter
	}
}

// WithAttributeExtractor sets a custom attribute extractor.
func WithAttributeExtractor(extractor func(req *types.Request) []attribute.KeyValue) TracingOption {
	return func(c *TracingConfig) {
		c.AttributeExtractor = extractor
	}
}

type tracing struct {
	config TracingConfig
	tracer trace.Tracer
}

// Tracing creates middleware that opens a server span around every
// dispatched request.
//
// The tracer uses the global OpenTelemetry tracer provider unless
// WithTracerProvider is given. Configure it in main() before serving:
//
//	otel.SetTracerProvider(tp)
func Tracing(opts ...TracingOption) Middleware {
	config := TracingConfig{TracerName: defaultTracerName}
	for _, opt := range opts {
		opt(&config)
	}

	var tracer trace.Tracer
	if config.TracerProvider != nil {
		tracer = config.TracerProvider.Tracer(config.TracerName)
	} else {
		tracer = otel.Tracer(config.TracerName)
	}
	return &tracing{config: config, tracer: tracer}
}

func (m *tracing) BeforeDispatch(req *types.Request) {
	if m.config.Filter != nil && !m.config.Filter(req) {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("http.method", req.Method()),
		attribute.String("http.target", req.Path()),
		attribute.String("http.client_ip", req.RealIP()),
	}
	if m.config.AttributeExtractor != nil {
		attrs = append(attrs, m.config.AttributeExtractor(req)...)
	}

	ctx, _ := m.tracer.Start(
		req.Context(),
		req.Method()+" "+req.Path(),
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(attrs...),
	)
	req.Set(traceContextKey, ctx)
}

func (m *tracing) AfterDispatch(req *types.Request, resp *response.Response) {
	span := SpanFromRequest(req)
	if span == nil {
		return
	}
	defer span.End()

	status := resp.StatusCode()
	if status == 0 {
		status = http.StatusOK
	}
	span.SetAttributes(attribute.Int("http.status_code", status))
	if status >= http.StatusInternalServerError {
		span.SetStatus(codes.Error, http.StatusText(status))
	} else {
		span.SetStatus(codes.Ok, "")
	}
}

func (m *tracing) DispatchError(req *types.Request, err error) {
	span := SpanFromRequest(req)
	if span == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	span.End()
}

// SpanFromRequest returns the span opened for req, or nil when the request
// is not traced.
func SpanFromRequest(req *types.Request) trace.Span {
	if ctx, ok := req.Get(traceContextKey).(context.Context); ok {
		return trace.SpanFromContext(ctx)
	}
	return nil
}

// TraceContext returns the context carrying the request span, for
// propagation to downstream calls. Falls back to the request context.
func TraceContext(req *types.Request) context.Context {
	if ctx, ok := req.Get(traceContextKey).(context.Context); ok {
		return ctx
	}
	return req.Context()
}
