package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/yshengliao/turbohttp/core/types"
	"github.com/yshengliao/turbohttp/response"
)

const metricsStartKey = "metrics.start"

// MetricsConfig configures the Prometheus metrics middleware.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "turbohttp").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for request duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus metrics middleware.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "turbohttp",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// metrics is the Prometheus middleware. Labels use the method and status
// code only; raw paths would explode cardinality.
type metrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	inFlight        prometheus.Gauge
	errorsTotal     *prometheus.CounterVec
}

// Metrics creates middleware that collects Prometheus metrics for every
// dispatched request.
//
// Metrics collected:
//   - turbohttp_requests_total: Counter of requests by method and code
//   - turbohttp_request_duration_seconds: Histogram of dispatch duration by method
//   - turbohttp_requests_in_flight: Gauge of requests inside the chain
//   - turbohttp_dispatch_errors_total: Counter of propagated handler errors by method
//
// The collectors are registered once per call, so build the middleware once
// per registry.
func Metrics(opts ...MetricsOption) Middleware {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}

	factory := promauto.With(config.Registry)

	return &metrics{
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "requests_total",
			Help:        "Total number of dispatched HTTP requests",
			ConstLabels: config.ConstLabels,
		}, []string{"method", "code"}),

		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "request_duration_seconds",
			Help:        "Request dispatch duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"method"}),

		inFlight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "requests_in_flight",
			Help:        "Number of requests currently being dispatched",
			ConstLabels: config.ConstLabels,
		}),

		errorsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "dispatch_errors_total",
			Help:        "Total number of handler errors propagated out of the dispatcher",
			ConstLabels: config.ConstLabels,
		}, []string{"method"}),
	}
}

func (m *metrics) BeforeDispatch(req *types.Request) {
	m.inFlight.Inc()
	req.Set(metricsStartKey, time.Now())
}

func (m *metrics) AfterDispatch(req *types.Request, resp *response.Response) {
	status := resp.StatusCode()
	if status == 0 {
		status = http.StatusOK
	}
	m.observe(req)
	m.requestsTotal.WithLabelValues(req.Method(), strconv.Itoa(status)).Inc()
}

func (m *metrics) DispatchError(req *types.Request, _ error) {
	m.observe(req)
	m.errorsTotal.WithLabelValues(req.Method()).Inc()
}

func (m *metrics) observe(req *types.Request) {
	m.inFlight.Dec()
	if start, ok := req.Get(metricsStartKey).(time.Time); ok {
		m.requestDuration.WithLabelValues(req.Method()).Observe(time.Since(start).Seconds())
	}
}
