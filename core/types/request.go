// Package types provides core type definitions shared by the router,
// the dispatcher and middleware.
package types

import (
	"context"
	"net"
	"net/http"
	"net/url"
	"strings"
)

// RequestIDKey is the request value key holding the request ID.
const RequestIDKey = "request_id"

// Request is the read-only view of an inbound HTTP request that flows
// unchanged through the whole middleware chain and into the handler.
//
// The value store lets middleware correlate its pre- and post-dispatch
// hooks. A Request belongs to exactly one in-flight request and is not
// safe for concurrent use.
type Request struct {
	raw    *http.Request
	values map[string]any
}

// NewRequest wraps r.
func NewRequest(r *http.Request) *Request {
	return &Request{raw: r}
}

// Raw returns the underlying *http.Request
func (r *Request) Raw() *http.Request {
	return r.raw
}

// Context returns the request's context
func (r *Request) Context() context.Context {
	return r.raw.Context()
}

// Method returns the upper-case HTTP method
func (r *Request) Method() string {
	return strings.ToUpper(r.raw.Method)
}

// Path returns the URL path
func (r *Request) Path() string {
	return r.raw.URL.Path
}

// Header returns the request headers
func (r *Request) Header() http.Header {
	return r.raw.Header
}

// Query returns the parsed query string
func (r *Request) Query() url.Values {
	return r.raw.URL.Query()
}

// RealIP returns the client's address, preferring proxy headers
func (r *Request) RealIP() string {
	if ip := r.raw.Header.Get("X-Forwarded-For"); ip != "" {
		if i := strings.IndexByte(ip, ','); i >= 0 {
			ip = ip[:i]
		}
		return strings.TrimSpace(ip)
	}
	if ip := r.raw.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.raw.RemoteAddr)
	if err != nil {
		return r.raw.RemoteAddr
	}
	return host
}

// Get retrieves a value stored by middleware
func (r *Request) Get(key string) any {
	return r.values[key]
}

// Set stores a value for the remainder of the request
func (r *Request) Set(key string, val any) {
	if r.values == nil {
		r.values = make(map[string]any)
	}
	r.values[key] = val
}
