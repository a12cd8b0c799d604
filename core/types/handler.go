package types

import (
	"net/http"
	"strings"

	"github.com/yshengliao/turbohttp/response"
)

// Params holds path parameters bound by a route template, keyed by name.
type Params map[string]string

// Get returns the named parameter or "".
func (p Params) Get(name string) string {
	return p[name]
}

// HandlerFunc handles one request. It fills resp and returns an error (or
// panics) to signal a handler failure.
type HandlerFunc func(req *Request, resp *response.Response, params Params) error

// ExceptionHook populates resp after a handler failure.
type ExceptionHook func(req *Request, resp *response.Response, err error)

// Methods is a capability table of a class-based handler, keyed by the
// lower-case HTTP method name ("get", "post", ...).
type Methods map[string]HandlerFunc

// Methods lets a bare table act as a Resource.
func (m Methods) Methods() Methods {
	return m
}

// Resource is a class-based handler instance. A fresh instance is built for
// every request and asked for the verbs it supports.
type Resource interface {
	Methods() Methods
}

// Kind tags the Handler variant.
type Kind uint8

const (
	KindFunc Kind = iota + 1
	KindClass
)

func (k Kind) String() string {
	switch k {
	case KindFunc:
		return "function"
	case KindClass:
		return "class"
	default:
		return "invalid"
	}
}

// Handler is either a function handler or a class-based handler factory.
type Handler struct {
	kind    Kind
	fn      HandlerFunc
	factory func() Resource
}

// Func wraps a function handler.
func Func(fn HandlerFunc) Handler {
	return Handler{kind: KindFunc, fn: fn}
}

// Class wraps a factory producing a new Resource per request.
func Class(factory func() Resource) Handler {
	return Handler{kind: KindClass, factory: factory}
}

// Kind reports which variant h holds.
func (h Handler) Kind() Kind {
	return h.kind
}

// Valid reports whether h carries a callable.
func (h Handler) Valid() bool {
	switch h.kind {
	case KindFunc:
		return h.fn != nil
	case KindClass:
		return h.factory != nil
	}
	return false
}

// Resolve returns the callable serving method. Function handlers serve any
// method. Class handlers are instantiated and looked up by lower-cased
// method name; ok is false when the instance does not implement the verb.
func (h Handler) Resolve(method string) (HandlerFunc, bool) {
	switch h.kind {
	case KindFunc:
		return h.fn, h.fn != nil
	case KindClass:
		res := h.factory()
		if res == nil {
			return nil, false
		}
		fn, ok := res.Methods()[strings.ToLower(method)]
		return fn, ok && fn != nil
	}
	return nil, false
}

// AllMethods is the default set of allowed methods for a route: every
// standard verb except TRACE.
var AllMethods = []string{
	http.MethodGet,
	http.MethodHead,
	http.MethodPost,
	http.MethodPut,
	http.MethodPatch,
	http.MethodDelete,
	http.MethodOptions,
	http.MethodConnect,
}

// NormalizeMethods upper-cases and de-duplicates methods, preserving order.
func NormalizeMethods(methods []string) []string {
	out := make([]string, 0, len(methods))
	seen := make(map[string]struct{}, len(methods))
	for _, m := range methods {
		m = strings.ToUpper(strings.TrimSpace(m))
		if m == "" {
			continue
		}
		if _, dup := seen[m]; dup {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	return out
}
