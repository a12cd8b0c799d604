package router

import (
	"github.com/yshengliao/turbohttp/core/types"
	"github.com/yshengliao/turbohttp/pkg/errors"
)

// Route is an immutable registration: a template, its handler and the
// methods it accepts.
type Route struct {
	Pattern string
	Handler types.Handler
	Methods []string

	template *Template
	allowed  map[string]struct{}
}

// Allows reports whether method is in the route's allowed set.
func (r *Route) Allows(method string) bool {
	_, ok := r.allowed[method]
	return ok
}

// Template returns the compiled path template.
func (r *Route) Template() *Template {
	return r.template
}

// Table maps path templates to handlers in registration order.
//
// Registration is a single-writer, start-up activity. Once dispatch begins
// the table is only read and may be shared by concurrent requests.
type Table struct {
	routes         []*Route
	byPattern      map[string]*Route
	defaultMethods []string
}

// NewTable creates an empty table. Routes registered without explicit
// methods accept defaultMethods, or types.AllMethods when none are given.
func NewTable(defaultMethods ...string) *Table {
	methods := types.NormalizeMethods(defaultMethods)
	if len(methods) == 0 {
		methods = types.NormalizeMethods(types.AllMethods)
	}
	return &Table{
		byPattern:      make(map[string]*Route),
		defaultMethods: methods,
	}
}

// DefaultMethods returns the methods applied to routes registered without any.
func (t *Table) DefaultMethods() []string {
	return t.defaultMethods
}

// Add registers handler under pattern. It fails with *errors.DuplicateRouteError
// when pattern is already present, whatever the handler.
func (t *Table) Add(pattern string, handler types.Handler, methods ...string) (*Route, error) {
	if _, exists := t.byPattern[pattern]; exists {
		return nil, &errors.DuplicateRouteError{Pattern: pattern}
	}
	if !handler.Valid() {
		return nil, errors.ErrInvalidHandler
	}

	tmpl, err := Compile(pattern)
	if err != nil {
		return nil, err
	}

	methods = types.NormalizeMethods(methods)
	if len(methods) == 0 {
		methods = append([]string(nil), t.defaultMethods...)
	}
	allowed := make(map[string]struct{}, len(methods))
	for _, m := range methods {
		allowed[m] = struct{}{}
	}

	route := &Route{
		Pattern:  pattern,
		Handler:  handler,
		Methods:  methods,
		template: tmpl,
		allowed:  allowed,
	}
	t.routes = append(t.routes, route)
	t.byPattern[pattern] = route
	return route, nil
}

// Find returns the first route, in registration order, whose template
// equals or matches path, together with the bound parameters.
func (t *Table) Find(path string) (*Route, types.Params, bool) {
	for _, route := range t.routes {
		if res := route.template.Match(path); res.Matched {
			return route, res.Params, true
		}
	}
	return nil, nil, false
}

// FindHandler resolves req to (handler, allowed methods, params). When no
// route matches it returns the zero Handler and empty collections.
func (t *Table) FindHandler(req *types.Request) (types.Handler, []string, types.Params) {
	route, params, ok := t.Find(req.Path())
	if !ok {
		return types.Handler{}, []string{}, types.Params{}
	}
	return route.Handler, route.Methods, params
}

// Routes returns the registered routes in registration order.
func (t *Table) Routes() []*Route {
	out := make([]*Route, len(t.routes))
	copy(out, t.routes)
	return out
}

// Len returns the number of registered routes.
func (t *Table) Len() int {
	return len(t.routes)
}
