package app

import "github.com/yshengliao/turbohttp/core/types"

// RouteBuilder registers a single pattern, mirroring decorator-style
// registration:
//
//	app.Route("/books", http.MethodGet, http.MethodPost).Class(newBooks)
type RouteBuilder struct {
	app     *App
	pattern string
	methods []string
}

// Route starts a registration for pattern restricted to methods, or the
// default methods when none are given.
func (app *App) Route(pattern string, methods ...string) *RouteBuilder {
	return &RouteBuilder{app: app, pattern: pattern, methods: methods}
}

// Func registers a function handler
func (b *RouteBuilder) Func(fn types.HandlerFunc) error {
	return b.app.HandleFunc(b.pattern, fn, b.methods...)
}

// Class registers a class-based handler
func (b *RouteBuilder) Class(factory func() types.Resource) error {
	return b.app.HandleClass(b.pattern, factory, b.methods...)
}

// Handle registers an already built handler
func (b *RouteBuilder) Handle(h types.Handler) error {
	return b.app.AddRoute(b.pattern, h, b.methods...)
}
