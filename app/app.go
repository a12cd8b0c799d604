// Package app provides the application facade: route registration, the
// middleware chain, the exception hook and the request dispatcher.
package app

import (
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/yshengliao/turbohttp/config"
	"github.com/yshengliao/turbohttp/core/types"
	"github.com/yshengliao/turbohttp/middleware"
	"github.com/yshengliao/turbohttp/response"
	"github.com/yshengliao/turbohttp/router"
	"github.com/yshengliao/turbohttp/static"
	"github.com/yshengliao/turbohttp/view"
)

// Renderer produces the text of a named template. view.Engine implements it.
type Renderer interface {
	Render(name string, data map[string]any) (string, error)
}

// App owns the route table, the middleware chain and the exception hook.
//
// Registration (AddRoute, Use, SetExceptionHandler) must finish before the
// first request is served. After that the App is read-only and safe for
// concurrent requests.
type App struct {
	config         *config.Config
	logger         *zap.Logger
	routes         *router.Table
	chain          *middleware.Chain
	handler        types.DispatchFunc
	exceptionHook  types.ExceptionHook
	renderer       Renderer
	staticPrefix   string
	static         http.Handler
	defaultMethods []string
}

// Option defines a functional option for App
type Option func(*App) error

// NewApp creates a new application instance with the given options
func NewApp(opts ...Option) (*App, error) {
	app := &App{
		logger: zap.NewNop(),
		chain:  middleware.NewChain(),
	}

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	if app.config != nil {
		app.applyConfig(app.config)
	}

	app.routes = router.NewTable(app.defaultMethods...)
	app.handler = app.chain.Then(app.dispatch)

	return app, nil
}

// WithConfig sets the application configuration. Routing, static and
// template settings are applied unless overridden by a more specific option.
func WithConfig(cfg *config.Config) Option {
	return func(app *App) error {
		if cfg == nil {
			return fmt.Errorf("config cannot be nil")
		}
		app.config = cfg
		return nil
	}
}

// WithLogger sets the application logger
func WithLogger(logger *zap.Logger) Option {
	return func(app *App) error {
		if logger == nil {
			return fmt.Errorf("logger cannot be nil")
		}
		app.logger = logger
		return nil
	}
}

// WithStatic delegates every request under prefix to h before routing
func WithStatic(prefix string, h http.Handler) Option {
	return func(app *App) error {
		if h == nil {
			return fmt.Errorf("static handler cannot be nil")
		}
		if !strings.HasPrefix(prefix, "/") {
			return fmt.Errorf("static prefix must start with /: %q", prefix)
		}
		app.staticPrefix = strings.TrimSuffix(prefix, "/")
		app.static = h
		return nil
	}
}

// WithRenderer sets the template renderer used by Render
func WithRenderer(r Renderer) Option {
	return func(app *App) error {
		if r == nil {
			return fmt.Errorf("renderer cannot be nil")
		}
		app.renderer = r
		return nil
	}
}

// WithDefaultMethods sets the methods allowed on routes registered without any
func WithDefaultMethods(methods ...string) Option {
	return func(app *App) error {
		normalized := types.NormalizeMethods(methods)
		if len(normalized) == 0 {
			return fmt.Errorf("default methods cannot be empty")
		}
		app.defaultMethods = normalized
		return nil
	}
}

func (app *App) applyConfig(cfg *config.Config) {
	if len(app.defaultMethods) == 0 {
		app.defaultMethods = types.NormalizeMethods(cfg.Routing.DefaultMethods)
	}

	if app.static == nil && cfg.Static.Root != "" && cfg.Static.Prefix != "" {
		sc := static.DefaultConfig()
		sc.Prefix = cfg.Static.Prefix
		sc.Root = cfg.Static.Root
		sc.CacheMaxAge = cfg.Static.MaxAge
		app.staticPrefix = strings.TrimSuffix(sc.Prefix, "/")
		app.static = static.Handler(sc)
	}

	if app.renderer == nil && cfg.Templates.Dir != "" {
		app.renderer = view.New(cfg.Templates.Dir, view.WithLogger(app.logger))
	}
}

// Logger returns the application logger
func (app *App) Logger() *zap.Logger {
	return app.logger
}

// Config returns the configuration given to WithConfig, or nil
func (app *App) Config() *config.Config {
	return app.config
}

// Renderer returns the configured renderer, or nil
func (app *App) Renderer() Renderer {
	return app.renderer
}

// AddRoute registers handler under pattern. Methods default to the app's
// default set. Registering a pattern twice fails with
// *errors.DuplicateRouteError.
func (app *App) AddRoute(pattern string, handler types.Handler, methods ...string) error {
	route, err := app.routes.Add(pattern, handler, methods...)
	if err != nil {
		app.logger.Warn("Route registration failed",
			zap.String("pattern", pattern),
			zap.Error(err))
		return err
	}

	app.logger.Debug("Route registered",
		zap.String("pattern", route.Pattern),
		zap.Strings("methods", route.Methods),
		zap.Stringer("kind", route.Handler.Kind()))
	return nil
}

// HandleFunc registers a function handler
func (app *App) HandleFunc(pattern string, fn types.HandlerFunc, methods ...string) error {
	return app.AddRoute(pattern, types.Func(fn), methods...)
}

// HandleClass registers a class-based handler built fresh for every request
func (app *App) HandleClass(pattern string, factory func() types.Resource, methods ...string) error {
	return app.AddRoute(pattern, types.Class(factory), methods...)
}

// Use adds m as the new outermost middleware
func (app *App) Use(m middleware.Middleware) {
	app.chain.Add(m)
	app.handler = app.chain.Then(app.dispatch)
}

// SetExceptionHandler installs the hook run when a handler fails. It
// replaces any previous hook; nil removes it.
func (app *App) SetExceptionHandler(hook types.ExceptionHook) {
	app.exceptionHook = hook
}

// Render passes name and data to the renderer and returns its output as is
func (app *App) Render(name string, data map[string]any) (string, error) {
	if app.renderer == nil {
		return "", ErrNoRenderer
	}
	return app.renderer.Render(name, data)
}

// RouteInfo describes a registered route
type RouteInfo struct {
	Pattern string   `json:"pattern"`
	Methods []string `json:"methods"`
	Kind    string   `json:"kind"`
}

// Routes lists the registered routes in registration order
func (app *App) Routes() []RouteInfo {
	routes := app.routes.Routes()
	out := make([]RouteInfo, 0, len(routes))
	for _, r := range routes {
		out = append(out, routeInfo(r))
	}
	return out
}

func routeInfo(r *router.Route) RouteInfo {
	methods := make([]string, len(r.Methods))
	copy(methods, r.Methods)
	return RouteInfo{
		Pattern: r.Pattern,
		Methods: methods,
		Kind:    r.Handler.Kind().String(),
	}
}

// HandleRequest runs r through the middleware chain and the dispatcher.
// A handler error is returned only when no exception hook is installed.
func (app *App) HandleRequest(r *http.Request) (*response.Response, error) {
	return app.handler(types.NewRequest(r))
}

// ServeHTTP implements http.Handler. Requests under the static prefix go to
// the static handler; everything else is dispatched and the response
// written. A propagated handler error is logged and answered with 500.
func (app *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if app.isStatic(r.URL.Path) {
		app.static.ServeHTTP(w, r)
		return
	}

	resp, err := app.HandleRequest(r)
	if err != nil {
		app.logger.Error("Unhandled handler error",
			zap.Error(err),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if err := resp.Send(w); err != nil {
		app.logger.Error("Failed to write response",
			zap.Error(err),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (app *App) isStatic(path string) bool {
	if app.static == nil {
		return false
	}
	return path == app.staticPrefix || strings.HasPrefix(path, app.staticPrefix+"/")
}
