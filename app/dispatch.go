package app

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/yshengliao/turbohttp/core/types"
	"github.com/yshengliao/turbohttp/pkg/errors"
	"github.com/yshengliao/turbohttp/response"
	"github.com/yshengliao/turbohttp/router"
)

// dispatch is the innermost step of the chain: it resolves the route,
// invokes the handler and applies the exception hook.
func (app *App) dispatch(req *types.Request) (*response.Response, error) {
	resp := response.New()

	method := req.Method()
	route, params, err := app.lookup(method, req.Path())
	switch {
	case stderrors.Is(err, errors.ErrRouteNotFound):
		return notFound(resp), nil
	case stderrors.Is(err, errors.ErrMethodNotAllowed):
		return methodNotAllowed(resp), nil
	}

	found, err := invoke(route, method, req, resp, params)
	if err == nil && !found {
		return methodNotAllowed(resp), nil
	}

	if err != nil {
		if app.exceptionHook == nil {
			return nil, routeError(route, method, err)
		}

		app.logger.Debug("Handler failed, running exception hook",
			zap.String("pattern", route.Pattern),
			zap.String("method", method),
			zap.Error(err))
		app.exceptionHook(req, resp, err)
		return resp, nil
	}

	if resp.StatusCode() == 0 {
		resp.SetStatus(http.StatusOK)
	}
	return resp, nil
}

// lookup finds the route serving method on path. It fails with
// ErrRouteNotFound or ErrMethodNotAllowed.
func (app *App) lookup(method, path string) (*router.Route, types.Params, error) {
	route, params, ok := app.routes.Find(path)
	if !ok {
		return nil, nil, errors.ErrRouteNotFound
	}
	if !route.Allows(method) {
		return route, params, errors.ErrMethodNotAllowed
	}
	return route, params, nil
}

// Match reports which route would serve method on path and the parameters
// it binds. Class handlers are not instantiated, so a verb the class lacks
// still matches here but answers 405 at dispatch.
func (app *App) Match(method, path string) (RouteInfo, types.Params, error) {
	route, params, err := app.lookup(strings.ToUpper(method), path)
	if route == nil {
		return RouteInfo{}, nil, err
	}
	return routeInfo(route), params, err
}

// invoke resolves the route's handler for method and runs it. Building a
// class instance counts as handler execution, so a panic in the factory is
// recovered like one in the handler. found is false when the handler does
// not serve method.
func invoke(route *router.Route, method string, req *types.Request, resp *response.Response, params types.Params) (found bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			cause, ok := r.(error)
			if !ok {
				cause = fmt.Errorf("%v", r)
			}
			found = true
			err = &errors.HandlerError{Route: route.Pattern, Method: method, Err: cause, Panic: true}
		}
	}()

	fn, ok := route.Handler.Resolve(method)
	if !ok {
		return false, nil
	}
	return true, fn(req, resp, params)
}

// routeError returns err as a *errors.HandlerError naming the route. A
// HandlerError the handler returned is wrapped, never modified, since it may
// be shared between requests.
func routeError(route *router.Route, method string, err error) error {
	var herr *errors.HandlerError
	if stderrors.As(err, &herr) && herr.Route == route.Pattern && herr.Method == method {
		return err
	}
	return &errors.HandlerError{Route: route.Pattern, Method: method, Err: err}
}

func notFound(resp *response.Response) *response.Response {
	resp.SetStatus(http.StatusNotFound)
	resp.SetText(http.StatusText(http.StatusNotFound))
	return resp
}

func methodNotAllowed(resp *response.Response) *response.Response {
	resp.SetStatus(http.StatusMethodNotAllowed)
	resp.SetText(http.StatusText(http.StatusMethodNotAllowed))
	return resp
}
