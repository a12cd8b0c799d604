// Package errors defines the routing and dispatch error taxonomy and a
// standardized JSON error envelope.
package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrRouteNotFound means no registered template matched the path.
	ErrRouteNotFound = errors.New("route not found")
	// ErrMethodNotAllowed means the path matched but the method did not.
	ErrMethodNotAllowed = errors.New("method not allowed")
	// ErrDuplicateRoute is matched by every *DuplicateRouteError.
	ErrDuplicateRoute = errors.New("duplicate route")
	// ErrInvalidHandler is returned when registering a nil handler.
	ErrInvalidHandler = errors.New("invalid handler")
)

// DuplicateRouteError is returned when a path template is registered twice.
type DuplicateRouteError struct {
	Pattern string
}

func (e *DuplicateRouteError) Error() string {
	return fmt.Sprintf("route %q already exists", e.Pattern)
}

// Is reports ErrDuplicateRoute equivalence.
func (e *DuplicateRouteError) Is(target error) bool {
	return target == ErrDuplicateRoute
}

// TemplateError is returned for a path template that cannot be compiled.
type TemplateError struct {
	Pattern string
	Reason  string
}

func (e *TemplateError) Error() string {
	return fmt.Sprintf("invalid path template %q: %s", e.Pattern, e.Reason)
}

// HandlerError wraps a failure raised by handler code.
type HandlerError struct {
	Route  string
	Method string
	Err    error
	// Panic is set when the handler panicked rather than returned Err.
	Panic bool
}

func (e *HandlerError) Error() string {
	if e.Panic {
		return fmt.Sprintf("handler %s %s panicked: %v", e.Method, e.Route, e.Err)
	}
	return fmt.Sprintf("handler %s %s: %v", e.Method, e.Route, e.Err)
}

func (e *HandlerError) Unwrap() error {
	return e.Err
}
