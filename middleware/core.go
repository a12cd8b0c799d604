// Package middleware provides the middleware chain wrapped around the
// dispatcher and the built-in middleware shipped with turbohttp.
package middleware

import (
	"github.com/yshengliao/turbohttp/core/types"
	"github.com/yshengliao/turbohttp/response"
)

// Middleware is an alias to types.Middleware for convenience
type Middleware = types.Middleware

// Guard is an alias to types.Guard for convenience
type Guard = types.Guard

// ErrorObserver is an alias to types.ErrorObserver for convenience
type ErrorObserver = types.ErrorObserver

// DispatchFunc is an alias to types.DispatchFunc for convenience
type DispatchFunc = types.DispatchFunc

// Base implements Middleware with no-op hooks. Embed it to implement only
// one of the two hooks.
type Base struct{}

// BeforeDispatch does nothing
func (Base) BeforeDispatch(*types.Request) {}

// AfterDispatch does nothing
func (Base) AfterDispatch(*types.Request, *response.Response) {}

// Chain is an ordered list of middleware. Each middleware wraps the ones
// added before it, so the most recently added is outermost: its
// BeforeDispatch runs first and its AfterDispatch runs last.
type Chain struct {
	middlewares []Middleware
}

// NewChain creates a new middleware chain
func NewChain(middlewares ...Middleware) *Chain {
	c := &Chain{}
	for _, m := range middlewares {
		c.Add(m)
	}
	return c
}

// Add appends m as the new outermost layer
func (c *Chain) Add(m Middleware) {
	if m == nil {
		panic("middleware: nil middleware passed to Add")
	}
	c.middlewares = append(c.middlewares, m)
}

// Append returns a new chain with middlewares added after c's
func (c *Chain) Append(middlewares ...Middleware) *Chain {
	newChain := &Chain{
		middlewares: make([]Middleware, len(c.middlewares), len(c.middlewares)+len(middlewares)),
	}
	copy(newChain.middlewares, c.middlewares)
	for _, m := range middlewares {
		newChain.Add(m)
	}
	return newChain
}

// Len returns the number of middleware in the chain
func (c *Chain) Len() int {
	return len(c.middlewares)
}

// Then wraps core with every middleware and returns the outermost call
func (c *Chain) Then(core DispatchFunc) DispatchFunc {
	h := core
	for _, m := range c.middlewares {
		h = wrap(m, h)
	}
	return h
}

// wrap brackets next with m's hooks. A propagated error skips AfterDispatch.
func wrap(m Middleware, next DispatchFunc) DispatchFunc {
	guard, _ := m.(Guard)
	observer, _ := m.(ErrorObserver)
	return func(req *types.Request) (*response.Response, error) {
		m.BeforeDispatch(req)

		if guard != nil {
			denied := response.New()
			if !guard.Admit(req, denied) {
				m.AfterDispatch(req, denied)
				return denied, nil
			}
		}

		resp, err := next(req)
		if err != nil {
			if observer != nil {
				observer.DispatchError(req, err)
			}
			return nil, err
		}

		m.AfterDispatch(req, resp)
		return resp, nil
	}
}
