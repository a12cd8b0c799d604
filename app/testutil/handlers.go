package testutil

import (
	"errors"

	"github.com/yshengliao/turbohttp/core/types"
	"github.com/yshengliao/turbohttp/response"
)

// Text returns a handler answering with a fixed text body
func Text(body string) types.HandlerFunc {
	return func(_ *types.Request, resp *response.Response, _ types.Params) error {
		resp.SetText(body)
		return nil
	}
}

// Fail returns a handler that returns an error with the given message
func Fail(message string) types.HandlerFunc {
	return func(*types.Request, *response.Response, types.Params) error {
		return errors.New(message)
	}
}

// Panic returns a handler that panics with v
func Panic(v any) types.HandlerFunc {
	return func(*types.Request, *response.Response, types.Params) error {
		panic(v)
	}
}

// Methods builds a class factory from a method table. Every call yields the
// same table, which is fine for stateless handlers.
func Methods(m types.Methods) func() types.Resource {
	return func() types.Resource { return m }
}
