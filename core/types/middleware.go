package types

import "github.com/yshengliao/turbohttp/response"

// DispatchFunc turns a request into a response. The core dispatcher and
// every middleware layer wrapped around it share this shape.
type DispatchFunc func(req *Request) (*response.Response, error)

// Middleware observes a request before dispatch and the response after it.
type Middleware interface {
	// BeforeDispatch runs on the way in.
	BeforeDispatch(req *Request)
	// AfterDispatch runs on the way out and may mutate resp.
	AfterDispatch(req *Request, resp *response.Response)
}

// Guard is an optional Middleware capability. When Admit returns false the
// inner layers and the dispatcher are skipped and resp, as filled by Admit,
// becomes the response.
type Guard interface {
	Admit(req *Request, resp *response.Response) bool
}

// ErrorObserver is an optional Middleware capability. A propagated dispatch
// error skips AfterDispatch; DispatchError is called in its place.
type ErrorObserver interface {
	DispatchError(req *Request, err error)
}
