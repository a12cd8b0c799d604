package errors

import (
	"errors"
	"sync"
)

// ErrorMapping represents a mapping from a business error to HTTP error details
type ErrorMapping struct {
	Code       ErrorCode
	HTTPStatus int
	Message    string
}

// Registry maps business errors returned by handlers to error responses.
// Lookups match with errors.Is, so wrapped errors resolve too.
type Registry struct {
	mu       sync.RWMutex
	errs     []error
	mappings map[error]*ErrorMapping
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{mappings: make(map[error]*ErrorMapping)}
}

var defaultRegistry = NewRegistry()

// DefaultRegistry returns the process-wide registry used by Register
func DefaultRegistry() *Registry {
	return defaultRegistry
}

// Register maps err in the default registry
func Register(err error, code ErrorCode, httpStatus int, message string) {
	defaultRegistry.Register(err, code, httpStatus, message)
}

// Register maps err to code. A zero httpStatus uses the code's status and an
// empty message uses the code's default message.
func (r *Registry) Register(err error, code ErrorCode, httpStatus int, message string) {
	if httpStatus == 0 {
		httpStatus = code.HTTPStatus()
	}
	if message == "" {
		message = code.Message()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.mappings[err]; !exists {
		r.errs = append(r.errs, err)
	}
	r.mappings[err] = &ErrorMapping{
		Code:       code,
		HTTPStatus: httpStatus,
		Message:    message,
	}
}

// Lookup returns the mapping of the first registered error err matches
func (r *Registry) Lookup(err error) (*ErrorMapping, bool) {
	if err == nil {
		return nil, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, target := range r.errs {
		if errors.Is(err, target) {
			return r.mappings[target], true
		}
	}
	return nil, false
}

// Clear removes every mapping
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = nil
	r.mappings = make(map[error]*ErrorMapping)
}

// Resolve converts err to an error response. An *ErrorResponse in the chain
// is returned as is; a registered error gets its mapping. ok is false for
// anything else.
func (r *Registry) Resolve(err error) (*ErrorResponse, bool) {
	var errResp *ErrorResponse
	if errors.As(err, &errResp) {
		return errResp, true
	}
	if mapping, found := r.Lookup(err); found {
		return New(mapping.Code, mapping.Message).WithStatus(mapping.HTTPStatus), true
	}
	return nil, false
}
