package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/yshengliao/turbohttp/core/types"
	"github.com/yshengliao/turbohttp/response"
)

// CORSConfig contains configuration for the CORS middleware
type CORSConfig struct {
	// AllowOrigins is a list of origins that are allowed
	AllowOrigins []string
	// AllowMethods is a list of methods that are allowed
	AllowMethods []string
	// AllowHeaders is a list of headers that are allowed
	AllowHeaders []string
	// ExposeHeaders is a list of headers that are exposed to the client
	ExposeHeaders []string
	// AllowCredentials indicates whether the request can include credentials
	AllowCredentials bool
	// MaxAge indicates how long the results of a preflight request can be cached
	MaxAge int
}

// DefaultCORSConfig returns the default CORS configuration
func DefaultCORSConfig() *CORSConfig {
	return &CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{
			http.MethodGet,
			http.MethodHead,
			http.MethodPut,
			http.MethodPatch,
			http.MethodPost,
			http.MethodDelete,
		},
		AllowHeaders: []string{"*"},
	}
}

type cors struct {
	config       *CORSConfig
	allowMethods string
}

// CORS returns a middleware that handles CORS
func CORS() Middleware {
	return CORSWithConfig(DefaultCORSConfig())
}

// CORSWithConfig returns a middleware with custom configuration. Preflight
// requests are answered directly with 204 and never reach the dispatcher.
func CORSWithConfig(config *CORSConfig) Middleware {
	if config == nil {
		config = DefaultCORSConfig()
	}
	if len(config.AllowOrigins) == 0 {
		config.AllowOrigins = []string{"*"}
	}
	if len(config.AllowMethods) == 0 {
		config.AllowMethods = DefaultCORSConfig().AllowMethods
	}
	return &cors{
		config:       config,
		allowMethods: strings.Join(config.AllowMethods, ", "),
	}
}

func (m *cors) allowOrigin(origin string) string {
	for _, o := range m.config.AllowOrigins {
		if o == "*" || o == origin {
			return o
		}
	}
	return ""
}

func isPreflight(req *types.Request) bool {
	return req.Method() == http.MethodOptions && req.Header().Get("Access-Control-Request-Method") != ""
}

func (m *cors) BeforeDispatch(*types.Request) {}

// Admit answers preflight requests
func (m *cors) Admit(req *types.Request, resp *response.Response) bool {
	if !isPreflight(req) {
		return true
	}

	h := resp.Header()
	h.Add("Vary", "Origin")
	h.Add("Vary", "Access-Control-Request-Method")
	h.Add("Vary", "Access-Control-Request-Headers")
	resp.SetStatus(http.StatusNoContent)

	allowOrigin := m.allowOrigin(req.Header().Get("Origin"))
	if allowOrigin == "" {
		return false
	}

	h.Set("Access-Control-Allow-Origin", allowOrigin)
	h.Set("Access-Control-Allow-Methods", m.allowMethods)
	if m.config.AllowCredentials {
		h.Set("Access-Control-Allow-Credentials", "true")
	}
	if len(m.config.AllowHeaders) > 0 {
		allowHeaders := strings.Join(m.config.AllowHeaders, ", ")
		if m.config.AllowHeaders[0] == "*" {
			if requested := req.Header().Get("Access-Control-Request-Headers"); requested != "" {
				allowHeaders = requested
			}
		}
		h.Set("Access-Control-Allow-Headers", allowHeaders)
	}
	if m.config.MaxAge > 0 {
		h.Set("Access-Control-Max-Age", strconv.Itoa(m.config.MaxAge))
	}
	return false
}

// AfterDispatch decorates simple (non-preflight) responses
func (m *cors) AfterDispatch(req *types.Request, resp *response.Response) {
	if isPreflight(req) {
		return
	}
	h := resp.Header()
	h.Add("Vary", "Origin")
	if allowOrigin := m.allowOrigin(req.Header().Get("Origin")); allowOrigin != "" {
		h.Set("Access-Control-Allow-Origin", allowOrigin)
	}
	if m.config.AllowCredentials {
		h.Set("Access-Control-Allow-Credentials", "true")
	}
	if len(m.config.ExposeHeaders) > 0 {
		h.Set("Access-Control-Expose-Headers", strings.Join(m.config.ExposeHeaders, ", "))
	}
}
