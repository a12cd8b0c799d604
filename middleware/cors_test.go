package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yshengliao/turbohttp/core/types"
	"github.com/yshengliao/turbohttp/response"
)

func TestCORS_SimpleRequest(t *testing.T) {
	raw := httptest.NewRequest(http.MethodGet, "/", nil)
	raw.Header.Set("Origin", "https://example.com")

	resp := runChain(t, types.NewRequest(raw), CORSWithConfig(&CORSConfig{
		AllowOrigins:     []string{"https://example.com"},
		AllowCredentials: true,
		ExposeHeaders:    []string{"X-Request-ID"},
	}))

	assert.Equal(t, http.StatusOK, resp.StatusCode())
	assert.Equal(t, "https://example.com", resp.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", resp.Header().Get("Access-Control-Allow-Credentials"))
	assert.Equal(t, "X-Request-ID", resp.Header().Get("Access-Control-Expose-Headers"))
}

func TestCORS_DisallowedOrigin(t *testing.T) {
	raw := httptest.NewRequest(http.MethodGet, "/", nil)
	raw.Header.Set("Origin", "https://evil.com")

	resp := runChain(t, types.NewRequest(raw), CORSWithConfig(&CORSConfig{
		AllowOrigins: []string{"https://example.com"},
	}))

	assert.Empty(t, resp.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_Preflight(t *testing.T) {
	raw := httptest.NewRequest(http.MethodOptions, "/books", nil)
	raw.Header.Set("Origin", "https://example.com")
	raw.Header.Set("Access-Control-Request-Method", http.MethodPost)
	raw.Header.Set("Access-Control-Request-Headers", "Content-Type")

	dispatched := false
	resp, err := NewChain(CORSWithConfig(&CORSConfig{MaxAge: 600})).Then(
		func(*types.Request) (*response.Response, error) {
			dispatched = true
			return nil, nil
		})(types.NewRequest(raw))

	assert.NoError(t, err)
	assert.False(t, dispatched)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode())
	assert.Equal(t, "*", resp.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, resp.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)
	assert.Equal(t, "Content-Type", resp.Header().Get("Access-Control-Allow-Headers"))
	assert.Equal(t, "600", resp.Header().Get("Access-Control-Max-Age"))
}

func TestCORS_PlainOptionsReachesDispatcher(t *testing.T) {
	raw := httptest.NewRequest(http.MethodOptions, "/books", nil)
	resp := runChain(t, types.NewRequest(raw), CORS())

	assert.Equal(t, http.StatusOK, resp.StatusCode())
}
