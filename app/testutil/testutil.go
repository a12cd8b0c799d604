// Package testutil provides helpers for exercising an App in tests.
package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/yshengliao/turbohttp/app"
)

// NewTestApp creates an App logging to t
func NewTestApp(t testing.TB, opts ...app.Option) *app.App {
	t.Helper()
	opts = append([]app.Option{app.WithLogger(zaptest.NewLogger(t))}, opts...)
	a, err := app.NewApp(opts...)
	require.NoError(t, err)
	return a
}

// Client issues in-memory requests against a handler
type Client struct {
	t       testing.TB
	handler http.Handler
	header  http.Header
}

// NewClient creates a client for h
func NewClient(t testing.TB, h http.Handler) *Client {
	return &Client{t: t, handler: h, header: make(http.Header)}
}

// WithHeader sets a header sent with every request
func (c *Client) WithHeader(key, value string) *Client {
	c.header.Set(key, value)
	return c
}

// Get issues a GET request
func (c *Client) Get(target string) *httptest.ResponseRecorder {
	return c.Do(http.MethodGet, target, nil)
}

// Post issues a POST request with v encoded as JSON
func (c *Client) Post(target string, v any) *httptest.ResponseRecorder {
	c.t.Helper()
	var body io.Reader
	if v != nil {
		b, err := json.Marshal(v)
		require.NoError(c.t, err)
		body = bytes.NewReader(b)
	}
	return c.Do(http.MethodPost, target, body)
}

// Do issues a request with the given method and body
func (c *Client) Do(method, target string, body io.Reader) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	for k, v := range c.header {
		req.Header[k] = v
	}
	if body != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	c.handler.ServeHTTP(rec, req)
	return rec
}

// DecodeJSON decodes the recorded body into v
func DecodeJSON(t testing.TB, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}
