package errors_test

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yshengliao/turbohttp/pkg/errors"
	"github.com/yshengliao/turbohttp/response"
)

func TestNewErrorResponse(t *testing.T) {
	err := errors.New(errors.CodeValidationFailed, "Custom validation error")

	assert.False(t, err.Success)
	assert.Equal(t, errors.CodeValidationFailed.Int(), err.ErrorDetail.Code)
	assert.Equal(t, "Custom validation error", err.Error())
	assert.False(t, err.Timestamp.IsZero())
	assert.Equal(t, http.StatusBadRequest, err.StatusCode())
}

func TestErrorResponseChaining(t *testing.T) {
	err := errors.NewFromCode(errors.CodeInvalidQueryParam).
		WithRequestID("req-9").
		WithDetail("param", "page").
		WithDetail("value", "-1")

	assert.Equal(t, "Invalid query parameter", err.ErrorDetail.Message)
	assert.Equal(t, "req-9", err.RequestID)
	assert.Equal(t, map[string]any{"param": "page", "value": "-1"}, err.ErrorDetail.Details)

	b, jerr := json.Marshal(err)
	require.NoError(t, jerr)
	assert.Contains(t, string(b), `"request_id":"req-9"`)
	assert.Contains(t, string(b), `"success":false`)
}

var errBookNotFound = stderrors.New("book not found")

func TestRegistry(t *testing.T) {
	r := errors.NewRegistry()
	r.Register(errBookNotFound, errors.CodeResourceNotFound, 0, "Book not found")

	mapping, ok := r.Lookup(fmt.Errorf("load: %w", errBookNotFound))
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, mapping.HTTPStatus)
	assert.Equal(t, "Book not found", mapping.Message)

	_, ok = r.Lookup(stderrors.New("other"))
	assert.False(t, ok)

	r.Clear()
	_, ok = r.Lookup(errBookNotFound)
	assert.False(t, ok)
}

func TestRegistry_Resolve(t *testing.T) {
	r := errors.NewRegistry()
	r.Register(errBookNotFound, errors.CodeResourceNotFound, http.StatusGone, "")

	resp, ok := r.Resolve(errBookNotFound)
	require.True(t, ok)
	assert.Equal(t, http.StatusGone, resp.StatusCode())
	assert.Equal(t, "Not Found", resp.ErrorDetail.Message)

	direct := errors.New(errors.CodeTimeout, "slow")
	resp, ok = r.Resolve(fmt.Errorf("wrapped: %w", direct))
	require.True(t, ok)
	assert.Same(t, direct, resp)

	_, ok = r.Resolve(stderrors.New("unknown"))
	assert.False(t, ok)
}

func TestJSONExceptionHook_RegisteredError(t *testing.T) {
	r := errors.NewRegistry()
	r.Register(errBookNotFound, errors.CodeResourceNotFound, 0, "Book not found")
	hook := errors.JSONExceptionHook(&errors.HookConfig{Registry: r})

	resp := response.New()
	hook(newRequest(t), resp, errBookNotFound)

	assert.Equal(t, http.StatusNotFound, resp.StatusCode())
	body, _, err := resp.Resolve()
	require.NoError(t, err)

	var decoded errors.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &decoded))
	assert.Equal(t, "Book not found", decoded.ErrorDetail.Message)
	assert.Equal(t, "req-1", decoded.RequestID)
}
