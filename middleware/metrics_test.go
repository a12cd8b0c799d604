package middleware

import (
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yshengliao/turbohttp/core/types"
	"github.com/yshengliao/turbohttp/response"
)

func TestMetrics_RecordsRequests(t *testing.T) {
	reg := prometheus.NewRegistry()
	mw := Metrics(WithRegistry(reg)).(*metrics)

	for i := 0; i < 3; i++ {
		runChain(t, types.NewRequest(httptest.NewRequest(http.MethodGet, "/", nil)), mw)
	}

	_, err := NewChain(mw).Then(func(*types.Request) (*response.Response, error) {
		r := response.New()
		r.SetStatus(http.StatusNotFound)
		return r, nil
	})(types.NewRequest(httptest.NewRequest(http.MethodPost, "/missing", nil)))
	require.NoError(t, err)

	assert.Equal(t, 3.0, testutil.ToFloat64(mw.requestsTotal.WithLabelValues("GET", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(mw.requestsTotal.WithLabelValues("POST", "404")))
	assert.Equal(t, 0.0, testutil.ToFloat64(mw.inFlight))
	assert.Equal(t, 2, testutil.CollectAndCount(mw.requestDuration))
}

func TestMetrics_UnsetStatusCountsAsOK(t *testing.T) {
	reg := prometheus.NewRegistry()
	mw := Metrics(WithRegistry(reg)).(*metrics)

	_, err := NewChain(mw).Then(func(*types.Request) (*response.Response, error) {
		return response.New(), nil
	})(types.NewRequest(httptest.NewRequest(http.MethodGet, "/", nil)))
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(mw.requestsTotal.WithLabelValues("GET", "200")))
}

func TestMetrics_DispatchError(t *testing.T) {
	reg := prometheus.NewRegistry()
	mw := Metrics(WithRegistry(reg), WithNamespace("app")).(*metrics)

	_, err := NewChain(mw).Then(func(*types.Request) (*response.Response, error) {
		return nil, stderrors.New("boom")
	})(types.NewRequest(httptest.NewRequest(http.MethodGet, "/", nil)))
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(mw.errorsTotal.WithLabelValues("GET")))
	assert.Equal(t, 0.0, testutil.ToFloat64(mw.inFlight))

	families, err := reg.Gather()
	require.NoError(t, err)
	var names []string
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "app_dispatch_errors_total")
	assert.Contains(t, names, "app_requests_in_flight")
}
