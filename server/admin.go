package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yshengliao/turbohttp/app"
)

// AdminHandler serves operational endpoints for a:
//
//	GET /metrics  Prometheus exposition of g
//	GET /healthz  health check results, 503 when unhealthy
//	GET /_routes  registered routes as JSON
//
// A nil g uses the default gatherer and a nil health reports healthy.
func AdminHandler(a *app.App, g prometheus.Gatherer, health *HealthChecker) http.Handler {
	if g == nil {
		g = prometheus.DefaultGatherer
	}
	if health == nil {
		health = NewHealthChecker(0)
	}

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)

	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		results := health.Check(req.Context())
		status := Overall(results)

		code := http.StatusOK
		if status == HealthStatusUnhealthy {
			code = http.StatusServiceUnavailable
		}
		writeJSON(w, code, map[string]any{
			"status": status,
			"checks": results,
		})
	})
	r.Get("/_routes", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"routes": a.Routes()})
	})
	return r
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
