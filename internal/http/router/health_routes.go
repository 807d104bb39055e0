package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	ctrl "github.com/dropDatabas3/mailgate/internal/http/controllers/health"
)

// HealthRouterDeps contiene las dependencias para el router de health.
type HealthRouterDeps struct {
	Controller *ctrl.HealthController
	Metrics    http.Handler
}

// RegisterHealthRoutes registra /healthz, /readyz y /metrics. Son públicos.
func RegisterHealthRoutes(r chi.Router, deps HealthRouterDeps) {
	c := deps.Controller

	// GET /healthz - liveness
	r.Method(http.MethodGet, "/healthz", healthBaseHandler(http.HandlerFunc(c.Healthz)))

	// GET /readyz - readiness (DB + JWT)
	r.Method(http.MethodGet, "/readyz", healthBaseHandler(http.HandlerFunc(c.Readyz)))

	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", healthBaseHandler(deps.Metrics))
	}
}
