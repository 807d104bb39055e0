// Package router arma el árbol de rutas HTTP.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	authctrl "github.com/dropDatabas3/mailgate/internal/http/controllers/auth"
	emailctrl "github.com/dropDatabas3/mailgate/internal/http/controllers/email"
	healthctrl "github.com/dropDatabas3/mailgate/internal/http/controllers/health"
	httperrors "github.com/dropDatabas3/mailgate/internal/http/errors"
	mw "github.com/dropDatabas3/mailgate/internal/http/middlewares"
)

// Deps contiene todas las dependencias del router.
type Deps struct {
	// Controllers
	AuthControllers  *authctrl.Controllers
	RelayController  *emailctrl.RelayController
	HealthController *healthctrl.HealthController

	// Auth valida el bearer token de las rutas protegidas.
	Auth mw.TokenParser

	// Uploads sirve los adjuntos ya guardados bajo UploadsPrefix (opcional).
	Uploads       http.Handler
	UploadsPrefix string

	// Metrics expone /metrics (opcional).
	Metrics http.Handler

	// CORSAllowedOrigins: vacío o ["*"] = AllowAll.
	CORSAllowedOrigins []string
}

// New construye el handler raíz.
func New(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(corsHandler(deps.CORSAllowedOrigins))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrRouteNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrMethodNotAllowed)
	})

	if deps.HealthController != nil {
		RegisterHealthRoutes(r, HealthRouterDeps{Controller: deps.HealthController, Metrics: deps.Metrics})
	}
	if deps.AuthControllers != nil {
		RegisterAuthRoutes(r, AuthRouterDeps{Controllers: deps.AuthControllers, Auth: deps.Auth})
	}
	if deps.RelayController != nil {
		RegisterEmailRoutes(r, EmailRouterDeps{
			Controller:    deps.RelayController,
			Auth:          deps.Auth,
			Uploads:       deps.Uploads,
			UploadsPrefix: deps.UploadsPrefix,
		})
	}
	return r
}

func corsHandler(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		return cors.AllowAll().Handler
	}
	return cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	})
}

// publicHandler crea el middleware chain para endpoints sin auth.
func publicHandler(handler http.Handler) http.Handler {
	return mw.Chain(handler,
		mw.WithRecover(),
		mw.WithRequestID(),
		mw.WithMetrics(),
		mw.WithLogging(),
		mw.WithSecurityHeaders(),
		mw.WithNoStore(),
	)
}

// authedHandler crea el middleware chain para endpoints que requieren bearer token.
// El logging va antes de RequireAuth para que los 401 queden registrados.
func authedHandler(auth mw.TokenParser, handler http.Handler) http.Handler {
	return mw.Chain(handler,
		mw.WithRecover(),
		mw.WithRequestID(),
		mw.WithMetrics(),
		mw.WithLogging(),
		mw.WithSecurityHeaders(),
		mw.WithNoStore(),
		mw.RequireAuth(auth),
	)
}

// healthBaseHandler: sin auth ni logging (muy frecuentes).
func healthBaseHandler(handler http.Handler) http.Handler {
	return mw.Chain(handler,
		mw.WithRecover(),
		mw.WithRequestID(),
	)
}
