package router

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	ctrl "github.com/dropDatabas3/mailgate/internal/http/controllers/email"
	mw "github.com/dropDatabas3/mailgate/internal/http/middlewares"
)

// EmailRouterDeps contiene las dependencias para el relay y los uploads.
type EmailRouterDeps struct {
	Controller    *ctrl.RelayController
	Auth          mw.TokenParser
	Uploads       http.Handler
	UploadsPrefix string
}

// RegisterEmailRoutes registra POST /api/email/send y GET <uploads>/*.
func RegisterEmailRoutes(r chi.Router, deps EmailRouterDeps) {
	// POST /api/email/send (requires auth)
	r.Method(http.MethodPost, "/api/email/send", authedHandler(deps.Auth, http.HandlerFunc(deps.Controller.Send)))

	if deps.Uploads == nil {
		return
	}
	prefix := "/" + strings.Trim(deps.UploadsPrefix, "/")
	if prefix == "/" {
		prefix = "/uploads"
	}
	// GET /uploads/{name} (público, solo lectura)
	h := mw.Chain(deps.Uploads, mw.WithRecover(), mw.WithRequestID(), mw.WithMetrics(), mw.WithSecurityHeaders())
	r.Method(http.MethodGet, prefix+"/*", h)
	r.Method(http.MethodHead, prefix+"/*", h)
}
