package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	ctrl "github.com/dropDatabas3/mailgate/internal/http/controllers/auth"
	mw "github.com/dropDatabas3/mailgate/internal/http/middlewares"
)

// AuthRouterDeps contiene las dependencias para el router de auth.
type AuthRouterDeps struct {
	Controllers *ctrl.Controllers
	Auth        mw.TokenParser // para validate-token
}

// RegisterAuthRoutes registra las rutas de /api/auth.
func RegisterAuthRoutes(r chi.Router, deps AuthRouterDeps) {
	c := deps.Controllers

	r.Route("/api/auth", func(r chi.Router) {
		// POST /api/auth/register
		r.Method(http.MethodPost, "/register", publicHandler(http.HandlerFunc(c.Register.Register)))

		// POST /api/auth/verify-otp
		r.Method(http.MethodPost, "/verify-otp", publicHandler(http.HandlerFunc(c.Register.VerifyOTP)))

		// POST /api/auth/login
		r.Method(http.MethodPost, "/login", publicHandler(http.HandlerFunc(c.Login.Login)))

		// POST /api/auth/forgot-password/{request-otp,verify-otp,reset}
		r.Route("/forgot-password", func(r chi.Router) {
			r.Method(http.MethodPost, "/request-otp", publicHandler(http.HandlerFunc(c.ForgotPassword.RequestOTP)))
			r.Method(http.MethodPost, "/verify-otp", publicHandler(http.HandlerFunc(c.ForgotPassword.VerifyOTP)))
			r.Method(http.MethodPost, "/reset", publicHandler(http.HandlerFunc(c.ForgotPassword.Reset)))
		})

		// GET /api/auth/validate-token (requires auth)
		r.Method(http.MethodGet, "/validate-token", authedHandler(deps.Auth, http.HandlerFunc(c.Token.Validate)))
	})
}
