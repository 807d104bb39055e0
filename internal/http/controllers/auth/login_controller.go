package auth

import (
	"net/http"

	dto "github.com/dropDatabas3/mailgate/internal/http/dto/auth"
	"github.com/dropDatabas3/mailgate/internal/http/helpers"
	svc "github.com/dropDatabas3/mailgate/internal/http/services/auth"
	"github.com/dropDatabas3/mailgate/internal/observability/logger"
)

// LoginController maneja el login por password.
type LoginController struct {
	service svc.LoginService
}

// NewLoginController crea el controller de login.
func NewLoginController(s svc.LoginService) *LoginController {
	return &LoginController{service: s}
}

// Login maneja POST /api/auth/login
func (c *LoginController) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("LoginController.Login"))

	if !requirePost(w, r) {
		return
	}

	var req dto.LoginRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}

	res, err := c.service.Login(ctx, req)
	if err != nil {
		handleServiceError(w, err, log, nil)
		return
	}

	helpers.WriteJSON(w, http.StatusOK, dto.LoginResponse{Token: res.Token})
}
