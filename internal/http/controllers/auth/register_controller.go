package auth

import (
	"net/http"

	dto "github.com/dropDatabas3/mailgate/internal/http/dto/auth"
	httperrors "github.com/dropDatabas3/mailgate/internal/http/errors"
	"github.com/dropDatabas3/mailgate/internal/http/helpers"
	svc "github.com/dropDatabas3/mailgate/internal/http/services/auth"
	"github.com/dropDatabas3/mailgate/internal/observability/logger"
)

// RegisterController maneja el alta con OTP.
type RegisterController struct {
	service svc.RegisterService
}

// NewRegisterController crea el controller de registro.
func NewRegisterController(s svc.RegisterService) *RegisterController {
	return &RegisterController{service: s}
}

// Register maneja POST /api/auth/register
func (c *RegisterController) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("RegisterController.Register"))

	if !requirePost(w, r) {
		return
	}

	var req dto.RegisterRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}

	if err := c.service.Register(ctx, req); err != nil {
		handleServiceError(w, err, log, httperrors.ErrRegistrationOTPDelivery)
		return
	}

	helpers.WriteMessage(w, http.StatusOK, "OTP sent to your email.")
}

// VerifyOTP maneja POST /api/auth/verify-otp
func (c *RegisterController) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("RegisterController.VerifyOTP"))

	if !requirePost(w, r) {
		return
	}

	var req dto.VerifyOTPRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}

	if err := c.service.VerifyOTP(ctx, req); err != nil {
		handleServiceError(w, err, log, nil)
		return
	}

	helpers.WriteMessage(w, http.StatusOK, "Registration successful.")
}
