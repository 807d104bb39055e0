package auth

import (
	"net/http"

	dto "github.com/dropDatabas3/mailgate/internal/http/dto/auth"
	httperrors "github.com/dropDatabas3/mailgate/internal/http/errors"
	"github.com/dropDatabas3/mailgate/internal/http/helpers"
	svc "github.com/dropDatabas3/mailgate/internal/http/services/auth"
	"github.com/dropDatabas3/mailgate/internal/observability/logger"
)

// ForgotPasswordController maneja /api/auth/forgot-password/*.
type ForgotPasswordController struct {
	service svc.PasswordService
}

// NewForgotPasswordController crea el controller de recuperación de password.
func NewForgotPasswordController(s svc.PasswordService) *ForgotPasswordController {
	return &ForgotPasswordController{service: s}
}

// RequestOTP maneja POST /api/auth/forgot-password/request-otp
func (c *ForgotPasswordController) RequestOTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("ForgotPasswordController.RequestOTP"))

	if !requirePost(w, r) {
		return
	}

	var req dto.ForgotPasswordRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}

	if err := c.service.RequestOTP(ctx, req); err != nil {
		handleServiceError(w, err, log, httperrors.ErrResetOTPDelivery)
		return
	}

	helpers.WriteMessage(w, http.StatusOK, "OTP sent to your registered email.")
}

// VerifyOTP maneja POST /api/auth/forgot-password/verify-otp
func (c *ForgotPasswordController) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("ForgotPasswordController.VerifyOTP"))

	if !requirePost(w, r) {
		return
	}

	var req dto.VerifyForgotPasswordOTPRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}

	if err := c.service.VerifyOTP(ctx, req); err != nil {
		handleServiceError(w, err, log, nil)
		return
	}

	helpers.WriteMessage(w, http.StatusOK, "OTP verified. Proceed to reset password.")
}

// Reset maneja POST /api/auth/forgot-password/reset
func (c *ForgotPasswordController) Reset(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("ForgotPasswordController.Reset"))

	if !requirePost(w, r) {
		return
	}

	var req dto.ResetPasswordRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}

	if err := c.service.Reset(ctx, req); err != nil {
		handleServiceError(w, err, log, nil)
		return
	}

	helpers.WriteMessage(w, http.StatusOK, "Password reset successfully.")
}
