// Package auth contiene los controllers de /api/auth.
package auth

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	httperrors "github.com/dropDatabas3/mailgate/internal/http/errors"
	svc "github.com/dropDatabas3/mailgate/internal/http/services/auth"
	"github.com/dropDatabas3/mailgate/internal/observability/logger"
)

// Controllers agrupa los controllers del dominio auth.
type Controllers struct {
	Register       *RegisterController
	Login          *LoginController
	ForgotPassword *ForgotPasswordController
	Token          *TokenController
}

// NewControllers crea el agregador de controllers auth.
func NewControllers(s svc.Services) *Controllers {
	return &Controllers{
		Register:       NewRegisterController(s.Register),
		Login:          NewLoginController(s.Login),
		ForgotPassword: NewForgotPasswordController(s.Password),
		Token:          NewTokenController(),
	}
}

func requirePost(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		httperrors.WriteError(w, httperrors.ErrMethodNotAllowed)
		return false
	}
	return true
}

// handleServiceError mapea errores del service a respuestas HTTP.
// deliveryErr es el AppError de fallo de envío propio de cada endpoint.
func handleServiceError(w http.ResponseWriter, err error, log *zap.Logger, deliveryErr *httperrors.AppError) {
	switch {
	case errors.Is(err, svc.ErrMissingFields):
		httperrors.WriteError(w, httperrors.ErrAllFieldsRequired)
	case errors.Is(err, svc.ErrCredentialsRequired):
		httperrors.WriteError(w, httperrors.ErrCredentialsRequired)
	case errors.Is(err, svc.ErrPasswordMismatch):
		httperrors.WriteError(w, httperrors.ErrPasswordMismatch)
	case errors.Is(err, svc.ErrInvalidOTP):
		httperrors.WriteError(w, httperrors.ErrInvalidOTP)
	case errors.Is(err, svc.ErrOTPNotVerified):
		httperrors.WriteError(w, httperrors.ErrOTPNotVerified)
	case errors.Is(err, svc.ErrUserExists):
		httperrors.WriteError(w, httperrors.ErrUserExists)
	case errors.Is(err, svc.ErrInvalidCredentials):
		httperrors.WriteError(w, httperrors.ErrInvalidCredentials)
	case errors.Is(err, svc.ErrUserNotFound):
		httperrors.WriteError(w, httperrors.ErrUserNotFoundOrUnverified)
	case errors.Is(err, svc.ErrOTPDelivery):
		log.Error("otp delivery failed", logger.Err(err))
		if deliveryErr == nil {
			deliveryErr = httperrors.ErrRegistrationOTPDelivery
		}
		httperrors.WriteError(w, deliveryErr.WithCause(err))
	default:
		log.Error("auth service error", logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrInternalServerError.WithCause(err))
	}
}
