package auth

import (
	"net/http"

	httperrors "github.com/dropDatabas3/mailgate/internal/http/errors"
	"github.com/dropDatabas3/mailgate/internal/http/helpers"
	"github.com/dropDatabas3/mailgate/internal/http/middlewares"
	"github.com/dropDatabas3/mailgate/internal/observability/logger"
)

// TokenController expone la validación del bearer token.
type TokenController struct{}

// NewTokenController crea el controller.
func NewTokenController() *TokenController {
	return &TokenController{}
}

// Validate maneja GET /api/auth/validate-token. Requiere RequireAuth antes.
func (c *TokenController) Validate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		httperrors.WriteError(w, httperrors.ErrMethodNotAllowed)
		return
	}

	sub := middlewares.GetUserEmail(ctx)
	if sub == "" {
		httperrors.WriteError(w, httperrors.ErrUnauthorized)
		return
	}

	logger.From(ctx).Info("validating token", logger.Layer("controller"), logger.Email(sub))
	helpers.WriteMessage(w, http.StatusOK, "Token is valid.")
}
