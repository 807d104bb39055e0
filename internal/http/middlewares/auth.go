package middlewares

import (
	"errors"
	"net/http"
	"strings"

	httperrors "github.com/dropDatabas3/mailgate/internal/http/errors"
	jwtx "github.com/dropDatabas3/mailgate/internal/jwt"
	"github.com/dropDatabas3/mailgate/internal/observability/logger"
)

// TokenParser valida un bearer token crudo.
type TokenParser interface {
	Parse(raw string) (*jwtx.Claims, error)
}

// RequireAuth valida Authorization: Bearer <JWT> y guarda las claims en el
// contexto. Sin token o con token inválido responde 401.
func RequireAuth(parser TokenParser) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r)
			if !ok {
				w.Header().Set("WWW-Authenticate", `Bearer realm="api", error="invalid_token", error_description="missing bearer token"`)
				httperrors.WriteError(w, httperrors.ErrTokenMissing)
				return
			}

			claims, err := parser.Parse(raw)
			if err != nil {
				logger.From(r.Context()).Debug("bearer token rejected", logger.Op("RequireAuth"), logger.Err(err))
				w.Header().Set("WWW-Authenticate", `Bearer realm="api", error="invalid_token", error_description="`+err.Error()+`"`)
				if errors.Is(err, jwtx.ErrTokenExpired) {
					httperrors.WriteError(w, httperrors.ErrTokenExpired)
					return
				}
				httperrors.WriteError(w, httperrors.ErrTokenInvalid)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	ah := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(ah) < len("Bearer ") || !strings.EqualFold(ah[:len("Bearer ")], "Bearer ") {
		return "", false
	}
	raw := strings.TrimSpace(ah[len("Bearer "):])
	return raw, raw != ""
}
