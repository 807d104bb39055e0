package middlewares

import (
	"context"

	jwtx "github.com/dropDatabas3/mailgate/internal/jwt"
)

type ctxKey string

const (
	ctxClaimsKey    ctxKey = "claims"
	ctxRequestIDKey ctxKey = "request_id"
)

// WithClaims inyecta las claims validadas en el contexto.
func WithClaims(ctx context.Context, c *jwtx.Claims) context.Context {
	return context.WithValue(ctx, ctxClaimsKey, c)
}

func setRequestID(ctx context.Context, rid string) context.Context {
	return context.WithValue(ctx, ctxRequestIDKey, rid)
}

// GetClaims devuelve las claims o nil si la ruta no pasó por RequireAuth.
func GetClaims(ctx context.Context) *jwtx.Claims {
	c, _ := ctx.Value(ctxClaimsKey).(*jwtx.Claims)
	return c
}

// GetUserEmail devuelve el sub del token o "".
func GetUserEmail(ctx context.Context) string {
	if c := GetClaims(ctx); c != nil {
		return c.Email()
	}
	return ""
}

// GetRequestID devuelve el request ID o "".
func GetRequestID(ctx context.Context) string {
	s, _ := ctx.Value(ctxRequestIDKey).(string)
	return s
}
