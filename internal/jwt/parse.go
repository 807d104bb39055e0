package jwt

import (
	"errors"

	jwtv5 "github.com/golang-jwt/jwt/v5"
)

// Claims son las claims validadas de un access token.
type Claims struct {
	jwtv5.RegisteredClaims
}

// Email devuelve el sujeto del token (el email del usuario).
func (c *Claims) Email() string {
	return c.Subject
}

// Parse valida firma HS256, iss, aud y exp/nbf sin tolerancia de reloj.
func (i *Issuer) Parse(raw string) (*Claims, error) {
	var claims Claims
	tok, err := jwtv5.ParseWithClaims(raw, &claims, i.Keyfunc(),
		jwtv5.WithValidMethods([]string{jwtv5.SigningMethodHS256.Alg()}),
		jwtv5.WithIssuer(i.Iss),
		jwtv5.WithAudience(i.Aud),
		jwtv5.WithExpirationRequired(),
		jwtv5.WithTimeFunc(i.now),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwtv5.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwtv5.ErrTokenInvalidIssuer):
			return nil, ErrInvalidIssuer
		case errors.Is(err, jwtv5.ErrTokenInvalidAudience):
			return nil, ErrInvalidAud
		default:
			return nil, ErrInvalidToken
		}
	}
	if !tok.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}
