package jwt

import (
	"errors"
	"fmt"
	"strings"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
)

// MinKeyLen es el mínimo de bytes aceptado para la clave HMAC.
const MinKeyLen = 32

var (
	ErrKeyTooShort   = errors.New("jwt key must be at least 32 bytes")
	ErrEmptySubject  = errors.New("empty subject")
	ErrInvalidToken  = errors.New("invalid_jwt")
	ErrTokenExpired  = errors.New("token_expired")
	ErrInvalidIssuer = errors.New("invalid_issuer")
	ErrInvalidAud    = errors.New("invalid_audience")
)

// Issuer firma y valida access tokens HS256 con una clave simétrica.
type Issuer struct {
	Iss       string        // "iss"
	Aud       string        // "aud"
	AccessTTL time.Duration // default 1h

	key []byte
	now func() time.Time
}

// NewIssuer crea un Issuer. La clave debe tener al menos MinKeyLen bytes.
func NewIssuer(key []byte, iss, aud string, ttl time.Duration) (*Issuer, error) {
	if len(key) < MinKeyLen {
		return nil, ErrKeyTooShort
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Issuer{
		Iss:       iss,
		Aud:       aud,
		AccessTTL: ttl,
		key:       append([]byte(nil), key...),
		now:       time.Now,
	}, nil
}

// WithClock reemplaza el reloj (tests).
func (i *Issuer) WithClock(now func() time.Time) *Issuer {
	cp := *i
	cp.now = now
	return &cp
}

// IssueAccess emite un Access Token con sub=email e iss/aud/iat/nbf/exp.
func (i *Issuer) IssueAccess(sub string) (string, time.Time, error) {
	if strings.TrimSpace(sub) == "" {
		return "", time.Time{}, ErrEmptySubject
	}
	now := i.now().UTC().Truncate(time.Second)
	exp := now.Add(i.AccessTTL)

	claims := jwtv5.RegisteredClaims{
		Issuer:    i.Iss,
		Subject:   sub,
		Audience:  jwtv5.ClaimStrings{i.Aud},
		IssuedAt:  jwtv5.NewNumericDate(now),
		NotBefore: jwtv5.NewNumericDate(now),
		ExpiresAt: jwtv5.NewNumericDate(exp),
	}
	tk := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims)
	tk.Header["typ"] = "JWT"

	signed, err := tk.SignedString(i.key)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign access token: %w", err)
	}
	return signed, exp, nil
}

// Keyfunc devuelve la clave HMAC para jwtv5.Parse.
func (i *Issuer) Keyfunc() jwtv5.Keyfunc {
	return func(t *jwtv5.Token) (any, error) {
		if _, ok := t.Method.(*jwtv5.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return i.key, nil
	}
}
