// Package auth contiene los services de registro, login y recuperación de password.
package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/dropDatabas3/mailgate/internal/domain/repository"
	"github.com/dropDatabas3/mailgate/internal/email"
	jwtx "github.com/dropDatabas3/mailgate/internal/jwt"
	"github.com/dropDatabas3/mailgate/internal/security/otp"
	"github.com/dropDatabas3/mailgate/internal/security/password"
)

// Errores de los services auth (sentinel). Los controllers los mapean a AppError.
var (
	ErrMissingFields       = errors.New("missing required fields")
	ErrCredentialsRequired = errors.New("email and password are required")
	ErrPasswordMismatch    = errors.New("passwords do not match")
	ErrInvalidOTP          = errors.New("invalid or expired otp")
	ErrOTPNotVerified      = errors.New("otp not verified")
	ErrUserExists          = errors.New("user already exists")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrUserNotFound        = errors.New("user not found or not verified")
	ErrOTPDelivery         = errors.New("otp delivery failed")
)

// Asuntos de los emails de OTP.
const (
	SubjectRegistrationOTP = "Your OTP for registration"
	SubjectResetOTP        = "Your OTP to reset password"
)

// TokenIssuer emite access tokens. Implementado por *jwt.Issuer.
type TokenIssuer interface {
	IssueAccess(sub string) (string, time.Time, error)
}

var _ TokenIssuer = (*jwtx.Issuer)(nil)

// Deps contiene las dependencias de los services auth.
type Deps struct {
	Users  repository.UserRepository
	OTPs   repository.OTPRepository
	Mailer email.Sender
	Issuer TokenIssuer

	HashParams  password.Params  // zero value = password.Default
	GenerateOTP otp.Generator    // nil = otp.Generate
	Now         func() time.Time // nil = time.Now

	OTPTTL      time.Duration // default 15m
	OTPFromName string        // display name de los emails de OTP

	// ConsumeOTPOnVerify marca el OTP como usado al verificarlo.
	ConsumeOTPOnVerify bool
	// RequireVerifiedOTPForReset exige un OTP de forgot-password verificado
	// antes de aceptar reset-password.
	RequireVerifiedOTPForReset bool
}

// Services agrupa los services del dominio auth.
type Services struct {
	Register RegisterService
	Login    LoginService
	Password PasswordService
}

// NewServices crea el agregador de services auth.
func NewServices(d Deps) Services {
	return Services{
		Register: NewRegisterService(d),
		Login:    NewLoginService(d),
		Password: NewPasswordService(d),
	}
}

func (d Deps) withDefaults() Deps {
	if d.HashParams == (password.Params{}) {
		d.HashParams = password.Default
	}
	if d.GenerateOTP == nil {
		d.GenerateOTP = otp.Generate
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.OTPTTL <= 0 {
		d.OTPTTL = 15 * time.Minute
	}
	return d
}

func (d Deps) now() time.Time {
	return d.Now().UTC()
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
