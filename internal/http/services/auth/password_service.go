package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dropDatabas3/mailgate/internal/domain/repository"
	dto "github.com/dropDatabas3/mailgate/internal/http/dto/auth"
	"github.com/dropDatabas3/mailgate/internal/observability/logger"
	"github.com/dropDatabas3/mailgate/internal/security/otp"
	"github.com/dropDatabas3/mailgate/internal/security/password"
)

// PasswordService cubre el flujo forgot-password: pedir OTP, verificarlo, resetear.
type PasswordService interface {
	RequestOTP(ctx context.Context, in dto.ForgotPasswordRequest) error
	VerifyOTP(ctx context.Context, in dto.VerifyForgotPasswordOTPRequest) error
	Reset(ctx context.Context, in dto.ResetPasswordRequest) error
}

type passwordService struct {
	deps Deps
	otp  *otpIssuer
}

// NewPasswordService crea el service de recuperación de password.
func NewPasswordService(d Deps) PasswordService {
	d = d.withDefaults()
	return &passwordService{deps: d, otp: newOTPIssuer(d)}
}

// RequestOTP envía un OTP de forgot-password. No verifica que el usuario exista.
func (s *passwordService) RequestOTP(ctx context.Context, in dto.ForgotPasswordRequest) error {
	addr := normalizeEmail(in.Email)
	if addr == "" {
		return ErrMissingFields
	}

	logger.From(ctx).Info("sending forgot-password otp",
		logger.Layer("service"),
		logger.Component("auth.password"),
		logger.Op("RequestOTP"),
		logger.Email(addr),
	)
	return s.otp.issue(ctx, addr, repository.OTPPurposeForgotPassword, SubjectResetOTP)
}

func (s *passwordService) VerifyOTP(ctx context.Context, in dto.VerifyForgotPasswordOTPRequest) error {
	addr := normalizeEmail(in.Email)
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("auth.password"),
		logger.Op("VerifyOTP"),
		logger.Email(addr),
	)

	code := strings.TrimSpace(in.OTP)
	if !otp.Valid(code) {
		log.Warn("malformed forgot-password otp")
		return ErrInvalidOTP
	}
	entry, err := s.deps.OTPs.FindValid(ctx, addr, code, repository.OTPPurposeForgotPassword, s.deps.now())
	if err != nil {
		if repository.IsNotFound(err) {
			log.Warn("invalid or expired forgot-password otp")
			return ErrInvalidOTP
		}
		return fmt.Errorf("find otp: %w", err)
	}

	// con reset protegido el OTP verificado es la credencial del paso siguiente
	if s.deps.ConsumeOTPOnVerify || s.deps.RequireVerifiedOTPForReset {
		if err := s.deps.OTPs.MarkUsed(ctx, entry.ID); err != nil {
			if repository.IsNotFound(err) {
				log.Warn("otp consumed concurrently")
				return ErrInvalidOTP
			}
			return fmt.Errorf("mark otp used: %w", err)
		}
	}

	log.Info("forgot-password otp verified")
	return nil
}

func (s *passwordService) Reset(ctx context.Context, in dto.ResetPasswordRequest) error {
	addr := normalizeEmail(in.Email)
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("auth.password"),
		logger.Op("Reset"),
		logger.Email(addr),
	)

	if in.NewPassword != in.ConfirmPassword {
		log.Warn("password reset failed: passwords do not match")
		return ErrPasswordMismatch
	}

	if s.deps.RequireVerifiedOTPForReset {
		ok, err := s.deps.OTPs.HasConsumed(ctx, addr, repository.OTPPurposeForgotPassword, s.deps.now())
		if err != nil {
			return fmt.Errorf("check otp: %w", err)
		}
		if !ok {
			log.Warn("password reset failed: otp not verified")
			return ErrOTPNotVerified
		}
	}

	hash, err := password.Hash(s.deps.HashParams, in.NewPassword)
	if err != nil {
		if errors.Is(err, password.ErrEmptyPassword) {
			return ErrMissingFields
		}
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.deps.Users.UpdatePasswordHash(ctx, addr, hash); err != nil {
		if repository.IsNotFound(err) {
			log.Warn("password reset failed: user not found or not verified")
			return ErrUserNotFound
		}
		return fmt.Errorf("update password: %w", err)
	}

	log.Info("password reset successful")
	return nil
}
