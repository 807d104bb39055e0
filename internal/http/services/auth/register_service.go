package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dropDatabas3/mailgate/internal/domain/repository"
	dto "github.com/dropDatabas3/mailgate/internal/http/dto/auth"
	"github.com/dropDatabas3/mailgate/internal/http/helpers"
	"github.com/dropDatabas3/mailgate/internal/observability/logger"
	"github.com/dropDatabas3/mailgate/internal/security/otp"
	"github.com/dropDatabas3/mailgate/internal/security/password"
)

// RegisterService cubre el alta en dos pasos: pedir OTP y confirmarlo.
type RegisterService interface {
	// Register valida el request y envía un OTP de registro. No crea el usuario.
	Register(ctx context.Context, in dto.RegisterRequest) error
	// VerifyOTP valida el OTP y crea el usuario verificado.
	VerifyOTP(ctx context.Context, in dto.VerifyOTPRequest) error
}

type registerService struct {
	deps Deps
	otp  *otpIssuer
}

// NewRegisterService crea el service de registro.
func NewRegisterService(d Deps) RegisterService {
	d = d.withDefaults()
	return &registerService{deps: d, otp: newOTPIssuer(d)}
}

func (s *registerService) Register(ctx context.Context, in dto.RegisterRequest) error {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("auth.register"),
		logger.Op("Register"),
	)

	in.Email = normalizeEmail(in.Email)
	if err := helpers.Validate(in); err != nil {
		log.Debug("register validation failed", logger.Err(err))
		return ErrMissingFields
	}
	if in.Password != in.ConfirmPassword {
		return ErrPasswordMismatch
	}

	log.Info("sending registration otp", logger.Email(in.Email))
	return s.otp.issue(ctx, in.Email, repository.OTPPurposeRegistration, SubjectRegistrationOTP)
}

func (s *registerService) VerifyOTP(ctx context.Context, in dto.VerifyOTPRequest) error {
	in.Email = normalizeEmail(in.Email)
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("auth.register"),
		logger.Op("VerifyOTP"),
		logger.Email(in.Email),
	)

	log.Info("verifying otp")
	code := strings.TrimSpace(in.OTP)
	if !otp.Valid(code) {
		log.Warn("malformed otp")
		return ErrInvalidOTP
	}
	entry, err := s.deps.OTPs.FindValid(ctx, in.Email, code, repository.OTPPurposeRegistration, s.deps.now())
	if err != nil {
		if repository.IsNotFound(err) {
			log.Warn("invalid or expired otp")
			return ErrInvalidOTP
		}
		return fmt.Errorf("find otp: %w", err)
	}

	if in.Password != in.ConfirmPassword {
		log.Warn("passwords do not match")
		return ErrPasswordMismatch
	}

	exists, err := s.deps.Users.ExistsByEmail(ctx, in.Email)
	if err != nil {
		return fmt.Errorf("check user: %w", err)
	}
	if exists {
		log.Warn("user already exists")
		return ErrUserExists
	}

	hash, err := password.Hash(s.deps.HashParams, in.Password)
	if err != nil {
		if errors.Is(err, password.ErrEmptyPassword) {
			return ErrMissingFields
		}
		return fmt.Errorf("hash password: %w", err)
	}

	if _, err := s.deps.Users.Create(ctx, repository.CreateUserInput{
		Email:        in.Email,
		PasswordHash: hash,
		DisplayName:  strings.TrimSpace(in.Name),
		CreatedAt:    s.deps.now(),
	}); err != nil {
		if repository.IsConflict(err) {
			log.Warn("user already exists")
			return ErrUserExists
		}
		return fmt.Errorf("create user: %w", err)
	}

	// el OTP se consume recién con el usuario creado
	if s.deps.ConsumeOTPOnVerify {
		if err := s.deps.OTPs.MarkUsed(ctx, entry.ID); err != nil {
			log.Warn("mark otp used failed", logger.Err(err))
		}
	}

	log.Info("registration successful")
	return nil
}
