package auth

import (
	"context"
	"fmt"

	"github.com/dropDatabas3/mailgate/internal/domain/repository"
	dto "github.com/dropDatabas3/mailgate/internal/http/dto/auth"
	"github.com/dropDatabas3/mailgate/internal/http/helpers"
	"github.com/dropDatabas3/mailgate/internal/observability/logger"
	"github.com/dropDatabas3/mailgate/internal/security/password"
)

// LoginService autentica por email/password y emite un access token.
type LoginService interface {
	Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResult, error)
}

type loginService struct {
	deps Deps
}

// NewLoginService crea el service de login.
func NewLoginService(d Deps) LoginService {
	return &loginService{deps: d.withDefaults()}
}

func (s *loginService) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResult, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("auth.login"),
		logger.Op("Login"),
	)

	in.Email = normalizeEmail(in.Email)
	if err := helpers.Validate(in); err != nil {
		log.Warn("login failed: email or password missing")
		return nil, ErrCredentialsRequired
	}
	log = log.With(logger.Email(in.Email))
	log.Info("login attempt")

	user, err := s.deps.Users.GetByEmail(ctx, in.Email)
	if err != nil {
		if repository.IsNotFound(err) {
			log.Warn("login failed: unknown user")
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	if !user.IsVerified {
		log.Warn("login failed: user not verified")
		return nil, ErrInvalidCredentials
	}
	if !password.Verify(in.Password, user.PasswordHash) {
		log.Warn("login failed: bad password")
		return nil, ErrInvalidCredentials
	}

	token, exp, err := s.deps.Issuer.IssueAccess(user.Email)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	// cuentas importadas con bcrypt pasan a argon2id en el primer login
	if password.NeedsRehash(s.deps.HashParams, user.PasswordHash) {
		s.rehash(ctx, user.Email, in.Password)
	}

	log.Info("login successful")
	return &dto.LoginResult{Token: token, ExpiresAt: exp}, nil
}

func (s *loginService) rehash(ctx context.Context, addr, plain string) {
	log := logger.From(ctx).With(logger.Component("auth.login"), logger.Op("rehash"), logger.Email(addr))

	hash, err := password.Hash(s.deps.HashParams, plain)
	if err != nil {
		log.Warn("rehash failed", logger.Err(err))
		return
	}
	if err := s.deps.Users.UpdatePasswordHash(ctx, addr, hash); err != nil {
		log.Warn("rehash update failed", logger.Err(err))
		return
	}
	log.Debug("password hash upgraded")
}
