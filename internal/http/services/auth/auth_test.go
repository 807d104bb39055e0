package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dropDatabas3/mailgate/internal/domain/repository"
	dto "github.com/dropDatabas3/mailgate/internal/http/dto/auth"
	"github.com/dropDatabas3/mailgate/internal/security/password"
)

var ctx = context.Background()

func register(t *testing.T, f *fixture, addr, pw string) {
	t.Helper()
	s := f.services()
	require.NoError(t, s.Register.Register(ctx, dto.RegisterRequest{Email: addr, Password: pw, ConfirmPassword: pw}))
	require.NoError(t, s.Register.VerifyOTP(ctx, dto.VerifyOTPRequest{Email: addr, OTP: f.code, Password: pw, ConfirmPassword: pw}))
}

func TestRegister_IssuesOTPAndSendsEmail(t *testing.T) {
	f := newFixture()
	err := f.services().Register.Register(ctx, dto.RegisterRequest{
		Email: "  Ana@Corp.io ", Password: "s3cret", ConfirmPassword: "s3cret",
	})
	require.NoError(t, err)

	row := f.otps.last()
	assert.Equal(t, "ana@corp.io", row.Email)
	assert.Equal(t, repository.OTPPurposeRegistration, row.Purpose)
	assert.Equal(t, f.now.Add(15*time.Minute), row.ExpiresAt)
	assert.False(t, row.Used)

	require.Len(t, f.mailer.sent, 1)
	m := f.mailer.sent[0]
	assert.Equal(t, []string{"ana@corp.io"}, m.To)
	assert.Equal(t, "Your OTP for registration", m.Subject)
	assert.Equal(t, "Your OTP is: 123456", m.TextBody)
	assert.Equal(t, "Datanova", m.FromName)

	_, err = f.users.GetByEmail(ctx, "ana@corp.io")
	assert.ErrorIs(t, err, repository.ErrNotFound, "register must not create the user")
}

func TestRegister_Validation(t *testing.T) {
	f := newFixture()
	s := f.services()

	err := s.Register.Register(ctx, dto.RegisterRequest{Email: "a@corp.io", Password: " ", ConfirmPassword: " "})
	assert.ErrorIs(t, err, ErrMissingFields)

	err = s.Register.Register(ctx, dto.RegisterRequest{Email: "a@corp.io", Password: "x", ConfirmPassword: "y"})
	assert.ErrorIs(t, err, ErrPasswordMismatch)

	assert.Empty(t, f.otps.rows)
	assert.Empty(t, f.mailer.sent)
}

func TestRegister_DeliveryFailureKeepsOTPRow(t *testing.T) {
	f := newFixture()
	f.mailer.err = errSMTP

	err := f.services().Register.Register(ctx, dto.RegisterRequest{Email: "a@corp.io", Password: "x", ConfirmPassword: "x"})
	require.ErrorIs(t, err, ErrOTPDelivery)
	assert.ErrorIs(t, err, errSMTP)
	assert.Len(t, f.otps.rows, 1)
}

func TestVerifyOTP_CreatesVerifiedUser(t *testing.T) {
	f := newFixture()
	s := f.services()
	require.NoError(t, s.Register.Register(ctx, dto.RegisterRequest{Email: "a@corp.io", Password: "pw", ConfirmPassword: "pw"}))

	err := s.Register.VerifyOTP(ctx, dto.VerifyOTPRequest{
		Email: "a@corp.io", OTP: " 123456 ", Password: "pw", ConfirmPassword: "pw", Name: "Ana",
	})
	require.NoError(t, err)

	u, err := f.users.GetByEmail(ctx, "a@corp.io")
	require.NoError(t, err)
	assert.True(t, u.IsVerified)
	assert.Equal(t, "Ana", u.DisplayName)
	assert.Equal(t, f.now, u.CreatedAt)
	assert.True(t, password.Verify("pw", u.PasswordHash))
	assert.True(t, f.otps.last().Used)
}

func TestVerifyOTP_Order(t *testing.T) {
	f := newFixture()
	s := f.services()
	require.NoError(t, s.Register.Register(ctx, dto.RegisterRequest{Email: "a@corp.io", Password: "pw", ConfirmPassword: "pw"}))

	// código incorrecto gana sobre passwords distintos
	err := s.Register.VerifyOTP(ctx, dto.VerifyOTPRequest{Email: "a@corp.io", OTP: "999999", Password: "a", ConfirmPassword: "b"})
	assert.ErrorIs(t, err, ErrInvalidOTP)

	err = s.Register.VerifyOTP(ctx, dto.VerifyOTPRequest{Email: "a@corp.io", OTP: f.code, Password: "a", ConfirmPassword: "b"})
	assert.ErrorIs(t, err, ErrPasswordMismatch)
	assert.False(t, f.otps.last().Used, "failed verification must not consume the otp")

	f.users.put("a@corp.io", "x", true)
	err = s.Register.VerifyOTP(ctx, dto.VerifyOTPRequest{Email: "a@corp.io", OTP: f.code, Password: "pw", ConfirmPassword: "pw"})
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestVerifyOTP_Expired(t *testing.T) {
	f := newFixture()
	s := f.services()
	require.NoError(t, s.Register.Register(ctx, dto.RegisterRequest{Email: "a@corp.io", Password: "pw", ConfirmPassword: "pw"}))

	f.now = f.now.Add(15 * time.Minute)
	err := s.Register.VerifyOTP(ctx, dto.VerifyOTPRequest{Email: "a@corp.io", OTP: f.code, Password: "pw", ConfirmPassword: "pw"})
	assert.ErrorIs(t, err, ErrInvalidOTP)
}

func TestVerifyOTP_WrongPurpose(t *testing.T) {
	f := newFixture()
	s := f.services()
	require.NoError(t, s.Password.RequestOTP(ctx, dto.ForgotPasswordRequest{Email: "a@corp.io"}))

	err := s.Register.VerifyOTP(ctx, dto.VerifyOTPRequest{Email: "a@corp.io", OTP: f.code, Password: "pw", ConfirmPassword: "pw"})
	assert.ErrorIs(t, err, ErrInvalidOTP)
}

func TestVerifyOTP_StorageError(t *testing.T) {
	f := newFixture()
	boom := errors.New("db down")
	f.otps.failGet = boom

	err := f.services().Register.VerifyOTP(ctx, dto.VerifyOTPRequest{Email: "a@corp.io", OTP: f.code, Password: "pw", ConfirmPassword: "pw"})
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrInvalidOTP)
}

func TestLogin(t *testing.T) {
	f := newFixture()
	register(t, f, "ana@corp.io", "pw")
	f.users.put("pending@corp.io", mustHash(t, "pw"), false)

	s := f.services()
	res, err := s.Login.Login(ctx, dto.LoginRequest{Email: "ANA@corp.io", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, f.now.Add(time.Hour), res.ExpiresAt)

	claims, err := f.issuer.Parse(res.Token)
	require.NoError(t, err)
	assert.Equal(t, "ana@corp.io", claims.Email())

	for _, in := range []dto.LoginRequest{
		{Email: "ana@corp.io", Password: "wrong"},
		{Email: "ghost@corp.io", Password: "pw"},
		{Email: "pending@corp.io", Password: "pw"},
	} {
		_, err := s.Login.Login(ctx, in)
		assert.ErrorIs(t, err, ErrInvalidCredentials, in.Email)
	}

	_, err = s.Login.Login(ctx, dto.LoginRequest{Email: "ana@corp.io"})
	assert.ErrorIs(t, err, ErrCredentialsRequired)
}

func TestLogin_UpgradesBcryptHash(t *testing.T) {
	f := newFixture()
	legacy, err := bcrypt.GenerateFromPassword([]byte("pw"), bcrypt.MinCost)
	require.NoError(t, err)
	f.users.put("old@corp.io", string(legacy), true)

	_, err = f.services().Login.Login(ctx, dto.LoginRequest{Email: "old@corp.io", Password: "pw"})
	require.NoError(t, err)

	u, err := f.users.GetByEmail(ctx, "old@corp.io")
	require.NoError(t, err)
	assert.False(t, password.NeedsRehash(fastParams, u.PasswordHash))
	assert.True(t, password.Verify("pw", u.PasswordHash))
}

func TestForgotPassword_Flow(t *testing.T) {
	f := newFixture()
	register(t, f, "ana@corp.io", "old")
	s := f.services()

	require.NoError(t, s.Password.RequestOTP(ctx, dto.ForgotPasswordRequest{Email: "ana@corp.io"}))
	m := f.mailer.sent[len(f.mailer.sent)-1]
	assert.Equal(t, "Your OTP to reset password", m.Subject)
	assert.Equal(t, repository.OTPPurposeForgotPassword, f.otps.last().Purpose)

	require.NoError(t, s.Password.VerifyOTP(ctx, dto.VerifyForgotPasswordOTPRequest{Email: "ana@corp.io", OTP: f.code}))
	// ya consumido
	assert.ErrorIs(t, s.Password.VerifyOTP(ctx, dto.VerifyForgotPasswordOTPRequest{Email: "ana@corp.io", OTP: f.code}), ErrInvalidOTP)

	require.NoError(t, s.Password.Reset(ctx, dto.ResetPasswordRequest{Email: "ana@corp.io", NewPassword: "new", ConfirmPassword: "new"}))

	_, err := s.Login.Login(ctx, dto.LoginRequest{Email: "ana@corp.io", Password: "new"})
	require.NoError(t, err)
}

func TestForgotPassword_RequestDoesNotRequireUser(t *testing.T) {
	f := newFixture()
	require.NoError(t, f.services().Password.RequestOTP(ctx, dto.ForgotPasswordRequest{Email: "nobody@corp.io"}))
	assert.Len(t, f.mailer.sent, 1)

	f.mailer.err = errSMTP
	err := f.services().Password.RequestOTP(ctx, dto.ForgotPasswordRequest{Email: "nobody@corp.io"})
	assert.ErrorIs(t, err, ErrOTPDelivery)
}

func TestReset_Errors(t *testing.T) {
	f := newFixture()
	f.users.put("pending@corp.io", mustHash(t, "pw"), false)
	s := f.services()

	err := s.Password.Reset(ctx, dto.ResetPasswordRequest{Email: "a@corp.io", NewPassword: "x", ConfirmPassword: "y"})
	assert.ErrorIs(t, err, ErrPasswordMismatch)

	err = s.Password.Reset(ctx, dto.ResetPasswordRequest{Email: "ghost@corp.io", NewPassword: "x", ConfirmPassword: "x"})
	assert.ErrorIs(t, err, ErrUserNotFound)

	err = s.Password.Reset(ctx, dto.ResetPasswordRequest{Email: "pending@corp.io", NewPassword: "x", ConfirmPassword: "x"})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestReset_RequireVerifiedOTP(t *testing.T) {
	f := newFixture(func(d *Deps) {
		d.ConsumeOTPOnVerify = false
		d.RequireVerifiedOTPForReset = true
	})
	register(t, f, "ana@corp.io", "old")
	s := f.services()

	in := dto.ResetPasswordRequest{Email: "ana@corp.io", NewPassword: "new", ConfirmPassword: "new"}
	assert.ErrorIs(t, s.Password.Reset(ctx, in), ErrOTPNotVerified)

	require.NoError(t, s.Password.RequestOTP(ctx, dto.ForgotPasswordRequest{Email: "ana@corp.io"}))
	require.NoError(t, s.Password.VerifyOTP(ctx, dto.VerifyForgotPasswordOTPRequest{Email: "ana@corp.io", OTP: f.code}))
	require.NoError(t, s.Password.Reset(ctx, in))
}

func TestOTPNotConsumedWhenDisabled(t *testing.T) {
	f := newFixture(func(d *Deps) { d.ConsumeOTPOnVerify = false })
	s := f.services()
	require.NoError(t, s.Password.RequestOTP(ctx, dto.ForgotPasswordRequest{Email: "a@corp.io"}))

	in := dto.VerifyForgotPasswordOTPRequest{Email: "a@corp.io", OTP: f.code}
	require.NoError(t, s.Password.VerifyOTP(ctx, in))
	require.NoError(t, s.Password.VerifyOTP(ctx, in))
}

func mustHash(t *testing.T, pw string) string {
	t.Helper()
	h, err := password.Hash(fastParams, pw)
	require.NoError(t, err)
	return h
}

func TestVerifyOTP_MalformedCodeSkipsLookup(t *testing.T) {
	f := newFixture()
	s := f.services()

	for _, code := range []string{"", "12345", "1234567", "12a456", "012345"} {
		err := s.Register.VerifyOTP(ctx, dto.VerifyOTPRequest{Email: "a@corp.io", OTP: code, Password: "pw", ConfirmPassword: "pw"})
		assert.ErrorIs(t, err, ErrInvalidOTP, code)

		err = s.Password.VerifyOTP(ctx, dto.VerifyForgotPasswordOTPRequest{Email: "a@corp.io", OTP: code})
		assert.ErrorIs(t, err, ErrInvalidOTP, code)
	}
	assert.Zero(t, f.otps.finds)
}
