// Package auth contiene los DTOs de /api/auth.
package auth

import "time"

// RegisterRequest es el body de POST /api/auth/register.
type RegisterRequest struct {
	Email           string `json:"email" validate:"notblank"`
	Password        string `json:"password" validate:"notblank"`
	ConfirmPassword string `json:"confirmPassword" validate:"notblank"`
}

// VerifyOTPRequest es el body de POST /api/auth/verify-otp.
type VerifyOTPRequest struct {
	Email           string `json:"email"`
	OTP             string `json:"otp"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	Name            string `json:"name,omitempty"`
}

// LoginRequest es el body de POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"notblank"`
	Password string `json:"password" validate:"notblank"`
}

// LoginResponse devuelve el access token.
type LoginResponse struct {
	Token string `json:"token"`
}

// ForgotPasswordRequest es el body de POST /api/auth/forgot-password/request-otp.
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// VerifyForgotPasswordOTPRequest es el body de POST /api/auth/forgot-password/verify-otp.
type VerifyForgotPasswordOTPRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

// ResetPasswordRequest es el body de POST /api/auth/forgot-password/reset.
type ResetPasswordRequest struct {
	Email           string `json:"email"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

// LoginResult es el resultado interno de LoginService.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
}
