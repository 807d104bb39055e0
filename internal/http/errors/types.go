package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError es la forma estándar de los errores que cruzan la capa HTTP.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Detail     string `json:"detail,omitempty"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // causa, solo para logs
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New crea un AppError.
func New(status int, code, message string) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: status}
}

// Wrap crea un AppError envolviendo err.
func Wrap(err error, status int, code, message string) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: status, Err: err}
}

// FromError convierte err en AppError. Lo que no sea AppError es un 500.
func FromError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return ErrInternalServerError.WithCause(err)
}

// WithDetail devuelve una copia con Detail.
func (e *AppError) WithDetail(detail string) *AppError {
	cp := *e
	cp.Detail = detail
	return &cp
}

// WithCause devuelve una copia con la causa.
func (e *AppError) WithCause(err error) *AppError {
	cp := *e
	cp.Err = err
	return &cp
}

// =================================================================================
// ERRORES GENÉRICOS
// =================================================================================

var (
	ErrBadRequest = &AppError{
		Code:       "BAD_REQUEST",
		Message:    "The request is malformed or missing parameters.",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrInvalidJSON = &AppError{
		Code:       "INVALID_JSON",
		Message:    "The request body is not valid JSON.",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrBodyTooLarge = &AppError{
		Code:       "BODY_TOO_LARGE",
		Message:    "The request body exceeds the maximum allowed size.",
		HTTPStatus: http.StatusRequestEntityTooLarge,
	}

	ErrUnauthorized = &AppError{
		Code:       "UNAUTHORIZED",
		Message:    "Authentication is required.",
		HTTPStatus: http.StatusUnauthorized,
	}

	ErrTokenMissing = &AppError{
		Code:       "TOKEN_MISSING",
		Message:    "No bearer token was provided.",
		HTTPStatus: http.StatusUnauthorized,
	}

	ErrTokenInvalid = &AppError{
		Code:       "TOKEN_INVALID",
		Message:    "The access token is invalid.",
		HTTPStatus: http.StatusUnauthorized,
	}

	ErrTokenExpired = &AppError{
		Code:       "TOKEN_EXPIRED",
		Message:    "The access token has expired.",
		HTTPStatus: http.StatusUnauthorized,
	}

	ErrRouteNotFound = &AppError{
		Code:       "ROUTE_NOT_FOUND",
		Message:    "The requested route does not exist.",
		HTTPStatus: http.StatusNotFound,
	}

	ErrMethodNotAllowed = &AppError{
		Code:       "METHOD_NOT_ALLOWED",
		Message:    "The HTTP method is not allowed for this resource.",
		HTTPStatus: http.StatusMethodNotAllowed,
	}

	ErrInternalServerError = &AppError{
		Code:       "INTERNAL_SERVER_ERROR",
		Message:    "An internal server error occurred.",
		HTTPStatus: http.StatusInternalServerError,
	}

	ErrServiceUnavailable = &AppError{
		Code:       "SERVICE_UNAVAILABLE",
		Message:    "The service is temporarily unavailable.",
		HTTPStatus: http.StatusServiceUnavailable,
	}
)

// =================================================================================
// ERRORES DE AUTH
// =================================================================================

var (
	ErrAllFieldsRequired = &AppError{
		Code:       "MISSING_FIELDS",
		Message:    "All fields are required.",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrCredentialsRequired = &AppError{
		Code:       "MISSING_FIELDS",
		Message:    "Email and password are required.",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrPasswordMismatch = &AppError{
		Code:       "PASSWORD_MISMATCH",
		Message:    "Passwords do not match.",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrInvalidOTP = &AppError{
		Code:       "INVALID_OTP",
		Message:    "Invalid or expired OTP.",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrOTPNotVerified = &AppError{
		Code:       "OTP_NOT_VERIFIED",
		Message:    "OTP verification is required before resetting the password.",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrUserExists = &AppError{
		Code:       "USER_EXISTS",
		Message:    "User already exists.",
		HTTPStatus: http.StatusBadRequest,
	}

	// misma respuesta para usuario inexistente, no verificado o password incorrecto
	ErrInvalidCredentials = &AppError{
		Code:       "INVALID_CREDENTIALS",
		Message:    "Invalid credentials.",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrUserNotFoundOrUnverified = &AppError{
		Code:       "USER_NOT_FOUND",
		Message:    "User not found or not verified.",
		HTTPStatus: http.StatusNotFound,
	}

	ErrRegistrationOTPDelivery = &AppError{
		Code:       "OTP_DELIVERY_FAILED",
		Message:    "Failed to send OTP email.",
		HTTPStatus: http.StatusInternalServerError,
	}

	ErrResetOTPDelivery = &AppError{
		Code:       "OTP_DELIVERY_FAILED",
		Message:    "Failed to send OTP.",
		HTTPStatus: http.StatusInternalServerError,
	}
)
