package repository

import (
	"context"
	"time"
)

// OTPPurpose distingue los dos flujos que emiten códigos.
type OTPPurpose string

const (
	OTPPurposeRegistration   OTPPurpose = "registration"
	OTPPurposeForgotPassword OTPPurpose = "forgot-password"
)

// Valid indica si el propósito es uno de los conocidos.
func (p OTPPurpose) Valid() bool {
	return p == OTPPurposeRegistration || p == OTPPurposeForgotPassword
}

// OTPEntry es un código emitido. Cada emisión es una fila nueva.
type OTPEntry struct {
	ID        int64
	Email     string
	Code      string
	Purpose   OTPPurpose
	ExpiresAt time.Time
	Used      bool
	CreatedAt time.Time
}

// CreateOTPInput contiene los datos de una emisión.
type CreateOTPInput struct {
	Email     string
	Code      string
	Purpose   OTPPurpose
	ExpiresAt time.Time
	CreatedAt time.Time
}

// OTPRepository define operaciones sobre la tabla email_otp.
type OTPRepository interface {
	// Create inserta una fila nueva con used=false.
	Create(ctx context.Context, in CreateOTPInput) (*OTPEntry, error)

	// FindValid retorna una fila con (email, code, purpose), used=false y
	// expires_at > now. Retorna ErrNotFound si no hay ninguna.
	FindValid(ctx context.Context, email, code string, purpose OTPPurpose, now time.Time) (*OTPEntry, error)

	// MarkUsed marca la fila como usada. ErrNotFound si ya estaba usada.
	MarkUsed(ctx context.Context, id int64) error

	// HasConsumed indica si existe una fila usada y no vencida para
	// (email, purpose).
	HasConsumed(ctx context.Context, email string, purpose OTPPurpose, now time.Time) (bool, error)

	// Purge borra filas (usadas o no) con expires_at <= before. Retorna cuántas borró.
	Purge(ctx context.Context, before time.Time) (int64, error)
}
