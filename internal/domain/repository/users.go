package repository

import (
	"context"
	"time"
)

// User es una cuenta registrada. Nunca se borra.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	IsVerified   bool
	DisplayName  string // opcional
	CreatedAt    time.Time
}

// CreateUserInput contiene los datos para crear un usuario ya verificado.
type CreateUserInput struct {
	Email        string
	PasswordHash string
	DisplayName  string
	CreatedAt    time.Time
}

// UserRepository define operaciones sobre la tabla users.
type UserRepository interface {
	// GetByEmail busca por email exacto.
	// Retorna ErrNotFound si no existe.
	GetByEmail(ctx context.Context, email string) (*User, error)

	// ExistsByEmail indica si ya hay una cuenta con ese email.
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// Create inserta un usuario con is_verified=true.
	// Retorna ErrConflict si el email ya existe.
	Create(ctx context.Context, in CreateUserInput) (*User, error)

	// UpdatePasswordHash cambia el hash solo de usuarios verificados.
	// Retorna ErrNotFound si ninguna fila coincide.
	UpdatePasswordHash(ctx context.Context, email, hash string) error
}
