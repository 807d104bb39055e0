package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dropDatabas3/mailgate/internal/domain/repository"
)

// UserRepo implementa repository.UserRepository sobre la tabla users.
type UserRepo struct {
	db DBTX
}

func NewUserRepo(db DBTX) *UserRepo {
	return &UserRepo{db: db}
}

var _ repository.UserRepository = (*UserRepo)(nil)

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*repository.User, error) {
	const q = `
		SELECT id, email, password_hash, is_verified, COALESCE(display_name, ''), created_at
		FROM users WHERE lower(email) = lower($1)`

	var u repository.User
	err := r.db.QueryRowContext(ctx, q, email).Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.IsVerified, &u.DisplayName, &u.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("pg: get user: %w", err)
	}
	u.CreatedAt = u.CreatedAt.UTC()
	return &u, nil
}

func (r *UserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM users WHERE lower(email) = lower($1))`

	var exists bool
	if err := r.db.QueryRowContext(ctx, q, email).Scan(&exists); err != nil {
		return false, fmt.Errorf("pg: user exists: %w", err)
	}
	return exists, nil
}

func (r *UserRepo) Create(ctx context.Context, in repository.CreateUserInput) (*repository.User, error) {
	const q = `
		INSERT INTO users (email, password_hash, is_verified, display_name, created_at)
		VALUES ($1, $2, TRUE, NULLIF($3, ''), $4)
		RETURNING id`

	created := in.CreatedAt.UTC()
	var id int64
	err := r.db.QueryRowContext(ctx, q, in.Email, in.PasswordHash, in.DisplayName, created).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, repository.ErrConflict
		}
		return nil, fmt.Errorf("pg: create user: %w", err)
	}

	return &repository.User{
		ID:           id,
		Email:        in.Email,
		PasswordHash: in.PasswordHash,
		IsVerified:   true,
		DisplayName:  in.DisplayName,
		CreatedAt:    created,
	}, nil
}

func (r *UserRepo) UpdatePasswordHash(ctx context.Context, email, hash string) error {
	const q = `UPDATE users SET password_hash = $2 WHERE lower(email) = lower($1) AND is_verified = TRUE`

	res, err := r.db.ExecContext(ctx, q, email, hash)
	if err != nil {
		return fmt.Errorf("pg: update password: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("pg: update password: %w", err)
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}
