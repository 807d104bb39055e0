package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dropDatabas3/mailgate/internal/domain/repository"
)

// OTPRepo implementa repository.OTPRepository sobre la tabla email_otp.
type OTPRepo struct {
	db DBTX
}

func NewOTPRepo(db DBTX) *OTPRepo {
	return &OTPRepo{db: db}
}

var _ repository.OTPRepository = (*OTPRepo)(nil)

func (r *OTPRepo) Create(ctx context.Context, in repository.CreateOTPInput) (*repository.OTPEntry, error) {
	const q = `
		INSERT INTO email_otp (email, otp, purpose, expires_at, is_used, created_at)
		VALUES ($1, $2, $3, $4, FALSE, $5)
		RETURNING id`

	e := &repository.OTPEntry{
		Email:     in.Email,
		Code:      in.Code,
		Purpose:   in.Purpose,
		ExpiresAt: in.ExpiresAt.UTC(),
		CreatedAt: in.CreatedAt.UTC(),
	}
	err := r.db.QueryRowContext(ctx, q, e.Email, e.Code, string(e.Purpose), e.ExpiresAt, e.CreatedAt).Scan(&e.ID)
	if err != nil {
		return nil, fmt.Errorf("pg: create otp: %w", err)
	}
	return e, nil
}

func (r *OTPRepo) FindValid(ctx context.Context, email, code string, purpose repository.OTPPurpose, now time.Time) (*repository.OTPEntry, error) {
	const q = `
		SELECT id, email, otp, purpose, expires_at, is_used, created_at
		FROM email_otp
		WHERE email = $1 AND otp = $2 AND purpose = $3 AND is_used = FALSE AND expires_at > $4
		ORDER BY created_at DESC
		LIMIT 1`

	var (
		e    repository.OTPEntry
		purp string
	)
	err := r.db.QueryRowContext(ctx, q, email, code, string(purpose), now.UTC()).Scan(
		&e.ID, &e.Email, &e.Code, &purp, &e.ExpiresAt, &e.Used, &e.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("pg: find otp: %w", err)
	}
	e.Purpose = repository.OTPPurpose(purp)
	e.ExpiresAt = e.ExpiresAt.UTC()
	e.CreatedAt = e.CreatedAt.UTC()
	return &e, nil
}

func (r *OTPRepo) MarkUsed(ctx context.Context, id int64) error {
	const q = `UPDATE email_otp SET is_used = TRUE WHERE id = $1 AND is_used = FALSE`

	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return fmt.Errorf("pg: mark otp used: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("pg: mark otp used: %w", err)
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *OTPRepo) HasConsumed(ctx context.Context, email string, purpose repository.OTPPurpose, now time.Time) (bool, error) {
	const q = `
		SELECT EXISTS (
			SELECT 1 FROM email_otp
			WHERE email = $1 AND purpose = $2 AND is_used = TRUE AND expires_at > $3
		)`

	var ok bool
	if err := r.db.QueryRowContext(ctx, q, email, string(purpose), now.UTC()).Scan(&ok); err != nil {
		return false, fmt.Errorf("pg: consumed otp: %w", err)
	}
	return ok, nil
}

func (r *OTPRepo) Purge(ctx context.Context, before time.Time) (int64, error) {
	const q = `DELETE FROM email_otp WHERE expires_at <= $1`

	res, err := r.db.ExecContext(ctx, q, before.UTC())
	if err != nil {
		return 0, fmt.Errorf("pg: purge otp: %w", err)
	}
	return res.RowsAffected()
}
