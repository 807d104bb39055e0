package pg

import (
	"context"
	"fmt"

	"github.com/dropDatabas3/mailgate/internal/domain/repository"
)

// EmailLogRepo implementa repository.EmailLogRepository sobre email_logs.
type EmailLogRepo struct {
	db DBTX
}

func NewEmailLogRepo(db DBTX) *EmailLogRepo {
	return &EmailLogRepo{db: db}
}

var _ repository.EmailLogRepository = (*EmailLogRepo)(nil)

func (r *EmailLogRepo) Insert(ctx context.Context, e *repository.EmailLogEntry) error {
	const q = `
		INSERT INTO email_logs (to_email, cc_email, bcc_email, subject, message, sent_at, status, attachment_link)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''))
		RETURNING id`

	e.SentAt = e.SentAt.UTC()
	err := r.db.QueryRowContext(ctx, q,
		e.To, e.CC, e.BCC, e.Subject, e.Message, e.SentAt, e.Status, e.AttachmentLink,
	).Scan(&e.ID)
	if err != nil {
		return fmt.Errorf("pg: insert email log: %w", err)
	}
	return nil
}
