package repository

import (
	"context"
	"time"
)

// Valores de status de EmailLogEntry.
const (
	EmailStatusSent         = "Sent"
	EmailStatusFailedPrefix = "Failed: "
)

// EmailLogEntry registra un intento de envío por el relay.
type EmailLogEntry struct {
	ID             int64
	To             string // CSV
	CC             string // CSV
	BCC            string // CSV
	Subject        string
	Message        string
	SentAt         time.Time
	Status         string // "Sent" | "Failed: <detalle>"
	AttachmentLink string // CSV de /uploads/<name>, vacío si no hubo adjuntos
}

// EmailLogRepository define operaciones sobre la tabla email_logs.
type EmailLogRepository interface {
	// Insert agrega una entrada y completa su ID.
	Insert(ctx context.Context, e *EmailLogEntry) error
}
