// Package email contiene los DTOs del relay /api/email/send.
package email

import "github.com/dropDatabas3/mailgate/internal/attachments"

// SendRequest es el formulario multipart de POST /api/email/send.
type SendRequest struct {
	To      []string
	CC      []string
	BCC     []string
	Subject string
	Message string
	Files   []attachments.Upload
}

// SendResult es lo que devuelve el relay ante un envío exitoso.
type SendResult struct {
	AttachmentLink string
}

// Nombres de los campos del formulario.
const (
	FieldEmails  = "emails"
	FieldCCs     = "ccs"
	FieldBCCs    = "bccs"
	FieldSubject = "subject"
	FieldMsg     = "msg"
	FieldFiles   = "files"
)
