package email

import (
	"context"
	"errors"
	"io"
)

// Sender entrega un mensaje. Implementada por SMTPSender.
type Sender interface {
	Send(ctx context.Context, m Message) error
}

// Attachment es un archivo adjunto. Open se invoca al escribir el mensaje.
type Attachment struct {
	Filename    string
	ContentType string
	Open        func() (io.ReadCloser, error)
}

// Message es un email de texto plano con destinatarios y adjuntos opcionales.
type Message struct {
	FromName    string // display name del remitente; la dirección la pone el Sender
	To          []string
	CC          []string
	BCC         []string
	Subject     string
	TextBody    string
	Attachments []Attachment
}

// Recipients devuelve to+cc+bcc en ese orden.
func (m Message) Recipients() []string {
	out := make([]string, 0, len(m.To)+len(m.CC)+len(m.BCC))
	out = append(out, m.To...)
	out = append(out, m.CC...)
	return append(out, m.BCC...)
}

var ErrNoRecipients = errors.New("email: no recipients")

// SenderFunc adapta una función a Sender.
type SenderFunc func(ctx context.Context, m Message) error

func (f SenderFunc) Send(ctx context.Context, m Message) error { return f(ctx, m) }
