package email

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"strings"
	"time"

	mail "github.com/go-mail/mail"

	"github.com/dropDatabas3/mailgate/internal/observability/logger"
)

// Modos TLS soportados. Cualquier otro valor se trata como TLSAuto.
const (
	TLSAuto     = "auto"
	TLSStartTLS = "starttls"
	TLSSSL      = "ssl"
)

// SMTPConfig contiene la configuración para conectarse al relay SMTP.
type SMTPConfig struct {
	Host               string
	Port               int
	Username           string
	Password           string
	From               string // dirección del remitente
	TLSMode            string // "auto" | "starttls" | "ssl"
	InsecureSkipVerify bool   // solo dev
	Timeout            time.Duration
}

// dialer es lo que necesitamos de *mail.Dialer (reemplazable en tests).
type dialer interface {
	DialAndSend(m ...*mail.Message) error
}

// SMTPSender implementa Sender usando SMTP.
type SMTPSender struct {
	cfg       SMTPConfig
	newDialer func(cfg SMTPConfig) dialer
}

// NewSMTPSender crea un SMTPSender.
func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	if cfg.TLSMode == "" {
		cfg.TLSMode = TLSAuto
	}
	return &SMTPSender{cfg: cfg, newDialer: newMailDialer}
}

func newMailDialer(cfg SMTPConfig) dialer {
	d := mail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	d.TLSConfig = &tls.Config{
		ServerName:         cfg.Host,
		InsecureSkipVerify: cfg.InsecureSkipVerify, // solo dev
	}
	if cfg.Timeout > 0 {
		d.Timeout = cfg.Timeout
	}

	switch strings.ToLower(strings.TrimSpace(cfg.TLSMode)) {
	case TLSSSL:
		d.SSL = true
	case TLSStartTLS:
		d.SSL = false // NewDialer infiere SSL del puerto 465
		d.StartTLSPolicy = mail.MandatoryStartTLS
	default:
		d.SSL = false
		d.StartTLSPolicy = mail.OpportunisticStartTLS
	}
	return d
}

// Send arma el mensaje y lo entrega en una conexión nueva.
func (s *SMTPSender) Send(ctx context.Context, m Message) error {
	log := logger.From(ctx).With(
		logger.Component("SMTPSender"),
		logger.String("host", s.cfg.Host),
		logger.Int("port", s.cfg.Port),
		logger.Recipients(len(m.Recipients())),
		logger.Attachments(len(m.Attachments)),
	)

	if err := ctx.Err(); err != nil {
		return err
	}

	msg, err := s.compose(m)
	if err != nil {
		return err
	}

	log.Debug("sending email",
		logger.String("subject", m.Subject),
		logger.String("tls_mode", s.cfg.TLSMode),
	)

	if err := s.newDialer(s.cfg).DialAndSend(msg); err != nil {
		diag := DiagnoseSMTP(err)
		log.Error("smtp send failed",
			logger.Err(err),
			logger.String("smtp_code", diag.Code),
			logger.Bool("temporary", diag.Temporary),
		)
		return fmt.Errorf("smtp send: %w", err)
	}

	log.Info("email sent successfully")
	return nil
}

// compose traduce Message a *mail.Message. Bcc se usa solo para el sobre.
func (s *SMTPSender) compose(m Message) (*mail.Message, error) {
	if len(m.Recipients()) == 0 {
		return nil, ErrNoRecipients
	}

	msg := mail.NewMessage()
	if m.FromName != "" {
		msg.SetAddressHeader("From", s.cfg.From, m.FromName)
	} else {
		msg.SetHeader("From", s.cfg.From)
	}
	if len(m.To) > 0 {
		msg.SetHeader("To", m.To...)
	}
	if len(m.CC) > 0 {
		msg.SetHeader("Cc", m.CC...)
	}
	if len(m.BCC) > 0 {
		msg.SetHeader("Bcc", m.BCC...)
	}
	msg.SetHeader("Subject", m.Subject)
	msg.SetBody("text/plain", m.TextBody)

	for _, a := range m.Attachments {
		a := a
		settings := []mail.FileSetting{
			mail.SetCopyFunc(func(w io.Writer) error {
				rc, err := a.Open()
				if err != nil {
					return err
				}
				defer rc.Close()
				_, err = io.Copy(w, rc)
				return err
			}),
		}
		if a.ContentType != "" {
			settings = append(settings, mail.SetHeader(map[string][]string{
				"Content-Type": {a.ContentType},
			}))
		}
		msg.Attach(a.Filename, settings...)
	}
	return msg, nil
}
