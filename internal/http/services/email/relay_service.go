// Package email implementa el relay de /api/email/send.
package email

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/dropDatabas3/mailgate/internal/attachments"
	"github.com/dropDatabas3/mailgate/internal/domain/repository"
	"github.com/dropDatabas3/mailgate/internal/email"
	dto "github.com/dropDatabas3/mailgate/internal/http/dto/email"
	"github.com/dropDatabas3/mailgate/internal/metrics"
	"github.com/dropDatabas3/mailgate/internal/observability/logger"
)

// Errores de validación y de staging. El controller los traduce al texto de respuesta.
var (
	ErrInvalidAddress     = errors.New("invalid email address provided")
	ErrRestrictedDomain   = errors.New("recipient domain is restricted")
	ErrAttachmentTooLarge = errors.New("attachment size exceeds limit")
	ErrStaging            = errors.New("failed to upload attachments")
)

// DefaultMaxAttachmentBytes es el tope acumulado de adjuntos (10 MiB).
const DefaultMaxAttachmentBytes int64 = 10 * 1024 * 1024

// RelayService envía emails con adjuntos y registra cada intento.
type RelayService interface {
	Send(ctx context.Context, in dto.SendRequest) (*dto.SendResult, error)
}

// Deps contiene las dependencias del relay.
type Deps struct {
	Mailer email.Sender
	Stager attachments.Stager
	Logs   repository.EmailLogRepository

	FromName           string   // "Data Nova"
	RestrictedDomains  []string // dominios en minúscula
	MaxAttachmentBytes int64    // 0 = DefaultMaxAttachmentBytes
	Now                func() time.Time
}

type relayService struct {
	deps       Deps
	restricted map[string]struct{}
}

// NewRelayService crea el service del relay.
func NewRelayService(d Deps) RelayService {
	if d.MaxAttachmentBytes <= 0 {
		d.MaxAttachmentBytes = DefaultMaxAttachmentBytes
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	restricted := make(map[string]struct{}, len(d.RestrictedDomains))
	for _, dom := range d.RestrictedDomains {
		dom = strings.ToLower(strings.TrimSpace(dom))
		if dom != "" {
			restricted[dom] = struct{}{}
		}
	}
	return &relayService{deps: d, restricted: restricted}
}

func (s *relayService) Send(ctx context.Context, in dto.SendRequest) (*dto.SendResult, error) {
	toList := strings.Join(in.To, ",")
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("email.relay"),
		logger.String("to", toList),
	)
	log.Info("sending email",
		logger.Recipients(len(in.To)+len(in.CC)+len(in.BCC)),
		logger.Attachments(len(in.Files)),
	)

	if err := s.validate(ctx, in); err != nil {
		metrics.RecordRelaySend(metrics.ResultInvalid)
		return nil, err
	}

	var link string
	err := s.deliver(ctx, in, &link)

	entry := &repository.EmailLogEntry{
		To:             toList,
		CC:             strings.Join(in.CC, ","),
		BCC:            strings.Join(in.BCC, ","),
		Subject:        in.Subject,
		Message:        in.Message,
		SentAt:         s.deps.Now().UTC(),
		Status:         repository.EmailStatusSent,
		AttachmentLink: link,
	}
	if err != nil {
		entry.Status = repository.EmailStatusFailedPrefix + err.Error()
		metrics.RecordRelaySend(metrics.ResultFailed)
		log.Error("failed to send email", logger.Err(err))
	} else {
		metrics.RecordRelaySend(metrics.ResultOK)
		log.Info("email sent successfully")
	}
	s.writeLog(ctx, log, entry)

	if err != nil {
		return nil, err
	}
	return &dto.SendResult{AttachmentLink: link}, nil
}

// validate corre antes de cualquier I/O. Un error acá no deja registro en email_logs.
func (s *relayService) validate(ctx context.Context, in dto.SendRequest) error {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("relay.validate"))

	for _, list := range [][]string{in.To, in.CC, in.BCC} {
		for _, addr := range list {
			a := strings.TrimSpace(addr)
			if a == "" || !strings.Contains(a, "@") {
				log.Warn("invalid email address", logger.String("email", addr))
				return ErrInvalidAddress
			}
			domain := strings.ToLower(a[strings.LastIndex(a, "@")+1:])
			if _, ok := s.restricted[domain]; ok {
				log.Warn("restricted domain detected", logger.String("domain", domain), logger.String("email", addr))
				return ErrRestrictedDomain
			}
		}
	}

	var total int64
	for _, f := range in.Files {
		total += f.Size
		if total > s.deps.MaxAttachmentBytes {
			log.Warn("attachment size exceeds limit", logger.Int64("limit", s.deps.MaxAttachmentBytes))
			return ErrAttachmentTooLarge
		}
	}
	return nil
}

// deliver guarda los adjuntos y envía el mensaje. link queda seteado aunque falle el SMTP.
func (s *relayService) deliver(ctx context.Context, in dto.SendRequest, link *string) error {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("relay.deliver"))

	if len(in.Files) > 0 {
		log.Info("uploading attachments")
		links, err := s.deps.Stager.Stage(ctx, in.Files)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrStaging, err)
		}
		*link = attachments.JoinLinks(links)
		log.Info("attachments uploaded successfully", logger.Count(len(links)))
	}

	msg := email.Message{
		FromName: s.deps.FromName,
		To:       trimAll(in.To),
		CC:       trimAll(in.CC),
		BCC:      trimAll(in.BCC),
		Subject:  in.Subject,
		TextBody: in.Message,
	}
	for _, f := range in.Files {
		msg.Attachments = append(msg.Attachments, email.Attachment{
			Filename:    f.Filename,
			ContentType: f.ContentType,
			Open:        f.Open,
		})
	}
	return s.deps.Mailer.Send(ctx, msg)
}

// writeLog persiste el intento. Un fallo acá se registra y no cambia el resultado del envío.
func (s *relayService) writeLog(ctx context.Context, log *zap.Logger, e *repository.EmailLogEntry) {
	log.Info("logging email to database")
	if err := s.deps.Logs.Insert(context.WithoutCancel(ctx), e); err != nil {
		metrics.RecordEmailLogError()
		log.Error("failed to log email to database", logger.Err(err))
		return
	}
	log.Info("email logged successfully", logger.Int64("email_log_id", e.ID))
}

func trimAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
