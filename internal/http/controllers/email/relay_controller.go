// Package email contiene el controller de /api/email/send.
package email

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/dropDatabas3/mailgate/internal/attachments"
	dto "github.com/dropDatabas3/mailgate/internal/http/dto/email"
	"github.com/dropDatabas3/mailgate/internal/http/helpers"
	svc "github.com/dropDatabas3/mailgate/internal/http/services/email"
	"github.com/dropDatabas3/mailgate/internal/observability/logger"
)

const (
	// maxFormMemory es lo que ParseMultipartForm mantiene en memoria; el resto va a disco.
	maxFormMemory = 32 << 20
	// bodySlack cubre los campos de texto y el overhead multipart sobre el límite de adjuntos.
	bodySlack = 4 << 20

	msgSent    = "Email sent successfully."
	msgNotSent = "Email is not sent: "
)

// RelayController maneja el envío autenticado de emails.
type RelayController struct {
	service  svc.RelayService
	maxBytes int64
}

// NewRelayController crea el controller. maxAttachmentBytes acota el body del request.
func NewRelayController(s svc.RelayService, maxAttachmentBytes int64) *RelayController {
	if maxAttachmentBytes <= 0 {
		maxAttachmentBytes = svc.DefaultMaxAttachmentBytes
	}
	return &RelayController{service: s, maxBytes: maxAttachmentBytes}
}

// Send maneja POST /api/email/send (multipart/form-data).
func (c *RelayController) Send(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("RelayController.Send"))

	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		helpers.WriteText(w, http.StatusMethodNotAllowed, msgNotSent+"method not allowed")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 2*c.maxBytes+bodySlack)
	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			helpers.WriteText(w, http.StatusBadRequest, msgNotSent+c.tooLargeMessage())
			return
		}
		log.Warn("invalid multipart form", logger.Err(err))
		helpers.WriteText(w, http.StatusBadRequest, msgNotSent+"invalid multipart form")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	req := readSendRequest(r.MultipartForm)

	if _, err := c.service.Send(ctx, req); err != nil {
		helpers.WriteText(w, http.StatusBadRequest, msgNotSent+c.describe(err))
		return
	}
	helpers.WriteText(w, http.StatusOK, msgSent)
}

func readSendRequest(form *multipart.Form) dto.SendRequest {
	req := dto.SendRequest{
		To:      helpers.FormValues(form, dto.FieldEmails),
		CC:      helpers.FormValues(form, dto.FieldCCs),
		BCC:     helpers.FormValues(form, dto.FieldBCCs),
		Subject: helpers.FormValue(form, dto.FieldSubject),
		Message: helpers.FormValue(form, dto.FieldMsg),
	}
	for _, fh := range helpers.FormFiles(form, dto.FieldFiles) {
		fh := fh
		req.Files = append(req.Files, attachments.Upload{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Size:        fh.Size,
			Open:        func() (io.ReadCloser, error) { return fh.Open() },
		})
	}
	return req
}

// describe arma el texto visible del error.
func (c *RelayController) describe(err error) string {
	switch {
	case errors.Is(err, svc.ErrInvalidAddress):
		return "Invalid email address provided."
	case errors.Is(err, svc.ErrRestrictedDomain):
		return "Not allowed to send emails to restricted email ID. Please recheck and try later."
	case errors.Is(err, svc.ErrAttachmentTooLarge):
		return c.tooLargeMessage()
	case errors.Is(err, svc.ErrStaging):
		cause := strings.TrimPrefix(err.Error(), svc.ErrStaging.Error()+": ")
		return "Failed to upload attachments: " + cause
	default:
		return err.Error()
	}
}

func (c *RelayController) tooLargeMessage() string {
	return fmt.Sprintf("Attachment size exceeds %s limit. Please recheck and try again.", formatSize(c.maxBytes))
}

func formatSize(n int64) string {
	switch {
	case n >= 1<<20:
		return formatUnit(n, 1<<20, "MB")
	case n >= 1<<10:
		return formatUnit(n, 1<<10, "KB")
	default:
		return fmt.Sprintf("%d bytes", n)
	}
}

func formatUnit(n, unit int64, name string) string {
	if n%unit == 0 {
		return fmt.Sprintf("%d %s", n/unit, name)
	}
	return fmt.Sprintf("%.1f %s", float64(n)/float64(unit), name)
}
