package email

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dto "github.com/dropDatabas3/mailgate/internal/http/dto/email"
	svc "github.com/dropDatabas3/mailgate/internal/http/services/email"
)

type stubRelay struct {
	err  error
	got  dto.SendRequest
	body []string
}

func (s *stubRelay) Send(_ context.Context, in dto.SendRequest) (*dto.SendResult, error) {
	s.got = in
	for _, f := range in.Files {
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		b, _ := io.ReadAll(rc)
		_ = rc.Close()
		s.body = append(s.body, string(b))
	}
	if s.err != nil {
		return nil, s.err
	}
	return &dto.SendResult{}, nil
}

type part struct {
	key, value string
	file       bool
}

func multipartRequest(t *testing.T, parts ...part) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, p := range parts {
		if !p.file {
			require.NoError(t, mw.WriteField(p.key, p.value))
			continue
		}
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, p.key, "doc.txt"))
		h.Set("Content-Type", "text/plain")
		w, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = w.Write([]byte(p.value))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	r := httptest.NewRequest(http.MethodPost, "/api/email/send", &buf)
	r.Header.Set("Content-Type", mw.FormDataContentType())
	return r
}

func TestRelayController_OK(t *testing.T) {
	stub := &stubRelay{}
	c := NewRelayController(stub, 0)

	r := multipartRequest(t,
		part{key: "Emails", value: "a@corp.io"},
		part{key: "emails[]", value: "b@corp.io"},
		part{key: "ccs[0]", value: "c@corp.io"},
		part{key: "bccs", value: "d@corp.io"},
		part{key: "subject", value: "Hola"},
		part{key: "msg", value: "Cuerpo"},
		part{key: "files", value: "contenido", file: true},
	)
	rr := httptest.NewRecorder()
	c.Send(rr, r)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Email sent successfully.", rr.Body.String())
	assert.Contains(t, rr.Header().Get("Content-Type"), "text/plain")

	assert.Equal(t, []string{"a@corp.io", "b@corp.io"}, stub.got.To)
	assert.Equal(t, []string{"c@corp.io"}, stub.got.CC)
	assert.Equal(t, []string{"d@corp.io"}, stub.got.BCC)
	assert.Equal(t, "Hola", stub.got.Subject)
	assert.Equal(t, "Cuerpo", stub.got.Message)
	require.Len(t, stub.got.Files, 1)
	assert.Equal(t, "doc.txt", stub.got.Files[0].Filename)
	assert.Equal(t, "text/plain", stub.got.Files[0].ContentType)
	assert.Equal(t, int64(len("contenido")), stub.got.Files[0].Size)
	assert.Equal(t, []string{"contenido"}, stub.body)
}

func TestRelayController_ErrorMessages(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{svc.ErrInvalidAddress, "Email is not sent: Invalid email address provided."},
		{svc.ErrRestrictedDomain, "Email is not sent: Not allowed to send emails to restricted email ID. Please recheck and try later."},
		{svc.ErrAttachmentTooLarge, "Email is not sent: Attachment size exceeds 10 MB limit. Please recheck and try again."},
		{fmt.Errorf("%w: %w", svc.ErrStaging, io.ErrShortWrite), "Email is not sent: Failed to upload attachments: short write"},
		{fmt.Errorf("smtp send: %w", io.EOF), "Email is not sent: smtp send: EOF"},
	}
	for _, tc := range cases {
		c := NewRelayController(&stubRelay{err: tc.err}, 0)
		rr := httptest.NewRecorder()
		c.Send(rr, multipartRequest(t, part{key: "emails", value: "a@corp.io"}))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, tc.want, rr.Body.String())
	}
}

func TestRelayController_RejectsNonMultipart(t *testing.T) {
	c := NewRelayController(&stubRelay{}, 0)

	rr := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/email/send", bytes.NewBufferString(`{"emails":["a@corp.io"]}`))
	r.Header.Set("Content-Type", "application/json")
	c.Send(rr, r)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Email is not sent: invalid multipart form", rr.Body.String())

	rr = httptest.NewRecorder()
	c.Send(rr, httptest.NewRequest(http.MethodGet, "/api/email/send", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestFormatSize(t *testing.T) {
	cases := map[int64]string{
		10 << 20:  "10 MB",
		3 << 19:   "1.5 MB",
		512 << 10: "512 KB",
		1536:      "1.5 KB",
		700:       "700 bytes",
	}
	for n, want := range cases {
		assert.Equal(t, want, formatSize(n), n)
	}
}

func TestRelayController_SmallLimitMessage(t *testing.T) {
	c := NewRelayController(&stubRelay{err: svc.ErrAttachmentTooLarge}, 256<<10)
	rr := httptest.NewRecorder()
	c.Send(rr, multipartRequest(t, part{key: "emails", value: "a@corp.io"}))
	assert.Equal(t, "Email is not sent: Attachment size exceeds 256 KB limit. Please recheck and try again.", rr.Body.String())
}
