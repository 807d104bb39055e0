package email

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/mailgate/internal/attachments"
	"github.com/dropDatabas3/mailgate/internal/domain/repository"
	"github.com/dropDatabas3/mailgate/internal/email"
	dto "github.com/dropDatabas3/mailgate/internal/http/dto/email"
)

type fakeMailer struct {
	err  error
	sent []email.Message
}

func (f *fakeMailer) Send(_ context.Context, m email.Message) error {
	f.sent = append(f.sent, m)
	return f.err
}

type fakeStager struct {
	err   error
	calls int
}

func (f *fakeStager) Stage(_ context.Context, files []attachments.Upload) ([]string, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([]string, 0, len(files))
	for _, u := range files {
		out = append(out, "/uploads/x-"+u.Filename)
	}
	return out, nil
}

type fakeLogs struct {
	err     error
	entries []repository.EmailLogEntry
}

func (f *fakeLogs) Insert(_ context.Context, e *repository.EmailLogEntry) error {
	if f.err != nil {
		return f.err
	}
	e.ID = int64(len(f.entries) + 1)
	f.entries = append(f.entries, *e)
	return nil
}

type fixture struct {
	mailer *fakeMailer
	stager *fakeStager
	logs   *fakeLogs
	svc    RelayService
}

var fixedNow = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func newFixture(mod ...func(*Deps)) *fixture {
	f := &fixture{mailer: &fakeMailer{}, stager: &fakeStager{}, logs: &fakeLogs{}}
	d := Deps{
		Mailer:            f.mailer,
		Stager:            f.stager,
		Logs:              f.logs,
		FromName:          "Data Nova",
		RestrictedDomains: []string{"gmail.com", "yahoo.com", "hotmail.com", "outlook.com"},
		Now:               func() time.Time { return fixedNow },
	}
	for _, m := range mod {
		m(&d)
	}
	f.svc = NewRelayService(d)
	return f
}

func file(name string, size int64) attachments.Upload {
	return attachments.Upload{
		Filename:    name,
		ContentType: "application/pdf",
		Size:        size,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader("x")), nil
		},
	}
}

func TestSend_OK(t *testing.T) {
	f := newFixture()

	res, err := f.svc.Send(context.Background(), dto.SendRequest{
		To:      []string{"ana@corp.io", " luis@corp.io "},
		CC:      []string{"cc@corp.io"},
		BCC:     []string{"bcc@corp.io"},
		Subject: "Reporte",
		Message: "Adjunto el reporte.",
		Files:   []attachments.Upload{file("a.pdf", 10), file("b.pdf", 20)},
	})
	require.NoError(t, err)
	assert.Equal(t, "/uploads/x-a.pdf,/uploads/x-b.pdf", res.AttachmentLink)

	require.Len(t, f.mailer.sent, 1)
	m := f.mailer.sent[0]
	assert.Equal(t, "Data Nova", m.FromName)
	assert.Equal(t, []string{"ana@corp.io", "luis@corp.io"}, m.To)
	assert.Equal(t, []string{"cc@corp.io"}, m.CC)
	assert.Equal(t, []string{"bcc@corp.io"}, m.BCC)
	assert.Equal(t, "Adjunto el reporte.", m.TextBody)
	require.Len(t, m.Attachments, 2)
	assert.Equal(t, "a.pdf", m.Attachments[0].Filename)
	assert.Equal(t, "application/pdf", m.Attachments[0].ContentType)

	require.Len(t, f.logs.entries, 1)
	e := f.logs.entries[0]
	assert.Equal(t, repository.EmailStatusSent, e.Status)
	assert.Equal(t, "ana@corp.io, luis@corp.io ", e.To)
	assert.Equal(t, "cc@corp.io", e.CC)
	assert.Equal(t, "bcc@corp.io", e.BCC)
	assert.Equal(t, "Reporte", e.Subject)
	assert.Equal(t, fixedNow, e.SentAt)
	assert.Equal(t, res.AttachmentLink, e.AttachmentLink)
}

func TestSend_NoFilesSkipsStager(t *testing.T) {
	f := newFixture()
	res, err := f.svc.Send(context.Background(), dto.SendRequest{To: []string{"a@corp.io"}})
	require.NoError(t, err)
	assert.Empty(t, res.AttachmentLink)
	assert.Zero(t, f.stager.calls)
	require.Len(t, f.logs.entries, 1)
	assert.Empty(t, f.logs.entries[0].AttachmentLink)
}

func TestSend_ValidationShortCircuits(t *testing.T) {
	cases := []struct {
		name string
		in   dto.SendRequest
		want error
	}{
		{"blank", dto.SendRequest{To: []string{"  "}}, ErrInvalidAddress},
		{"no at", dto.SendRequest{To: []string{"ana.corp.io"}}, ErrInvalidAddress},
		{"restricted any case", dto.SendRequest{To: []string{"ana@GMail.COM"}}, ErrRestrictedDomain},
		{"restricted in bcc", dto.SendRequest{To: []string{"a@corp.io"}, BCC: []string{"x@outlook.com"}}, ErrRestrictedDomain},
		{"last at wins", dto.SendRequest{CC: []string{"a@gmail.com@corp.io"}}, nil},
		{"too large", dto.SendRequest{
			To:    []string{"a@corp.io"},
			Files: []attachments.Upload{file("a", 6<<20), file("b", 4<<20+1)},
		}, ErrAttachmentTooLarge},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture()
			_, err := f.svc.Send(context.Background(), tc.in)
			if tc.want == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tc.want)
			assert.Empty(t, f.mailer.sent)
			assert.Empty(t, f.logs.entries)
			assert.Zero(t, f.stager.calls)
		})
	}
}

func TestSend_ExactLimitPasses(t *testing.T) {
	f := newFixture()
	_, err := f.svc.Send(context.Background(), dto.SendRequest{
		To:    []string{"a@corp.io"},
		Files: []attachments.Upload{file("a", 6<<20), file("b", 4<<20)},
	})
	require.NoError(t, err)
}

func TestSend_CustomLimit(t *testing.T) {
	f := newFixture(func(d *Deps) { d.MaxAttachmentBytes = 5 })
	_, err := f.svc.Send(context.Background(), dto.SendRequest{
		To:    []string{"a@corp.io"},
		Files: []attachments.Upload{file("a", 6)},
	})
	require.ErrorIs(t, err, ErrAttachmentTooLarge)
}

func TestSend_SMTPFailureIsLogged(t *testing.T) {
	f := newFixture()
	f.mailer.err = errors.New("smtp send: 421 try later")

	_, err := f.svc.Send(context.Background(), dto.SendRequest{
		To:    []string{"a@corp.io"},
		Files: []attachments.Upload{file("a.pdf", 1)},
	})
	require.Error(t, err)

	require.Len(t, f.logs.entries, 1)
	e := f.logs.entries[0]
	assert.Equal(t, "Failed: smtp send: 421 try later", e.Status)
	assert.Equal(t, "/uploads/x-a.pdf", e.AttachmentLink)
}

func TestSend_StagingFailureIsLoggedAndNotSent(t *testing.T) {
	f := newFixture()
	f.stager.err = errors.New("disk full")

	_, err := f.svc.Send(context.Background(), dto.SendRequest{
		To:    []string{"a@corp.io"},
		Files: []attachments.Upload{file("a.pdf", 1)},
	})
	require.ErrorIs(t, err, ErrStaging)
	assert.Contains(t, err.Error(), "disk full")
	assert.Empty(t, f.mailer.sent)

	require.Len(t, f.logs.entries, 1)
	assert.True(t, strings.HasPrefix(f.logs.entries[0].Status, repository.EmailStatusFailedPrefix))
}

func TestSend_LogFailureIsSwallowed(t *testing.T) {
	f := newFixture()
	f.logs.err = errors.New("db down")

	res, err := f.svc.Send(context.Background(), dto.SendRequest{To: []string{"a@corp.io"}})
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Len(t, f.mailer.sent, 1)
}

func TestSend_LogSurvivesCanceledContext(t *testing.T) {
	f := newFixture()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _ = f.svc.Send(ctx, dto.SendRequest{To: []string{"a@corp.io"}})
	assert.Len(t, f.logs.entries, 1)
}
