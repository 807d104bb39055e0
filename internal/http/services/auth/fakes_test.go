package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dropDatabas3/mailgate/internal/domain/repository"
	"github.com/dropDatabas3/mailgate/internal/email"
	jwtx "github.com/dropDatabas3/mailgate/internal/jwt"
	"github.com/dropDatabas3/mailgate/internal/security/password"
)

var fastParams = password.Params{Memory: 1024, Time: 1, Parallelism: 1, KeyLen: 16}

type fakeUsers struct {
	mu    sync.Mutex
	byKey map[string]*repository.User
	next  int64
}

func newFakeUsers() *fakeUsers { return &fakeUsers{byKey: map[string]*repository.User{}} }

func (f *fakeUsers) GetByEmail(_ context.Context, addr string) (*repository.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byKey[addr]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) ExistsByEmail(_ context.Context, addr string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.byKey[addr]
	return ok, nil
}

func (f *fakeUsers) Create(_ context.Context, in repository.CreateUserInput) (*repository.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byKey[in.Email]; ok {
		return nil, repository.ErrConflict
	}
	f.next++
	u := &repository.User{
		ID:           f.next,
		Email:        in.Email,
		PasswordHash: in.PasswordHash,
		IsVerified:   true,
		DisplayName:  in.DisplayName,
		CreatedAt:    in.CreatedAt,
	}
	f.byKey[in.Email] = u
	return u, nil
}

func (f *fakeUsers) UpdatePasswordHash(_ context.Context, addr, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byKey[addr]
	if !ok || !u.IsVerified {
		return repository.ErrNotFound
	}
	u.PasswordHash = hash
	return nil
}

// put agrega un usuario directo (tests de login/reset).
func (f *fakeUsers) put(addr, hash string, verified bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next++
	f.byKey[addr] = &repository.User{ID: f.next, Email: addr, PasswordHash: hash, IsVerified: verified}
}

type fakeOTPs struct {
	mu      sync.Mutex
	rows    []repository.OTPEntry
	failGet error
	finds   int
}

func (f *fakeOTPs) Create(_ context.Context, in repository.CreateOTPInput) (*repository.OTPEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e := repository.OTPEntry{
		ID:        int64(len(f.rows) + 1),
		Email:     in.Email,
		Code:      in.Code,
		Purpose:   in.Purpose,
		ExpiresAt: in.ExpiresAt,
		CreatedAt: in.CreatedAt,
	}
	f.rows = append(f.rows, e)
	return &e, nil
}

func (f *fakeOTPs) FindValid(_ context.Context, addr, code string, purpose repository.OTPPurpose, now time.Time) (*repository.OTPEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.finds++
	if f.failGet != nil {
		return nil, f.failGet
	}
	for i := len(f.rows) - 1; i >= 0; i-- {
		e := f.rows[i]
		if e.Email == addr && e.Code == code && e.Purpose == purpose && !e.Used && e.ExpiresAt.After(now) {
			return &e, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeOTPs) MarkUsed(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.rows {
		if f.rows[i].ID == id && !f.rows[i].Used {
			f.rows[i].Used = true
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeOTPs) HasConsumed(_ context.Context, addr string, purpose repository.OTPPurpose, now time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.rows {
		if e.Email == addr && e.Purpose == purpose && e.Used && e.ExpiresAt.After(now) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeOTPs) Purge(_ context.Context, before time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.rows[:0]
	var n int64
	for _, e := range f.rows {
		if !e.ExpiresAt.After(before) {
			n++
			continue
		}
		kept = append(kept, e)
	}
	f.rows = kept
	return n, nil
}

func (f *fakeOTPs) last() repository.OTPEntry {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rows[len(f.rows)-1]
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []email.Message
	err  error
}

func (f *fakeMailer) Send(_ context.Context, m email.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, m)
	return nil
}

var errSMTP = errors.New("535 5.7.8 authentication failed")

type fixture struct {
	users  *fakeUsers
	otps   *fakeOTPs
	mailer *fakeMailer
	issuer *jwtx.Issuer
	now    time.Time
	code   string
	deps   Deps
}

func newFixture(mod ...func(*Deps)) *fixture {
	f := &fixture{
		users:  newFakeUsers(),
		otps:   &fakeOTPs{},
		mailer: &fakeMailer{},
		now:    time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		code:   "123456",
	}
	iss, err := jwtx.NewIssuer([]byte("0123456789abcdef0123456789abcdef"), "MyAppIssuer", "MyAppAudience", time.Hour)
	if err != nil {
		panic(err)
	}
	f.issuer = iss.WithClock(func() time.Time { return f.now })
	f.deps = Deps{
		Users:              f.users,
		OTPs:               f.otps,
		Mailer:             f.mailer,
		Issuer:             f.issuer,
		HashParams:         fastParams,
		GenerateOTP:        func() (string, error) { return f.code, nil },
		Now:                func() time.Time { return f.now },
		OTPFromName:        "Datanova",
		ConsumeOTPOnVerify: true,
	}
	for _, m := range mod {
		m(&f.deps)
	}
	return f
}

func (f *fixture) services() Services { return NewServices(f.deps) }
