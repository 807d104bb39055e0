// Package pg implementa los repositorios de dominio sobre PostgreSQL usando
// database/sql con el driver de pgx (pgx/v5/stdlib).
package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/dropDatabas3/mailgate/internal/domain/repository"
)

// DBTX es el subconjunto de *sql.DB / *sql.Tx que usan los repositorios.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Options ajusta el pool de conexiones.
type Options struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Store agrupa la conexión y los repositorios.
type Store struct {
	db *sql.DB

	users  *UserRepo
	otps   *OTPRepo
	emails *EmailLogRepo
}

// Open abre el pool y verifica la conexión con un ping.
func Open(ctx context.Context, opts Options) (*Store, error) {
	if opts.DSN == "" {
		return nil, errors.New("pg: empty dsn")
	}
	db, err := sql.Open("pgx", opts.DSN)
	if err != nil {
		return nil, fmt.Errorf("pg: open: %w", err)
	}
	if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		db.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pg: ping: %w", err)
	}
	return New(db), nil
}

// New envuelve un *sql.DB ya abierto (tests con sqlmock).
func New(db *sql.DB) *Store {
	return &Store{
		db:     db,
		users:  NewUserRepo(db),
		otps:   NewOTPRepo(db),
		emails: NewEmailLogRepo(db),
	}
}

// DB expone la conexión (migraciones).
func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Users() repository.UserRepository {
	return s.users
}

func (s *Store) OTPs() repository.OTPRepository {
	return s.otps
}

func (s *Store) EmailLogs() repository.EmailLogRepository {
	return s.emails
}

// Ping verifica que la base responde (readyz).
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close cierra el pool subyacente.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// isUniqueViolation detecta SQLSTATE 23505.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
