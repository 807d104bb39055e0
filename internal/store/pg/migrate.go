package pg

import (
	"context"
	"fmt"

	"github.com/pressly/goose/v3"

	"github.com/dropDatabas3/mailgate/internal/observability/logger"
	migrations "github.com/dropDatabas3/mailgate/migrations/postgres"
)

// gooseLogger adapta zap al logger de goose.
type gooseLogger struct{}

func (gooseLogger) Printf(format string, v ...any) {
	logger.S().Named("goose").Infof(format, v...)
}

func (gooseLogger) Fatalf(format string, v ...any) {
	logger.S().Named("goose").Fatalf(format, v...)
}

func prepareGoose() error {
	goose.SetBaseFS(migrations.FS)
	goose.SetLogger(gooseLogger{})
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	return nil
}

// MigrateUp aplica todas las migraciones pendientes.
func (s *Store) MigrateUp(ctx context.Context) error {
	if err := prepareGoose(); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, s.db, migrations.Dir); err != nil {
		return fmt.Errorf("migrate up: %w", err)
	}
	return nil
}

// MigrateDown revierte la última migración aplicada.
func (s *Store) MigrateDown(ctx context.Context) error {
	if err := prepareGoose(); err != nil {
		return err
	}
	if err := goose.DownContext(ctx, s.db, migrations.Dir); err != nil {
		return fmt.Errorf("migrate down: %w", err)
	}
	return nil
}

// MigrateStatus loguea el estado de cada migración.
func (s *Store) MigrateStatus(ctx context.Context) error {
	if err := prepareGoose(); err != nil {
		return err
	}
	return goose.StatusContext(ctx, s.db, migrations.Dir)
}
