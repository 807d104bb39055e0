package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dropDatabas3/mailgate/internal/config"
	"github.com/dropDatabas3/mailgate/internal/http/server"
	"github.com/dropDatabas3/mailgate/internal/observability/logger"
	"github.com/dropDatabas3/mailgate/internal/store/pg"
)

const shutdownTimeout = 15 * time.Second

func newServeCmd(opts *rootOptions) *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Levanta el servidor HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("migrate") {
				cfg.Flags.Migrate = migrate
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "Aplicar migraciones antes de arrancar (pisa flags.migrate)")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config) error {
	log := logger.L().With(logger.Component("serve"))

	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			log.Warn("store close failed", logger.Err(err))
		}
	}()

	if cfg.Flags.Migrate {
		log.Info("running migrations")
		if err := st.MigrateUp(ctx); err != nil {
			return err
		}
	}

	handler, err := server.BuildHandler(cfg, st, server.Options{Version: version})
	if err != nil {
		return err
	}
	srv := server.NewHTTPServer(cfg, handler)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("http server listening", logger.String("addr", cfg.Server.Addr), logger.String("env", cfg.App.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server stopped with error", logger.Err(err))
		return err
	}
	log.Info("server stopped")
	return nil
}

func openStore(ctx context.Context, cfg *config.Config) (*pg.Store, error) {
	return pg.Open(ctx, pg.Options{
		DSN:             cfg.Storage.DSN,
		MaxOpenConns:    cfg.Storage.MaxOpenConns,
		MaxIdleConns:    cfg.Storage.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime(),
	})
}
