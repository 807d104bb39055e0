package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dropDatabas3/mailgate/internal/store/pg"
)

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Migraciones de la base (goose)",
	}

	run := func(name string, fn func(*pg.Store, context.Context) error) *cobra.Command {
		return &cobra.Command{
			Use:   name,
			Short: fmt.Sprintf("migrate %s", name),
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				cfg, err := opts.loadConfig()
				if err != nil {
					return err
				}
				st, err := openStore(cmd.Context(), cfg)
				if err != nil {
					return err
				}
				defer st.Close()
				return fn(st, cmd.Context())
			},
		}
	}

	cmd.AddCommand(run("up", (*pg.Store).MigrateUp))
	cmd.AddCommand(run("down", (*pg.Store).MigrateDown))
	cmd.AddCommand(run("status", (*pg.Store).MigrateStatus))
	return cmd
}
