package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dropDatabas3/mailgate/internal/observability/logger"
)

func newOTPCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "otp",
		Short: "Mantenimiento de la tabla email_otp",
	}

	var olderThan time.Duration
	purge := &cobra.Command{
		Use:   "purge",
		Short: "Borra OTPs vencidos hace más de --older-than",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if olderThan < 0 {
				return fmt.Errorf("--older-than must be >= 0")
			}
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			st, err := openStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			before := time.Now().UTC().Add(-olderThan)
			n, err := st.OTPs().Purge(cmd.Context(), before)
			if err != nil {
				return err
			}
			logger.L().Info("otp purge completed", logger.Int64("deleted", n), logger.String("before", before.Format(time.RFC3339)))
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %d otp rows\n", n)
			return nil
		},
	}
	purge.Flags().DurationVar(&olderThan, "older-than", 24*time.Hour, "Antigüedad mínima desde el vencimiento")

	cmd.AddCommand(purge)
	return cmd
}
