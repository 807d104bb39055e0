// Command mailgate levanta la API de registro/login con OTP y el relay de emails.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dropDatabas3/mailgate/internal/config"
	"github.com/dropDatabas3/mailgate/internal/observability/logger"
)

// version se pisa con -ldflags "-X main.version=...".
var version = "dev"

type rootOptions struct {
	configPath string
	envFile    string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{
		configPath: envOr("CONFIG_PATH", ""),
		envFile:    ".env",
	}

	root := &cobra.Command{
		Use:           "mailgate",
		Short:         "API de auth con OTP por email y relay SMTP autenticado",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", opts.configPath, "Path al YAML de config (env CONFIG_PATH); vacío = solo env")
	root.PersistentFlags().StringVar(&opts.envFile, "env-file", opts.envFile, "Archivo .env a cargar si existe")

	root.AddCommand(newServeCmd(opts))
	root.AddCommand(newMigrateCmd(opts))
	root.AddCommand(newOTPCmd(opts))
	root.AddCommand(newHashPasswordCmd())
	return root
}

// loadConfig carga .env (si existe), el YAML y arranca el logger.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	if o.envFile != "" {
		if err := godotenv.Load(o.envFile); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("load %s: %w", o.envFile, err)
		}
	}
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	logger.Init(logger.Config{
		Env:         cfg.App.Env,
		Level:       cfg.Log.Level,
		ServiceName: "mailgate",
		Version:     version,
	})
	return cfg, nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		_ = logger.Sync()
		os.Exit(1)
	}
	_ = logger.Sync()
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
