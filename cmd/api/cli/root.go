package cli

import (
	"fmt"

	"inventory-api/internal/config"
	"inventory-api/internal/logger"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Execute creates the root command tree and runs it.
func Execute(version string) error {
	return newRootCmd(version, viper.New()).Execute()
}

func newRootCmd(version string, v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inventory-api",
		Short: "Mock inventory API guarded by expiring API keys",
		Long: `inventory-api serves a generated product catalog over HTTP.

Clients exchange a master key for a short-lived API key and use it to list,
filter, sort and page through products. Keys and products are persisted in
the configured storage backend and survive restarts.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.String("storage", "", "storage driver: memory, file, sqlite, postgres, mysql or redis")
	flags.String("data-dir", "", "directory for the file storage driver")
	flags.String("env", "", "runtime environment (production enables JSON logs)")
	v.BindPFlag("STORAGE_DRIVER", flags.Lookup("storage"))
	v.BindPFlag("STORAGE_DATA_DIR", flags.Lookup("data-dir"))
	v.BindPFlag("SERVER_ENV", flags.Lookup("env"))

	cmd.AddCommand(newServeCmd(v))
	cmd.AddCommand(newMigrateCmd(v))
	cmd.AddCommand(newKeysCmd(v))
	cmd.AddCommand(newRegenerateCmd(v))
	cmd.AddCommand(newHashMasterKeyCmd())

	return cmd
}

// setup loads configuration and builds the logger every subcommand shares.
func setup(v *viper.Viper) (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(v)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(cfg.Server.Env)
	if err != nil {
		return nil, nil, fmt.Errorf("initialize logger: %w", err)
	}
	return cfg, log, nil
}
