package cli

import (
	"context"
	"fmt"

	"inventory-api/internal/config"
	"inventory-api/internal/database"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func newMigrateCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the relational storage schema",
		Long:  "Apply, roll back or inspect migrations for the sqlite, postgres and mysql storage drivers.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatabase(v, func(cfg *config.Config, db *sqlx.DB, log *zap.Logger) error {
				return database.RunMigrations(db.DB, cfg.Storage.Driver, log)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatabase(v, func(cfg *config.Config, db *sqlx.DB, _ *zap.Logger) error {
				return database.RollbackMigration(db.DB, cfg.Storage.Driver)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Print the status of every migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatabase(v, func(cfg *config.Config, db *sqlx.DB, _ *zap.Logger) error {
				if err := database.GetMigrationStatus(db.DB, cfg.Storage.Driver); err != nil {
					return err
				}
				version, err := database.CurrentVersion(db.DB, cfg.Storage.Driver)
				if err != nil {
					return err
				}
				fmt.Printf("Current version: %d\n", version)
				return nil
			})
		},
	})

	return cmd
}

func withDatabase(v *viper.Viper, fn func(*config.Config, *sqlx.DB, *zap.Logger) error) error {
	cfg, log, err := setup(v)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx := context.Background()
	db, err := database.Open(ctx, cfg.Storage.Driver, cfg.Database)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	log.Info("Database health check", zap.Any("health", database.Health(ctx, db)))

	return fn(cfg, db, log)
}
