package database

import (
	"database/sql"
	"fmt"

	"inventory-api/internal/config"
	"inventory-api/migrations"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

// gooseDialect returns the goose dialect and the embedded directory holding
// the migrations for driver.
func gooseDialect(driver string) (dialect, dir string, err error) {
	switch driver {
	case config.DriverPostgres:
		return "postgres", "postgres", nil
	case config.DriverSQLite:
		return "sqlite3", "sqlite", nil
	case config.DriverMySQL:
		return "mysql", "mysql", nil
	default:
		return "", "", fmt.Errorf("no migrations for storage driver %q", driver)
	}
}

func setup(driver string) (string, error) {
	dialect, dir, err := gooseDialect(driver)
	if err != nil {
		return "", err
	}
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect(dialect); err != nil {
		return "", fmt.Errorf("failed to set goose dialect: %w", err)
	}
	return dir, nil
}

// RunMigrations executes all pending database migrations
func RunMigrations(db *sql.DB, driver string, logger *zap.Logger) error {
	dir, err := setup(driver)
	if err != nil {
		return err
	}

	logger.Info("Checking for pending migrations...", zap.String("driver", driver))

	if err := goose.Up(db, dir); err != nil {
		logger.Error("Failed to run migrations", zap.Error(err))
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Info("Migrations completed successfully")
	return nil
}

// RollbackMigration reverts the most recently applied migration.
func RollbackMigration(db *sql.DB, driver string) error {
	dir, err := setup(driver)
	if err != nil {
		return err
	}
	if err := goose.Down(db, dir); err != nil {
		return fmt.Errorf("failed to roll back migration: %w", err)
	}
	return nil
}

// GetMigrationStatus prints the current migration status
func GetMigrationStatus(db *sql.DB, driver string) error {
	dir, err := setup(driver)
	if err != nil {
		return err
	}

	return goose.Status(db, dir)
}

// CurrentVersion returns the latest applied migration version.
func CurrentVersion(db *sql.DB, driver string) (int64, error) {
	if _, err := setup(driver); err != nil {
		return 0, err
	}
	return goose.GetDBVersion(db)
}
