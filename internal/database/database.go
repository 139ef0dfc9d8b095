package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"inventory-api/internal/config"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// SQLiteMemoryDSN opens a private in-memory database. Callers must keep a
// single connection open or every new connection sees an empty schema.
const SQLiteMemoryDSN = ":memory:"

// DriverName maps a storage driver to the database/sql driver it registers.
func DriverName(driver string) (string, error) {
	switch driver {
	case config.DriverPostgres:
		return "pgx", nil
	case config.DriverSQLite:
		return "sqlite", nil
	case config.DriverMySQL:
		return "mysql", nil
	default:
		return "", fmt.Errorf("storage driver %q is not relational", driver)
	}
}

// DSN returns the connection string for driver built from cfg.
func DSN(driver string, cfg config.DatabaseConfig) (string, error) {
	switch driver {
	case config.DriverPostgres:
		return cfg.PostgresDSN(), nil
	case config.DriverSQLite:
		if cfg.DSN != "" {
			return cfg.DSN, nil
		}
		if cfg.SQLitePath == "" || cfg.SQLitePath == SQLiteMemoryDSN {
			return SQLiteMemoryDSN, nil
		}
		if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0o755); err != nil {
			return "", fmt.Errorf("failed to create sqlite directory: %w", err)
		}
		return cfg.SQLitePath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", nil
	case config.DriverMySQL:
		return cfg.MySQLDSN(), nil
	default:
		return "", fmt.Errorf("storage driver %q is not relational", driver)
	}
}

// Open connects to the relational database selected by driver and verifies
// the connection.
func Open(ctx context.Context, driver string, cfg config.DatabaseConfig) (*sqlx.DB, error) {
	name, err := DriverName(driver)
	if err != nil {
		return nil, err
	}
	dsn, err := DSN(driver, cfg)
	if err != nil {
		return nil, err
	}

	db, err := sqlx.Open(name, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}

	if driver == config.DriverSQLite {
		// SQLite serialises writers and :memory: is per connection.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping %s database: %w", driver, err)
	}

	return db, nil
}

// Health reports basic connection pool statistics.
func Health(ctx context.Context, db *sqlx.DB) map[string]string {
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	stats := make(map[string]string)
	if err := db.PingContext(ctx); err != nil {
		stats["status"] = "down"
		stats["error"] = err.Error()
		return stats
	}

	dbStats := db.Stats()
	stats["status"] = "up"
	stats["open_connections"] = fmt.Sprintf("%d", dbStats.OpenConnections)
	stats["in_use"] = fmt.Sprintf("%d", dbStats.InUse)
	stats["idle"] = fmt.Sprintf("%d", dbStats.Idle)
	return stats
}
