package repository

import (
	"context"
	"fmt"

	"inventory-api/internal/config"
	"inventory-api/internal/database"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Open builds the Store selected by cfg.Storage.Driver. Relational drivers are
// migrated before the store is returned.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (Store, error) {
	driver := cfg.Storage.Driver
	logger.Info("Opening storage", zap.String("driver", driver))

	switch driver {
	case config.DriverMemory:
		return NewMemoryStore(), nil

	case config.DriverFile:
		return NewFileStore(cfg.Storage.DataDir)

	case config.DriverPostgres, config.DriverSQLite, config.DriverMySQL:
		db, err := database.Open(ctx, driver, cfg.Database)
		if err != nil {
			return nil, err
		}
		if err := database.RunMigrations(db.DB, driver, logger); err != nil {
			db.Close()
			return nil, err
		}
		return NewSQLStore(db, driver), nil

	case config.DriverRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		return NewRedisStore(client, cfg.Redis.KeyPrefix), nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q", driver)
	}
}
