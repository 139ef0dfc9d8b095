//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"inventory-api/internal/config"
	"inventory-api/internal/database"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

func TestSQLStorePostgres(t *testing.T) {
	ctx := context.Background()
	logger, _ := zap.NewDevelopment()

	var (
		dbName = "inventory"
		dbPwd  = "password"
		dbUser = "user"
	)

	dbContainer, err := postgres.Run(
		ctx,
		"postgres:16",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPwd),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatalf("could not start postgres container: %v", err)
	}
	t.Cleanup(func() {
		if err := dbContainer.Terminate(context.Background()); err != nil {
			t.Logf("could not terminate postgres container: %v", err)
		}
	})

	dbHost, err := dbContainer.Host(ctx)
	if err != nil {
		t.Fatal(err)
	}
	dbPort, err := dbContainer.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatal(err)
	}

	cfg := config.DatabaseConfig{
		Host:     dbHost,
		Port:     dbPort.Port(),
		User:     dbUser,
		Password: dbPwd,
		Database: dbName,
		Schema:   "public",
	}

	db, err := database.Open(ctx, config.DriverPostgres, cfg)
	if err != nil {
		t.Fatalf("Failed to open postgres: %v", err)
	}
	if err := database.RunMigrations(db.DB, config.DriverPostgres, logger); err != nil {
		t.Fatalf("Failed to migrate postgres: %v", err)
	}

	store := NewSQLStore(db, config.DriverPostgres)
	defer store.Close()

	testStoreContract(t, store)
}
