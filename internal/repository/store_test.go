package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"inventory-api/internal/config"
	"inventory-api/internal/database"
	"inventory-api/internal/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var baseTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func sampleProducts(n int) []domain.Product {
	products := make([]domain.Product, n)
	for i := range products {
		created := baseTime.Add(time.Duration(i) * time.Hour)
		products[i] = domain.Product{
			ID:          i + 1,
			Title:       "Product " + string(rune('A'+i%26)),
			Price:       float64(i*3) + 0.99,
			Description: "description",
			Category:    []string{"books", "toys", "home"}[i%3],
			Images:      []string{"https://picsum.photos/seed/1/640/480", "https://picsum.photos/seed/2/640/480"},
			CreatedAt:   created,
			UpdatedAt:   created.Add(90 * time.Minute),
		}
	}
	return products
}

func sameProducts(a, b []domain.Product) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		x, y := a[i], b[i]
		if x.ID != y.ID || x.Title != y.Title || x.Price != y.Price ||
			x.Description != y.Description || x.Category != y.Category ||
			!x.CreatedAt.Equal(y.CreatedAt) || !x.UpdatedAt.Equal(y.UpdatedAt) ||
			len(x.Images) != len(y.Images) {
			return false
		}
		for j := range x.Images {
			if x.Images[j] != y.Images[j] {
				return false
			}
		}
	}
	return true
}

// testStoreContract exercises the behaviour every backend must share.
func testStoreContract(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("empty store loads nothing", func(t *testing.T) {
		products, err := store.LoadProducts(ctx)
		if err != nil {
			t.Fatalf("LoadProducts failed: %v", err)
		}
		if len(products) != 0 {
			t.Errorf("Expected no products, got %d", len(products))
		}
		keys, err := store.LoadKeys(ctx)
		if err != nil {
			t.Fatalf("LoadKeys failed: %v", err)
		}
		if len(keys) != 0 {
			t.Errorf("Expected no keys, got %d", len(keys))
		}
	})

	t.Run("products are replaced wholesale", func(t *testing.T) {
		first := sampleProducts(7)
		if err := store.SaveProducts(ctx, first); err != nil {
			t.Fatalf("SaveProducts failed: %v", err)
		}
		loaded, err := store.LoadProducts(ctx)
		if err != nil {
			t.Fatalf("LoadProducts failed: %v", err)
		}
		if !sameProducts(first, loaded) {
			t.Fatalf("Loaded products differ from saved ones:\n%+v\n%+v", first, loaded)
		}

		second := sampleProducts(3)
		if err := store.SaveProducts(ctx, second); err != nil {
			t.Fatalf("SaveProducts failed: %v", err)
		}
		loaded, err = store.LoadProducts(ctx)
		if err != nil {
			t.Fatalf("LoadProducts failed: %v", err)
		}
		if len(loaded) != 3 {
			t.Errorf("Expected 3 products after replace, got %d", len(loaded))
		}
	})

	t.Run("keys upsert and delete", func(t *testing.T) {
		k1 := domain.APIKey{Key: "key-1", CreatedAt: baseTime, ExpiresAt: baseTime.Add(time.Hour)}
		k2 := domain.APIKey{Key: "key-2", CreatedAt: baseTime, ExpiresAt: baseTime.Add(24 * time.Hour)}

		for _, k := range []domain.APIKey{k1, k2} {
			if err := store.SaveKey(ctx, k); err != nil {
				t.Fatalf("SaveKey failed: %v", err)
			}
		}

		k1.ExpiresAt = baseTime.Add(2 * time.Hour)
		if err := store.SaveKey(ctx, k1); err != nil {
			t.Fatalf("SaveKey upsert failed: %v", err)
		}

		keys, err := store.LoadKeys(ctx)
		if err != nil {
			t.Fatalf("LoadKeys failed: %v", err)
		}
		if len(keys) != 2 {
			t.Fatalf("Expected 2 keys, got %d", len(keys))
		}
		if keys[0].Key != "key-1" || !keys[0].ExpiresAt.Equal(k1.ExpiresAt) || !keys[0].CreatedAt.Equal(baseTime) {
			t.Errorf("Upsert did not overwrite key-1: %+v", keys[0])
		}

		if err := store.DeleteKey(ctx, "key-1"); err != nil {
			t.Fatalf("DeleteKey failed: %v", err)
		}
		// Deleting an absent key is not an error.
		if err := store.DeleteKey(ctx, "key-1"); err != nil {
			t.Fatalf("DeleteKey of absent key failed: %v", err)
		}

		keys, err = store.LoadKeys(ctx)
		if err != nil {
			t.Fatalf("LoadKeys failed: %v", err)
		}
		if len(keys) != 1 || keys[0].Key != "key-2" {
			t.Errorf("Expected only key-2 to remain, got %+v", keys)
		}
	})

	t.Run("ping", func(t *testing.T) {
		if err := store.Ping(ctx); err != nil {
			t.Errorf("Ping failed: %v", err)
		}
	})
}

func TestMemoryStore(t *testing.T) {
	testStoreContract(t, NewMemoryStore())
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	products := sampleProducts(1)
	if err := store.SaveProducts(ctx, products); err != nil {
		t.Fatal(err)
	}
	products[0].Images[0] = "mutated"

	loaded, _ := store.LoadProducts(ctx)
	if loaded[0].Images[0] == "mutated" {
		t.Error("Store shares the caller's image slice")
	}
}

func TestFileStore(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	testStoreContract(t, store)
}

func TestFileStoreSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	products := sampleProducts(4)
	if err := store.SaveProducts(ctx, products); err != nil {
		t.Fatal(err)
	}
	key := domain.APIKey{Key: "persisted", CreatedAt: baseTime, ExpiresAt: baseTime.Add(time.Hour)}
	if err := store.SaveKey(ctx, key); err != nil {
		t.Fatal(err)
	}

	reopened, err := NewFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	loaded, err := reopened.LoadProducts(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !sameProducts(products, loaded) {
		t.Error("Products were not restored from disk")
	}
	keys, err := reopened.LoadKeys(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(keys) != 1 || keys[0].Key != "persisted" {
		t.Errorf("Keys were not restored from disk: %+v", keys)
	}

	// No temp files are left behind.
	entries, _ := os.ReadDir(dir)
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".tmp" {
			t.Errorf("Leftover temp file %s", e.Name())
		}
	}
}

func TestFileStoreRejectsCorruptFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, productsFile), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := store.LoadProducts(context.Background()); err == nil {
		t.Error("Expected an error for a corrupt products file")
	}
}

func newSQLiteStore(t *testing.T) Store {
	t.Helper()
	logger, _ := zap.NewDevelopment()

	db, err := database.Open(context.Background(), config.DriverSQLite, config.DatabaseConfig{SQLitePath: database.SQLiteMemoryDSN})
	if err != nil {
		t.Fatalf("Failed to open sqlite: %v", err)
	}
	if err := database.RunMigrations(db.DB, config.DriverSQLite, logger); err != nil {
		t.Fatalf("Failed to migrate sqlite: %v", err)
	}
	store := NewSQLStore(db, config.DriverSQLite)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLStoreSQLite(t *testing.T) {
	testStoreContract(t, newSQLiteStore(t))
}

func TestRedisStore(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisStore(client, "test")
	defer store.Close()

	testStoreContract(t, store)

	if !mr.Exists("test:products") {
		t.Error("Expected products under test:products")
	}
	if ttl := mr.TTL("test:apikeys"); ttl != 0 {
		t.Errorf("API key hash must not expire, got TTL %v", ttl)
	}
}

func TestOpenSelectsBackend(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	ctx := context.Background()

	cases := []struct {
		name string
		cfg  config.Config
	}{
		{"memory", config.Config{Storage: config.StorageConfig{Driver: config.DriverMemory}}},
		{"file", config.Config{Storage: config.StorageConfig{Driver: config.DriverFile, DataDir: t.TempDir()}}},
		{"sqlite", config.Config{
			Storage:  config.StorageConfig{Driver: config.DriverSQLite},
			Database: config.DatabaseConfig{SQLitePath: filepath.Join(t.TempDir(), "inventory.db")},
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store, err := Open(ctx, &tc.cfg, logger)
			if err != nil {
				t.Fatalf("Open failed: %v", err)
			}
			defer store.Close()
			if err := store.Ping(ctx); err != nil {
				t.Errorf("Ping failed: %v", err)
			}
		})
	}

	if _, err := Open(ctx, &config.Config{Storage: config.StorageConfig{Driver: "tape"}}, logger); err == nil {
		t.Error("Expected an error for an unknown driver")
	}
}

// Test that saving N products always leaves exactly those N products, whatever
// was stored before.
func TestProperty_SaveProductsIsFullReplace(t *testing.T) {
	store := newSQLiteStore(t)
	ctx := context.Background()

	properties := gopter.NewProperties(nil)

	properties.Property("load after save returns exactly the saved collection", prop.ForAll(
		func(before, after int) bool {
			if err := store.SaveProducts(ctx, sampleProducts(before)); err != nil {
				t.Logf("SaveProducts failed: %v", err)
				return false
			}
			want := sampleProducts(after)
			if err := store.SaveProducts(ctx, want); err != nil {
				t.Logf("SaveProducts failed: %v", err)
				return false
			}
			got, err := store.LoadProducts(ctx)
			if err != nil {
				t.Logf("LoadProducts failed: %v", err)
				return false
			}
			return sameProducts(want, got)
		},
		gen.IntRange(0, 40),
		gen.IntRange(0, 40),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
