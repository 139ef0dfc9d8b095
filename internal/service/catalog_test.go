package service

import (
	"context"
	"errors"
	"slices"
	"testing"

	"inventory-api/internal/domain"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"go.uber.org/zap"
)

func newTestCatalog(t *testing.T) (*Catalog, *flakyStore) {
	t.Helper()
	logger, _ := zap.NewDevelopment()
	store := newFlakyStore()
	clock := newFakeClock()
	return NewCatalog(store, NewGenerator(7), DefaultProductCount, logger, WithClock(clock.Now)), store
}

func TestCatalogInitializesWhenStorageIsEmpty(t *testing.T) {
	catalog, store := newTestCatalog(t)
	ctx := context.Background()

	if err := catalog.LoadOrInitialize(ctx); err != nil {
		t.Fatalf("LoadOrInitialize failed: %v", err)
	}
	if catalog.Len() != DefaultProductCount {
		t.Fatalf("Expected %d products, got %d", DefaultProductCount, catalog.Len())
	}

	persisted, err := store.LoadProducts(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(persisted) != DefaultProductCount {
		t.Errorf("Generated catalog was not persisted, found %d products", len(persisted))
	}
}

func TestCatalogLoadsPersistedProducts(t *testing.T) {
	catalog, store := newTestCatalog(t)
	ctx := context.Background()

	existing := []domain.Product{
		{ID: 1, Title: "Kept", Category: "books"},
		{ID: 2, Title: "Also kept", Category: "toys"},
	}
	if err := store.SaveProducts(ctx, existing); err != nil {
		t.Fatal(err)
	}

	if err := catalog.LoadOrInitialize(ctx); err != nil {
		t.Fatalf("LoadOrInitialize failed: %v", err)
	}
	if catalog.Len() != 2 {
		t.Fatalf("Expected the 2 persisted products, got %d", catalog.Len())
	}
	p, err := catalog.GetByID(2)
	if err != nil || p.Title != "Also kept" {
		t.Errorf("GetByID(2) = %+v, %v", p, err)
	}
}

func TestCatalogInitializeFailsWhenPersistFails(t *testing.T) {
	catalog, store := newTestCatalog(t)
	store.set(true, false)

	if err := catalog.LoadOrInitialize(context.Background()); !errors.Is(err, ErrPersistence) {
		t.Fatalf("Expected ErrPersistence, got %v", err)
	}
}

func TestCatalogGetByID(t *testing.T) {
	catalog, _ := newTestCatalog(t)
	if _, err := catalog.Regenerate(context.Background(), 5); err != nil {
		t.Fatal(err)
	}

	for id := 1; id <= 5; id++ {
		p, err := catalog.GetByID(id)
		if err != nil {
			t.Fatalf("GetByID(%d) failed: %v", id, err)
		}
		if p.ID != id {
			t.Errorf("GetByID(%d) returned product %d", id, p.ID)
		}
	}
	for _, id := range []int{0, -1, 6, 1000} {
		if _, err := catalog.GetByID(id); !errors.Is(err, ErrProductNotFound) {
			t.Errorf("GetByID(%d) = %v, want ErrProductNotFound", id, err)
		}
	}
}

func TestCatalogListCategories(t *testing.T) {
	catalog, _ := newTestCatalog(t)
	err := catalog.ReplaceAll(context.Background(), []domain.Product{
		{ID: 1, Category: "toys"},
		{ID: 2, Category: "books"},
		{ID: 3, Category: "toys"},
		{ID: 4, Category: "automotive"},
	})
	if err != nil {
		t.Fatal(err)
	}

	got := catalog.ListCategories()
	want := []string{"automotive", "books", "toys"}
	if !slices.Equal(got, want) {
		t.Errorf("ListCategories() = %v, want %v", got, want)
	}

	got[0] = "mutated"
	if catalog.ListCategories()[0] != "automotive" {
		t.Error("ListCategories exposes internal state")
	}
}

func TestCatalogReplaceAllKeepsOldGenerationOnFailure(t *testing.T) {
	catalog, store := newTestCatalog(t)
	ctx := context.Background()

	if _, err := catalog.Regenerate(ctx, 10); err != nil {
		t.Fatal(err)
	}
	store.set(true, false)

	if _, err := catalog.Regenerate(ctx, 3); !errors.Is(err, ErrPersistence) {
		t.Fatalf("Expected ErrPersistence, got %v", err)
	}
	if catalog.Len() != 10 {
		t.Errorf("Failed regeneration changed the visible catalog to %d products", catalog.Len())
	}
}

func TestCatalogRejectsInvalidInput(t *testing.T) {
	catalog, _ := newTestCatalog(t)
	ctx := context.Background()

	if _, err := catalog.Regenerate(ctx, 0); !errors.Is(err, ErrInvalidCount) {
		t.Errorf("Regenerate(0) = %v, want ErrInvalidCount", err)
	}
	err := catalog.ReplaceAll(ctx, []domain.Product{{ID: 1}, {ID: 1}})
	if !errors.Is(err, ErrDuplicateProduct) {
		t.Errorf("ReplaceAll with duplicate ids = %v, want ErrDuplicateProduct", err)
	}
}

// Test that regenerating with count N yields ids 1..N and nothing beyond.
func TestProperty_RegenerateReplacesCatalog(t *testing.T) {
	catalog, _ := newTestCatalog(t)
	ctx := context.Background()

	properties := gopter.NewProperties(nil)

	properties.Property("regenerate(N) yields exactly ids 1..N", prop.ForAll(
		func(before, after int) bool {
			if _, err := catalog.Regenerate(ctx, before); err != nil {
				return false
			}
			n, err := catalog.Regenerate(ctx, after)
			if err != nil || n != after || catalog.Len() != after {
				return false
			}
			for id := 1; id <= after; id++ {
				if p, err := catalog.GetByID(id); err != nil || p.ID != id {
					return false
				}
			}
			for id := after + 1; id <= before; id++ {
				if _, err := catalog.GetByID(id); !errors.Is(err, ErrProductNotFound) {
					return false
				}
			}
			return true
		},
		gen.IntRange(1, 200),
		gen.IntRange(1, 200),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
