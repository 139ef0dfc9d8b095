package service

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"inventory-api/internal/domain"
	"inventory-api/internal/repository"

	"go.uber.org/zap"
)

// DefaultProductCount is the catalog size generated on first start and when
// a regeneration request omits count.
const DefaultProductCount = 100

// snapshot is one immutable generation of the catalog.
type snapshot struct {
	products   []domain.Product
	byID       map[int]int
	categories []string
}

func newSnapshot(products []domain.Product) *snapshot {
	s := &snapshot{
		products: products,
		byID:     make(map[int]int, len(products)),
	}
	seen := make(map[string]struct{})
	for i, p := range products {
		s.byID[p.ID] = i
		if _, ok := seen[p.Category]; !ok {
			seen[p.Category] = struct{}{}
			s.categories = append(s.categories, p.Category)
		}
	}
	slices.Sort(s.categories)
	return s
}

// Catalog owns the in-memory product collection. Readers always see a
// complete generation; writers are serialised and persist before publishing.
type Catalog struct {
	current      atomic.Pointer[snapshot]
	writeMu      sync.Mutex
	store        repository.Store
	generator    *Generator
	defaultCount int
	logger       *zap.Logger
	opts         options
}

func NewCatalog(store repository.Store, generator *Generator, defaultCount int, logger *zap.Logger, opts ...Option) *Catalog {
	if defaultCount < 1 {
		defaultCount = DefaultProductCount
	}
	c := &Catalog{
		store:        store,
		generator:    generator,
		defaultCount: defaultCount,
		logger:       logger,
		opts:         buildOptions(opts),
	}
	c.current.Store(newSnapshot(nil))
	return c
}

// LoadOrInitialize restores the persisted catalog, generating and persisting
// a default-sized one when storage is empty.
func (c *Catalog) LoadOrInitialize(ctx context.Context) error {
	products, err := c.store.LoadProducts(ctx)
	if err != nil {
		return fmt.Errorf("failed to load products: %w", err)
	}

	if len(products) == 0 {
		c.logger.Info("No persisted products, generating catalog", zap.Int("count", c.defaultCount))
		_, err := c.Regenerate(ctx, c.defaultCount)
		return err
	}

	if err := checkUniqueIDs(products); err != nil {
		return err
	}
	c.publish(products)
	c.logger.Info("Catalog loaded", zap.Int("count", len(products)))
	return nil
}

// Regenerate replaces the catalog with count freshly generated products.
func (c *Catalog) Regenerate(ctx context.Context, count int) (int, error) {
	if count < 1 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidCount, count)
	}
	products := c.generator.Generate(count, c.opts.now())
	if err := c.ReplaceAll(ctx, products); err != nil {
		return 0, err
	}
	return len(products), nil
}

// ReplaceAll persists products and then swaps them in. When persistence
// fails the previous generation stays visible.
func (c *Catalog) ReplaceAll(ctx context.Context, products []domain.Product) error {
	if err := checkUniqueIDs(products); err != nil {
		return err
	}
	owned := slices.Clone(products)

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if err := c.store.SaveProducts(ctx, owned); err != nil {
		c.logger.Error("Failed to persist catalog", zap.Int("count", len(owned)), zap.Error(err))
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	c.publish(owned)
	c.opts.metrics.CatalogReplaced(len(owned))
	c.logger.Info("Catalog replaced", zap.Int("count", len(owned)))
	return nil
}

func (c *Catalog) publish(products []domain.Product) {
	c.current.Store(newSnapshot(products))
}

// GetByID returns the product with id in the current generation.
func (c *Catalog) GetByID(id int) (domain.Product, error) {
	snap := c.current.Load()
	i, ok := snap.byID[id]
	if !ok {
		return domain.Product{}, ErrProductNotFound
	}
	return snap.products[i], nil
}

// ListCategories returns the distinct categories present, sorted.
func (c *Catalog) ListCategories() []string {
	snap := c.current.Load()
	out := make([]string, len(snap.categories))
	copy(out, snap.categories)
	return out
}

// Products returns the current generation in catalog order. The slice is
// shared and must not be modified.
func (c *Catalog) Products() []domain.Product {
	return c.current.Load().products
}

func (c *Catalog) Len() int {
	return len(c.current.Load().products)
}

// Query runs q against the current generation.
func (c *Catalog) Query(q Query) Page {
	return q.Apply(c.Products())
}

func checkUniqueIDs(products []domain.Product) error {
	seen := make(map[int]struct{}, len(products))
	for _, p := range products {
		if _, dup := seen[p.ID]; dup {
			return fmt.Errorf("%w: %d", ErrDuplicateProduct, p.ID)
		}
		seen[p.ID] = struct{}{}
	}
	return nil
}
