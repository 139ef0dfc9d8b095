package repository

import (
	"context"
	"time"

	"inventory-api/internal/domain"
)

// Store persists the product catalog and the API-key table. Products use
// full-replace semantics, keys use upsert and delete.
//
// Load methods return an empty slice, not an error, when nothing has been
// persisted yet.
type Store interface {
	LoadProducts(ctx context.Context) ([]domain.Product, error)
	SaveProducts(ctx context.Context, products []domain.Product) error
	LoadKeys(ctx context.Context) ([]domain.APIKey, error)
	SaveKey(ctx context.Context, key domain.APIKey) error
	DeleteKey(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close() error
}

const defaultTimeout = 5 * time.Second

func withTimeout(parent context.Context, d time.Duration, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(parent, d)
	defer cancel()
	return fn(ctx)
}

func cloneProducts(products []domain.Product) []domain.Product {
	out := make([]domain.Product, len(products))
	for i, p := range products {
		p.Images = append([]string(nil), p.Images...)
		out[i] = p
	}
	return out
}
