package repository

import (
	"context"
	"sort"
	"sync"

	"inventory-api/internal/domain"
)

type memoryStore struct {
	mu       sync.RWMutex
	products []domain.Product
	keys     map[string]domain.APIKey
}

// NewMemoryStore returns a Store that keeps everything in process memory.
// State is lost on restart.
func NewMemoryStore() Store {
	return &memoryStore{keys: make(map[string]domain.APIKey)}
}

func (s *memoryStore) LoadProducts(ctx context.Context) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneProducts(s.products), nil
}

func (s *memoryStore) SaveProducts(ctx context.Context, products []domain.Product) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = cloneProducts(products)
	return nil
}

func (s *memoryStore) LoadKeys(ctx context.Context) ([]domain.APIKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]domain.APIKey, 0, len(s.keys))
	for _, k := range s.keys {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Key < keys[j].Key })
	return keys, nil
}

func (s *memoryStore) SaveKey(ctx context.Context, key domain.APIKey) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys[key.Key] = key
	return nil
}

func (s *memoryStore) DeleteKey(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.keys, key)
	return nil
}

func (s *memoryStore) Ping(ctx context.Context) error { return ctx.Err() }

func (s *memoryStore) Close() error { return nil }
