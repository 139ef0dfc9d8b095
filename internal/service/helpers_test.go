package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"inventory-api/internal/domain"
	"inventory-api/internal/repository"
)

var errStoreDown = errors.New("store unavailable")

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

// flakyStore wraps a real store and fails the operations switched on.
type flakyStore struct {
	repository.Store
	mu         sync.Mutex
	failSave   bool
	failDelete bool
	deletes    int
}

func newFlakyStore() *flakyStore {
	return &flakyStore{Store: repository.NewMemoryStore()}
}

func (s *flakyStore) set(save, del bool) {
	s.mu.Lock()
	s.failSave, s.failDelete = save, del
	s.mu.Unlock()
}

func (s *flakyStore) SaveProducts(ctx context.Context, products []domain.Product) error {
	s.mu.Lock()
	fail := s.failSave
	s.mu.Unlock()
	if fail {
		return errStoreDown
	}
	return s.Store.SaveProducts(ctx, products)
}

func (s *flakyStore) SaveKey(ctx context.Context, key domain.APIKey) error {
	s.mu.Lock()
	fail := s.failSave
	s.mu.Unlock()
	if fail {
		return errStoreDown
	}
	return s.Store.SaveKey(ctx, key)
}

func (s *flakyStore) DeleteKey(ctx context.Context, key string) error {
	s.mu.Lock()
	s.deletes++
	fail := s.failDelete
	s.mu.Unlock()
	if fail {
		return errStoreDown
	}
	return s.Store.DeleteKey(ctx, key)
}
