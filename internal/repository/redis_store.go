package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"inventory-api/internal/domain"

	"github.com/redis/go-redis/v9"
)

type redisStore struct {
	client   *redis.Client
	products string
	keys     string
}

// NewRedisStore returns a Store that keeps the catalog as one JSON string at
// <prefix>:products and API keys in the hash <prefix>:apikeys. Nothing is
// given a TTL; expiry stays the key store's decision.
func NewRedisStore(client *redis.Client, prefix string) Store {
	return &redisStore{
		client:   client,
		products: prefix + ":products",
		keys:     prefix + ":apikeys",
	}
}

func (s *redisStore) LoadProducts(ctx context.Context) ([]domain.Product, error) {
	data, err := s.client.Get(ctx, s.products).Bytes()
	if errors.Is(err, redis.Nil) {
		return []domain.Product{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}

	products := []domain.Product{}
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}
	return products, nil
}

func (s *redisStore) SaveProducts(ctx context.Context, products []domain.Product) error {
	if products == nil {
		products = []domain.Product{}
	}
	data, err := json.Marshal(products)
	if err != nil {
		return fmt.Errorf("failed to encode products: %w", err)
	}
	if err := s.client.Set(ctx, s.products, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save products: %w", err)
	}
	return nil
}

func (s *redisStore) LoadKeys(ctx context.Context) ([]domain.APIKey, error) {
	entries, err := s.client.HGetAll(ctx, s.keys).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load api keys: %w", err)
	}

	keys := make([]domain.APIKey, 0, len(entries))
	for token, raw := range entries {
		var e keyEntry
		if err := json.Unmarshal([]byte(raw), &e); err != nil {
			return nil, fmt.Errorf("failed to decode api key: %w", err)
		}
		keys = append(keys, domain.APIKey{Key: token, CreatedAt: e.CreatedAt, ExpiresAt: e.ExpiresAt})
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Key < keys[j].Key })
	return keys, nil
}

func (s *redisStore) SaveKey(ctx context.Context, key domain.APIKey) error {
	data, err := json.Marshal(keyEntry{CreatedAt: key.CreatedAt, ExpiresAt: key.ExpiresAt})
	if err != nil {
		return fmt.Errorf("failed to encode api key: %w", err)
	}
	if err := s.client.HSet(ctx, s.keys, key.Key, data).Err(); err != nil {
		return fmt.Errorf("failed to save api key: %w", err)
	}
	return nil
}

func (s *redisStore) DeleteKey(ctx context.Context, key string) error {
	if err := s.client.HDel(ctx, s.keys, key).Err(); err != nil {
		return fmt.Errorf("failed to delete api key: %w", err)
	}
	return nil
}

func (s *redisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *redisStore) Close() error {
	return s.client.Close()
}
