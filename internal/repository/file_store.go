package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"inventory-api/internal/domain"
)

const (
	productsFile = "products.json"
	keysFile     = "api-keys.json"
)

// keyEntry is the on-disk shape of one API key; the token is the map key.
type keyEntry struct {
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type fileStore struct {
	mu  sync.Mutex
	dir string
}

// NewFileStore returns a Store that keeps products.json and api-keys.json in
// dir. Every write goes to a temp file that is renamed over the target.
func NewFileStore(dir string) (Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &fileStore{dir: dir}, nil
}

func (s *fileStore) LoadProducts(ctx context.Context) ([]domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	products := []domain.Product{}
	if err := s.readJSON(productsFile, &products); err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}
	return products, nil
}

func (s *fileStore) SaveProducts(ctx context.Context, products []domain.Product) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if products == nil {
		products = []domain.Product{}
	}
	if err := s.writeJSON(productsFile, products); err != nil {
		return fmt.Errorf("failed to save products: %w", err)
	}
	return nil
}

func (s *fileStore) LoadKeys(ctx context.Context) ([]domain.APIKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.readKeys()
	if err != nil {
		return nil, err
	}
	keys := make([]domain.APIKey, 0, len(entries))
	for token, e := range entries {
		keys = append(keys, domain.APIKey{Key: token, CreatedAt: e.CreatedAt, ExpiresAt: e.ExpiresAt})
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Key < keys[j].Key })
	return keys, nil
}

func (s *fileStore) SaveKey(ctx context.Context, key domain.APIKey) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.readKeys()
	if err != nil {
		return err
	}
	entries[key.Key] = keyEntry{CreatedAt: key.CreatedAt, ExpiresAt: key.ExpiresAt}
	if err := s.writeJSON(keysFile, entries); err != nil {
		return fmt.Errorf("failed to save api key: %w", err)
	}
	return nil
}

func (s *fileStore) DeleteKey(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.readKeys()
	if err != nil {
		return err
	}
	if _, ok := entries[key]; !ok {
		return nil
	}
	delete(entries, key)
	if err := s.writeJSON(keysFile, entries); err != nil {
		return fmt.Errorf("failed to delete api key: %w", err)
	}
	return nil
}

func (s *fileStore) Ping(ctx context.Context) error {
	_, err := os.Stat(s.dir)
	return err
}

func (s *fileStore) Close() error { return nil }

func (s *fileStore) readKeys() (map[string]keyEntry, error) {
	entries := map[string]keyEntry{}
	if err := s.readJSON(keysFile, &entries); err != nil {
		return nil, fmt.Errorf("failed to load api keys: %w", err)
	}
	if entries == nil {
		entries = map[string]keyEntry{}
	}
	return entries, nil
}

// readJSON leaves v untouched when the file does not exist or is empty.
func (s *fileStore) readJSON(name string, v any) error {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}

func (s *fileStore) writeJSON(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, name+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, filepath.Join(s.dir, name))
}
