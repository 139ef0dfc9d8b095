package service

import (
	"context"
	"fmt"
	"sync"

	"inventory-api/internal/domain"
	"inventory-api/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ValidationResult is the outcome of KeyStore.Validate.
type ValidationResult int

const (
	KeyOK ValidationResult = iota
	KeyMissing
	KeyExpired
)

func (r ValidationResult) String() string {
	switch r {
	case KeyOK:
		return "ok"
	case KeyMissing:
		return "missing"
	case KeyExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// KeyStore owns the active API keys. Every mutation is written to the backing
// repository.Store before it becomes visible in memory.
type KeyStore struct {
	mu     sync.RWMutex
	keys   map[string]domain.APIKey
	store  repository.Store
	logger *zap.Logger
	opts   options
}

func NewKeyStore(store repository.Store, logger *zap.Logger, opts ...Option) *KeyStore {
	return &KeyStore{
		keys:   make(map[string]domain.APIKey),
		store:  store,
		logger: logger,
		opts:   buildOptions(opts),
	}
}

// Load replaces the in-memory table with whatever the repository holds.
// Expired records are kept; they are evicted on first use.
func (s *KeyStore) Load(ctx context.Context) error {
	keys, err := s.store.LoadKeys(ctx)
	if err != nil {
		return fmt.Errorf("failed to load api keys: %w", err)
	}

	table := make(map[string]domain.APIKey, len(keys))
	for _, k := range keys {
		table[k.Key] = k
	}

	s.mu.Lock()
	s.keys = table
	s.mu.Unlock()

	s.logger.Info("API keys loaded", zap.Int("count", len(table)))
	return nil
}

// Issue creates a key that lives for the duration named by spec.
func (s *KeyStore) Issue(ctx context.Context, spec string) (domain.APIKey, error) {
	lifetime, err := ParseDuration(spec)
	if err != nil {
		return domain.APIKey{}, err
	}

	now := s.opts.timestamp()
	key := domain.APIKey{
		Key:       s.newToken(),
		CreatedAt: now,
		ExpiresAt: now.Add(lifetime),
	}

	if err := s.store.SaveKey(ctx, key); err != nil {
		return domain.APIKey{}, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	s.mu.Lock()
	s.keys[key.Key] = key
	s.mu.Unlock()

	s.opts.metrics.KeyIssued()
	s.logger.Info("API key issued",
		zap.String("api_key_prefix", prefix(key.Key)),
		zap.Time("expires_at", key.ExpiresAt),
	)
	return key, nil
}

// newToken returns a random v4 UUID not already in the table.
func (s *KeyStore) newToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for {
		token := uuid.NewString()
		if _, taken := s.keys[token]; !taken {
			return token
		}
	}
}

// Validate reports whether token may be used now. An expired token is removed
// from the table as a side effect, so the next call reports KeyMissing. The
// removal is persisted best effort; a failure is logged and not returned.
func (s *KeyStore) Validate(ctx context.Context, token string) ValidationResult {
	result := s.validate(ctx, token)
	s.opts.metrics.KeyValidated(result.String())
	return result
}

func (s *KeyStore) validate(ctx context.Context, token string) ValidationResult {
	now := s.opts.now()

	s.mu.RLock()
	key, ok := s.keys[token]
	s.mu.RUnlock()

	if !ok {
		return KeyMissing
	}
	if !key.ExpiredAt(now) {
		return KeyOK
	}

	s.mu.Lock()
	current, ok := s.keys[token]
	if !ok {
		// Evicted by a concurrent request.
		s.mu.Unlock()
		return KeyExpired
	}
	if !current.ExpiredAt(now) {
		s.mu.Unlock()
		return KeyOK
	}
	delete(s.keys, token)
	s.mu.Unlock()

	if err := s.store.DeleteKey(ctx, token); err != nil {
		s.logger.Warn("Failed to persist eviction of expired API key",
			zap.String("api_key_prefix", prefix(token)),
			zap.Error(err),
		)
	}
	s.logger.Info("Expired API key evicted", zap.String("api_key_prefix", prefix(token)))
	return KeyExpired
}

// Revoke deletes token. Revoking an unknown token succeeds.
func (s *KeyStore) Revoke(ctx context.Context, token string) error {
	if err := s.store.DeleteKey(ctx, token); err != nil {
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	s.mu.Lock()
	_, existed := s.keys[token]
	delete(s.keys, token)
	s.mu.Unlock()

	if existed {
		s.opts.metrics.KeyRevoked()
		s.logger.Info("API key revoked", zap.String("api_key_prefix", prefix(token)))
	}
	return nil
}

// lookup returns the record for token without evaluating expiry.
func (s *KeyStore) lookup(token string) (domain.APIKey, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	k, ok := s.keys[token]
	return k, ok
}

func (s *KeyStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.keys)
}

// prefix keeps full tokens out of the logs.
func prefix(token string) string {
	if len(token) > 8 {
		return token[:8]
	}
	return token
}
