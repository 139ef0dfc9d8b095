package service

import (
	"crypto/subtle"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// BcryptCost is the cost used when hashing a master key for MASTER_KEY_HASH.
const BcryptCost = 10

// MasterKey checks the shared admin secret. When a bcrypt hash is configured
// it takes precedence over the plain value.
type MasterKey struct {
	plain []byte
	hash  []byte
}

func NewMasterKey(plain, hash string) MasterKey {
	return MasterKey{plain: []byte(plain), hash: []byte(hash)}
}

// Verify reports whether candidate matches. An empty candidate never does.
func (m MasterKey) Verify(candidate string) bool {
	if candidate == "" {
		return false
	}
	if len(m.hash) > 0 {
		return bcrypt.CompareHashAndPassword(m.hash, []byte(candidate)) == nil
	}
	if len(m.plain) == 0 {
		return false
	}
	return subtle.ConstantTimeCompare(m.plain, []byte(candidate)) == 1
}

// HashMasterKey returns the bcrypt hash to put in MASTER_KEY_HASH.
func HashMasterKey(plain string) (string, error) {
	if plain == "" {
		return "", fmt.Errorf("master key must not be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash master key: %w", err)
	}
	return string(hash), nil
}
