package store

import (
	"context"
	"sync"
	"time"

	"github.com/agorafi/marketplace/core"
	"github.com/agorafi/marketplace/ports"
)

// MemoryNonceStore is an in-memory implementation of the NonceStore
// interface, intended for tests. TTLs are honored lazily on read.
type MemoryNonceStore struct {
	mu     sync.Mutex
	nonces map[string]memoryNonce
}

type memoryNonce struct {
	value     string
	expiresAt time.Time
}

// NewMemoryNonceStore creates a new in-memory nonce store.
func NewMemoryNonceStore() ports.NonceStore {
	return &MemoryNonceStore{
		nonces: make(map[string]memoryNonce),
	}
}

// Put upserts the nonce for an address.
func (s *MemoryNonceStore) Put(ctx context.Context, address, nonce string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl)
	}
	s.nonces[core.NormalizeWallet(address)] = memoryNonce{value: nonce, expiresAt: expiresAt}
	return nil
}

// Get returns the current nonce for an address.
func (s *MemoryNonceStore) Get(ctx context.Context, address string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := core.NormalizeWallet(address)
	entry, ok := s.nonces[key]
	if !ok {
		return "", core.ErrNotFound("nonce not found")
	}
	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		delete(s.nonces, key)
		return "", core.ErrNotFound("nonce not found")
	}
	return entry.value, nil
}

// CompareAndDelete atomically consumes the nonce if it is still current.
func (s *MemoryNonceStore) CompareAndDelete(ctx context.Context, address, nonce string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := core.NormalizeWallet(address)
	entry, ok := s.nonces[key]
	if !ok || entry.value != nonce {
		return false, nil
	}
	delete(s.nonces, key)
	return true, nil
}
