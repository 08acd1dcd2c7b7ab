package revocation

import (
	"context"
	"sync"
	"time"
)

// InMemoryStore is a single-process revocation list for tests and dev mode.
type InMemoryStore struct {
	mu      sync.RWMutex
	revoked map[string]time.Time
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{revoked: make(map[string]time.Time)}
}

func (s *InMemoryStore) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	if jti == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[jti] = time.Now().Add(ttl)
	return nil
}

func (s *InMemoryStore) IsRevoked(_ context.Context, jti string) (bool, error) {
	if jti == "" {
		return false, nil
	}
	s.mu.RLock()
	expiry, ok := s.revoked[jti]
	s.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if time.Now().After(expiry) {
		s.mu.Lock()
		delete(s.revoked, jti)
		s.mu.Unlock()
		return false, nil
	}
	return true, nil
}
