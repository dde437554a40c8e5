package cache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
)

// MemoryStore is an in-process key-value store with expiration.
// It backs OAuth state and per-user sync locks when Redis is not configured.
type MemoryStore struct {
	cache *gocache.Cache
	// lockMu makes the token check and delete in Unlock atomic
	lockMu sync.Mutex
}

// NewMemoryStore creates a new in-memory store that purges expired items every 10 minutes
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		cache: gocache.New(1*time.Hour, 10*time.Minute),
	}
}

// Set stores a key-value pair with expiration
func (ms *MemoryStore) Set(key string, value string, expiration time.Duration) {
	ms.cache.Set(key, value, expiration)
}

// Get retrieves a value by key
func (ms *MemoryStore) Get(key string) (string, bool) {
	x, found := ms.cache.Get(key)
	if !found {
		return "", false
	}
	value, ok := x.(string)
	return value, ok
}

// Delete removes a key
func (ms *MemoryStore) Delete(key string) {
	ms.cache.Delete(key)
}

// TryLock acquires key for ttl. It returns false when the key is already held;
// the token identifies this acquisition.
func (ms *MemoryStore) TryLock(_ context.Context, key string, ttl time.Duration) (string, bool, error) {
	ms.lockMu.Lock()
	defer ms.lockMu.Unlock()

	token := uuid.NewString()
	if err := ms.cache.Add(key, token, ttl); err != nil {
		return "", false, nil
	}
	return token, true, nil
}

// Unlock releases key if it is still held by token
func (ms *MemoryStore) Unlock(_ context.Context, key, token string) error {
	ms.lockMu.Lock()
	defer ms.lockMu.Unlock()

	if current, ok := ms.Get(key); ok && current == token {
		ms.cache.Delete(key)
	}
	return nil
}
