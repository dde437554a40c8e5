package oauth

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"
)

// Store is a key/value store with expiry, backed by Redis or go-cache
type Store interface {
	Set(key string, value string, expiration time.Duration)
	Get(key string) (string, bool)
	Delete(key string)
}

// StateManager issues one-time OAuth state tokens bound to the user who started the flow
type StateManager struct {
	store      Store
	expiration time.Duration
}

// NewStateManager creates a new state manager
func NewStateManager(store Store) *StateManager {
	return &StateManager{
		store:      store,
		expiration: 15 * time.Minute,
	}
}

// GenerateState generates a random state token remembering userID
func (sm *StateManager) GenerateState(userID string) (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}

	state := base64.URLEncoding.EncodeToString(b)
	sm.store.Set(stateKey(state), userID, sm.expiration)

	return state, nil
}

// ConsumeState validates a state token and returns the bound user (one-time use)
func (sm *StateManager) ConsumeState(state string) (string, bool) {
	if state == "" {
		return "", false
	}
	key := stateKey(state)

	userID, exists := sm.store.Get(key)
	if !exists || userID == "" {
		return "", false
	}
	sm.store.Delete(key)

	return userID, true
}

func stateKey(state string) string {
	return fmt.Sprintf("oauth:state:%s", state)
}
