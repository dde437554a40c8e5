package oauth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnquangdev/advisor-calendar-sync/internal/infrastructure/cache"
)

func TestStateManager_OneTimeUse(t *testing.T) {
	sm := NewStateManager(cache.NewMemoryStore())

	state, err := sm.GenerateState("user-1")
	require.NoError(t, err)
	require.NotEmpty(t, state)

	userID, ok := sm.ConsumeState(state)
	require.True(t, ok)
	assert.Equal(t, "user-1", userID)

	_, ok = sm.ConsumeState(state)
	assert.False(t, ok)
}

func TestStateManager_Unknown(t *testing.T) {
	sm := NewStateManager(cache.NewMemoryStore())

	_, ok := sm.ConsumeState("nope")
	assert.False(t, ok)
	_, ok = sm.ConsumeState("")
	assert.False(t, ok)
}

func TestGoogleProvider_AuthURL(t *testing.T) {
	g := NewGoogleProvider("client", "secret", "http://localhost/cb")

	url := g.GetAuthURL("abc")
	assert.Contains(t, url, "state=abc")
	assert.Contains(t, url, "access_type=offline")
	assert.Contains(t, url, "prompt=consent")
	assert.Contains(t, url, "calendar.readonly")
}
