package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/johnquangdev/advisor-calendar-sync/internal/domain/entities"
	"github.com/johnquangdev/advisor-calendar-sync/internal/domain/repositories"
)

type calendarConnectionRepository struct {
	store *Store
}

// NewCalendarConnectionRepository creates a calendar connection repository over the store
func NewCalendarConnectionRepository(store *Store) repositories.CalendarConnectionRepository {
	return &calendarConnectionRepository{store: store}
}

func (r *calendarConnectionRepository) FindActive(_ context.Context, userID uuid.UUID, provider entities.CalendarProvider) (*entities.CalendarConnection, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	for _, c := range r.store.connections {
		if c.UserID == userID && c.Provider == provider && c.IsActive {
			cp := *c
			return &cp, nil
		}
	}
	return nil, entities.ErrConnectionNotFound
}

func (r *calendarConnectionRepository) Upsert(_ context.Context, conn *entities.CalendarConnection) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, c := range r.store.connections {
		if c.UserID == conn.UserID && c.Provider == conn.Provider {
			c.AccessToken = conn.AccessToken
			c.RefreshToken = conn.RefreshToken
			c.TokenExpiresAt = conn.TokenExpiresAt
			c.CalendarEmail = conn.CalendarEmail
			c.IsActive = conn.IsActive
			c.UpdatedAt = conn.UpdatedAt
			conn.ID = c.ID
			return nil
		}
	}
	if conn.ID == uuid.Nil {
		conn.ID = uuid.New()
	}
	cp := *conn
	r.store.connections[conn.ID] = &cp
	return nil
}

func (r *calendarConnectionRepository) UpdateAccessToken(_ context.Context, id uuid.UUID, accessToken string, expiresAt *time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	c, ok := r.store.connections[id]
	if !ok {
		return entities.ErrConnectionNotFound
	}
	c.AccessToken = accessToken
	c.TokenExpiresAt = expiresAt
	return nil
}

func (r *calendarConnectionRepository) MarkSynced(_ context.Context, id uuid.UUID, at time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if c, ok := r.store.connections[id]; ok {
		c.LastSyncAt = &at
	}
	return nil
}

func (r *calendarConnectionRepository) ListActive(_ context.Context, provider entities.CalendarProvider) ([]*entities.CalendarConnection, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	out := make([]*entities.CalendarConnection, 0)
	for _, c := range r.store.connections {
		if c.Provider == provider && c.IsActive {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *calendarConnectionRepository) Deactivate(_ context.Context, userID uuid.UUID, provider entities.CalendarProvider) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, c := range r.store.connections {
		if c.UserID == userID && c.Provider == provider {
			c.IsActive = false
			return nil
		}
	}
	return entities.ErrConnectionNotFound
}
