package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/johnquangdev/advisor-calendar-sync/internal/domain/entities"
	"github.com/johnquangdev/advisor-calendar-sync/internal/domain/repositories"
)

type clientRepository struct {
	store *Store
}

// NewClientRepository creates a client repository over the store
func NewClientRepository(store *Store) repositories.ClientRepository {
	return &clientRepository{store: store}
}

func (r *clientRepository) FindByID(_ context.Context, id, advisorID uuid.UUID) (*entities.Client, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	c, ok := r.store.clients[id]
	if !ok || c.AdvisorID != advisorID {
		return nil, entities.ErrClientNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *clientRepository) ListIDsByAdvisor(_ context.Context, advisorID uuid.UUID) ([]uuid.UUID, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	clients := make([]*entities.Client, 0)
	for _, c := range r.store.clients {
		if c.AdvisorID == advisorID {
			clients = append(clients, c)
		}
	}
	sort.Slice(clients, func(i, j int) bool {
		if clients[i].CreatedAt.Equal(clients[j].CreatedAt) {
			return clients[i].ID.String() < clients[j].ID.String()
		}
		return clients[i].CreatedAt.Before(clients[j].CreatedAt)
	})
	ids := make([]uuid.UUID, 0, len(clients))
	for _, c := range clients {
		ids = append(ids, c.ID)
	}
	return ids, nil
}

func (r *clientRepository) Touch(_ context.Context, id, advisorID uuid.UUID, at time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	c, ok := r.store.clients[id]
	if !ok || c.AdvisorID != advisorID {
		return entities.ErrClientNotFound
	}
	c.LastActivitySync = &at
	return nil
}

func (r *clientRepository) RecomputeCounts(_ context.Context, id, advisorID uuid.UUID) (*entities.Client, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	c, ok := r.store.clients[id]
	if !ok || c.AdvisorID != advisorID {
		return nil, entities.ErrClientNotFound
	}
	var total, active int
	for _, m := range r.store.meetings {
		if m.UserID != advisorID || m.ClientID == nil || *m.ClientID != id {
			continue
		}
		total++
		if !m.IsDeleted {
			active++
		}
	}
	c.ApplyCounts(total, active)
	cp := *c
	return &cp, nil
}
