package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/johnquangdev/advisor-calendar-sync/internal/domain/entities"
	"github.com/johnquangdev/advisor-calendar-sync/internal/domain/repositories"
)

type threadRepository struct {
	store *Store
}

// NewThreadRepository creates an ask thread repository over the store
func NewThreadRepository(store *Store) repositories.ThreadRepository {
	return &threadRepository{store: store}
}

func (r *threadRepository) ListNonArchived(_ context.Context, clientID, advisorID uuid.UUID) ([]*entities.AskThread, error) {
	return r.list(clientID, advisorID, false), nil
}

func (r *threadRepository) ListArchived(_ context.Context, clientID, advisorID uuid.UUID) ([]*entities.AskThread, error) {
	return r.list(clientID, advisorID, true), nil
}

func (r *threadRepository) ArchiveAll(_ context.Context, clientID, advisorID uuid.UUID, at time.Time) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var n int64
	for _, t := range r.store.threads {
		if t.ClientID == clientID && t.AdvisorID == advisorID && !t.IsArchived {
			t.Archive(at)
			n++
		}
	}
	return n, nil
}

func (r *threadRepository) UnarchiveAll(_ context.Context, clientID, advisorID uuid.UUID, at time.Time) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var n int64
	for _, t := range r.store.threads {
		if t.ClientID == clientID && t.AdvisorID == advisorID && t.IsArchived {
			t.Unarchive(at)
			n++
		}
	}
	return n, nil
}

func (r *threadRepository) list(clientID, advisorID uuid.UUID, archived bool) []*entities.AskThread {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	out := make([]*entities.AskThread, 0)
	for _, t := range r.store.threads {
		if t.ClientID == clientID && t.AdvisorID == advisorID && t.IsArchived == archived {
			cp := *t
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}
