package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/johnquangdev/advisor-calendar-sync/internal/domain/entities"
	"github.com/johnquangdev/advisor-calendar-sync/internal/domain/repositories"
)

type meetingRepository struct {
	store *Store
}

// NewMeetingRepository creates a meeting repository over the store
func NewMeetingRepository(store *Store) repositories.MeetingRepository {
	return &meetingRepository{store: store}
}

func (r *meetingRepository) Create(_ context.Context, meeting *entities.Meeting) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if meeting.ID == uuid.Nil {
		meeting.ID = uuid.New()
	}
	r.store.meetings[meeting.ID] = copyMeeting(meeting)
	return nil
}

func (r *meetingRepository) FindByID(_ context.Context, id, userID uuid.UUID) (*entities.Meeting, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	m, ok := r.store.meetings[id]
	if !ok || m.UserID != userID {
		return nil, entities.ErrMeetingNotFound
	}
	return copyMeeting(m), nil
}

func (r *meetingRepository) FindByExternalID(_ context.Context, userID uuid.UUID, externalID string) (*entities.Meeting, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	for _, m := range r.store.meetings {
		if m.UserID == userID && m.ExternalIDValue() == externalID {
			return copyMeeting(m), nil
		}
	}
	return nil, entities.ErrMeetingNotFound
}

func (r *meetingRepository) ListSince(_ context.Context, userID uuid.UUID, since time.Time) ([]*entities.Meeting, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	out := make([]*entities.Meeting, 0)
	for _, m := range r.store.meetings {
		if m.UserID == userID && !m.StartTime.Before(since) {
			out = append(out, copyMeeting(m))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].StartTime.After(out[j].StartTime)
	})
	return out, nil
}

func (r *meetingRepository) MarkDeleted(_ context.Context, id, userID uuid.UUID, at time.Time, touchSync bool) error {
	return r.mutate(id, userID, func(m *entities.Meeting) {
		m.MarkDeleted(at, touchSync)
	})
}

func (r *meetingRepository) Restore(_ context.Context, id, userID uuid.UUID, at time.Time) error {
	return r.mutate(id, userID, func(m *entities.Meeting) {
		m.Restore(at)
	})
}

func (r *meetingRepository) UpdateProviderFields(_ context.Context, id, userID uuid.UUID, fields repositories.MeetingProviderFields) error {
	return r.mutate(id, userID, func(m *entities.Meeting) {
		m.Title = fields.Title
		m.Description = fields.Description
		m.Location = fields.Location
		m.StartTime = fields.StartTime
		m.EndTime = fields.EndTime
		m.AllDay = fields.AllDay
		m.SetAttendees(fields.Attendees)
		syncedAt := fields.SyncedAt
		m.LastCalendarSync = &syncedAt
		m.UpdatedAt = fields.SyncedAt
	})
}

func (r *meetingRepository) ClearSummarizedAt(_ context.Context, id, userID uuid.UUID) error {
	return r.mutate(id, userID, func(m *entities.Meeting) {
		m.LastSummarizedAt = nil
	})
}

func (r *meetingRepository) CountActiveByClient(_ context.Context, clientID, userID uuid.UUID) (int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var n int64
	for _, m := range r.store.meetings {
		if m.UserID == userID && m.ClientID != nil && *m.ClientID == clientID && !m.IsDeleted {
			n++
		}
	}
	return n, nil
}

func (r *meetingRepository) ListDeleted(_ context.Context, userID uuid.UUID, limit int) ([]*entities.Meeting, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	out := make([]*entities.Meeting, 0)
	for _, m := range r.store.meetings {
		if m.UserID == userID && m.IsDeleted {
			out = append(out, copyMeeting(m))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return deletedAt(out[i]).After(deletedAt(out[j]))
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *meetingRepository) Stats(_ context.Context, userID uuid.UUID) (*repositories.MeetingStats, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	stats := &repositories.MeetingStats{}
	for _, m := range r.store.meetings {
		if m.UserID != userID {
			continue
		}
		stats.Total++
		if m.IsDeleted {
			stats.Deleted++
		} else {
			stats.Active++
		}
		if m.ImportedFromICS {
			stats.ImportedFromICS++
		}
		if m.LastCalendarSync != nil && (stats.LastSync == nil || m.LastCalendarSync.After(*stats.LastSync)) {
			last := *m.LastCalendarSync
			stats.LastSync = &last
		}
	}
	return stats, nil
}

func (r *meetingRepository) mutate(id, userID uuid.UUID, fn func(m *entities.Meeting)) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	m, ok := r.store.meetings[id]
	if !ok || m.UserID != userID {
		return entities.ErrMeetingNotFound
	}
	fn(m)
	return nil
}

func deletedAt(m *entities.Meeting) time.Time {
	if m.DeletedAt == nil {
		return time.Time{}
	}
	return *m.DeletedAt
}
