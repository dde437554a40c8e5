package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/johnquangdev/advisor-calendar-sync/internal/domain/entities"
)

// MeetingProviderFields are the calendar-owned fields of a meeting. Enrichment
// data (transcript, summaries, client link) is never part of this set.
type MeetingProviderFields struct {
	Title       string
	Description *string
	Location    *string
	StartTime   time.Time
	EndTime     *time.Time
	AllDay      bool
	Attendees   []entities.Attendee
	SyncedAt    time.Time
}

// MeetingStats aggregates a user's meetings
type MeetingStats struct {
	Total           int64      `json:"total"`
	Active          int64      `json:"active"`
	Deleted         int64      `json:"deleted"`
	ImportedFromICS int64      `json:"imported_from_ics"`
	LastSync        *time.Time `json:"last_sync,omitempty"`
}

// MeetingRepository defines the interface for meeting data access.
// Every method is scoped to the owning user.
type MeetingRepository interface {
	// Create inserts a new meeting
	Create(ctx context.Context, meeting *entities.Meeting) error

	// FindByID finds a meeting by ID owned by userID
	FindByID(ctx context.Context, id, userID uuid.UUID) (*entities.Meeting, error)

	// FindByExternalID finds a meeting by provider event ID
	FindByExternalID(ctx context.Context, userID uuid.UUID, externalID string) (*entities.Meeting, error)

	// ListSince lists meetings starting at or after since, newest first
	ListSince(ctx context.Context, userID uuid.UUID, since time.Time) ([]*entities.Meeting, error)

	// MarkDeleted soft-deletes a meeting; touchSync also stamps last_calendar_sync
	MarkDeleted(ctx context.Context, id, userID uuid.UUID, at time.Time, touchSync bool) error

	// Restore clears the soft-delete flags of a meeting
	Restore(ctx context.Context, id, userID uuid.UUID, at time.Time) error

	// UpdateProviderFields overwrites the calendar-owned fields of a meeting
	UpdateProviderFields(ctx context.Context, id, userID uuid.UUID, fields MeetingProviderFields) error

	// ClearSummarizedAt clears the last_summarized_at marker, leaving summary text intact
	ClearSummarizedAt(ctx context.Context, id, userID uuid.UUID) error

	// CountActiveByClient counts non-deleted meetings of a client
	CountActiveByClient(ctx context.Context, clientID, userID uuid.UUID) (int64, error)

	// ListDeleted lists soft-deleted meetings, most recently deleted first
	ListDeleted(ctx context.Context, userID uuid.UUID, limit int) ([]*entities.Meeting, error)

	// Stats aggregates all of the user's meetings
	Stats(ctx context.Context, userID uuid.UUID) (*MeetingStats, error)
}
