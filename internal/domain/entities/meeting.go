package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// DefaultMeetingTitle is used when the provider event has no summary
const DefaultMeetingTitle = "Untitled Event"

// Meeting is a scheduled event mirrored from at most one calendar provider,
// or created manually / imported from an ICS file.
type Meeting struct {
	ID         uuid.UUID       `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID     uuid.UUID       `json:"user_id" gorm:"type:uuid;not null;index;uniqueIndex:idx_meetings_user_external"`
	ExternalID *string         `json:"external_id,omitempty" gorm:"column:external_id;type:varchar(1024);uniqueIndex:idx_meetings_user_external"`
	Provider   MeetingProvider `json:"provider" gorm:"type:varchar(20);default:'manual';not null"`

	// Schedule
	StartTime time.Time  `json:"start_time" gorm:"type:timestamptz;not null;index"`
	EndTime   *time.Time `json:"end_time,omitempty" gorm:"type:timestamptz"`
	AllDay    bool       `json:"all_day" gorm:"default:false;not null"`

	// Content
	Title             string         `json:"title" gorm:"type:varchar(1024);not null"`
	Description       *string        `json:"description,omitempty" gorm:"type:text"`
	Location          *string        `json:"location,omitempty" gorm:"type:text"`
	AttendeesJSON     datatypes.JSON `json:"-" gorm:"column:attendees;type:jsonb;default:'[]'"`
	Transcript        *string        `json:"transcript,omitempty" gorm:"type:text"`
	QuickSummary      *string        `json:"quick_summary,omitempty" gorm:"type:text"`
	EmailSummaryDraft *string        `json:"email_summary_draft,omitempty" gorm:"type:text"`
	LastSummarizedAt  *time.Time     `json:"last_summarized_at,omitempty" gorm:"type:timestamptz"`

	// Lifecycle
	IsDeleted        bool       `json:"is_deleted" gorm:"default:false;not null;index"`
	DeletedAt        *time.Time `json:"deleted_at,omitempty" gorm:"column:deleted_at;type:timestamptz"`
	SyncStatus       SyncStatus `json:"sync_status" gorm:"type:varchar(20);default:'active';not null"`
	LastCalendarSync *time.Time `json:"last_calendar_sync,omitempty" gorm:"type:timestamptz"`
	ImportedFromICS  bool       `json:"imported_from_ics" gorm:"column:imported_from_ics;default:false;not null"`

	// Relationship
	ClientID *uuid.UUID `json:"client_id,omitempty" gorm:"type:uuid;index"`

	// Timestamps
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for Meeting
func (Meeting) TableName() string {
	return "meetings"
}

// MeetingProvider identifies where a meeting came from
type MeetingProvider string

const (
	MeetingProviderGoogle   MeetingProvider = "google"
	MeetingProviderManual   MeetingProvider = "manual"
	MeetingProviderImported MeetingProvider = "imported"
	MeetingProviderOther    MeetingProvider = "other"
)

// IsValid checks if the provider is valid
func (p MeetingProvider) IsValid() bool {
	switch p {
	case MeetingProviderGoogle, MeetingProviderManual, MeetingProviderImported, MeetingProviderOther:
		return true
	}
	return false
}

// SyncStatus is the advisory lifecycle status, always derived from IsDeleted
type SyncStatus string

const (
	SyncStatusActive  SyncStatus = "active"
	SyncStatusDeleted SyncStatus = "deleted"
)

// IsValid checks if the sync status is valid
func (s SyncStatus) IsValid() bool {
	switch s {
	case SyncStatusActive, SyncStatusDeleted:
		return true
	}
	return false
}

// NewMeetingFromEvent builds a provider-linked meeting from a calendar event
func NewMeetingFromEvent(userID uuid.UUID, provider MeetingProvider, event ProviderEvent, now time.Time) *Meeting {
	externalID := event.ExternalID
	m := &Meeting{
		ID:               uuid.New(),
		UserID:           userID,
		ExternalID:       &externalID,
		Provider:         provider,
		Title:            event.TitleOrDefault(),
		Description:      event.Description,
		Location:         event.Location,
		AllDay:           event.AllDay,
		SyncStatus:       SyncStatusActive,
		LastCalendarSync: &now,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if event.Start != nil {
		m.StartTime = *event.Start
	}
	if event.End != nil {
		end := *event.End
		m.EndTime = &end
	}
	m.SetAttendees(event.Attendees)
	return m
}

// HasExternalID reports whether the meeting is linked to a provider event
func (m *Meeting) HasExternalID() bool {
	return m.ExternalID != nil && *m.ExternalID != ""
}

// ExternalIDValue returns the provider event id or an empty string
func (m *Meeting) ExternalIDValue() string {
	if m.ExternalID == nil {
		return ""
	}
	return *m.ExternalID
}

// Attendees decodes the stored attendee list. Unparsable data yields an empty list.
func (m *Meeting) Attendees() []Attendee {
	return ParseAttendees(m.AttendeesJSON)
}

// SetAttendees encodes the attendee list into the jsonb column
func (m *Meeting) SetAttendees(attendees []Attendee) {
	m.AttendeesJSON = EncodeAttendees(attendees)
}

// MarkDeleted soft-deletes the meeting. touchSync also stamps LastCalendarSync.
func (m *Meeting) MarkDeleted(now time.Time, touchSync bool) {
	m.IsDeleted = true
	m.DeletedAt = &now
	m.SyncStatus = SyncStatusDeleted
	if touchSync {
		m.LastCalendarSync = &now
	}
	m.UpdatedAt = now
}

// Restore reverses a soft delete
func (m *Meeting) Restore(now time.Time) {
	m.IsDeleted = false
	m.DeletedAt = nil
	m.SyncStatus = SyncStatusActive
	m.LastCalendarSync = &now
	m.UpdatedAt = now
}

// ContentCounts reports how much historical content the meeting carries.
// summaries counts transcript, quick summary and email draft; transcripts counts the transcript alone.
func (m *Meeting) ContentCounts() (summaries, transcripts int) {
	if hasText(m.Transcript) {
		summaries++
		transcripts++
	}
	if hasText(m.QuickSummary) {
		summaries++
	}
	if hasText(m.EmailSummaryDraft) {
		summaries++
	}
	return summaries, transcripts
}

// Validate validates meeting data
func (m *Meeting) Validate() error {
	if m.Title == "" {
		return ErrInvalidMeetingTitle
	}
	if !m.Provider.IsValid() {
		return ErrInvalidProvider
	}
	return nil
}

func hasText(s *string) bool {
	return s != nil && *s != ""
}
