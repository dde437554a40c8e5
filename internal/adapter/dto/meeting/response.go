package meeting

import "time"

// AttendeeResponse is one meeting attendee
type AttendeeResponse struct {
	Email       string `json:"email"`
	DisplayName string `json:"displayName,omitempty"`
}

// MeetingResponse represents a meeting in API responses
type MeetingResponse struct {
	ID               string             `json:"id"`
	ExternalID       *string            `json:"externalId,omitempty"`
	Provider         string             `json:"provider"`
	Title            string             `json:"title"`
	Description      *string            `json:"description,omitempty"`
	Location         *string            `json:"location,omitempty"`
	StartTime        time.Time          `json:"startTime"`
	EndTime          *time.Time         `json:"endTime,omitempty"`
	AllDay           bool               `json:"allDay"`
	Attendees        []AttendeeResponse `json:"attendees"`
	HasTranscript    bool               `json:"hasTranscript"`
	HasSummary       bool               `json:"hasSummary"`
	ClientID         *string            `json:"clientId,omitempty"`
	IsDeleted        bool               `json:"isDeleted"`
	DeletedAt        *time.Time         `json:"deletedAt,omitempty"`
	SyncStatus       string             `json:"syncStatus"`
	LastCalendarSync *time.Time         `json:"lastCalendarSync,omitempty"`
	ImportedFromICS  bool               `json:"importedFromIcs"`
	CreatedAt        time.Time          `json:"createdAt"`
	UpdatedAt        time.Time          `json:"updatedAt"`
}
