package entities

import "time"

// EventStatus is the provider-side status of a calendar event
type EventStatus string

const (
	EventStatusConfirmed EventStatus = "confirmed"
	EventStatusCancelled EventStatus = "cancelled"
)

// IsValid checks if the event status is valid
func (s EventStatus) IsValid() bool {
	switch s {
	case EventStatusConfirmed, EventStatusCancelled:
		return true
	}
	return false
}

// ProviderEvent is a calendar event as read from the provider during one
// reconciliation pass. It is never persisted.
type ProviderEvent struct {
	ExternalID  string      `json:"externalId"`
	Status      EventStatus `json:"status"`
	Start       *time.Time  `json:"start,omitempty"`
	End         *time.Time  `json:"end,omitempty"`
	AllDay      bool        `json:"allDay"`
	Title       string      `json:"title"`
	Description *string     `json:"description,omitempty"`
	Location    *string     `json:"location,omitempty"`
	Attendees   []Attendee  `json:"attendees,omitempty"`
}

// IsCancelled reports whether the provider marked the event cancelled
func (e ProviderEvent) IsCancelled() bool {
	return e.Status == EventStatusCancelled
}

// TitleOrDefault returns the event title, falling back to DefaultMeetingTitle
func (e ProviderEvent) TitleOrDefault() string {
	if e.Title == "" {
		return DefaultMeetingTitle
	}
	return e.Title
}

// EventQuery bounds a provider event listing. A nil bound is open.
type EventQuery struct {
	TimeMin          *time.Time
	TimeMax          *time.Time
	IncludeCancelled bool
}
