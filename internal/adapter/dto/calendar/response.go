package calendar

import (
	"time"

	"github.com/johnquangdev/advisor-calendar-sync/internal/adapter/dto/meeting"
)

// ConnectURLResponse is returned by GET /calendar/google/connect
type ConnectURLResponse struct {
	URL   string `json:"url"`
	State string `json:"state"`
}

// ConnectionResponse describes a linked calendar without its tokens
type ConnectionResponse struct {
	Provider       string     `json:"provider"`
	CalendarEmail  *string    `json:"calendarEmail,omitempty"`
	IsActive       bool       `json:"isActive"`
	TokenExpiresAt *time.Time `json:"tokenExpiresAt,omitempty"`
	LastSyncAt     *time.Time `json:"lastSyncAt,omitempty"`
	ConnectedAt    time.Time  `json:"connectedAt"`
}

// DeletedMeetingsResponse lists soft-deleted meetings
type DeletedMeetingsResponse struct {
	Meetings []*meeting.MeetingResponse `json:"meetings"`
	Count    int                        `json:"count"`
}
