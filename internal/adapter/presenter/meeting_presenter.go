package presenter

import (
	"github.com/johnquangdev/advisor-calendar-sync/internal/adapter/dto/calendar"
	"github.com/johnquangdev/advisor-calendar-sync/internal/adapter/dto/meeting"
	"github.com/johnquangdev/advisor-calendar-sync/internal/domain/entities"
)

// ToMeetingResponse converts a Meeting entity to MeetingResponse DTO
func ToMeetingResponse(m *entities.Meeting) *meeting.MeetingResponse {
	if m == nil {
		return nil
	}

	summaries, transcripts := m.ContentCounts()
	response := &meeting.MeetingResponse{
		ID:               m.ID.String(),
		ExternalID:       m.ExternalID,
		Provider:         string(m.Provider),
		Title:            m.Title,
		Description:      m.Description,
		Location:         m.Location,
		StartTime:        m.StartTime,
		EndTime:          m.EndTime,
		AllDay:           m.AllDay,
		Attendees:        make([]meeting.AttendeeResponse, 0),
		HasTranscript:    transcripts > 0,
		HasSummary:       summaries > transcripts,
		IsDeleted:        m.IsDeleted,
		DeletedAt:        m.DeletedAt,
		SyncStatus:       string(m.SyncStatus),
		LastCalendarSync: m.LastCalendarSync,
		ImportedFromICS:  m.ImportedFromICS,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}

	for _, a := range m.Attendees() {
		response.Attendees = append(response.Attendees, meeting.AttendeeResponse{
			Email:       a.Email,
			DisplayName: a.DisplayName,
		})
	}

	if m.ClientID != nil {
		clientID := m.ClientID.String()
		response.ClientID = &clientID
	}

	return response
}

// ToMeetingResponses converts a list of meetings
func ToMeetingResponses(meetings []*entities.Meeting) []*meeting.MeetingResponse {
	out := make([]*meeting.MeetingResponse, 0, len(meetings))
	for _, m := range meetings {
		out = append(out, ToMeetingResponse(m))
	}
	return out
}

// ToConnectionResponse converts a CalendarConnection entity, dropping its tokens
func ToConnectionResponse(c *entities.CalendarConnection) *calendar.ConnectionResponse {
	if c == nil {
		return nil
	}
	return &calendar.ConnectionResponse{
		Provider:       string(c.Provider),
		CalendarEmail:  c.CalendarEmail,
		IsActive:       c.IsActive,
		TokenExpiresAt: c.TokenExpiresAt,
		LastSyncAt:     c.LastSyncAt,
		ConnectedAt:    c.CreatedAt,
	}
}
