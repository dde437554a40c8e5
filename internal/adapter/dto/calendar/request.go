package calendar

// DeletedMeetingsQuery represents query parameters for listing deleted meetings
type DeletedMeetingsQuery struct {
	Limit int `query:"limit" json:"limit" validate:"omitempty,min=1,max=500"`
}
