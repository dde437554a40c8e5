package meeting

// BulkDeleteRequest represents the request to delete several meetings
type BulkDeleteRequest struct {
	MeetingIDs         []string `json:"meetingIds" validate:"required,min=1,max=100,dive,uuid"`
	SoftDelete         *bool    `json:"softDelete,omitempty"`
	PreserveHistorical *bool    `json:"preserveHistorical,omitempty"`
	DryRun             bool     `json:"dryRun"`
}
