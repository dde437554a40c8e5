package entities

import (
	"time"

	"github.com/google/uuid"
)

// Client is an advisor's client. The meeting counters are recomputed
// asynchronously after a status touch.
type Client struct {
	ID                 uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	AdvisorID          uuid.UUID  `json:"advisor_id" gorm:"type:uuid;not null;index"`
	Name               string     `json:"name" gorm:"type:varchar(255);not null"`
	Email              *string    `json:"email,omitempty" gorm:"type:varchar(255)"`
	MeetingCount       int        `json:"meeting_count" gorm:"default:0;not null"`
	ActiveMeetingCount int        `json:"active_meeting_count" gorm:"default:0;not null"`
	IsActive           bool       `json:"is_active" gorm:"default:true;not null"`
	LastActivitySync   *time.Time `json:"last_activity_sync,omitempty" gorm:"type:timestamptz"`
	CreatedAt          time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt          time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for Client
func (Client) TableName() string {
	return "clients"
}

// ApplyCounts sets the derived counters. A client with no active meetings is inactive.
func (c *Client) ApplyCounts(total, active int) {
	c.MeetingCount = total
	c.ActiveMeetingCount = active
	c.IsActive = active > 0
}
