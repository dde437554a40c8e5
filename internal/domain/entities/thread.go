package entities

import (
	"time"

	"github.com/google/uuid"
)

// AskThread is an advisory chat thread attached to a client. Threads are
// archived and un-archived, never removed.
type AskThread struct {
	ID         uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	ClientID   uuid.UUID  `json:"client_id" gorm:"type:uuid;not null;index:idx_ask_threads_client"`
	AdvisorID  uuid.UUID  `json:"advisor_id" gorm:"type:uuid;not null;index:idx_ask_threads_client"`
	Title      string     `json:"title" gorm:"type:varchar(500);not null"`
	IsArchived bool       `json:"is_archived" gorm:"default:false;not null"`
	ArchivedAt *time.Time `json:"archived_at,omitempty" gorm:"type:timestamptz"`
	CreatedAt  time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt  time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for AskThread
func (AskThread) TableName() string {
	return "ask_threads"
}

// Archive archives the thread
func (t *AskThread) Archive(now time.Time) {
	t.IsArchived = true
	t.ArchivedAt = &now
	t.UpdatedAt = now
}

// Unarchive brings the thread back
func (t *AskThread) Unarchive(now time.Time) {
	t.IsArchived = false
	t.ArchivedAt = nil
	t.UpdatedAt = now
}
