package entities

import (
	"time"

	"github.com/google/uuid"
)

// CalendarProvider identifies an external calendar system
type CalendarProvider string

const (
	CalendarProviderGoogle CalendarProvider = "google"
)

// IsValid checks if the calendar provider is supported
func (p CalendarProvider) IsValid() bool {
	return p == CalendarProviderGoogle
}

// CalendarConnection stores a user's provider OAuth tokens, encrypted at rest
type CalendarConnection struct {
	ID             uuid.UUID        `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID         uuid.UUID        `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_calendar_connections_user_provider"`
	Provider       CalendarProvider `json:"provider" gorm:"type:varchar(20);not null;uniqueIndex:idx_calendar_connections_user_provider"`
	AccessToken    string           `json:"-" gorm:"type:text;not null"`
	RefreshToken   string           `json:"-" gorm:"type:text"`
	TokenExpiresAt *time.Time       `json:"token_expires_at,omitempty" gorm:"type:timestamptz"`
	CalendarEmail  *string          `json:"calendar_email,omitempty" gorm:"type:varchar(255)"`
	IsActive       bool             `json:"is_active" gorm:"default:true;not null"`
	LastSyncAt     *time.Time       `json:"last_sync_at,omitempty" gorm:"type:timestamptz"`
	CreatedAt      time.Time        `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt      time.Time        `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for CalendarConnection
func (CalendarConnection) TableName() string {
	return "calendar_connections"
}

// CalendarCredentials is the decrypted, in-memory view of a connection's tokens
type CalendarCredentials struct {
	ConnectionID uuid.UUID
	UserID       uuid.UUID
	AccessToken  string
	RefreshToken string
	ExpiresAt    *time.Time
}

// IsExpired reports whether the access token expiry is at or before now.
// Credentials without a known expiry are treated as valid.
func (c *CalendarCredentials) IsExpired(now time.Time) bool {
	if c.ExpiresAt == nil {
		return false
	}
	return !c.ExpiresAt.After(now)
}

// CanRefresh reports whether a refresh token is available
func (c *CalendarCredentials) CanRefresh() bool {
	return c.RefreshToken != ""
}
