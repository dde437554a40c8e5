package calendarsync

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/johnquangdev/advisor-calendar-sync/internal/domain/entities"
	"github.com/johnquangdev/advisor-calendar-sync/internal/domain/repositories"
)

// Service defines the calendar reconciliation use case
type Service interface {
	// SyncCalendarWithDeletions runs a full pass: detect, apply, refresh active meetings
	SyncCalendarWithDeletions(ctx context.Context, userID uuid.UUID) (*SyncResult, error)

	// DetectCalendarState categorizes provider events against local meetings without writing
	DetectCalendarState(ctx context.Context, userID uuid.UUID) (*Categorization, error)

	// ReconcileCalendarData applies the categorization; dryRun reports without writing
	ReconcileCalendarData(ctx context.Context, userID uuid.UUID, dryRun bool) (*ReconcileResult, error)

	// GetSyncStatus reports what a reconciliation would change
	GetSyncStatus(ctx context.Context, userID uuid.UUID) (*SyncStatusReport, error)

	// GetSyncStats aggregates all of the user's meetings
	GetSyncStats(ctx context.Context, userID uuid.UUID) (*repositories.MeetingStats, error)

	// GetDeletedMeetings lists soft-deleted meetings, newest deletion first
	GetDeletedMeetings(ctx context.Context, userID uuid.UUID, limit int) ([]*entities.Meeting, error)
}

// EventFetcher reads events from the calendar provider
type EventFetcher interface {
	ListEvents(ctx context.Context, creds *entities.CalendarCredentials, query entities.EventQuery) ([]entities.ProviderEvent, error)
	GetEvent(ctx context.Context, creds *entities.CalendarCredentials, externalID string) (*entities.ProviderEvent, error)
}

// TokenCipher encrypts tokens at rest
type TokenCipher interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(value string) (string, error)
}

// TokenRefresher exchanges a refresh token for a new access token
type TokenRefresher interface {
	RefreshToken(ctx context.Context, refreshToken string) (*oauth2.Token, error)
}

// ClientToucher signals that a client's aggregate status must be recomputed
type ClientToucher interface {
	Touch(ctx context.Context, clientID, advisorID uuid.UUID) error
}

// SyncResult is the outcome of SyncCalendarWithDeletions
type SyncResult struct {
	Added    int         `json:"added"`
	Updated  int         `json:"updated"`
	Deleted  int         `json:"deleted"`
	Restored int         `json:"restored"`
	Skipped  int         `json:"skipped"`
	Errors   []ItemError `json:"errors"`
}

// SyncIssues counts the pending corrections per bucket
type SyncIssues struct {
	Orphaned      int `json:"orphaned"`
	Inconsistent  int `json:"inconsistent"`
	NeedsCreation int `json:"needsCreation"`
	NeedsDeletion int `json:"needsDeletion"`
}

// SyncStatusReport summarizes the drift between provider and local state
type SyncStatusReport struct {
	LastSync         *time.Time `json:"lastSync"`
	CalendarEvents   int        `json:"calendarEvents"`
	DatabaseMeetings int        `json:"databaseMeetings"`
	ActiveMeetings   int        `json:"activeMeetings"`
	DeletedMeetings  int        `json:"deletedMeetings"`
	NeedsSync        bool       `json:"needsSync"`
	Issues           SyncIssues `json:"issues"`
}
