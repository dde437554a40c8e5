package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/johnquangdev/advisor-calendar-sync/internal/domain/entities"
)

// CalendarConnectionRepository defines the interface for calendar credential storage.
// Tokens are stored encrypted; callers encrypt before writing.
type CalendarConnectionRepository interface {
	// FindActive finds the active connection of a user for a provider
	FindActive(ctx context.Context, userID uuid.UUID, provider entities.CalendarProvider) (*entities.CalendarConnection, error)

	// Upsert creates or replaces the connection of (user, provider)
	Upsert(ctx context.Context, conn *entities.CalendarConnection) error

	// UpdateAccessToken persists a refreshed access token and its expiry
	UpdateAccessToken(ctx context.Context, id uuid.UUID, accessToken string, expiresAt *time.Time) error

	// MarkSynced records the time of the last successful reconciliation
	MarkSynced(ctx context.Context, id uuid.UUID, at time.Time) error

	// ListActive lists all active connections for a provider
	ListActive(ctx context.Context, provider entities.CalendarProvider) ([]*entities.CalendarConnection, error)

	// Deactivate disables a user's connection
	Deactivate(ctx context.Context, userID uuid.UUID, provider entities.CalendarProvider) error
}
