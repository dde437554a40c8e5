package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/johnquangdev/advisor-calendar-sync/internal/domain/entities"
	"github.com/johnquangdev/advisor-calendar-sync/internal/domain/repositories"
)

// calendarConnectionRepository implements the CalendarConnectionRepository interface
type calendarConnectionRepository struct {
	db *gorm.DB
}

// NewCalendarConnectionRepository creates a new calendar connection repository
func NewCalendarConnectionRepository(db *gorm.DB) repositories.CalendarConnectionRepository {
	return &calendarConnectionRepository{db: db}
}

// FindActive finds the active connection of a user
func (r *calendarConnectionRepository) FindActive(ctx context.Context, userID uuid.UUID, provider entities.CalendarProvider) (*entities.CalendarConnection, error) {
	var conn entities.CalendarConnection
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND provider = ? AND is_active = ?", userID, provider, true).
		First(&conn).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entities.ErrConnectionNotFound
		}
		return nil, fmt.Errorf("failed to find calendar connection: %w", err)
	}
	return &conn, nil
}

// Upsert creates or replaces the connection of (user, provider)
func (r *calendarConnectionRepository) Upsert(ctx context.Context, conn *entities.CalendarConnection) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "provider"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"access_token", "refresh_token", "token_expires_at", "calendar_email", "is_active", "updated_at",
			}),
		}).
		Create(conn).Error
	if err != nil {
		return fmt.Errorf("failed to upsert calendar connection: %w", err)
	}
	return nil
}

// UpdateAccessToken persists a refreshed access token
func (r *calendarConnectionRepository) UpdateAccessToken(ctx context.Context, id uuid.UUID, accessToken string, expiresAt *time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&entities.CalendarConnection{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"access_token":     accessToken,
			"token_expires_at": expiresAt,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update access token: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return entities.ErrConnectionNotFound
	}
	return nil
}

// MarkSynced records the last successful reconciliation
func (r *calendarConnectionRepository) MarkSynced(ctx context.Context, id uuid.UUID, at time.Time) error {
	if err := r.db.WithContext(ctx).
		Model(&entities.CalendarConnection{}).
		Where("id = ?", id).
		Update("last_sync_at", at).Error; err != nil {
		return fmt.Errorf("failed to mark connection synced: %w", err)
	}
	return nil
}

// ListActive lists all active connections for a provider
func (r *calendarConnectionRepository) ListActive(ctx context.Context, provider entities.CalendarProvider) ([]*entities.CalendarConnection, error) {
	var conns []*entities.CalendarConnection
	err := r.db.WithContext(ctx).
		Where("provider = ? AND is_active = ?", provider, true).
		Order("created_at ASC").
		Find(&conns).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list calendar connections: %w", err)
	}
	return conns, nil
}

// Deactivate disables a user's connection
func (r *calendarConnectionRepository) Deactivate(ctx context.Context, userID uuid.UUID, provider entities.CalendarProvider) error {
	res := r.db.WithContext(ctx).
		Model(&entities.CalendarConnection{}).
		Where("user_id = ? AND provider = ?", userID, provider).
		Update("is_active", false)
	if res.Error != nil {
		return fmt.Errorf("failed to deactivate calendar connection: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return entities.ErrConnectionNotFound
	}
	return nil
}
