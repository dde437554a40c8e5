package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/johnquangdev/advisor-calendar-sync/internal/domain/entities"
	"github.com/johnquangdev/advisor-calendar-sync/internal/domain/repositories"
)

// meetingRepository implements the MeetingRepository interface
type meetingRepository struct {
	db *gorm.DB
}

// NewMeetingRepository creates a new meeting repository
func NewMeetingRepository(db *gorm.DB) repositories.MeetingRepository {
	return &meetingRepository{db: db}
}

// Create inserts a new meeting
func (r *meetingRepository) Create(ctx context.Context, meeting *entities.Meeting) error {
	if err := r.db.WithContext(ctx).Create(meeting).Error; err != nil {
		return fmt.Errorf("failed to create meeting: %w", err)
	}
	return nil
}

// FindByID finds a meeting owned by userID
func (r *meetingRepository) FindByID(ctx context.Context, id, userID uuid.UUID) (*entities.Meeting, error) {
	var meeting entities.Meeting
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&meeting).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entities.ErrMeetingNotFound
		}
		return nil, fmt.Errorf("failed to find meeting by ID: %w", err)
	}
	return &meeting, nil
}

// FindByExternalID finds a meeting by its provider event ID
func (r *meetingRepository) FindByExternalID(ctx context.Context, userID uuid.UUID, externalID string) (*entities.Meeting, error) {
	var meeting entities.Meeting
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND external_id = ?", userID, externalID).
		First(&meeting).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entities.ErrMeetingNotFound
		}
		return nil, fmt.Errorf("failed to find meeting by external ID: %w", err)
	}
	return &meeting, nil
}

// ListSince lists meetings starting at or after since, newest first
func (r *meetingRepository) ListSince(ctx context.Context, userID uuid.UUID, since time.Time) ([]*entities.Meeting, error) {
	var meetings []*entities.Meeting
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND start_time >= ?", userID, since).
		Order("start_time DESC").
		Find(&meetings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list meetings: %w", err)
	}
	return meetings, nil
}

// MarkDeleted soft-deletes a meeting
func (r *meetingRepository) MarkDeleted(ctx context.Context, id, userID uuid.UUID, at time.Time, touchSync bool) error {
	updates := map[string]interface{}{
		"is_deleted":  true,
		"deleted_at":  at,
		"sync_status": entities.SyncStatusDeleted,
		"updated_at":  at,
	}
	if touchSync {
		updates["last_calendar_sync"] = at
	}
	return r.updateOwned(ctx, id, userID, updates, "mark meeting deleted")
}

// Restore clears the soft-delete flags
func (r *meetingRepository) Restore(ctx context.Context, id, userID uuid.UUID, at time.Time) error {
	return r.updateOwned(ctx, id, userID, map[string]interface{}{
		"is_deleted":         false,
		"deleted_at":         nil,
		"sync_status":        entities.SyncStatusActive,
		"last_calendar_sync": at,
		"updated_at":         at,
	}, "restore meeting")
}

// UpdateProviderFields overwrites calendar-owned fields
func (r *meetingRepository) UpdateProviderFields(ctx context.Context, id, userID uuid.UUID, fields repositories.MeetingProviderFields) error {
	return r.updateOwned(ctx, id, userID, map[string]interface{}{
		"title":              fields.Title,
		"description":        fields.Description,
		"location":           fields.Location,
		"start_time":         fields.StartTime,
		"end_time":           fields.EndTime,
		"all_day":            fields.AllDay,
		"attendees":          entities.EncodeAttendees(fields.Attendees),
		"last_calendar_sync": fields.SyncedAt,
		"updated_at":         fields.SyncedAt,
	}, "update meeting")
}

// ClearSummarizedAt clears the summary staleness marker
func (r *meetingRepository) ClearSummarizedAt(ctx context.Context, id, userID uuid.UUID) error {
	return r.updateOwned(ctx, id, userID, map[string]interface{}{
		"last_summarized_at": nil,
	}, "clear summary marker")
}

// CountActiveByClient counts non-deleted meetings of a client
func (r *meetingRepository) CountActiveByClient(ctx context.Context, clientID, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entities.Meeting{}).
		Where("client_id = ? AND user_id = ? AND is_deleted = ?", clientID, userID, false).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count active meetings: %w", err)
	}
	return count, nil
}

// ListDeleted lists soft-deleted meetings, most recently deleted first
func (r *meetingRepository) ListDeleted(ctx context.Context, userID uuid.UUID, limit int) ([]*entities.Meeting, error) {
	var meetings []*entities.Meeting
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_deleted = ?", userID, true).
		Order("deleted_at DESC").
		Limit(limit).
		Find(&meetings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list deleted meetings: %w", err)
	}
	return meetings, nil
}

// Stats aggregates all of the user's meetings in one query
func (r *meetingRepository) Stats(ctx context.Context, userID uuid.UUID) (*repositories.MeetingStats, error) {
	query, args, err := squirrel.
		Select(
			"COUNT(*) AS total",
			"COUNT(*) FILTER (WHERE is_deleted = false) AS active",
			"COUNT(*) FILTER (WHERE is_deleted = true) AS deleted",
			"COUNT(*) FILTER (WHERE imported_from_ics = true) AS imported_from_ics",
			"MAX(last_calendar_sync) AS last_sync",
		).
		From(entities.Meeting{}.TableName()).
		Where(squirrel.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build stats query: %w", err)
	}

	var stats repositories.MeetingStats
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&stats).Error; err != nil {
		return nil, fmt.Errorf("failed to load meeting stats: %w", err)
	}
	return &stats, nil
}

func (r *meetingRepository) updateOwned(ctx context.Context, id, userID uuid.UUID, updates map[string]interface{}, op string) error {
	res := r.db.WithContext(ctx).
		Model(&entities.Meeting{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("failed to %s: %w", op, res.Error)
	}
	if res.RowsAffected == 0 {
		return entities.ErrMeetingNotFound
	}
	return nil
}
