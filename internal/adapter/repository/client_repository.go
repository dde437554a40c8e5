package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/johnquangdev/advisor-calendar-sync/internal/domain/entities"
	"github.com/johnquangdev/advisor-calendar-sync/internal/domain/repositories"
)

// clientRepository implements the ClientRepository interface
type clientRepository struct {
	db *gorm.DB
}

// NewClientRepository creates a new client repository
func NewClientRepository(db *gorm.DB) repositories.ClientRepository {
	return &clientRepository{db: db}
}

// FindByID finds a client owned by advisorID
func (r *clientRepository) FindByID(ctx context.Context, id, advisorID uuid.UUID) (*entities.Client, error) {
	var client entities.Client
	err := r.db.WithContext(ctx).
		Where("id = ? AND advisor_id = ?", id, advisorID).
		First(&client).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entities.ErrClientNotFound
		}
		return nil, fmt.Errorf("failed to find client: %w", err)
	}
	return &client, nil
}

// ListIDsByAdvisor lists every client ID of an advisor
func (r *clientRepository) ListIDsByAdvisor(ctx context.Context, advisorID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&entities.Client{}).
		Where("advisor_id = ?", advisorID).
		Order("created_at ASC").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list client IDs: %w", err)
	}
	return ids, nil
}

// Touch stamps last_activity_sync
func (r *clientRepository) Touch(ctx context.Context, id, advisorID uuid.UUID, at time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&entities.Client{}).
		Where("id = ? AND advisor_id = ?", id, advisorID).
		Update("last_activity_sync", at)
	if res.Error != nil {
		return fmt.Errorf("failed to touch client: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return entities.ErrClientNotFound
	}
	return nil
}

// RecomputeCounts recomputes the meeting counters from the meetings table
func (r *clientRepository) RecomputeCounts(ctx context.Context, id, advisorID uuid.UUID) (*entities.Client, error) {
	var client *entities.Client
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c entities.Client
		if err := tx.Where("id = ? AND advisor_id = ?", id, advisorID).First(&c).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return entities.ErrClientNotFound
			}
			return err
		}

		var total, active int64
		if err := tx.Model(&entities.Meeting{}).
			Where("client_id = ? AND user_id = ?", id, advisorID).
			Count(&total).Error; err != nil {
			return err
		}
		if err := tx.Model(&entities.Meeting{}).
			Where("client_id = ? AND user_id = ? AND is_deleted = ?", id, advisorID, false).
			Count(&active).Error; err != nil {
			return err
		}

		c.ApplyCounts(int(total), int(active))
		if err := tx.Model(&entities.Client{}).
			Where("id = ?", id).
			Updates(map[string]interface{}{
				"meeting_count":        c.MeetingCount,
				"active_meeting_count": c.ActiveMeetingCount,
				"is_active":            c.IsActive,
			}).Error; err != nil {
			return err
		}
		client = &c
		return nil
	})
	if err != nil {
		if errors.Is(err, entities.ErrClientNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to recompute client counts: %w", err)
	}
	return client, nil
}
