package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/johnquangdev/advisor-calendar-sync/internal/domain/entities"
	"github.com/johnquangdev/advisor-calendar-sync/internal/domain/repositories"
)

// threadRepository implements the ThreadRepository interface
type threadRepository struct {
	db *gorm.DB
}

// NewThreadRepository creates a new ask thread repository
func NewThreadRepository(db *gorm.DB) repositories.ThreadRepository {
	return &threadRepository{db: db}
}

func (r *threadRepository) list(ctx context.Context, clientID, advisorID uuid.UUID, archived bool) ([]*entities.AskThread, error) {
	var threads []*entities.AskThread
	err := r.db.WithContext(ctx).
		Where("client_id = ? AND advisor_id = ? AND is_archived = ?", clientID, advisorID, archived).
		Order("created_at ASC").
		Find(&threads).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list threads: %w", err)
	}
	return threads, nil
}

// ListNonArchived lists a client's active threads
func (r *threadRepository) ListNonArchived(ctx context.Context, clientID, advisorID uuid.UUID) ([]*entities.AskThread, error) {
	return r.list(ctx, clientID, advisorID, false)
}

// ListArchived lists a client's archived threads
func (r *threadRepository) ListArchived(ctx context.Context, clientID, advisorID uuid.UUID) ([]*entities.AskThread, error) {
	return r.list(ctx, clientID, advisorID, true)
}

// ArchiveAll archives every active thread of a client
func (r *threadRepository) ArchiveAll(ctx context.Context, clientID, advisorID uuid.UUID, at time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&entities.AskThread{}).
		Where("client_id = ? AND advisor_id = ? AND is_archived = ?", clientID, advisorID, false).
		Updates(map[string]interface{}{
			"is_archived": true,
			"archived_at": at,
			"updated_at":  at,
		})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to archive threads: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// UnarchiveAll un-archives every archived thread of a client
func (r *threadRepository) UnarchiveAll(ctx context.Context, clientID, advisorID uuid.UUID, at time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&entities.AskThread{}).
		Where("client_id = ? AND advisor_id = ? AND is_archived = ?", clientID, advisorID, true).
		Updates(map[string]interface{}{
			"is_archived": false,
			"archived_at": gorm.Expr("NULL"),
			"updated_at":  at,
		})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to unarchive threads: %w", res.Error)
	}
	return res.RowsAffected, nil
}
