package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/johnquangdev/advisor-calendar-sync/internal/domain/entities"
)

// ClientRepository defines the interface for client data access
type ClientRepository interface {
	// FindByID finds a client owned by advisorID
	FindByID(ctx context.Context, id, advisorID uuid.UUID) (*entities.Client, error)

	// ListIDsByAdvisor lists the IDs of every client owned by advisorID
	ListIDsByAdvisor(ctx context.Context, advisorID uuid.UUID) ([]uuid.UUID, error)

	// Touch stamps last_activity_sync so the aggregates get recomputed
	Touch(ctx context.Context, id, advisorID uuid.UUID, at time.Time) error

	// RecomputeCounts recomputes meeting_count, active_meeting_count and is_active
	RecomputeCounts(ctx context.Context, id, advisorID uuid.UUID) (*entities.Client, error)
}

// ThreadRepository defines the interface for ask thread data access
type ThreadRepository interface {
	// ListNonArchived lists a client's active threads
	ListNonArchived(ctx context.Context, clientID, advisorID uuid.UUID) ([]*entities.AskThread, error)

	// ListArchived lists a client's archived threads
	ListArchived(ctx context.Context, clientID, advisorID uuid.UUID) ([]*entities.AskThread, error)

	// ArchiveAll archives every active thread of a client and returns how many changed
	ArchiveAll(ctx context.Context, clientID, advisorID uuid.UUID, at time.Time) (int64, error)

	// UnarchiveAll un-archives every archived thread of a client and returns how many changed
	UnarchiveAll(ctx context.Context, clientID, advisorID uuid.UUID, at time.Time) (int64, error)
}
