package calendarsync

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/johnquangdev/advisor-calendar-sync/internal/domain/entities"
	"github.com/johnquangdev/advisor-calendar-sync/internal/domain/repositories"
	ucErrors "github.com/johnquangdev/advisor-calendar-sync/internal/usecase/errors"
)

// DefaultLockTTL is used when NewLockingService gets no ttl
const DefaultLockTTL = 10 * time.Minute

// Locker provides a per-key lock with expiry, backed by Redis or go-cache.
// Unlock only releases the lock when token still owns it.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (token string, ok bool, err error)
	Unlock(ctx context.Context, key, token string) error
}

// LockKey is the lock shared by every writer of a user's meetings
func LockKey(userID uuid.UUID) string {
	return "calendar-sync:lock:" + userID.String()
}

// LockingService serializes the writing passes of one user across the API and
// the scheduler. Reads and dry runs go straight to the wrapped service.
type LockingService struct {
	next   Service
	locker Locker
	ttl    time.Duration
	logger *zap.Logger
}

// Ensure LockingService implements Service
var _ Service = (*LockingService)(nil)

// NewLockingService wraps next with the per-user sync lock
func NewLockingService(next Service, locker Locker, ttl time.Duration, logger *zap.Logger) *LockingService {
	if ttl <= 0 {
		ttl = DefaultLockTTL
	}
	return &LockingService{next: next, locker: locker, ttl: ttl, logger: logger}
}

func (s *LockingService) SyncCalendarWithDeletions(ctx context.Context, userID uuid.UUID) (*SyncResult, error) {
	var result *SyncResult
	err := s.withLock(ctx, userID, func(ctx context.Context) error {
		r, err := s.next.SyncCalendarWithDeletions(ctx, userID)
		result = r
		return err
	})
	return result, err
}

func (s *LockingService) ReconcileCalendarData(ctx context.Context, userID uuid.UUID, dryRun bool) (*ReconcileResult, error) {
	if dryRun {
		return s.next.ReconcileCalendarData(ctx, userID, true)
	}
	var result *ReconcileResult
	err := s.withLock(ctx, userID, func(ctx context.Context) error {
		r, err := s.next.ReconcileCalendarData(ctx, userID, false)
		result = r
		return err
	})
	return result, err
}

func (s *LockingService) DetectCalendarState(ctx context.Context, userID uuid.UUID) (*Categorization, error) {
	return s.next.DetectCalendarState(ctx, userID)
}

func (s *LockingService) GetSyncStatus(ctx context.Context, userID uuid.UUID) (*SyncStatusReport, error) {
	return s.next.GetSyncStatus(ctx, userID)
}

func (s *LockingService) GetSyncStats(ctx context.Context, userID uuid.UUID) (*repositories.MeetingStats, error) {
	return s.next.GetSyncStats(ctx, userID)
}

func (s *LockingService) GetDeletedMeetings(ctx context.Context, userID uuid.UUID, limit int) ([]*entities.Meeting, error) {
	return s.next.GetDeletedMeetings(ctx, userID, limit)
}

// withLock runs fn under the user's lock. fn's context ends when the lock
// expires so a slow pass cannot overlap the next holder.
func (s *LockingService) withLock(ctx context.Context, userID uuid.UUID, fn func(ctx context.Context) error) error {
	key := LockKey(userID)
	token, ok, err := s.locker.TryLock(ctx, key, s.ttl)
	if err != nil {
		return fmt.Errorf("failed to acquire sync lock: %w", err)
	}
	if !ok {
		if s.logger != nil {
			s.logger.Debug("calendar sync already running", zap.String("user_id", userID.String()))
		}
		return ucErrors.ErrSyncInProgress
	}
	defer func() {
		// ctx may already be done; the release must still reach the store
		if err := s.locker.Unlock(context.WithoutCancel(ctx), key, token); err != nil && s.logger != nil {
			s.logger.Warn("failed to release sync lock",
				zap.String("user_id", userID.String()),
				zap.Error(err),
			)
		}
	}()

	lockCtx, cancel := context.WithTimeout(ctx, s.ttl)
	defer cancel()
	return fn(lockCtx)
}
