package calendarsync

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnquangdev/advisor-calendar-sync/internal/domain/entities"
	"github.com/johnquangdev/advisor-calendar-sync/internal/domain/repositories"
	"github.com/johnquangdev/advisor-calendar-sync/internal/infrastructure/cache"
	ucErrors "github.com/johnquangdev/advisor-calendar-sync/internal/usecase/errors"
)

var _ Service = &serviceMock{}

type serviceMock struct {
	SyncCalendarWithDeletionsFunc func(ctx context.Context, userID uuid.UUID) (*SyncResult, error)
	ReconcileCalendarDataFunc     func(ctx context.Context, userID uuid.UUID, dryRun bool) (*ReconcileResult, error)
	GetSyncStatsFunc              func(ctx context.Context, userID uuid.UUID) (*repositories.MeetingStats, error)
}

func (mock *serviceMock) SyncCalendarWithDeletions(ctx context.Context, userID uuid.UUID) (*SyncResult, error) {
	if mock.SyncCalendarWithDeletionsFunc == nil {
		panic("serviceMock.SyncCalendarWithDeletionsFunc: method is nil but Service.SyncCalendarWithDeletions was just called")
	}
	return mock.SyncCalendarWithDeletionsFunc(ctx, userID)
}

func (mock *serviceMock) ReconcileCalendarData(ctx context.Context, userID uuid.UUID, dryRun bool) (*ReconcileResult, error) {
	if mock.ReconcileCalendarDataFunc == nil {
		panic("serviceMock.ReconcileCalendarDataFunc: method is nil but Service.ReconcileCalendarData was just called")
	}
	return mock.ReconcileCalendarDataFunc(ctx, userID, dryRun)
}

func (mock *serviceMock) GetSyncStats(ctx context.Context, userID uuid.UUID) (*repositories.MeetingStats, error) {
	if mock.GetSyncStatsFunc == nil {
		panic("serviceMock.GetSyncStatsFunc: method is nil but Service.GetSyncStats was just called")
	}
	return mock.GetSyncStatsFunc(ctx, userID)
}

func (mock *serviceMock) DetectCalendarState(ctx context.Context, userID uuid.UUID) (*Categorization, error) {
	panic("serviceMock.DetectCalendarState: not expected")
}

func (mock *serviceMock) GetSyncStatus(ctx context.Context, userID uuid.UUID) (*SyncStatusReport, error) {
	panic("serviceMock.GetSyncStatus: not expected")
}

func (mock *serviceMock) GetDeletedMeetings(ctx context.Context, userID uuid.UUID, limit int) ([]*entities.Meeting, error) {
	panic("serviceMock.GetDeletedMeetings: not expected")
}

func newLockingFixture(ttl time.Duration) (*LockingService, *serviceMock, *cache.MemoryStore) {
	next := &serviceMock{
		SyncCalendarWithDeletionsFunc: func(ctx context.Context, userID uuid.UUID) (*SyncResult, error) {
			return &SyncResult{Added: 1}, nil
		},
		ReconcileCalendarDataFunc: func(ctx context.Context, userID uuid.UUID, dryRun bool) (*ReconcileResult, error) {
			return &ReconcileResult{DryRun: dryRun}, nil
		},
	}
	locker := cache.NewMemoryStore()
	return NewLockingService(next, locker, ttl, nil), next, locker
}

func TestLockingService_HeldLockRejectsWriters(t *testing.T) {
	svc, next, locker := newLockingFixture(time.Minute)
	userID := uuid.New()
	ctx := context.Background()

	_, ok, err := locker.TryLock(ctx, LockKey(userID), time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	calls := 0
	next.SyncCalendarWithDeletionsFunc = func(ctx context.Context, userID uuid.UUID) (*SyncResult, error) {
		calls++
		return &SyncResult{}, nil
	}

	_, err = svc.SyncCalendarWithDeletions(ctx, userID)
	assert.ErrorIs(t, err, ucErrors.ErrSyncInProgress)
	_, err = svc.ReconcileCalendarData(ctx, userID, false)
	assert.ErrorIs(t, err, ucErrors.ErrSyncInProgress)
	assert.Zero(t, calls)

	res, err := svc.ReconcileCalendarData(ctx, userID, true)
	require.NoError(t, err)
	assert.True(t, res.DryRun)

	// another user is unaffected
	got, err := svc.SyncCalendarWithDeletions(ctx, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.NotNil(t, got)
}

func TestLockingService_SerializesConcurrentPasses(t *testing.T) {
	svc, next, _ := newLockingFixture(time.Minute)
	userID := uuid.New()

	entered := make(chan struct{})
	release := make(chan struct{})
	next.SyncCalendarWithDeletionsFunc = func(ctx context.Context, userID uuid.UUID) (*SyncResult, error) {
		close(entered)
		<-release
		return &SyncResult{Added: 2}, nil
	}

	done := make(chan error, 1)
	go func() {
		_, err := svc.SyncCalendarWithDeletions(context.Background(), userID)
		done <- err
	}()
	<-entered

	_, err := svc.ReconcileCalendarData(context.Background(), userID, false)
	assert.ErrorIs(t, err, ucErrors.ErrSyncInProgress)

	close(release)
	require.NoError(t, <-done)

	res, err := svc.ReconcileCalendarData(context.Background(), userID, false)
	require.NoError(t, err)
	assert.False(t, res.DryRun)
}

func TestLockingService_ReleasesLockAfterFailure(t *testing.T) {
	svc, next, locker := newLockingFixture(time.Minute)
	userID := uuid.New()
	next.SyncCalendarWithDeletionsFunc = func(ctx context.Context, userID uuid.UUID) (*SyncResult, error) {
		return nil, ucErrors.ErrRefreshFailed
	}

	_, err := svc.SyncCalendarWithDeletions(context.Background(), userID)
	assert.ErrorIs(t, err, ucErrors.ErrRefreshFailed)

	_, ok, err := locker.TryLock(context.Background(), LockKey(userID), time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLockingService_PassEndsWithLock(t *testing.T) {
	svc, next, _ := newLockingFixture(20 * time.Millisecond)
	next.SyncCalendarWithDeletionsFunc = func(ctx context.Context, userID uuid.UUID) (*SyncResult, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}

	_, err := svc.SyncCalendarWithDeletions(context.Background(), uuid.New())
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestLockingService_ReadsAreNotLocked(t *testing.T) {
	svc, next, locker := newLockingFixture(time.Minute)
	userID := uuid.New()
	next.GetSyncStatsFunc = func(ctx context.Context, userID uuid.UUID) (*repositories.MeetingStats, error) {
		return &repositories.MeetingStats{}, nil
	}

	_, ok, err := locker.TryLock(context.Background(), LockKey(userID), time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = svc.GetSyncStats(context.Background(), userID)
	assert.NoError(t, err)
}
