package scheduler

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnquangdev/advisor-calendar-sync/internal/adapter/repository/memory"
	"github.com/johnquangdev/advisor-calendar-sync/internal/domain/entities"
	"github.com/johnquangdev/advisor-calendar-sync/internal/infrastructure/cache"
	"github.com/johnquangdev/advisor-calendar-sync/internal/usecase/calendarsync"
	ucErrors "github.com/johnquangdev/advisor-calendar-sync/internal/usecase/errors"
)

var _ Syncer = &syncerMock{}

type syncerMock struct {
	SyncCalendarWithDeletionsFunc func(ctx context.Context, userID uuid.UUID) (*calendarsync.SyncResult, error)

	calls struct {
		SyncCalendarWithDeletions []struct {
			UserID uuid.UUID
		}
	}
	lockSync sync.RWMutex
}

func (mock *syncerMock) SyncCalendarWithDeletions(ctx context.Context, userID uuid.UUID) (*calendarsync.SyncResult, error) {
	if mock.SyncCalendarWithDeletionsFunc == nil {
		panic("syncerMock.SyncCalendarWithDeletionsFunc: method is nil but Syncer.SyncCalendarWithDeletions was just called")
	}
	mock.lockSync.Lock()
	mock.calls.SyncCalendarWithDeletions = append(mock.calls.SyncCalendarWithDeletions, struct{ UserID uuid.UUID }{UserID: userID})
	mock.lockSync.Unlock()
	return mock.SyncCalendarWithDeletionsFunc(ctx, userID)
}

func (mock *syncerMock) callsFor(userID uuid.UUID) int {
	mock.lockSync.RLock()
	defer mock.lockSync.RUnlock()
	n := 0
	for _, c := range mock.calls.SyncCalendarWithDeletions {
		if c.UserID == userID {
			n++
		}
	}
	return n
}

// syncServiceStub lets the locking service wrap the syncer mock
type syncServiceStub struct {
	calendarsync.Service
	syncer *syncerMock
}

func (s *syncServiceStub) SyncCalendarWithDeletions(ctx context.Context, userID uuid.UUID) (*calendarsync.SyncResult, error) {
	return s.syncer.SyncCalendarWithDeletions(ctx, userID)
}

type fixture struct {
	store     *memory.Store
	locker    *cache.MemoryStore
	syncer    *syncerMock
	service   *calendarsync.LockingService
	scheduler *Scheduler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:  memory.NewStore(),
		locker: cache.NewMemoryStore(),
		syncer: &syncerMock{
			SyncCalendarWithDeletionsFunc: func(ctx context.Context, userID uuid.UUID) (*calendarsync.SyncResult, error) {
				return &calendarsync.SyncResult{Errors: []calendarsync.ItemError{}}, nil
			},
		},
	}
	f.service = calendarsync.NewLockingService(&syncServiceStub{syncer: f.syncer}, f.locker, time.Minute, nil)
	f.scheduler = NewScheduler(f.service, memory.NewCalendarConnectionRepository(f.store), Options{Workers: 2}, nil)
	f.scheduler.newBackOff = func() backoff.BackOff {
		return backoff.WithMaxRetries(&backoff.ZeroBackOff{}, 3)
	}
	return f
}

func (f *fixture) connection(active bool) uuid.UUID {
	userID := uuid.New()
	f.store.PutConnection(&entities.CalendarConnection{
		ID:          uuid.New(),
		UserID:      userID,
		Provider:    entities.CalendarProviderGoogle,
		AccessToken: "token",
		IsActive:    active,
	})
	return userID
}

func TestRunOnce_SyncsActiveConnections(t *testing.T) {
	f := newFixture(t)
	users := []uuid.UUID{f.connection(true), f.connection(true), f.connection(true)}
	inactive := f.connection(false)

	summary, err := f.scheduler.RunOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Users)
	assert.Equal(t, 3, summary.Synced)
	assert.Zero(t, summary.Failed)
	for _, u := range users {
		assert.Equal(t, 1, f.syncer.callsFor(u))
	}
	assert.Zero(t, f.syncer.callsFor(inactive))

	// locks are released after the pass
	_, ok, err := f.locker.TryLock(context.Background(), calendarsync.LockKey(users[0]), time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRunOnce_RetriesProviderOutage(t *testing.T) {
	f := newFixture(t)
	userID := f.connection(true)

	var mu sync.Mutex
	attempts := 0
	f.syncer.SyncCalendarWithDeletionsFunc = func(ctx context.Context, userID uuid.UUID) (*calendarsync.SyncResult, error) {
		mu.Lock()
		defer mu.Unlock()
		attempts++
		if attempts < 3 {
			return nil, fmt.Errorf("%w: 503", ucErrors.ErrProviderUnavailable)
		}
		return &calendarsync.SyncResult{Added: 1}, nil
	}

	summary, err := f.scheduler.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Synced)
	assert.Equal(t, 3, f.syncer.callsFor(userID))
}

func TestRunOnce_CredentialErrorsArePermanent(t *testing.T) {
	f := newFixture(t)
	failing := f.connection(true)
	healthy := f.connection(true)

	f.syncer.SyncCalendarWithDeletionsFunc = func(ctx context.Context, userID uuid.UUID) (*calendarsync.SyncResult, error) {
		if userID == failing {
			return nil, ucErrors.ErrRefreshFailed
		}
		return &calendarsync.SyncResult{}, nil
	}

	summary, err := f.scheduler.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 1, summary.Synced)
	assert.Equal(t, 1, f.syncer.callsFor(failing))
	assert.Equal(t, 1, f.syncer.callsFor(healthy))
}

func TestRunOnce_SkipsLockedUser(t *testing.T) {
	f := newFixture(t)
	userID := f.connection(true)

	_, ok, err := f.locker.TryLock(context.Background(), calendarsync.LockKey(userID), time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	summary, err := f.scheduler.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Locked)
	assert.Zero(t, f.syncer.callsFor(userID))
}

func TestRun_StopsOnCancel(t *testing.T) {
	f := newFixture(t)
	f.connection(true)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.scheduler.Run(ctx) }()

	require.Eventually(t, func() bool {
		f.syncer.lockSync.RLock()
		defer f.syncer.lockSync.RUnlock()
		return len(f.syncer.calls.SyncCalendarWithDeletions) == 1
	}, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
}
