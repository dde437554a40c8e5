package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/johnquangdev/advisor-calendar-sync/internal/domain/entities"
	"github.com/johnquangdev/advisor-calendar-sync/internal/domain/repositories"
	"github.com/johnquangdev/advisor-calendar-sync/internal/usecase/calendarsync"
	ucErrors "github.com/johnquangdev/advisor-calendar-sync/internal/usecase/errors"
	"github.com/johnquangdev/advisor-calendar-sync/pkg/jobcontext"
)

const jobType = "calendar_sync"

// Syncer runs one full reconciliation pass for a user. It reports
// ucErrors.ErrSyncInProgress when another pass holds the user's lock.
type Syncer interface {
	SyncCalendarWithDeletions(ctx context.Context, userID uuid.UUID) (*calendarsync.SyncResult, error)
}

// Options configures the scheduler
type Options struct {
	Interval    time.Duration
	Workers     int
	PassTimeout time.Duration
	// RetryMaxElapsed bounds the retries of a provider outage
	RetryMaxElapsed time.Duration
}

// PassSummary counts the outcome of one scheduled pass
type PassSummary struct {
	Users   int
	Synced  int
	Locked  int
	Failed  int
	Elapsed time.Duration
}

// Scheduler periodically syncs every active Google connection
type Scheduler struct {
	syncer      Syncer
	connections repositories.CalendarConnectionRepository
	opts        Options
	logger      *zap.Logger
	newBackOff  func() backoff.BackOff
}

// NewScheduler creates a new scheduler
func NewScheduler(
	syncer Syncer,
	connections repositories.CalendarConnectionRepository,
	opts Options,
	logger *zap.Logger,
) *Scheduler {
	if opts.Interval <= 0 {
		opts.Interval = 15 * time.Minute
	}
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.PassTimeout <= 0 {
		opts.PassTimeout = jobcontext.DefaultTimeout
	}
	if opts.RetryMaxElapsed <= 0 {
		opts.RetryMaxElapsed = time.Minute
	}

	s := &Scheduler{
		syncer:      syncer,
		connections: connections,
		opts:        opts,
		logger:      logger,
	}
	s.newBackOff = func() backoff.BackOff {
		bo := backoff.NewExponentialBackOff()
		bo.InitialInterval = 2 * time.Second
		bo.MaxInterval = 20 * time.Second
		bo.MaxElapsedTime = s.opts.RetryMaxElapsed
		return bo
	}
	return s
}

// Run executes a pass immediately and then on every tick until ctx is done
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.opts.Interval)
	defer ticker.Stop()

	for {
		if _, err := s.RunOnce(ctx); err != nil && s.logger != nil {
			s.logger.Error("scheduled calendar sync failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// RunOnce syncs every active connection through a bounded worker pool.
// A per-user failure is logged and never stops the pass.
func (s *Scheduler) RunOnce(ctx context.Context) (*PassSummary, error) {
	started := time.Now()
	conns, err := s.connections.ListActive(ctx, entities.CalendarProviderGoogle)
	if err != nil {
		return nil, fmt.Errorf("failed to list calendar connections: %w", err)
	}

	var (
		mu      sync.Mutex
		summary = &PassSummary{Users: len(conns)}
	)
	record := func(outcome func(*PassSummary)) {
		mu.Lock()
		outcome(summary)
		mu.Unlock()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Workers)
	for i, conn := range conns {
		workerID, userID := i, conn.UserID
		g.Go(func() error {
			synced, err := s.syncUser(gctx, workerID, userID)
			switch {
			case err != nil:
				record(func(p *PassSummary) { p.Failed++ })
			case !synced:
				record(func(p *PassSummary) { p.Locked++ })
			default:
				record(func(p *PassSummary) { p.Synced++ })
			}
			return nil
		})
	}
	_ = g.Wait()

	summary.Elapsed = time.Since(started)
	if s.logger != nil {
		s.logger.Info("scheduled calendar sync pass",
			zap.Int("users", summary.Users),
			zap.Int("synced", summary.Synced),
			zap.Int("locked", summary.Locked),
			zap.Int("failed", summary.Failed),
			zap.Duration("elapsed", summary.Elapsed),
		)
	}
	return summary, ctx.Err()
}

// syncUser returns false without error when another pass holds the user's lock
func (s *Scheduler) syncUser(ctx context.Context, workerID int, userID uuid.UUID) (bool, error) {
	jobCtx, cancel := jobcontext.JobBegin(ctx, jobType, workerID, userID, s.opts.PassTimeout)
	defer cancel()

	var result *calendarsync.SyncResult
	op := func() error {
		r, err := s.syncer.SyncCalendarWithDeletions(jobCtx, userID)
		if err != nil {
			if errors.Is(err, ucErrors.ErrProviderUnavailable) {
				return err
			}
			return backoff.Permanent(err)
		}
		result = r
		return nil
	}
	if err := backoff.Retry(op, backoff.WithContext(s.newBackOff(), jobCtx)); err != nil {
		if errors.Is(err, ucErrors.ErrSyncInProgress) {
			if s.logger != nil {
				s.logger.Debug("calendar sync already running", jobcontext.LogFields(jobCtx)...)
			}
			return false, nil
		}
		s.logFailure(jobCtx, "calendar sync failed", err)
		return true, err
	}

	if s.logger != nil {
		fields := append(jobcontext.LogFields(jobCtx),
			zap.Int("added", result.Added),
			zap.Int("updated", result.Updated),
			zap.Int("deleted", result.Deleted),
			zap.Int("restored", result.Restored),
			zap.Int("errors", len(result.Errors)),
		)
		s.logger.Info("calendar synced", fields...)
	}
	return true, nil
}

func (s *Scheduler) logFailure(ctx context.Context, msg string, err error) {
	if s.logger == nil {
		return
	}
	s.logger.Warn(msg, append(jobcontext.LogFields(ctx), zap.Error(err))...)
}
