package calendarsync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/johnquangdev/advisor-calendar-sync/internal/domain/entities"
	"github.com/johnquangdev/advisor-calendar-sync/internal/domain/repositories"
	ucErrors "github.com/johnquangdev/advisor-calendar-sync/internal/usecase/errors"
)

const (
	// DefaultLookback is how far back provider events and local meetings are compared
	DefaultLookback = 60 * 24 * time.Hour
	// DefaultDeletedLimit caps GetDeletedMeetings when no limit is given
	DefaultDeletedLimit = 20
)

// SyncService orchestrates credential loading, detection and reconciliation
type SyncService struct {
	credentials *CredentialAdapter
	fetcher     EventFetcher
	meetings    repositories.MeetingRepository
	connections repositories.CalendarConnectionRepository
	reconciler  *Reconciler
	lookback    time.Duration
	logger      *zap.Logger
	now         func() time.Time
}

// Ensure SyncService implements Service
var _ Service = (*SyncService)(nil)

// NewSyncService creates a new sync service. A zero lookback uses DefaultLookback.
func NewSyncService(
	credentials *CredentialAdapter,
	fetcher EventFetcher,
	meetings repositories.MeetingRepository,
	connections repositories.CalendarConnectionRepository,
	reconciler *Reconciler,
	lookback time.Duration,
	logger *zap.Logger,
) *SyncService {
	if lookback <= 0 {
		lookback = DefaultLookback
	}
	return &SyncService{
		credentials: credentials,
		fetcher:     fetcher,
		meetings:    meetings,
		connections: connections,
		reconciler:  reconciler,
		lookback:    lookback,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// SyncCalendarWithDeletions runs a full reconciliation pass including
// verification of missing events and a refresh of active meetings.
func (s *SyncService) SyncCalendarWithDeletions(ctx context.Context, userID uuid.UUID) (*SyncResult, error) {
	cat, creds, err := s.detect(ctx, userID)
	if err != nil {
		return nil, err
	}

	res := s.reconciler.Apply(ctx, userID, creds, cat, ReconcileOptions{
		RefreshActive: true,
		VerifyMissing: true,
	})
	s.markSynced(ctx, creds)

	return &SyncResult{
		Added:    res.Created,
		Updated:  res.Updated,
		Deleted:  res.Deleted,
		Restored: res.Restored,
		Skipped:  res.Skipped,
		Errors:   res.Errors,
	}, nil
}

// DetectCalendarState categorizes without writing anything
func (s *SyncService) DetectCalendarState(ctx context.Context, userID uuid.UUID) (*Categorization, error) {
	cat, _, err := s.detect(ctx, userID)
	return cat, err
}

// ReconcileCalendarData detects and applies deletions, restorations and creations
func (s *SyncService) ReconcileCalendarData(ctx context.Context, userID uuid.UUID, dryRun bool) (*ReconcileResult, error) {
	cat, creds, err := s.detect(ctx, userID)
	if err != nil {
		return nil, err
	}

	res := s.reconciler.Apply(ctx, userID, creds, cat, ReconcileOptions{DryRun: dryRun})
	if !dryRun {
		s.markSynced(ctx, creds)
	}
	return res, nil
}

// GetSyncStatus reports the pending drift and the last successful sync
func (s *SyncService) GetSyncStatus(ctx context.Context, userID uuid.UUID) (*SyncStatusReport, error) {
	cat, _, err := s.detect(ctx, userID)
	if err != nil {
		return nil, err
	}

	report := &SyncStatusReport{
		CalendarEvents:   cat.Summary.CalendarEvents,
		DatabaseMeetings: cat.Summary.DatabaseMeetings,
		ActiveMeetings:   cat.Summary.ActiveMeetings,
		DeletedMeetings:  cat.Summary.DeletedMeetings,
		NeedsSync:        cat.NeedsAction(),
		Issues: SyncIssues{
			Orphaned:      len(cat.Orphaned),
			Inconsistent:  len(cat.Inconsistent),
			NeedsCreation: len(cat.New),
			NeedsDeletion: len(cat.Deleted),
		},
	}

	conn, err := s.connections.FindActive(ctx, userID, entities.CalendarProviderGoogle)
	if err == nil {
		report.LastSync = conn.LastSyncAt
	} else if s.logger != nil {
		s.logger.Warn("failed to load last sync time", zap.String("user_id", userID.String()), zap.Error(err))
	}
	return report, nil
}

// GetSyncStats aggregates all of the user's meetings
func (s *SyncService) GetSyncStats(ctx context.Context, userID uuid.UUID) (*repositories.MeetingStats, error) {
	stats, err := s.meetings.Stats(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ucErrors.ErrPersistence, err)
	}
	return stats, nil
}

// GetDeletedMeetings lists soft-deleted meetings, newest deletion first
func (s *SyncService) GetDeletedMeetings(ctx context.Context, userID uuid.UUID, limit int) ([]*entities.Meeting, error) {
	if limit <= 0 {
		limit = DefaultDeletedLimit
	}
	meetings, err := s.meetings.ListDeleted(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ucErrors.ErrPersistence, err)
	}
	return meetings, nil
}

// detect loads both sides of the join. Any failure here aborts the operation.
func (s *SyncService) detect(ctx context.Context, userID uuid.UUID) (*Categorization, *entities.CalendarCredentials, error) {
	creds, err := s.credentials.Load(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	timeMin := s.now().Add(-s.lookback)
	events, err := s.fetcher.ListEvents(ctx, creds, entities.EventQuery{
		TimeMin:          &timeMin,
		IncludeCancelled: true,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ucErrors.ErrProviderUnavailable, err)
	}

	meetings, err := s.meetings.ListSince(ctx, userID, timeMin)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ucErrors.ErrPersistence, err)
	}

	cat := Detect(events, meetings)

	// an event listed in the window may belong to a meeting that started before it
	if len(cat.New) > 0 {
		extra, err := s.findLinked(ctx, userID, cat.New)
		if err != nil {
			return nil, nil, err
		}
		if len(extra) > 0 {
			cat = Detect(events, append(meetings, extra...))
		}
	}

	if s.logger != nil {
		s.logger.Debug("calendar state detected",
			zap.String("user_id", userID.String()),
			zap.Int("calendar_events", cat.Summary.CalendarEvents),
			zap.Int("cancelled_events", cat.Summary.CancelledEvents),
			zap.Int("database_meetings", cat.Summary.DatabaseMeetings),
			zap.Int("active", len(cat.Active)),
			zap.Int("inconsistent", len(cat.Inconsistent)),
			zap.Int("deleted", len(cat.Deleted)),
			zap.Int("orphaned", len(cat.Orphaned)),
			zap.Int("new", len(cat.New)),
			zap.Int("excluded", len(cat.Excluded)),
		)
	}
	return cat, creds, nil
}

func (s *SyncService) findLinked(ctx context.Context, userID uuid.UUID, events []entities.ProviderEvent) ([]*entities.Meeting, error) {
	var found []*entities.Meeting
	for _, e := range events {
		m, err := s.meetings.FindByExternalID(ctx, userID, e.ExternalID)
		if err != nil {
			if errors.Is(err, entities.ErrMeetingNotFound) {
				continue
			}
			return nil, fmt.Errorf("%w: %w", ucErrors.ErrPersistence, err)
		}
		found = append(found, m)
	}
	return found, nil
}

func (s *SyncService) markSynced(ctx context.Context, creds *entities.CalendarCredentials) {
	if ctx.Err() != nil {
		return
	}
	if err := s.connections.MarkSynced(ctx, creds.ConnectionID, s.now()); err != nil && s.logger != nil {
		s.logger.Warn("failed to record last sync", zap.String("user_id", creds.UserID.String()), zap.Error(err))
	}
}
