package cascade

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

// Steps recorded in StepError
const (
	StepArchiveThreads   = "archive_threads"
	StepUnarchiveThreads = "unarchive_threads"
	StepClearSummary     = "clear_summary_marker"
	StepMarkDeleted      = "mark_deleted"
	StepRestore          = "restore"
	StepTouchClient      = "touch_client"
)

// Service defines the meeting deletion and restoration use case
type Service interface {
	HandleMeetingDeletion(ctx context.Context, meetingID, userID uuid.UUID, opts DeletionOptions) (*Report, error)
	RestoreMeeting(ctx context.Context, meetingID, userID uuid.UUID, opts RestoreOptions) (*Report, error)
	HandleBulkMeetingDeletion(ctx context.Context, meetingIDs []uuid.UUID, userID uuid.UUID, opts DeletionOptions) (*BulkReport, error)
	PreviewCascadeDeletion(ctx context.Context, meetingID, userID uuid.UUID) (*Report, error)
	PreviewMeetingRestoration(ctx context.Context, meetingID, userID uuid.UUID) (*Report, error)
}

// ClientToucher signals that a client's aggregate status must be recomputed
type ClientToucher interface {
	Touch(ctx context.Context, clientID, advisorID uuid.UUID) error
}

// DeletionOptions controls HandleMeetingDeletion
type DeletionOptions struct {
	// SoftDelete also stamps last_calendar_sync. Meetings are never hard-deleted.
	SoftDelete bool `json:"softDelete"`
	// PreserveHistorical keeps transcript and summary text. Content is never cleared.
	PreserveHistorical bool `json:"preserveHistorical"`
	DryRun             bool `json:"dryRun"`
}

// DefaultDeletionOptions returns soft, history-preserving, non-dry options
func DefaultDeletionOptions() DeletionOptions {
	return DeletionOptions{SoftDelete: true, PreserveHistorical: true}
}

// RestoreOptions controls RestoreMeeting
type RestoreOptions struct {
	DryRun bool `json:"dryRun"`
}

// AffectedRecords counts what a cascade touched
type AffectedRecords struct {
	AskThreads    int  `json:"askThreads"`
	Summaries     int  `json:"summaries"`
	Transcripts   int  `json:"transcripts"`
	ClientTouched bool `json:"clientTouched"`
}

// StepError is a best-effort step that failed without aborting the cascade
type StepError struct {
	Step    string `json:"step"`
	Message string `json:"message"`
}

// Report describes one deletion or restoration cascade
type Report struct {
	Meeting         *entities.Meeting `json:"meeting"`
	AffectedRecords AffectedRecords   `json:"affectedRecords"`
	Operations      []string          `json:"operations"`
	Errors          []StepError       `json:"errors"`
	DryRun          bool              `json:"dryRun"`
	// Completed is false when the meeting's own lifecycle change failed
	Completed bool `json:"completed"`
}

// BulkItem is the outcome for one meeting of a bulk deletion
type BulkItem struct {
	MeetingID uuid.UUID `json:"meetingId"`
	Success   bool      `json:"success"`
	Result    *Report   `json:"result,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// BulkSummary aggregates a bulk deletion
type BulkSummary struct {
	TotalAskThreads int `json:"totalAskThreads"`
	TotalSummaries  int `json:"totalSummaries"`
	AffectedClients int `json:"affectedClients"`
}

// BulkReport is the result of HandleBulkMeetingDeletion
type BulkReport struct {
	Processed  int         `json:"processed"`
	Successful int         `json:"successful"`
	Failed     int         `json:"failed"`
	Details    []BulkItem  `json:"details"`
	Summary    BulkSummary `json:"summary"`
}

// Manager propagates meeting deletion and restoration to threads, summaries and client status
type Manager struct {
	meetings repositories.MeetingRepository
	threads  repositories.ThreadRepository
	toucher  ClientToucher
	logger   *zap.Logger
	now      func() time.Time
}

// Ensure Manager implements Service
var _ Service = (*Manager)(nil)

// NewManager creates a new cascade manager
func NewManager(
	meetings repositories.MeetingRepository,
	threads repositories.ThreadRepository,
	toucher ClientToucher,
	logger *zap.Logger,
) *Manager {
	return &Manager{
		meetings: meetings,
		threads:  threads,
		toucher:  toucher,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// HandleMeetingDeletion archives the client's threads, reports the meeting's
// content, soft-deletes the meeting and touches the client. Only a missing
// meeting fails the call; every other step is best-effort.
func (m *Manager) HandleMeetingDeletion(ctx context.Context, meetingID, userID uuid.UUID, opts DeletionOptions) (*Report, error) {
	meeting, err := m.load(ctx, meetingID, userID)
	if err != nil {
		return nil, err
	}

	now := m.now()
	report := newReport(meeting, opts.DryRun)

	if meeting.ClientID != nil {
		m.archiveThreads(ctx, *meeting.ClientID, userID, now, report)
	}

	summaries, transcripts := meeting.ContentCounts()
	report.AffectedRecords.Summaries = summaries
	report.AffectedRecords.Transcripts = transcripts
	if summaries > 0 {
		report.Operations = append(report.Operations, fmt.Sprintf("Processed %d summary/transcript records", summaries))
		if !opts.DryRun && meeting.LastSummarizedAt != nil {
			if err := m.meetings.ClearSummarizedAt(ctx, meeting.ID, userID); err != nil {
				report.addError(StepClearSummary, err)
			}
		}
	}

	if opts.DryRun {
		report.Completed = true
	} else if err := m.meetings.MarkDeleted(ctx, meeting.ID, userID, now, opts.SoftDelete); err != nil {
		report.addError(StepMarkDeleted, err)
	} else {
		report.Completed = true
	}
	if report.Completed {
		report.Operations = append(report.Operations, fmt.Sprintf("Meeting marked as deleted (soft delete: %t)", opts.SoftDelete))
	}

	if meeting.ClientID != nil {
		m.touchClient(ctx, *meeting.ClientID, userID, report)
	}

	if m.logger != nil {
		m.logger.Info("meeting deletion cascade",
			zap.String("meeting_id", meeting.ID.String()),
			zap.String("user_id", userID.String()),
			zap.Bool("dry_run", opts.DryRun),
			zap.Int("ask_threads", report.AffectedRecords.AskThreads),
			zap.Int("summaries", report.AffectedRecords.Summaries),
			zap.Int("errors", len(report.Errors)),
		)
	}
	return report, nil
}

// RestoreMeeting reverses a soft delete and un-archives the client's threads
// once the client has an active meeting again.
func (m *Manager) RestoreMeeting(ctx context.Context, meetingID, userID uuid.UUID, opts RestoreOptions) (*Report, error) {
	meeting, err := m.load(ctx, meetingID, userID)
	if err != nil {
		return nil, err
	}
	if !meeting.IsDeleted {
		return nil, ucErrors.ErrMeetingNotDeleted
	}

	now := m.now()
	report := newReport(meeting, opts.DryRun)

	if opts.DryRun {
		report.Completed = true
	} else if err := m.meetings.Restore(ctx, meeting.ID, userID, now); err != nil {
		report.addError(StepRestore, err)
	} else {
		report.Completed = true
	}
	if report.Completed {
		report.Operations = append(report.Operations, "Meeting restored to active status")
	}

	if meeting.ClientID != nil {
		clientID := *meeting.ClientID
		active, err := m.meetings.CountActiveByClient(ctx, clientID, userID)
		if err != nil {
			report.addError(StepUnarchiveThreads, err)
		} else {
			if opts.DryRun {
				// the meeting being previewed is not restored yet
				active++
			}
			if active >= 1 {
				m.unarchiveThreads(ctx, clientID, userID, now, report)
			}
		}
		m.touchClient(ctx, clientID, userID, report)
	}

	if m.logger != nil {
		m.logger.Info("meeting restoration cascade",
			zap.String("meeting_id", meeting.ID.String()),
			zap.String("user_id", userID.String()),
			zap.Bool("dry_run", opts.DryRun),
			zap.Int("ask_threads", report.AffectedRecords.AskThreads),
			zap.Int("errors", len(report.Errors)),
		)
	}
	return report, nil
}

// HandleBulkMeetingDeletion deletes meetings one after another, continuing past failures
func (m *Manager) HandleBulkMeetingDeletion(ctx context.Context, meetingIDs []uuid.UUID, userID uuid.UUID, opts DeletionOptions) (*BulkReport, error) {
	bulk := &BulkReport{Details: make([]BulkItem, 0, len(meetingIDs))}
	clients := make(map[uuid.UUID]struct{})

	for _, id := range meetingIDs {
		bulk.Processed++
		item := BulkItem{MeetingID: id}

		if err := ctx.Err(); err != nil {
			item.Error = err.Error()
			bulk.Failed++
			bulk.Details = append(bulk.Details, item)
			continue
		}

		report, err := m.HandleMeetingDeletion(ctx, id, userID, opts)
		switch {
		case err != nil:
			item.Error = err.Error()
		case !report.Completed:
			item.Result = report
			item.Error = report.stepError(StepMarkDeleted)
		default:
			item.Success = true
			item.Result = report
		}

		if item.Success {
			bulk.Successful++
			bulk.Summary.TotalAskThreads += report.AffectedRecords.AskThreads
			bulk.Summary.TotalSummaries += report.AffectedRecords.Summaries
			if report.Meeting.ClientID != nil {
				clients[*report.Meeting.ClientID] = struct{}{}
			}
		} else {
			bulk.Failed++
		}
		bulk.Details = append(bulk.Details, item)
	}

	bulk.Summary.AffectedClients = len(clients)
	return bulk, nil
}

// PreviewCascadeDeletion reports what a deletion would do without writing
func (m *Manager) PreviewCascadeDeletion(ctx context.Context, meetingID, userID uuid.UUID) (*Report, error) {
	opts := DefaultDeletionOptions()
	opts.DryRun = true
	return m.HandleMeetingDeletion(ctx, meetingID, userID, opts)
}

// PreviewMeetingRestoration reports what a restoration would do without writing
func (m *Manager) PreviewMeetingRestoration(ctx context.Context, meetingID, userID uuid.UUID) (*Report, error) {
	return m.RestoreMeeting(ctx, meetingID, userID, RestoreOptions{DryRun: true})
}

func (m *Manager) load(ctx context.Context, meetingID, userID uuid.UUID) (*entities.Meeting, error) {
	meeting, err := m.meetings.FindByID(ctx, meetingID, userID)
	if err != nil {
		if errors.Is(err, entities.ErrMeetingNotFound) {
			return nil, ucErrors.ErrMeetingNotFound
		}
		return nil, fmt.Errorf("%w: %w", ucErrors.ErrPersistence, err)
	}
	return meeting, nil
}

func (m *Manager) archiveThreads(ctx context.Context, clientID, userID uuid.UUID, now time.Time, report *Report) {
	threads, err := m.threads.ListNonArchived(ctx, clientID, userID)
	if err != nil {
		report.addError(StepArchiveThreads, err)
		return
	}
	if len(threads) == 0 {
		return
	}
	if !report.DryRun {
		if _, err := m.threads.ArchiveAll(ctx, clientID, userID, now); err != nil {
			report.addError(StepArchiveThreads, err)
			return
		}
	}
	report.AffectedRecords.AskThreads = len(threads)
	report.Operations = append(report.Operations, fmt.Sprintf("Archived %d ask threads", len(threads)))
}

func (m *Manager) unarchiveThreads(ctx context.Context, clientID, userID uuid.UUID, now time.Time, report *Report) {
	threads, err := m.threads.ListArchived(ctx, clientID, userID)
	if err != nil {
		report.addError(StepUnarchiveThreads, err)
		return
	}
	if len(threads) == 0 {
		return
	}
	if !report.DryRun {
		if _, err := m.threads.UnarchiveAll(ctx, clientID, userID, now); err != nil {
			report.addError(StepUnarchiveThreads, err)
			return
		}
	}
	report.AffectedRecords.AskThreads = len(threads)
	report.Operations = append(report.Operations, fmt.Sprintf("Unarchived %d ask threads", len(threads)))
}

func (m *Manager) touchClient(ctx context.Context, clientID, userID uuid.UUID, report *Report) {
	if m.toucher == nil {
		return
	}
	if !report.DryRun {
		if err := m.toucher.Touch(ctx, clientID, userID); err != nil {
			report.addError(StepTouchClient, err)
			return
		}
	}
	report.AffectedRecords.ClientTouched = true
	report.Operations = append(report.Operations, "Client status touched")
}

func newReport(meeting *entities.Meeting, dryRun bool) *Report {
	return &Report{
		Meeting:    meeting,
		Operations: []string{},
		Errors:     []StepError{},
		DryRun:     dryRun,
	}
}

func (r *Report) addError(step string, err error) {
	r.Errors = append(r.Errors, StepError{Step: step, Message: err.Error()})
}

// stepError returns the message recorded for step, or the first error when the step has none
func (r *Report) stepError(step string) string {
	for _, e := range r.Errors {
		if e.Step == step {
			return e.Message
		}
	}
	if len(r.Errors) > 0 {
		return r.Errors[0].Message
	}
	return ""
}
