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

// Item operations recorded in ItemError
const (
	OperationDelete       = "delete"
	OperationRestore      = "restore"
	OperationCreate       = "create"
	OperationUpdate       = "update"
	OperationVerify       = "verify"
	OperationTouchClients = "touch_clients"
	OperationCancelled    = "cancelled"
)

// ReconcileOptions controls one Apply call
type ReconcileOptions struct {
	DryRun bool
	// RefreshActive rewrites provider-owned fields of active meetings that drifted
	RefreshActive bool
	// VerifyMissing double-checks missing events with a direct lookup before deleting
	VerifyMissing bool
}

// MeetingRef identifies a meeting in a reconciliation report. ID is empty for creations.
type MeetingRef struct {
	ID         *uuid.UUID `json:"id,omitempty"`
	Title      string     `json:"title"`
	ExternalID string     `json:"externalId"`
}

// ItemError is a per-record failure that did not abort the batch
type ItemError struct {
	MeetingID  *uuid.UUID `json:"meetingId,omitempty"`
	ExternalID string     `json:"externalId,omitempty"`
	Title      string     `json:"title,omitempty"`
	Operation  string     `json:"operation"`
	Message    string     `json:"message"`
}

// ReconcileDetails itemizes every record acted upon
type ReconcileDetails struct {
	Created  []MeetingRef `json:"created"`
	Updated  []MeetingRef `json:"updated"`
	Deleted  []MeetingRef `json:"deleted"`
	Restored []MeetingRef `json:"restored"`
}

// ReconcileResult is the report of one Apply call
type ReconcileResult struct {
	DryRun    bool             `json:"dryRun"`
	Processed int              `json:"processed"`
	Created   int              `json:"created"`
	Updated   int              `json:"updated"`
	Deleted   int              `json:"deleted"`
	Restored  int              `json:"restored"`
	Skipped   int              `json:"skipped"`
	Errors    []ItemError      `json:"errors"`
	Details   ReconcileDetails `json:"details"`
}

func newReconcileResult(dryRun bool) *ReconcileResult {
	return &ReconcileResult{
		DryRun: dryRun,
		Errors: []ItemError{},
		Details: ReconcileDetails{
			Created:  []MeetingRef{},
			Updated:  []MeetingRef{},
			Deleted:  []MeetingRef{},
			Restored: []MeetingRef{},
		},
	}
}

// Reconciler applies a categorization to the local meeting store
type Reconciler struct {
	meetings repositories.MeetingRepository
	clients  repositories.ClientRepository
	toucher  ClientToucher
	fetcher  EventFetcher
	logger   *zap.Logger
	now      func() time.Time
}

// NewReconciler creates a new reconciler
func NewReconciler(
	meetings repositories.MeetingRepository,
	clients repositories.ClientRepository,
	toucher ClientToucher,
	fetcher EventFetcher,
	logger *zap.Logger,
) *Reconciler {
	return &Reconciler{
		meetings: meetings,
		clients:  clients,
		toucher:  toucher,
		fetcher:  fetcher,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Apply processes the buckets in the order deleted, inconsistent, new, then
// active refresh. Per-item failures are collected and never abort the batch.
// creds is only used when VerifyMissing is set.
func (r *Reconciler) Apply(
	ctx context.Context,
	userID uuid.UUID,
	creds *entities.CalendarCredentials,
	cat *Categorization,
	opts ReconcileOptions,
) *ReconcileResult {
	result := newReconcileResult(opts.DryRun)
	now := r.now()

	for _, d := range cat.Deleted {
		if r.cancelled(ctx, result) {
			return result
		}
		r.applyDeletion(ctx, userID, creds, d, opts, now, result)
	}

	for _, inc := range cat.Inconsistent {
		if r.cancelled(ctx, result) {
			return result
		}
		r.applyRestore(ctx, userID, inc, opts, now, result)
	}

	for _, event := range cat.New {
		if r.cancelled(ctx, result) {
			return result
		}
		r.applyCreate(ctx, userID, event, opts, now, result)
	}

	if opts.RefreshActive {
		for _, a := range cat.Active {
			if r.cancelled(ctx, result) {
				return result
			}
			r.applyRefresh(ctx, userID, a, opts, now, result)
		}
	}

	if !opts.DryRun && result.Processed > 0 {
		r.touchClients(ctx, userID, result)
	}

	if r.logger != nil {
		r.logger.Info("calendar reconciliation applied",
			zap.String("user_id", userID.String()),
			zap.Bool("dry_run", opts.DryRun),
			zap.Int("created", result.Created),
			zap.Int("updated", result.Updated),
			zap.Int("deleted", result.Deleted),
			zap.Int("restored", result.Restored),
			zap.Int("skipped", result.Skipped),
			zap.Int("errors", len(result.Errors)),
		)
	}
	return result
}

func (r *Reconciler) applyDeletion(
	ctx context.Context,
	userID uuid.UUID,
	creds *entities.CalendarCredentials,
	d DeletedMeeting,
	opts ReconcileOptions,
	now time.Time,
	result *ReconcileResult,
) {
	m := d.Meeting

	if opts.VerifyMissing && d.Reason == DeletionReasonMissing && creds != nil {
		event, err := r.fetcher.GetEvent(ctx, creds, m.ExternalIDValue())
		switch {
		case errors.Is(err, entities.ErrProviderEventNotFound):
			// confirmed gone
		case err != nil:
			result.Errors = append(result.Errors, itemError(m, OperationVerify, fmt.Errorf("%w: %w", ucErrors.ErrProviderUnavailable, err)))
			return
		case !event.IsCancelled():
			// outside the listing window but still live
			result.Skipped++
			return
		}
	}

	if !opts.DryRun {
		if err := r.meetings.MarkDeleted(ctx, m.ID, userID, now, true); err != nil {
			result.Errors = append(result.Errors, itemError(m, OperationDelete, persistenceError(err)))
			return
		}
	}
	result.Deleted++
	result.Processed++
	result.Details.Deleted = append(result.Details.Deleted, refOf(m))
}

func (r *Reconciler) applyRestore(ctx context.Context, userID uuid.UUID, inc InconsistentMeeting, opts ReconcileOptions, now time.Time, result *ReconcileResult) {
	m := inc.Meeting
	if !opts.DryRun {
		if err := r.meetings.Restore(ctx, m.ID, userID, now); err != nil {
			result.Errors = append(result.Errors, itemError(m, OperationRestore, persistenceError(err)))
			return
		}
	}
	result.Restored++
	result.Processed++
	result.Details.Restored = append(result.Details.Restored, refOf(m))

	// a restored meeting also picks up provider edits made while it was deleted
	if !opts.RefreshActive || opts.DryRun {
		return
	}
	if fields, changed := providerFieldsChanged(m, inc.Event); changed {
		fields.SyncedAt = now
		if err := r.meetings.UpdateProviderFields(ctx, m.ID, userID, fields); err != nil {
			result.Errors = append(result.Errors, itemError(m, OperationUpdate, persistenceError(err)))
		}
	}
}

func (r *Reconciler) applyCreate(ctx context.Context, userID uuid.UUID, event entities.ProviderEvent, opts ReconcileOptions, now time.Time, result *ReconcileResult) {
	ref := MeetingRef{Title: event.TitleOrDefault(), ExternalID: event.ExternalID}
	if event.Start == nil {
		result.Skipped++
		result.Errors = append(result.Errors, ItemError{
			ExternalID: event.ExternalID,
			Title:      ref.Title,
			Operation:  OperationCreate,
			Message:    "event has no start time",
		})
		return
	}

	if !opts.DryRun {
		meeting := entities.NewMeetingFromEvent(userID, entities.MeetingProviderGoogle, event, now)
		if err := r.meetings.Create(ctx, meeting); err != nil {
			result.Errors = append(result.Errors, ItemError{
				ExternalID: event.ExternalID,
				Title:      ref.Title,
				Operation:  OperationCreate,
				Message:    persistenceError(err).Error(),
			})
			return
		}
	}
	result.Created++
	result.Processed++
	result.Details.Created = append(result.Details.Created, ref)
}

func (r *Reconciler) applyRefresh(ctx context.Context, userID uuid.UUID, a MatchedMeeting, opts ReconcileOptions, now time.Time, result *ReconcileResult) {
	fields, changed := providerFieldsChanged(a.Meeting, a.Event)
	if !changed {
		return
	}
	fields.SyncedAt = now

	if !opts.DryRun {
		if err := r.meetings.UpdateProviderFields(ctx, a.Meeting.ID, userID, fields); err != nil {
			result.Errors = append(result.Errors, itemError(a.Meeting, OperationUpdate, persistenceError(err)))
			return
		}
	}
	result.Updated++
	result.Processed++
	ref := refOf(a.Meeting)
	ref.Title = fields.Title
	result.Details.Updated = append(result.Details.Updated, ref)
}

func (r *Reconciler) touchClients(ctx context.Context, userID uuid.UUID, result *ReconcileResult) {
	if r.toucher == nil || r.clients == nil {
		return
	}
	ids, err := r.clients.ListIDsByAdvisor(ctx, userID)
	if err != nil {
		result.Errors = append(result.Errors, ItemError{
			Operation: OperationTouchClients,
			Message:   persistenceError(err).Error(),
		})
		return
	}
	for _, id := range ids {
		if err := r.toucher.Touch(ctx, id, userID); err != nil {
			result.Errors = append(result.Errors, ItemError{
				Operation: OperationTouchClients,
				Message:   fmt.Sprintf("client %s: %v", id, err),
			})
		}
	}
}

func (r *Reconciler) cancelled(ctx context.Context, result *ReconcileResult) bool {
	if err := ctx.Err(); err != nil {
		result.Errors = append(result.Errors, ItemError{
			Operation: OperationCancelled,
			Message:   err.Error(),
		})
		return true
	}
	return false
}

// providerFieldsChanged compares the provider-owned fields of a meeting with its event
func providerFieldsChanged(m *entities.Meeting, e entities.ProviderEvent) (repositories.MeetingProviderFields, bool) {
	fields := repositories.MeetingProviderFields{
		Title:       e.TitleOrDefault(),
		Description: e.Description,
		Location:    e.Location,
		StartTime:   m.StartTime,
		EndTime:     e.End,
		AllDay:      e.AllDay,
		Attendees:   e.Attendees,
	}
	if e.Start != nil {
		fields.StartTime = *e.Start
	}
	if fields.Attendees == nil {
		fields.Attendees = []entities.Attendee{}
	}

	changed := m.Title != fields.Title ||
		!equalString(m.Description, fields.Description) ||
		!equalString(m.Location, fields.Location) ||
		!m.StartTime.Equal(fields.StartTime) ||
		!equalTime(m.EndTime, fields.EndTime) ||
		m.AllDay != fields.AllDay ||
		!entities.SameAttendees(m.Attendees(), fields.Attendees)
	return fields, changed
}

func equalString(a, b *string) bool {
	if a == nil || b == nil {
		return (a == nil || *a == "") && (b == nil || *b == "")
	}
	return *a == *b
}

func equalTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

func refOf(m *entities.Meeting) MeetingRef {
	id := m.ID
	return MeetingRef{ID: &id, Title: m.Title, ExternalID: m.ExternalIDValue()}
}

func itemError(m *entities.Meeting, op string, err error) ItemError {
	id := m.ID
	return ItemError{
		MeetingID:  &id,
		ExternalID: m.ExternalIDValue(),
		Title:      m.Title,
		Operation:  op,
		Message:    err.Error(),
	}
}

func persistenceError(err error) error {
	return fmt.Errorf("%w: %w", ucErrors.ErrPersistence, err)
}
