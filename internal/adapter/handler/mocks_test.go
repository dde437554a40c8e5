package handler

import (
	"context"
	"io"
	"sync"

	"github.com/google/uuid"

	"github.com/johnquangdev/advisor-calendar-sync/internal/domain/entities"
	"github.com/johnquangdev/advisor-calendar-sync/internal/domain/repositories"
	"github.com/johnquangdev/advisor-calendar-sync/internal/usecase/calendarsync"
	"github.com/johnquangdev/advisor-calendar-sync/internal/usecase/cascade"
	"github.com/johnquangdev/advisor-calendar-sync/internal/usecase/connection"
	"github.com/johnquangdev/advisor-calendar-sync/internal/usecase/icsimport"
)

var _ calendarsync.Service = &syncServiceMock{}

type syncServiceMock struct {
	SyncCalendarWithDeletionsFunc func(ctx context.Context, userID uuid.UUID) (*calendarsync.SyncResult, error)
	DetectCalendarStateFunc       func(ctx context.Context, userID uuid.UUID) (*calendarsync.Categorization, error)
	ReconcileCalendarDataFunc     func(ctx context.Context, userID uuid.UUID, dryRun bool) (*calendarsync.ReconcileResult, error)
	GetSyncStatusFunc             func(ctx context.Context, userID uuid.UUID) (*calendarsync.SyncStatusReport, error)
	GetSyncStatsFunc              func(ctx context.Context, userID uuid.UUID) (*repositories.MeetingStats, error)
	GetDeletedMeetingsFunc        func(ctx context.Context, userID uuid.UUID, limit int) ([]*entities.Meeting, error)
}

func (mock *syncServiceMock) SyncCalendarWithDeletions(ctx context.Context, userID uuid.UUID) (*calendarsync.SyncResult, error) {
	if mock.SyncCalendarWithDeletionsFunc == nil {
		panic("syncServiceMock.SyncCalendarWithDeletionsFunc: method is nil but Service.SyncCalendarWithDeletions was just called")
	}
	return mock.SyncCalendarWithDeletionsFunc(ctx, userID)
}

func (mock *syncServiceMock) DetectCalendarState(ctx context.Context, userID uuid.UUID) (*calendarsync.Categorization, error) {
	if mock.DetectCalendarStateFunc == nil {
		panic("syncServiceMock.DetectCalendarStateFunc: method is nil but Service.DetectCalendarState was just called")
	}
	return mock.DetectCalendarStateFunc(ctx, userID)
}

func (mock *syncServiceMock) ReconcileCalendarData(ctx context.Context, userID uuid.UUID, dryRun bool) (*calendarsync.ReconcileResult, error) {
	if mock.ReconcileCalendarDataFunc == nil {
		panic("syncServiceMock.ReconcileCalendarDataFunc: method is nil but Service.ReconcileCalendarData was just called")
	}
	return mock.ReconcileCalendarDataFunc(ctx, userID, dryRun)
}

func (mock *syncServiceMock) GetSyncStatus(ctx context.Context, userID uuid.UUID) (*calendarsync.SyncStatusReport, error) {
	if mock.GetSyncStatusFunc == nil {
		panic("syncServiceMock.GetSyncStatusFunc: method is nil but Service.GetSyncStatus was just called")
	}
	return mock.GetSyncStatusFunc(ctx, userID)
}

func (mock *syncServiceMock) GetSyncStats(ctx context.Context, userID uuid.UUID) (*repositories.MeetingStats, error) {
	if mock.GetSyncStatsFunc == nil {
		panic("syncServiceMock.GetSyncStatsFunc: method is nil but Service.GetSyncStats was just called")
	}
	return mock.GetSyncStatsFunc(ctx, userID)
}

func (mock *syncServiceMock) GetDeletedMeetings(ctx context.Context, userID uuid.UUID, limit int) ([]*entities.Meeting, error) {
	if mock.GetDeletedMeetingsFunc == nil {
		panic("syncServiceMock.GetDeletedMeetingsFunc: method is nil but Service.GetDeletedMeetings was just called")
	}
	return mock.GetDeletedMeetingsFunc(ctx, userID, limit)
}

var _ icsimport.Service = &importerMock{}

type importerMock struct {
	ImportFunc func(ctx context.Context, userID uuid.UUID, filename string, r io.Reader) (*icsimport.ImportResult, error)
}

func (mock *importerMock) Import(ctx context.Context, userID uuid.UUID, filename string, r io.Reader) (*icsimport.ImportResult, error) {
	if mock.ImportFunc == nil {
		panic("importerMock.ImportFunc: method is nil but Service.Import was just called")
	}
	return mock.ImportFunc(ctx, userID, filename, r)
}

var _ connection.Service = &connectServiceMock{}

type connectServiceMock struct {
	BeginGoogleConnectFunc    func(ctx context.Context, userID uuid.UUID) (*connection.ConnectURL, error)
	CompleteGoogleConnectFunc func(ctx context.Context, state, code string) (*entities.CalendarConnection, error)
	DisconnectFunc            func(ctx context.Context, userID uuid.UUID) error
}

func (mock *connectServiceMock) BeginGoogleConnect(ctx context.Context, userID uuid.UUID) (*connection.ConnectURL, error) {
	if mock.BeginGoogleConnectFunc == nil {
		panic("connectServiceMock.BeginGoogleConnectFunc: method is nil but Service.BeginGoogleConnect was just called")
	}
	return mock.BeginGoogleConnectFunc(ctx, userID)
}

func (mock *connectServiceMock) CompleteGoogleConnect(ctx context.Context, state, code string) (*entities.CalendarConnection, error) {
	if mock.CompleteGoogleConnectFunc == nil {
		panic("connectServiceMock.CompleteGoogleConnectFunc: method is nil but Service.CompleteGoogleConnect was just called")
	}
	return mock.CompleteGoogleConnectFunc(ctx, state, code)
}

func (mock *connectServiceMock) Disconnect(ctx context.Context, userID uuid.UUID) error {
	if mock.DisconnectFunc == nil {
		panic("connectServiceMock.DisconnectFunc: method is nil but Service.Disconnect was just called")
	}
	return mock.DisconnectFunc(ctx, userID)
}

var _ cascade.Service = &cascadeServiceMock{}

type cascadeServiceMock struct {
	HandleMeetingDeletionFunc     func(ctx context.Context, meetingID, userID uuid.UUID, opts cascade.DeletionOptions) (*cascade.Report, error)
	RestoreMeetingFunc            func(ctx context.Context, meetingID, userID uuid.UUID, opts cascade.RestoreOptions) (*cascade.Report, error)
	HandleBulkMeetingDeletionFunc func(ctx context.Context, meetingIDs []uuid.UUID, userID uuid.UUID, opts cascade.DeletionOptions) (*cascade.BulkReport, error)
	PreviewCascadeDeletionFunc    func(ctx context.Context, meetingID, userID uuid.UUID) (*cascade.Report, error)
	PreviewMeetingRestorationFunc func(ctx context.Context, meetingID, userID uuid.UUID) (*cascade.Report, error)

	calls struct {
		HandleMeetingDeletion []struct {
			MeetingID uuid.UUID
			UserID    uuid.UUID
			Opts      cascade.DeletionOptions
		}
		HandleBulkMeetingDeletion []struct {
			MeetingIDs []uuid.UUID
			UserID     uuid.UUID
			Opts       cascade.DeletionOptions
		}
	}
	lockHandleMeetingDeletion     sync.RWMutex
	lockHandleBulkMeetingDeletion sync.RWMutex
}

func (mock *cascadeServiceMock) HandleMeetingDeletion(ctx context.Context, meetingID, userID uuid.UUID, opts cascade.DeletionOptions) (*cascade.Report, error) {
	if mock.HandleMeetingDeletionFunc == nil {
		panic("cascadeServiceMock.HandleMeetingDeletionFunc: method is nil but Service.HandleMeetingDeletion was just called")
	}
	callInfo := struct {
		MeetingID uuid.UUID
		UserID    uuid.UUID
		Opts      cascade.DeletionOptions
	}{MeetingID: meetingID, UserID: userID, Opts: opts}
	mock.lockHandleMeetingDeletion.Lock()
	mock.calls.HandleMeetingDeletion = append(mock.calls.HandleMeetingDeletion, callInfo)
	mock.lockHandleMeetingDeletion.Unlock()
	return mock.HandleMeetingDeletionFunc(ctx, meetingID, userID, opts)
}

func (mock *cascadeServiceMock) HandleMeetingDeletionCalls() []struct {
	MeetingID uuid.UUID
	UserID    uuid.UUID
	Opts      cascade.DeletionOptions
} {
	mock.lockHandleMeetingDeletion.RLock()
	defer mock.lockHandleMeetingDeletion.RUnlock()
	return mock.calls.HandleMeetingDeletion
}

func (mock *cascadeServiceMock) RestoreMeeting(ctx context.Context, meetingID, userID uuid.UUID, opts cascade.RestoreOptions) (*cascade.Report, error) {
	if mock.RestoreMeetingFunc == nil {
		panic("cascadeServiceMock.RestoreMeetingFunc: method is nil but Service.RestoreMeeting was just called")
	}
	return mock.RestoreMeetingFunc(ctx, meetingID, userID, opts)
}

func (mock *cascadeServiceMock) HandleBulkMeetingDeletion(ctx context.Context, meetingIDs []uuid.UUID, userID uuid.UUID, opts cascade.DeletionOptions) (*cascade.BulkReport, error) {
	if mock.HandleBulkMeetingDeletionFunc == nil {
		panic("cascadeServiceMock.HandleBulkMeetingDeletionFunc: method is nil but Service.HandleBulkMeetingDeletion was just called")
	}
	callInfo := struct {
		MeetingIDs []uuid.UUID
		UserID     uuid.UUID
		Opts       cascade.DeletionOptions
	}{MeetingIDs: meetingIDs, UserID: userID, Opts: opts}
	mock.lockHandleBulkMeetingDeletion.Lock()
	mock.calls.HandleBulkMeetingDeletion = append(mock.calls.HandleBulkMeetingDeletion, callInfo)
	mock.lockHandleBulkMeetingDeletion.Unlock()
	return mock.HandleBulkMeetingDeletionFunc(ctx, meetingIDs, userID, opts)
}

func (mock *cascadeServiceMock) HandleBulkMeetingDeletionCalls() []struct {
	MeetingIDs []uuid.UUID
	UserID     uuid.UUID
	Opts       cascade.DeletionOptions
} {
	mock.lockHandleBulkMeetingDeletion.RLock()
	defer mock.lockHandleBulkMeetingDeletion.RUnlock()
	return mock.calls.HandleBulkMeetingDeletion
}

func (mock *cascadeServiceMock) PreviewCascadeDeletion(ctx context.Context, meetingID, userID uuid.UUID) (*cascade.Report, error) {
	if mock.PreviewCascadeDeletionFunc == nil {
		panic("cascadeServiceMock.PreviewCascadeDeletionFunc: method is nil but Service.PreviewCascadeDeletion was just called")
	}
	return mock.PreviewCascadeDeletionFunc(ctx, meetingID, userID)
}

func (mock *cascadeServiceMock) PreviewMeetingRestoration(ctx context.Context, meetingID, userID uuid.UUID) (*cascade.Report, error) {
	if mock.PreviewMeetingRestorationFunc == nil {
		panic("cascadeServiceMock.PreviewMeetingRestorationFunc: method is nil but Service.PreviewMeetingRestoration was just called")
	}
	return mock.PreviewMeetingRestorationFunc(ctx, meetingID, userID)
}
