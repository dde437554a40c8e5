package handler

import (
	"fmt"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/advisor-calendar-sync/errors"
	"github.com/johnquangdev/advisor-calendar-sync/internal/adapter/dto/calendar"
	"github.com/johnquangdev/advisor-calendar-sync/internal/adapter/presenter"
	"github.com/johnquangdev/advisor-calendar-sync/internal/usecase/calendarsync"
	"github.com/johnquangdev/advisor-calendar-sync/internal/usecase/icsimport"
)

// Calendar handles calendar reconciliation and import HTTP requests
type Calendar struct {
	syncService calendarsync.Service
	importer    icsimport.Service
	logger      *zap.Logger
}

// NewCalendarHandler creates a new calendar handler
func NewCalendarHandler(syncService calendarsync.Service, importer icsimport.Service, logger *zap.Logger) *Calendar {
	return &Calendar{
		syncService: syncService,
		importer:    importer,
		logger:      logger,
	}
}

// Sync handles POST /calendar/sync
// @Summary      Sync calendar with deletions
// @Description  Runs a full reconciliation pass: new events are created, cancelled or missing events soft-delete their meetings and reappearing events restore them
// @Tags         Calendar
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  calendarsync.SyncResult
// @Failure      401  {object}  map[string]interface{}  "Calendar token expired and could not be refreshed"
// @Failure      412  {object}  map[string]interface{}  "No calendar connection"
// @Failure      502  {object}  map[string]interface{}  "Calendar provider unavailable"
// @Router       /calendar/sync [post]
func (h *Calendar) Sync(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	result, err := h.syncService.SyncCalendarWithDeletions(c.Request().Context(), userID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, result)
}

// State handles GET /calendar/state
// @Summary      Detect calendar state
// @Description  Categorizes provider events against local meetings without writing anything
// @Tags         Calendar
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  calendarsync.Categorization
// @Router       /calendar/state [get]
func (h *Calendar) State(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	cat, err := h.syncService.DetectCalendarState(c.Request().Context(), userID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, cat)
}

// Reconcile handles POST /calendar/reconcile
// @Summary      Reconcile calendar data
// @Description  Applies deletions, restorations and creations. With dry_run=true nothing is written.
// @Tags         Calendar
// @Produce      json
// @Security     BearerAuth
// @Param        dry_run  query     bool  false  "Report without writing"
// @Success      200      {object}  calendarsync.ReconcileResult
// @Router       /calendar/reconcile [post]
func (h *Calendar) Reconcile(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	var dryRun bool
	if err := echo.QueryParamsBinder(c).Bool("dry_run", &dryRun).BindError(); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("dry_run must be a boolean"))
	}

	result, err := h.syncService.ReconcileCalendarData(c.Request().Context(), userID, dryRun)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, result)
}

// SyncStatus handles GET /calendar/sync-status
// @Summary      Get sync status
// @Tags         Calendar
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  calendarsync.SyncStatusReport
// @Router       /calendar/sync-status [get]
func (h *Calendar) SyncStatus(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	report, err := h.syncService.GetSyncStatus(c.Request().Context(), userID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, report)
}

// SyncStats handles GET /calendar/sync-stats
// @Summary      Get meeting statistics
// @Tags         Calendar
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  repositories.MeetingStats
// @Router       /calendar/sync-stats [get]
func (h *Calendar) SyncStats(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	stats, err := h.syncService.GetSyncStats(c.Request().Context(), userID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, stats)
}

// DeletedMeetings handles GET /calendar/meetings/deleted
// @Summary      List deleted meetings
// @Tags         Calendar
// @Produce      json
// @Security     BearerAuth
// @Param        limit  query     int  false  "Maximum number of meetings (1-500)"
// @Success      200    {object}  calendar.DeletedMeetingsResponse
// @Failure      400    {object}  map[string]interface{}  "Invalid limit"
// @Router       /calendar/meetings/deleted [get]
func (h *Calendar) DeletedMeetings(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	var q calendar.DeletedMeetingsQuery
	if err := bindAndValidate(c, &q); err != nil {
		return HandleError(h.logger, c, err)
	}

	meetings, err := h.syncService.GetDeletedMeetings(c.Request().Context(), userID, q.Limit)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, calendar.DeletedMeetingsResponse{
		Meetings: presenter.ToMeetingResponses(meetings),
		Count:    len(meetings),
	})
}

// ImportICS handles POST /calendar/ics-import
// @Summary      Import an ICS file
// @Description  Imports the VEVENTs of an uploaded .ics file as meetings. Imported meetings are never deleted by calendar sync.
// @Tags         Calendar
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        file  formData  file  true  "iCalendar file"
// @Success      200   {object}  icsimport.ImportResult
// @Failure      400   {object}  map[string]interface{}  "Missing or oversized file"
// @Failure      422   {object}  map[string]interface{}  "Not a calendar file"
// @Router       /calendar/ics-import [post]
func (h *Calendar) ImportICS(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("file is required"))
	}
	if fileHeader.Size > icsimport.MaxFileSize {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(
			fmt.Sprintf("file exceeds %d MB", icsimport.MaxFileSize>>20)))
	}

	file, err := fileHeader.Open()
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload(err))
	}
	defer file.Close()

	result, err := h.importer.Import(c.Request().Context(), userID, fileHeader.Filename, file)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, result)
}
