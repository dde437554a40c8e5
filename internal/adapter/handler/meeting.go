package handler

import (
	stdErrors "errors"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/advisor-calendar-sync/errors"
	"github.com/johnquangdev/advisor-calendar-sync/internal/adapter/dto/meeting"
	"github.com/johnquangdev/advisor-calendar-sync/internal/usecase/cascade"
	ucErrors "github.com/johnquangdev/advisor-calendar-sync/internal/usecase/errors"
)

// MeetingIDKey holds the parsed :id path parameter
const MeetingIDKey = "meeting_id"

// Meeting handles meeting deletion and restoration HTTP requests
type Meeting struct {
	cascade cascade.Service
	logger  *zap.Logger
}

// NewMeetingHandler creates a new meeting handler
func NewMeetingHandler(cascadeService cascade.Service, logger *zap.Logger) *Meeting {
	return &Meeting{
		cascade: cascadeService,
		logger:  logger,
	}
}

// DeleteMeeting handles DELETE /meetings/:id
// @Summary      Delete a meeting
// @Description  Soft-deletes a meeting and archives the threads of its client. Transcript and summaries are kept.
// @Tags         Meetings
// @Produce      json
// @Security     BearerAuth
// @Param        id                   path      string  true   "Meeting ID (UUID)"
// @Param        dry_run              query     bool    false  "Report without writing"
// @Param        soft_delete          query     bool    false  "Stamp last_calendar_sync (default true)"
// @Param        preserve_historical  query     bool    false  "Keep transcript and summaries (default true)"
// @Success      200                  {object}  cascade.Report
// @Failure      404                  {object}  map[string]interface{}  "Meeting not found"
// @Router       /meetings/{id} [delete]
func (h *Meeting) DeleteMeeting(c echo.Context) error {
	userID, meetingID, err := h.target(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	opts := cascade.DefaultDeletionOptions()
	err = echo.QueryParamsBinder(c).
		Bool("dry_run", &opts.DryRun).
		Bool("soft_delete", &opts.SoftDelete).
		Bool("preserve_historical", &opts.PreserveHistorical).
		BindError()
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("query flags must be booleans"))
	}

	report, err := h.cascade.HandleMeetingDeletion(c.Request().Context(), meetingID, userID, opts)
	if err != nil {
		return h.meetingError(c, meetingID, err)
	}
	return HandleSuccess(h.logger, c, report)
}

// DeletionPreview handles GET /meetings/:id/deletion-preview
// @Summary      Preview meeting deletion
// @Tags         Meetings
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Meeting ID (UUID)"
// @Success      200  {object}  cascade.Report
// @Router       /meetings/{id}/deletion-preview [get]
func (h *Meeting) DeletionPreview(c echo.Context) error {
	userID, meetingID, err := h.target(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	report, err := h.cascade.PreviewCascadeDeletion(c.Request().Context(), meetingID, userID)
	if err != nil {
		return h.meetingError(c, meetingID, err)
	}
	return HandleSuccess(h.logger, c, report)
}

// RestoreMeeting handles POST /meetings/:id/restore
// @Summary      Restore a deleted meeting
// @Description  Restores a soft-deleted meeting and un-archives the threads of its client
// @Tags         Meetings
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string  true   "Meeting ID (UUID)"
// @Param        dry_run  query     bool    false  "Report without writing"
// @Success      200      {object}  cascade.Report
// @Failure      404      {object}  map[string]interface{}  "Meeting not found"
// @Failure      409      {object}  map[string]interface{}  "Meeting is not deleted"
// @Router       /meetings/{id}/restore [post]
func (h *Meeting) RestoreMeeting(c echo.Context) error {
	userID, meetingID, err := h.target(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	var opts cascade.RestoreOptions
	if err := echo.QueryParamsBinder(c).Bool("dry_run", &opts.DryRun).BindError(); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("dry_run must be a boolean"))
	}

	report, err := h.cascade.RestoreMeeting(c.Request().Context(), meetingID, userID, opts)
	if err != nil {
		return h.meetingError(c, meetingID, err)
	}
	return HandleSuccess(h.logger, c, report)
}

// RestorePreview handles GET /meetings/:id/restore-preview
// @Summary      Preview meeting restoration
// @Tags         Meetings
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Meeting ID (UUID)"
// @Success      200  {object}  cascade.Report
// @Router       /meetings/{id}/restore-preview [get]
func (h *Meeting) RestorePreview(c echo.Context) error {
	userID, meetingID, err := h.target(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	report, err := h.cascade.PreviewMeetingRestoration(c.Request().Context(), meetingID, userID)
	if err != nil {
		return h.meetingError(c, meetingID, err)
	}
	return HandleSuccess(h.logger, c, report)
}

// BulkDelete handles POST /meetings/bulk-delete
// @Summary      Delete several meetings
// @Description  Deletes each meeting independently; failures are reported per meeting
// @Tags         Meetings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      meeting.BulkDeleteRequest  true  "Meeting IDs and options"
// @Success      200      {object}  cascade.BulkReport
// @Failure      400      {object}  map[string]interface{}  "Invalid request or validation failed"
// @Router       /meetings/bulk-delete [post]
func (h *Meeting) BulkDelete(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	var req meeting.BulkDeleteRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	ids := make([]uuid.UUID, 0, len(req.MeetingIDs))
	for _, raw := range req.MeetingIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return HandleError(h.logger, c, errors.ErrInvalidArgument("meetingIds must be UUIDs"))
		}
		ids = append(ids, id)
	}

	opts := cascade.DefaultDeletionOptions()
	opts.DryRun = req.DryRun
	if req.SoftDelete != nil {
		opts.SoftDelete = *req.SoftDelete
	}
	if req.PreserveHistorical != nil {
		opts.PreserveHistorical = *req.PreserveHistorical
	}

	report, err := h.cascade.HandleBulkMeetingDeletion(c.Request().Context(), ids, userID, opts)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, report)
}

// target returns the authenticated advisor and the meeting of the :id path parameter
func (h *Meeting) target(c echo.Context) (uuid.UUID, uuid.UUID, error) {
	userID, err := currentUser(c)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}

	if id, ok := c.Get(MeetingIDKey).(uuid.UUID); ok {
		return userID, id, nil
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, uuid.Nil, errors.ErrInvalidArgument("meeting ID must be a valid UUID")
	}
	return userID, id, nil
}

func (h *Meeting) meetingError(c echo.Context, meetingID uuid.UUID, err error) error {
	switch {
	case stdErrors.Is(err, ucErrors.ErrMeetingNotFound):
		return HandleError(h.logger, c, errors.ErrMeetingNotFound(meetingID.String()))
	case stdErrors.Is(err, ucErrors.ErrMeetingNotDeleted):
		return HandleError(h.logger, c, errors.ErrMeetingNotDeleted(meetingID.String()))
	}
	return HandleError(h.logger, c, err)
}
