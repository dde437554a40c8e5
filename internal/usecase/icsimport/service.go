package icsimport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/johnquangdev/advisor-calendar-sync/internal/domain/entities"
	"github.com/johnquangdev/advisor-calendar-sync/internal/domain/repositories"
	ucErrors "github.com/johnquangdev/advisor-calendar-sync/internal/usecase/errors"
)

// MaxFileSize bounds an uploaded calendar file
const MaxFileSize = 10 << 20

// Service defines the ICS import use case
type Service interface {
	Import(ctx context.Context, userID uuid.UUID, filename string, r io.Reader) (*ImportResult, error)
}

// Archiver keeps the raw uploaded file
type Archiver interface {
	UploadFile(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) error
}

// ImportError is a VEVENT that could not be imported
type ImportError struct {
	UID     string `json:"uid,omitempty"`
	Title   string `json:"title,omitempty"`
	Message string `json:"message"`
}

// ImportResult summarizes one import
type ImportResult struct {
	Imported   int           `json:"imported"`
	Updated    int           `json:"updated"`
	Skipped    int           `json:"skipped"`
	Errors     []ImportError `json:"errors"`
	ArchivedAs string        `json:"archivedAs,omitempty"`
}

// Importer turns ICS files into meetings flagged imported_from_ics. Imported
// meetings are never deleted by calendar reconciliation.
type Importer struct {
	meetings repositories.MeetingRepository
	archiver Archiver
	logger   *zap.Logger
	now      func() time.Time
}

// Ensure Importer implements Service
var _ Service = (*Importer)(nil)

// NewImporter creates a new importer. archiver may be nil.
func NewImporter(meetings repositories.MeetingRepository, archiver Archiver, logger *zap.Logger) *Importer {
	return &Importer{
		meetings: meetings,
		archiver: archiver,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Import upserts the file's events keyed by UID
func (s *Importer) Import(ctx context.Context, userID uuid.UUID, filename string, r io.Reader) (*ImportResult, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read calendar file: %w", err)
	}
	if len(data) > MaxFileSize {
		return nil, fmt.Errorf("%w: file exceeds %d bytes", ucErrors.ErrInvalidCalendarFile, MaxFileSize)
	}

	parsed, err := ParseCalendar(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ucErrors.ErrInvalidCalendarFile, err)
	}

	now := s.now()
	result := &ImportResult{Errors: []ImportError{}}

	for _, p := range parsed {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		s.importEvent(ctx, userID, p, now, result)
	}

	if s.archiver != nil {
		objectName := archiveName(userID, filename, now)
		if err := s.archiver.UploadFile(ctx, objectName, bytes.NewReader(data), int64(len(data)), "text/calendar"); err != nil {
			if s.logger != nil {
				s.logger.Warn("failed to archive calendar file", zap.String("object", objectName), zap.Error(err))
			}
		} else {
			result.ArchivedAs = objectName
		}
	}

	if s.logger != nil {
		s.logger.Info("calendar file imported",
			zap.String("user_id", userID.String()),
			zap.String("filename", filename),
			zap.Int("imported", result.Imported),
			zap.Int("updated", result.Updated),
			zap.Int("skipped", result.Skipped),
			zap.Int("errors", len(result.Errors)),
		)
	}
	return result, nil
}

func (s *Importer) importEvent(ctx context.Context, userID uuid.UUID, p ParsedEvent, now time.Time, result *ImportResult) {
	event := p.Event
	if p.Err != nil {
		result.Errors = append(result.Errors, ImportError{UID: event.ExternalID, Title: event.Title, Message: p.Err.Error()})
		return
	}
	if event.IsCancelled() {
		result.Skipped++
		return
	}

	existing, err := s.meetings.FindByExternalID(ctx, userID, event.ExternalID)
	switch {
	case errors.Is(err, entities.ErrMeetingNotFound):
		meeting := entities.NewMeetingFromEvent(userID, entities.MeetingProviderImported, event, now)
		meeting.ImportedFromICS = true
		if err := s.meetings.Create(ctx, meeting); err != nil {
			result.Errors = append(result.Errors, ImportError{UID: event.ExternalID, Title: event.Title, Message: err.Error()})
			return
		}
		result.Imported++
	case err != nil:
		result.Errors = append(result.Errors, ImportError{UID: event.ExternalID, Title: event.Title, Message: err.Error()})
	case !existing.ImportedFromICS:
		// the same event is already mirrored from a connected calendar
		result.Skipped++
	default:
		attendees := event.Attendees
		if attendees == nil {
			attendees = []entities.Attendee{}
		}
		fields := repositories.MeetingProviderFields{
			Title:       event.TitleOrDefault(),
			Description: event.Description,
			Location:    event.Location,
			StartTime:   *event.Start,
			EndTime:     event.End,
			AllDay:      event.AllDay,
			Attendees:   attendees,
			SyncedAt:    now,
		}
		if err := s.meetings.UpdateProviderFields(ctx, existing.ID, userID, fields); err != nil {
			result.Errors = append(result.Errors, ImportError{UID: event.ExternalID, Title: event.Title, Message: err.Error()})
			return
		}
		result.Updated++
	}
}

func archiveName(userID uuid.UUID, filename string, now time.Time) string {
	base := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if base == "." || base == "/" || base == "" {
		base = "calendar.ics"
	}
	return fmt.Sprintf("ics-imports/%s/%s-%s", userID, now.Format("20060102T150405Z"), base)
}
