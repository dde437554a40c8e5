package icsimport

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnquangdev/advisor-calendar-sync/internal/adapter/repository/memory"
	"github.com/johnquangdev/advisor-calendar-sync/internal/domain/entities"
	ucErrors "github.com/johnquangdev/advisor-calendar-sync/internal/usecase/errors"
)

var testNow = time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

func ics(lines ...string) string {
	all := append([]string{"BEGIN:VCALENDAR", "VERSION:2.0", "PRODID:-//Advisor//Test//EN"}, lines...)
	all = append(all, "END:VCALENDAR")
	return strings.Join(all, "\r\n") + "\r\n"
}

func vevent(props ...string) []string {
	out := append([]string{"BEGIN:VEVENT", "DTSTAMP:20261001T080000Z"}, props...)
	return append(out, "END:VEVENT")
}

func join(groups ...[]string) []string {
	var out []string
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

type archiverStub struct {
	objects map[string]string
	err     error
}

func (a *archiverStub) UploadFile(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) error {
	if a.err != nil {
		return a.err
	}
	b, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	if a.objects == nil {
		a.objects = make(map[string]string)
	}
	a.objects[objectName] = string(b)
	return nil
}

func newImporter(store *memory.Store, archiver Archiver) *Importer {
	s := NewImporter(memory.NewMeetingRepository(store), archiver, nil)
	s.now = func() time.Time { return testNow }
	return s
}

func TestParseCalendar(t *testing.T) {
	data := ics(join(
		vevent(
			"UID:evt-1",
			"SUMMARY:Portfolio review",
			"DESCRIPTION:Annual check-in",
			"LOCATION:Office",
			"DTSTART:20261020T140000Z",
			"DTEND:20261020T150000Z",
			"ATTENDEE;CN=Jane Client:mailto:jane@example.com",
		),
		vevent("UID:evt-2", "SUMMARY:Offsite", "DTSTART;VALUE=DATE:20261022", "DTEND;VALUE=DATE:20261023"),
		vevent("UID:evt-3", "STATUS:CANCELLED", "DTSTART:20261024T090000Z"),
		vevent("SUMMARY:No uid", "DTSTART:20261024T090000Z"),
	)...)

	parsed, err := ParseCalendar([]byte(data))
	require.NoError(t, err)
	require.Len(t, parsed, 4)

	first := parsed[0]
	require.NoError(t, first.Err)
	assert.Equal(t, "evt-1", first.Event.ExternalID)
	assert.Equal(t, "Portfolio review", first.Event.Title)
	require.NotNil(t, first.Event.Description)
	assert.Equal(t, "Annual check-in", *first.Event.Description)
	require.NotNil(t, first.Event.Start)
	assert.True(t, first.Event.Start.Equal(time.Date(2026, 10, 20, 14, 0, 0, 0, time.UTC)))
	assert.False(t, first.Event.AllDay)
	assert.Equal(t, []entities.Attendee{{Email: "jane@example.com", DisplayName: "Jane Client"}}, first.Event.Attendees)

	allDay := parsed[1]
	require.NoError(t, allDay.Err)
	assert.True(t, allDay.Event.AllDay)
	assert.True(t, allDay.Event.Start.Equal(time.Date(2026, 10, 22, 0, 0, 0, 0, time.UTC)))

	assert.True(t, parsed[2].Event.IsCancelled())
	assert.ErrorIs(t, parsed[3].Err, errMissingUID)
}

func TestParseCalendar_RejectsNonCalendar(t *testing.T) {
	_, err := ParseCalendar([]byte("hello world"))
	assert.Error(t, err)
}

func TestImport(t *testing.T) {
	store := memory.NewStore()
	userID := uuid.New()

	linked := "google-evt"
	store.PutMeeting(&entities.Meeting{
		ID:         uuid.New(),
		UserID:     userID,
		ExternalID: &linked,
		Provider:   entities.MeetingProviderGoogle,
		Title:      "From Google",
		StartTime:  testNow,
		SyncStatus: entities.SyncStatusActive,
	})

	archiver := &archiverStub{}
	data := ics(join(
		vevent("UID:evt-1", "SUMMARY:Portfolio review", "DTSTART:20261020T140000Z"),
		vevent("UID:google-evt", "SUMMARY:Duplicate", "DTSTART:20261020T160000Z"),
		vevent("UID:evt-3", "STATUS:CANCELLED", "DTSTART:20261024T090000Z"),
		vevent("UID:evt-4", "SUMMARY:No start"),
	)...)

	result, err := newImporter(store, archiver).Import(context.Background(), userID, "calendar.ics", strings.NewReader(data))
	require.NoError(t, err)

	assert.Equal(t, 1, result.Imported)
	assert.Equal(t, 0, result.Updated)
	assert.Equal(t, 2, result.Skipped)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "evt-4", result.Errors[0].UID)

	var imported *entities.Meeting
	for _, m := range store.Meetings() {
		if m.ExternalIDValue() == "evt-1" {
			imported = m
		}
	}
	require.NotNil(t, imported)
	assert.True(t, imported.ImportedFromICS)
	assert.Equal(t, entities.MeetingProviderImported, imported.Provider)
	assert.Equal(t, userID, imported.UserID)

	expectedObject := "ics-imports/" + userID.String() + "/20261015T120000Z-calendar.ics"
	assert.Equal(t, expectedObject, result.ArchivedAs)
	assert.Equal(t, data, archiver.objects[expectedObject])
}

func TestImport_ReimportUpdates(t *testing.T) {
	store := memory.NewStore()
	userID := uuid.New()
	s := newImporter(store, nil)

	_, err := s.Import(context.Background(), userID, "a.ics",
		strings.NewReader(ics(vevent("UID:evt-1", "SUMMARY:Draft", "DTSTART:20261020T140000Z")...)))
	require.NoError(t, err)

	result, err := s.Import(context.Background(), userID, "a.ics",
		strings.NewReader(ics(vevent("UID:evt-1", "SUMMARY:Final", "DTSTART:20261020T150000Z")...)))
	require.NoError(t, err)
	assert.Equal(t, 0, result.Imported)
	assert.Equal(t, 1, result.Updated)
	assert.Empty(t, result.ArchivedAs)

	meetings := store.Meetings()
	require.Len(t, meetings, 1)
	assert.Equal(t, "Final", meetings[0].Title)
	assert.True(t, meetings[0].StartTime.Equal(time.Date(2026, 10, 20, 15, 0, 0, 0, time.UTC)))
}

func TestImport_ArchiveFailureIsNotFatal(t *testing.T) {
	store := memory.NewStore()
	result, err := newImporter(store, &archiverStub{err: errors.New("bucket missing")}).Import(
		context.Background(), uuid.New(), "a.ics",
		strings.NewReader(ics(vevent("UID:evt-1", "DTSTART:20261020T140000Z")...)),
	)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
	assert.Empty(t, result.ArchivedAs)
}

func TestImport_InvalidFile(t *testing.T) {
	_, err := newImporter(memory.NewStore(), nil).Import(context.Background(), uuid.New(), "a.ics", strings.NewReader("not a calendar"))
	assert.ErrorIs(t, err, ucErrors.ErrInvalidCalendarFile)
}
