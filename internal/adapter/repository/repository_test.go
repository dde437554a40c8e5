package repository

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	migrate "github.com/rubenv/sql-migrate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/johnquangdev/advisor-calendar-sync/internal/domain/entities"
	"github.com/johnquangdev/advisor-calendar-sync/internal/domain/repositories"
	"github.com/johnquangdev/advisor-calendar-sync/internal/infrastructure/database"
)

var (
	dbOnce    sync.Once
	sharedDSN string
	dbInitErr error
)

// setupTestDB starts one postgres container per test run and applies the
// migrations. Set RUN_DB_TESTS=1 to enable; docker is required.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	if os.Getenv("RUN_DB_TESTS") == "" {
		t.Skip("RUN_DB_TESTS not set")
	}

	dbOnce.Do(func() {
		sharedDSN, dbInitErr = startPostgres()
	})
	require.NoError(t, dbInitErr)

	db, err := database.Open(sharedDSN, logger.Default.LogMode(logger.Silent))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.CloseDB(db) })
	return db
}

func startPostgres() (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "testuser",
				"POSTGRES_PASSWORD": "testpass",
				"POSTGRES_DB":       "advisor_crm_test",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		return "", fmt.Errorf("start container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return "", fmt.Errorf("get container host: %w", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		return "", fmt.Errorf("get mapped port: %w", err)
	}

	dsn := fmt.Sprintf("host=%s port=%s user=testuser password=testpass dbname=advisor_crm_test sslmode=disable", host, port.Port())
	db, err := database.Open(dsn, logger.Default.LogMode(logger.Silent))
	if err != nil {
		return "", err
	}
	defer database.CloseDB(db)

	if _, err := database.Migrate(db, migrationsPath(), migrate.Up, 0); err != nil {
		return "", err
	}
	return dsn, nil
}

func migrationsPath() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "..", "..", "migrations")
}

func strPtr(s string) *string { return &s }

func createClient(t *testing.T, db *gorm.DB, advisorID uuid.UUID) *entities.Client {
	t.Helper()
	client := &entities.Client{AdvisorID: advisorID, Name: "Jane Investor", IsActive: true}
	require.NoError(t, db.Create(client).Error)
	return client
}

func TestMeetingRepository_Lifecycle(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMeetingRepository(db)
	ctx := context.Background()

	advisorID := uuid.New()
	client := createClient(t, db, advisorID)
	start := time.Now().UTC().Add(-24 * time.Hour).Truncate(time.Second)

	meeting := &entities.Meeting{
		UserID:     advisorID,
		ExternalID: strPtr("evt-" + uuid.NewString()),
		Provider:   entities.MeetingProviderGoogle,
		StartTime:  start,
		Title:      "Quarterly review",
		Transcript: strPtr("we talked about bonds"),
		SyncStatus: entities.SyncStatusActive,
		ClientID:   &client.ID,
	}
	require.NoError(t, repo.Create(ctx, meeting))
	require.NotEqual(t, uuid.Nil, meeting.ID)

	t.Run("finds by external ID scoped to the owner", func(t *testing.T) {
		found, err := repo.FindByExternalID(ctx, advisorID, *meeting.ExternalID)
		require.NoError(t, err)
		assert.Equal(t, meeting.ID, found.ID)

		_, err = repo.FindByExternalID(ctx, uuid.New(), *meeting.ExternalID)
		assert.ErrorIs(t, err, entities.ErrMeetingNotFound)
	})

	t.Run("provider update keeps the transcript", func(t *testing.T) {
		err := repo.UpdateProviderFields(ctx, meeting.ID, advisorID, repositories.MeetingProviderFields{
			Title:     "Quarterly review (moved)",
			StartTime: start.Add(time.Hour),
			Attendees: []entities.Attendee{{Email: "jane@example.com"}},
			SyncedAt:  time.Now().UTC(),
		})
		require.NoError(t, err)

		found, err := repo.FindByID(ctx, meeting.ID, advisorID)
		require.NoError(t, err)
		assert.Equal(t, "Quarterly review (moved)", found.Title)
		require.NotNil(t, found.Transcript)
		assert.Equal(t, "we talked about bonds", *found.Transcript)
		assert.Len(t, found.Attendees(), 1)
	})

	t.Run("mark deleted and restore", func(t *testing.T) {
		at := time.Now().UTC()
		require.NoError(t, repo.MarkDeleted(ctx, meeting.ID, advisorID, at, true))

		found, err := repo.FindByID(ctx, meeting.ID, advisorID)
		require.NoError(t, err)
		assert.True(t, found.IsDeleted)
		assert.Equal(t, entities.SyncStatusDeleted, found.SyncStatus)
		assert.NotNil(t, found.DeletedAt)
		assert.NotNil(t, found.LastCalendarSync)

		deleted, err := repo.ListDeleted(ctx, advisorID, 10)
		require.NoError(t, err)
		require.Len(t, deleted, 1)
		assert.Equal(t, meeting.ID, deleted[0].ID)

		active, err := repo.CountActiveByClient(ctx, client.ID, advisorID)
		require.NoError(t, err)
		assert.Equal(t, int64(0), active)

		require.NoError(t, repo.Restore(ctx, meeting.ID, advisorID, time.Now().UTC()))
		found, err = repo.FindByID(ctx, meeting.ID, advisorID)
		require.NoError(t, err)
		assert.False(t, found.IsDeleted)
		assert.Nil(t, found.DeletedAt)
		assert.Equal(t, entities.SyncStatusActive, found.SyncStatus)
	})

	t.Run("writes to another advisor's meeting are not found", func(t *testing.T) {
		err := repo.MarkDeleted(ctx, meeting.ID, uuid.New(), time.Now().UTC(), false)
		assert.ErrorIs(t, err, entities.ErrMeetingNotFound)
	})

	t.Run("stats", func(t *testing.T) {
		imported := &entities.Meeting{
			UserID:          advisorID,
			ExternalID:      strPtr("ics-" + uuid.NewString()),
			Provider:        entities.MeetingProviderImported,
			StartTime:       start,
			Title:           "Imported",
			ImportedFromICS: true,
			SyncStatus:      entities.SyncStatusActive,
		}
		require.NoError(t, repo.Create(ctx, imported))
		require.NoError(t, repo.MarkDeleted(ctx, imported.ID, advisorID, time.Now().UTC(), false))

		stats, err := repo.Stats(ctx, advisorID)
		require.NoError(t, err)
		assert.Equal(t, int64(2), stats.Total)
		assert.Equal(t, int64(1), stats.Active)
		assert.Equal(t, int64(1), stats.Deleted)
		assert.Equal(t, int64(1), stats.ImportedFromICS)
		assert.NotNil(t, stats.LastSync)

		since, err := repo.ListSince(ctx, advisorID, start.Add(-time.Minute))
		require.NoError(t, err)
		assert.Len(t, since, 2)
	})
}

func TestClientRepository_RecomputeCounts(t *testing.T) {
	db := setupTestDB(t)
	clients := NewClientRepository(db)
	meetings := NewMeetingRepository(db)
	ctx := context.Background()

	advisorID := uuid.New()
	client := createClient(t, db, advisorID)

	for i := 0; i < 3; i++ {
		m := &entities.Meeting{
			UserID:     advisorID,
			Provider:   entities.MeetingProviderManual,
			StartTime:  time.Now().UTC(),
			Title:      fmt.Sprintf("Meeting %d", i),
			SyncStatus: entities.SyncStatusActive,
			ClientID:   &client.ID,
		}
		require.NoError(t, meetings.Create(ctx, m))
		if i > 0 {
			require.NoError(t, meetings.MarkDeleted(ctx, m.ID, advisorID, time.Now().UTC(), false))
		}
	}

	require.NoError(t, clients.Touch(ctx, client.ID, advisorID, time.Now().UTC()))

	updated, err := clients.RecomputeCounts(ctx, client.ID, advisorID)
	require.NoError(t, err)
	assert.Equal(t, 3, updated.MeetingCount)
	assert.Equal(t, 1, updated.ActiveMeetingCount)
	assert.True(t, updated.IsActive)

	_, err = clients.RecomputeCounts(ctx, client.ID, uuid.New())
	assert.ErrorIs(t, err, entities.ErrClientNotFound)

	ids, err := clients.ListIDsByAdvisor(ctx, advisorID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{client.ID}, ids)
}

func TestThreadRepository_ArchiveAndUnarchive(t *testing.T) {
	db := setupTestDB(t)
	repo := NewThreadRepository(db)
	ctx := context.Background()

	advisorID := uuid.New()
	client := createClient(t, db, advisorID)
	for _, title := range []string{"Retirement plan", "Tax questions"} {
		require.NoError(t, db.Create(&entities.AskThread{ClientID: client.ID, AdvisorID: advisorID, Title: title}).Error)
	}

	n, err := repo.ArchiveAll(ctx, client.ID, advisorID, time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	active, err := repo.ListNonArchived(ctx, client.ID, advisorID)
	require.NoError(t, err)
	assert.Empty(t, active)

	archived, err := repo.ListArchived(ctx, client.ID, advisorID)
	require.NoError(t, err)
	require.Len(t, archived, 2)
	assert.NotNil(t, archived[0].ArchivedAt)

	n, err = repo.UnarchiveAll(ctx, client.ID, advisorID, time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	active, err = repo.ListNonArchived(ctx, client.ID, advisorID)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Nil(t, active[0].ArchivedAt)
}

func TestCalendarConnectionRepository_Upsert(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCalendarConnectionRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	expires := time.Now().UTC().Add(time.Hour)

	require.NoError(t, repo.Upsert(ctx, &entities.CalendarConnection{
		UserID:         userID,
		Provider:       entities.CalendarProviderGoogle,
		AccessToken:    "enc-access-1",
		RefreshToken:   "enc-refresh-1",
		TokenExpiresAt: &expires,
		IsActive:       true,
	}))
	require.NoError(t, repo.Upsert(ctx, &entities.CalendarConnection{
		UserID:       userID,
		Provider:     entities.CalendarProviderGoogle,
		AccessToken:  "enc-access-2",
		RefreshToken: "enc-refresh-2",
		IsActive:     true,
	}))

	conn, err := repo.FindActive(ctx, userID, entities.CalendarProviderGoogle)
	require.NoError(t, err)
	assert.Equal(t, "enc-access-2", conn.AccessToken)

	var count int64
	require.NoError(t, db.Model(&entities.CalendarConnection{}).Where("user_id = ?", userID).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	require.NoError(t, repo.MarkSynced(ctx, conn.ID, time.Now().UTC()))
	require.NoError(t, repo.Deactivate(ctx, userID, entities.CalendarProviderGoogle))

	_, err = repo.FindActive(ctx, userID, entities.CalendarProviderGoogle)
	assert.ErrorIs(t, err, entities.ErrConnectionNotFound)
}
