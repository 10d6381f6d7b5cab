package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/nosugarclub/nosugar-api/internal/migrations"
	"github.com/nosugarclub/nosugar-api/internal/models"
)

func setupStorage(t *testing.T) (*Storage, func()) {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Second),
		),
	)
	require.NoError(t, err)

	dsn, err := pgContainer.ConnectionString(ctx)
	require.NoError(t, err)

	storage, err := New(dsn)
	require.NoError(t, err)

	migrationsPath, err := filepath.Abs("../../../migrations")
	require.NoError(t, err)
	require.NoError(t, migrations.Run(storage.DB, migrationsPath))

	cleanup := func() {
		storage.DB.Close()
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}
	return storage, cleanup
}

func registerTestUser(t *testing.T, s *Storage, username string) string {
	t.Helper()
	uid, err := s.RegisterUser(context.Background(), models.User{
		Email:        username + "@example.com",
		Username:     username,
		PasswordHash: "hash",
	})
	require.NoError(t, err)
	return uid
}

func TestProfileLifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	storage, cleanup := setupStorage(t)
	defer cleanup()
	ctx := context.Background()

	uid := registerTestUser(t, storage, "alice")
	quitDate := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, storage.CreateProfile(ctx, uid, quitDate))

	p, err := storage.GetProfile(ctx, uid)
	require.NoError(t, err)
	assert.Equal(t, uid, p.UserUID)
	assert.True(t, p.QuitDate.Equal(quitDate))
	assert.Nil(t, p.WeeklySpend)

	spend := 42.5
	enabled := true
	reminderTime := "21:30"
	count, err := storage.UpdateProfileFields(ctx, uid, models.DummyProfileUpdate{
		WeeklySpend:     &spend,
		ReminderEnabled: &enabled,
		ReminderTime:    &reminderTime,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	p, err = storage.GetProfile(ctx, uid)
	require.NoError(t, err)
	require.NotNil(t, p.WeeklySpend)
	assert.Equal(t, 42.5, *p.WeeklySpend)
	// Непереданные поля не изменились.
	assert.Nil(t, p.DailySugarGrams)
	assert.True(t, p.ReminderEnabled)
	assert.Equal(t, "21:30", p.ReminderTime)
}

func TestApplyRelapse_RecordIsMonotonic(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	storage, cleanup := setupStorage(t)
	defer cleanup()
	ctx := context.Background()

	uid := registerTestUser(t, storage, "bob")
	quitDate := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, storage.CreateProfile(ctx, uid, quitDate))

	longRun := (10 * 24 * time.Hour).Milliseconds()
	first, err := storage.ApplyRelapse(ctx, uid, quitDate.Add(10*24*time.Hour), longRun)
	require.NoError(t, err)
	assert.Equal(t, longRun, first.LongestStreakMS)

	// Более короткий забег не снижает рекорд.
	shortRun := (2 * 24 * time.Hour).Milliseconds()
	second, err := storage.ApplyRelapse(ctx, uid, quitDate.Add(12*24*time.Hour), shortRun)
	require.NoError(t, err)
	assert.Equal(t, longRun, second.LongestStreakMS)
	assert.True(t, second.QuitDate.After(first.QuitDate))
}

func TestStreakHistory(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	storage, cleanup := setupStorage(t)
	defer cleanup()
	ctx := context.Background()

	uid := registerTestUser(t, storage, "carol")
	started := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	for i := range 3 {
		ended := started.Add(time.Duration(i+1) * 24 * time.Hour)
		require.NoError(t, storage.InsertStreakRun(ctx, models.StreakRun{
			UserUID:    uid,
			StartedAt:  started,
			EndedAt:    ended,
			DurationMS: ended.Sub(started).Milliseconds(),
		}))
	}

	runs, err := storage.ListStreakRuns(ctx, uid, 10, 0)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	// Новые первыми.
	assert.True(t, runs[0].EndedAt.After(runs[1].EndedAt))
}

func TestMoodLogs(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	storage, cleanup := setupStorage(t)
	defer cleanup()
	ctx := context.Background()

	uid := registerTestUser(t, storage, "dave")

	id, err := storage.InsertMoodLog(ctx, uid, "good", "день прошёл легко", time.Now().UTC())
	require.NoError(t, err)
	assert.Greater(t, id, 0)

	logs, err := storage.ListMoodLogs(ctx, uid, 10, 0)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "good", logs[0].Mood)
}

func TestRefreshTokens(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	storage, cleanup := setupStorage(t)
	defer cleanup()
	ctx := context.Background()

	uid := registerTestUser(t, storage, "erin")
	expires := time.Now().Add(time.Hour).UTC()

	require.NoError(t, storage.StoreRefreshToken(ctx, uid, "hash-1", expires))

	owner, gotExpires, err := storage.FindRefreshToken(ctx, "hash-1")
	require.NoError(t, err)
	assert.Equal(t, uid, owner)
	assert.WithinDuration(t, expires, gotExpires, time.Second)

	require.NoError(t, storage.DeleteRefreshToken(ctx, "hash-1"))
	_, _, err = storage.FindRefreshToken(ctx, "hash-1")
	assert.Error(t, err)
}
