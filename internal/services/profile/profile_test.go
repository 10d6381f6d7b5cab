package profile

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/nosugarclub/nosugar-api/internal/models"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) GetProfile(ctx context.Context, userUID string) (*models.Profile, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}
func (m *RepoMock) UpdateProfileFields(ctx context.Context, userUID string, upd models.DummyProfileUpdate) (int, error) {
	args := m.Called(ctx, userUID, upd)
	return args.Int(0), args.Error(1)
}
func (m *RepoMock) ApplyRelapse(ctx context.Context, userUID string, quitDate time.Time, endedDurationMS int64) (*models.QuitStreak, error) {
	args := m.Called(ctx, userUID, quitDate, endedDurationMS)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.QuitStreak), args.Error(1)
}
func (m *RepoMock) InsertStreakRun(ctx context.Context, run models.StreakRun) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func floatPtr(v float64) *float64 { return &v }

func TestResolve(t *testing.T) {
	tests := []struct {
		name    string
		profile *models.Profile
		want    float64
	}{
		{
			name:    "значение из колонки имеет приоритет",
			profile: &models.Profile{WeeklySpend: floatPtr(42.5), OnboardingData: map[string]any{"weekly_spend": 10.0}},
			want:    42.5,
		},
		{
			name:    "при пустой колонке берется мешок онбординга",
			profile: &models.Profile{OnboardingData: map[string]any{"weekly_spend": 10.0}},
			want:    10.0,
		},
		{
			name:    "без колонки и мешка возвращается дефолт",
			profile: &models.Profile{},
			want:    DefaultWeeklySpend,
		},
		{
			name:    "нечисловое значение в мешке игнорируется",
			profile: &models.Profile{OnboardingData: map[string]any{"weekly_spend": "a lot"}},
			want:    DefaultWeeklySpend,
		},
		{
			name:    "нулевая колонка не проваливается в мешок",
			profile: &models.Profile{WeeklySpend: floatPtr(0), OnboardingData: map[string]any{"weekly_spend": 10.0}},
			want:    0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolved := Resolve(tt.profile)
			assert.Equal(t, tt.want, resolved.WeeklySpend)
		})
	}
}

func TestResolve_AllFields(t *testing.T) {
	p := &models.Profile{
		UserUID:  "uid-1",
		QuitDate: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		OnboardingData: map[string]any{
			"daily_sugar_grams": 95.0,
		},
	}
	resolved := Resolve(p)
	assert.Equal(t, DefaultWeeklySpend, resolved.WeeklySpend)
	assert.Equal(t, 95.0, resolved.DailySugarGrams)
	assert.Equal(t, DefaultDailyCalories, resolved.DailyCalories)
	assert.Equal(t, "uid-1", resolved.UserUID)
}

func TestGetResolved(t *testing.T) {
	repo := new(RepoMock)
	svc := New(repo, discardLogger())
	repo.On("GetProfile", mock.Anything, "uid-1").
		Return(&models.Profile{UserUID: "uid-1", DailyCalories: floatPtr(300)}, nil)

	resolved, err := svc.GetResolved(context.Background(), "uid-1")
	require.NoError(t, err)
	assert.Equal(t, 300.0, resolved.DailyCalories)
}

func TestUpdate(t *testing.T) {
	repo := new(RepoMock)
	svc := New(repo, discardLogger())
	upd := models.DummyProfileUpdate{WeeklySpend: floatPtr(15)}
	repo.On("UpdateProfileFields", mock.Anything, "uid-1", upd).Return(1, nil)

	count, err := svc.Update(context.Background(), "uid-1", upd)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestRelapse(t *testing.T) {
	quitDate := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	now := quitDate.Add(10 * 24 * time.Hour)

	repo := new(RepoMock)
	svc := New(repo, discardLogger())

	repo.On("GetProfile", mock.Anything, "uid-1").Return(&models.Profile{
		UserUID:         "uid-1",
		QuitDate:        quitDate,
		LongestStreakMS: (5 * 24 * time.Hour).Milliseconds(),
	}, nil)
	repo.On("ApplyRelapse", mock.Anything, "uid-1", now, (10 * 24 * time.Hour).Milliseconds()).
		Return(&models.QuitStreak{
			QuitDate:        now,
			LongestStreakMS: (10 * 24 * time.Hour).Milliseconds(),
		}, nil)
	repo.On("InsertStreakRun", mock.Anything, mock.Anything).Return(nil)

	result, err := svc.Relapse(context.Background(), "uid-1", now)
	require.NoError(t, err)
	assert.Equal(t, now, result.QuitDate)
	assert.Equal(t, (10 * 24 * time.Hour).Milliseconds(), result.LongestStreakMS)
	assert.Equal(t, (10 * 24 * time.Hour).Milliseconds(), result.EndedDurationMS)
	assert.True(t, result.WasRecord)
	repo.AssertExpectations(t)
}

// Ответ клиенту собирается из значений, подтверждённых базой, а не из
// локального вычисления. Если база вернула больший рекорд, клиент видит его.
func TestRelapse_ReturnsConfirmedValues(t *testing.T) {
	quitDate := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	now := quitDate.Add(2 * 24 * time.Hour)
	serverRecord := (30 * 24 * time.Hour).Milliseconds()

	repo := new(RepoMock)
	svc := New(repo, discardLogger())

	repo.On("GetProfile", mock.Anything, "uid-1").Return(&models.Profile{
		UserUID:  "uid-1",
		QuitDate: quitDate,
	}, nil)
	repo.On("ApplyRelapse", mock.Anything, "uid-1", now, mock.Anything).
		Return(&models.QuitStreak{QuitDate: now, LongestStreakMS: serverRecord}, nil)
	repo.On("InsertStreakRun", mock.Anything, mock.Anything).Return(nil)

	result, err := svc.Relapse(context.Background(), "uid-1", now)
	require.NoError(t, err)
	assert.Equal(t, serverRecord, result.LongestStreakMS)
}

func TestRelapse_HistoryFailureIsNotFatal(t *testing.T) {
	quitDate := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	now := quitDate.Add(24 * time.Hour)

	repo := new(RepoMock)
	svc := New(repo, discardLogger())

	repo.On("GetProfile", mock.Anything, "uid-1").Return(&models.Profile{
		UserUID:  "uid-1",
		QuitDate: quitDate,
	}, nil)
	repo.On("ApplyRelapse", mock.Anything, "uid-1", now, mock.Anything).
		Return(&models.QuitStreak{QuitDate: now, LongestStreakMS: (24 * time.Hour).Milliseconds()}, nil)
	repo.On("InsertStreakRun", mock.Anything, mock.Anything).
		Return(errors.New("history table is gone"))

	result, err := svc.Relapse(context.Background(), "uid-1", now)
	require.NoError(t, err)
	assert.Equal(t, now, result.QuitDate)
}

func TestRelapse_StorageFailureIsFatal(t *testing.T) {
	quitDate := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	now := quitDate.Add(24 * time.Hour)

	repo := new(RepoMock)
	svc := New(repo, discardLogger())

	repo.On("GetProfile", mock.Anything, "uid-1").Return(&models.Profile{
		UserUID:  "uid-1",
		QuitDate: quitDate,
	}, nil)
	repo.On("ApplyRelapse", mock.Anything, "uid-1", now, mock.Anything).
		Return(nil, errors.New("connection refused"))

	_, err := svc.Relapse(context.Background(), "uid-1", now)
	require.Error(t, err)
	repo.AssertNotCalled(t, "InsertStreakRun", mock.Anything, mock.Anything)
}
