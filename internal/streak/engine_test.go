package streak

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nosugarclub/nosugar-api/internal/config"
	"github.com/nosugarclub/nosugar-api/internal/kvstore"
	"github.com/nosugarclub/nosugar-api/internal/models"
)

func setupEngine(t *testing.T) *Engine {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(func() { mr.Close() })

	store, err := kvstore.InitServer(context.Background(), config.RedisConnection{
		AddressRedis: mr.Addr(),
	})
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return NewEngine(store, logger)
}

func TestOnAppOpen_FirstOpen(t *testing.T) {
	engine := setupEngine(t)
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	result, err := engine.OnAppOpen(ctx, "user-a", "device-1", now, time.UTC)
	require.NoError(t, err)

	assert.Equal(t, 0, result.CheckinDays)
	assert.False(t, result.StreakReset)
	assert.False(t, result.Celebrate)
}

// Два открытия в пределах окна бездействия и одного календарного дня
// дают одинаковый результат и не празднуют повторно.
func TestOnAppOpen_IdempotentWithinDay(t *testing.T) {
	engine := setupEngine(t)
	ctx := context.Background()

	day1 := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	// Следующий календарный день, но в пределах 24 часов активности.
	day2Morning := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	day2Noon := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)

	_, err := engine.OnAppOpen(ctx, "user-a", "device-1", day1, time.UTC)
	require.NoError(t, err)

	first, err := engine.OnAppOpen(ctx, "user-a", "device-1", day2Morning, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, 1, first.CheckinDays)
	assert.True(t, first.Celebrate)
	assert.Equal(t, 1, first.CelebrateDays)

	second, err := engine.OnAppOpen(ctx, "user-a", "device-1", day2Noon, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, 1, second.CheckinDays)
	assert.False(t, second.StreakReset)
	// Не больше одного празднования в календарный день.
	assert.False(t, second.Celebrate)
}

// Сутки бездействия: маркер старта сбрасывается в now, сигнал сброса
// приходит ровно один раз.
func TestOnAppOpen_InactivityReset(t *testing.T) {
	engine := setupEngine(t)
	ctx := context.Background()

	start := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	// 30 часов спустя.
	comeback := start.Add(30 * time.Hour)

	_, err := engine.OnAppOpen(ctx, "user-a", "device-1", start, time.UTC)
	require.NoError(t, err)

	result, err := engine.OnAppOpen(ctx, "user-a", "device-1", comeback, time.UTC)
	require.NoError(t, err)
	assert.True(t, result.StreakReset)
	assert.Equal(t, 0, result.CheckinDays)

	// Повторное открытие сигнал не дублирует.
	again, err := engine.OnAppOpen(ctx, "user-a", "device-1", comeback.Add(time.Hour), time.UTC)
	require.NoError(t, err)
	assert.False(t, again.StreakReset)
	assert.Equal(t, 0, again.CheckinDays)
}

// Ровно 24 часа бездействия ещё не сброс: окно строгое.
func TestOnAppOpen_ExactlyAtWindowBoundary(t *testing.T) {
	engine := setupEngine(t)
	ctx := context.Background()

	start := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	_, err := engine.OnAppOpen(ctx, "user-a", "device-1", start, time.UTC)
	require.NoError(t, err)

	result, err := engine.OnAppOpen(ctx, "user-a", "device-1", start.Add(InactivityWindow), time.UTC)
	require.NoError(t, err)
	assert.False(t, result.StreakReset)
	assert.Equal(t, 1, result.CheckinDays)
}

// Чужой владелец устройства: всё состояние чек-ин стрика вычищается
// до пересчёта — стрик не протекает между аккаунтами.
func TestOnAppOpen_CrossAccountIsolation(t *testing.T) {
	engine := setupEngine(t)
	ctx := context.Background()

	day1 := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	day3 := time.Date(2025, 6, 3, 10, 0, 0, 0, time.UTC)

	_, err := engine.OnAppOpen(ctx, "user-a", "device-1", day1, time.UTC)
	require.NoError(t, err)

	result, err := engine.OnAppOpen(ctx, "user-b", "device-1", day3, time.UTC)
	require.NoError(t, err)

	// Для user-b стрик начинается заново, а не продолжается с маркеров user-a.
	assert.Equal(t, 0, result.CheckinDays)
	assert.False(t, result.StreakReset)

	// Владелец перезаписан: повторное открытие user-b state не чистит.
	next, err := engine.OnAppOpen(ctx, "user-b", "device-1", day3.Add(time.Hour), time.UTC)
	require.NoError(t, err)
	assert.Equal(t, 0, next.CheckinDays)
}

// Расхождение версии схемы переинициализирует только маркер старта.
func TestOnAppOpen_SchemaVersionMigration(t *testing.T) {
	engine := setupEngine(t)
	ctx := context.Background()

	day1 := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	_, err := engine.OnAppOpen(ctx, "user-a", "device-1", day1, time.UTC)
	require.NoError(t, err)

	// Откатываем маркер версии, имитируя приложение до миграции.
	require.NoError(t, engine.kv.Set(ctx, "checkin:device-1:version", "1"))

	result, err := engine.OnAppOpen(ctx, "user-a", "device-1", day1.Add(2*time.Hour), time.UTC)
	require.NoError(t, err)
	// Маркер старта пересоздан — стрик начат заново.
	assert.Equal(t, 0, result.CheckinDays)

	version, found, err := engine.kv.Get(ctx, "checkin:device-1:version")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, SchemaVersion, version)

	// Версия совпадает — повторной миграции нет, стрик растёт от нового
	// маркера старта.
	later, err := engine.OnAppOpen(ctx, "user-a", "device-1", day1.Add(25*time.Hour), time.UTC)
	require.NoError(t, err)
	assert.Equal(t, 1, later.CheckinDays)
	assert.False(t, later.StreakReset)
}

// Празднование только при настоящем росте: после сброса бездействием
// счётчик снова дорастает до уже отпразднованных значений молча.
func TestOnAppOpen_CelebrationRequiresIncrease(t *testing.T) {
	engine := setupEngine(t)
	ctx := context.Background()

	day1 := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	day2 := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	day3 := time.Date(2025, 6, 3, 10, 0, 0, 0, time.UTC)

	_, err := engine.OnAppOpen(ctx, "user-a", "device-1", day1, time.UTC)
	require.NoError(t, err)

	two, err := engine.OnAppOpen(ctx, "user-a", "device-1", day2, time.UTC)
	require.NoError(t, err)
	assert.True(t, two.Celebrate)
	assert.Equal(t, 1, two.CelebrateDays)

	// 30+ часов тишины — сброс.
	reset, err := engine.OnAppOpen(ctx, "user-a", "device-1", day3.Add(18*time.Hour), time.UTC)
	require.NoError(t, err)
	assert.True(t, reset.StreakReset)

	// На следующий день счётчик снова 1, но 1 уже отпразднована.
	quiet, err := engine.OnAppOpen(ctx, "user-a", "device-1", day3.Add(40*time.Hour), time.UTC)
	require.NoError(t, err)
	assert.Equal(t, 1, quiet.CheckinDays)
	assert.False(t, quiet.Celebrate)
}

// Известная особенность исходного поведения: водяной знак празднования
// хранит локальную календарную дату, а рост сравнивается по целому счётчику
// дней. При смене таймзоны устройства посреди дня дата водяного знака и
// счётчик могут разойтись и празднование случится второй раз за "тот же"
// день. Поведение сохранено намеренно, тест его документирует.
func TestOnAppOpen_TimezoneChangeWatermarkQuirk(t *testing.T) {
	engine := setupEngine(t)
	ctx := context.Background()

	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)
	honolulu, err := time.LoadLocation("Pacific/Honolulu")
	require.NoError(t, err)

	// 2025-06-01 04:00 в Гонолулу (= 23:00 того же дня в Токио).
	start := time.Date(2025, 6, 1, 4, 0, 0, 0, honolulu)

	_, err = engine.OnAppOpen(ctx, "user-a", "device-1", start, honolulu)
	require.NoError(t, err)

	// Полночь 2 июня по Гонолулу: счётчик вырос до 1, празднуем,
	// водяной знак — "2025-06-02".
	first, err := engine.OnAppOpen(ctx, "user-a", "device-1", start.Add(20*time.Hour), honolulu)
	require.NoError(t, err)
	require.True(t, first.Celebrate)
	require.Equal(t, 1, first.CheckinDays)

	// Перелёт в Токио: всего 5 физических часов спустя там уже полночь
	// 3 июня. Счётчик по токийским полуночам равен 2, дата водяного знака
	// не совпадает — празднование срабатывает второй раз за одни физические
	// сутки. Это и есть расхождение даты-строки и целочисленного счётчика.
	second, err := engine.OnAppOpen(ctx, "user-a", "device-1", start.Add(25*time.Hour), tokyo)
	require.NoError(t, err)
	assert.Equal(t, 2, second.CheckinDays)
	assert.True(t, second.Celebrate)
}

func TestRecordRelapse_FreshRelapse(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	tenDays := 10 * 24 * time.Hour
	fiveDays := int64((5 * 24 * time.Hour).Milliseconds())

	profile := models.QuitStreak{
		QuitDate:        now.Add(-tenDays),
		LongestStreakMS: fiveDays,
	}

	updated, ended := RecordRelapse(profile, now)

	assert.Equal(t, tenDays.Milliseconds(), ended)
	assert.Equal(t, now, updated.QuitDate)
	assert.Equal(t, tenDays.Milliseconds(), updated.LongestStreakMS)
}

func TestRecordRelapse_ShortRunKeepsRecord(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	longest := int64((20 * 24 * time.Hour).Milliseconds())

	profile := models.QuitStreak{
		QuitDate:        now.Add(-2 * 24 * time.Hour),
		LongestStreakMS: longest,
	}

	updated, _ := RecordRelapse(profile, now)
	assert.Equal(t, longest, updated.LongestStreakMS)
	assert.Equal(t, now, updated.QuitDate)
}

// Монотонность рекорда на произвольной последовательности срывов.
func TestRecordRelapse_Monotonicity(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	profile := models.QuitStreak{QuitDate: now}

	runs := []time.Duration{
		3 * 24 * time.Hour,
		time.Hour,
		15 * 24 * time.Hour,
		2 * time.Minute,
		15*24*time.Hour + time.Second,
	}

	for _, run := range runs {
		now = now.Add(run)
		before := profile.LongestStreakMS

		var ended int64
		profile, ended = RecordRelapse(profile, now)

		assert.GreaterOrEqual(t, profile.LongestStreakMS, before)
		assert.Equal(t, run.Milliseconds(), ended)

		want := before
		if ended > want {
			want = ended
		}
		assert.Equal(t, want, profile.LongestStreakMS)
	}
}

func TestRecordRelapse_FutureQuitDateClamps(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	profile := models.QuitStreak{
		QuitDate:        now.Add(time.Hour),
		LongestStreakMS: 1000,
	}

	updated, ended := RecordRelapse(profile, now)
	assert.Zero(t, ended)
	assert.Equal(t, int64(1000), updated.LongestStreakMS)
}

// Независимость сбросов: срыв не трогает чек-ин стрик.
func TestResetIndependence(t *testing.T) {
	engine := setupEngine(t)
	ctx := context.Background()

	day1 := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	day2 := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)

	_, err := engine.OnAppOpen(ctx, "user-a", "device-1", day1, time.UTC)
	require.NoError(t, err)

	// Срыв между открытиями.
	quit := models.QuitStreak{QuitDate: day1.Add(-100 * 24 * time.Hour)}
	updated, _ := RecordRelapse(quit, day1.Add(12*time.Hour))
	assert.Equal(t, day1.Add(12*time.Hour), updated.QuitDate)

	// Чек-ин стрик продолжает расти как ни в чём не бывало.
	result, err := engine.OnAppOpen(ctx, "user-a", "device-1", day2, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, 1, result.CheckinDays)
	assert.False(t, result.StreakReset)
}

func TestDurationHelpers(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	quitDate := now.Add(-3 * 24 * time.Hour)
	threeDays := (3 * 24 * time.Hour).Milliseconds()

	assert.Equal(t, threeDays, CurrentDurationMS(quitDate, now))
	assert.Zero(t, CurrentDurationMS(now.Add(time.Minute), now))

	// Текущий стрик длиннее рекорда — новый рекорд.
	assert.Equal(t, threeDays, BestDurationMS(quitDate, 1000, now))
	assert.True(t, IsNewRecord(quitDate, 1000, now))

	// Рекорд длиннее текущего.
	tenDays := (10 * 24 * time.Hour).Milliseconds()
	assert.Equal(t, tenDays, BestDurationMS(quitDate, tenDays, now))
	assert.False(t, IsNewRecord(quitDate, tenDays, now))

	// Нулевая длительность рекордом не считается.
	assert.False(t, IsNewRecord(now, 0, now))
}
