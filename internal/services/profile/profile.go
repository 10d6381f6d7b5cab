// Package profile содержит бизнес-логику удалённого профиля пользователя:
// разрешение числовых полей, обновление настроек и обработку срыва.
package profile

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nosugarclub/nosugar-api/internal/lib/sl"
	"github.com/nosugarclub/nosugar-api/internal/models"
	"github.com/nosugarclub/nosugar-api/internal/streak"
)

// Дефолты числовых полей профиля. Применяются, когда значение отсутствует
// и в колонке, и в мешке онбординга.
const (
	DefaultWeeklySpend     = 20.0
	DefaultDailySugarGrams = 70.0
	DefaultDailyCalories   = 280.0
)

// Имена ключей legacy-мешка онбординга. Старые клиенты писали ответы
// анкеты одним JSON-объектом, колонки появились позже.
const (
	onboardingWeeklySpendKey = "weekly_spend"
	onboardingSugarGramsKey  = "daily_sugar_grams"
	onboardingCaloriesKey    = "daily_calories"
)

// Repository описывает контракт хранилища профилей.
type Repository interface {
	GetProfile(ctx context.Context, userUID string) (*models.Profile, error)
	UpdateProfileFields(ctx context.Context, userUID string, upd models.DummyProfileUpdate) (int, error)
	ApplyRelapse(ctx context.Context, userUID string, quitDate time.Time, endedDurationMS int64) (*models.QuitStreak, error)
	InsertStreakRun(ctx context.Context, run models.StreakRun) error
}

// RelapseResult — подтверждённое сервером состояние стрика после срыва.
type RelapseResult struct {
	QuitDate        time.Time `json:"quit_date"`
	LongestStreakMS int64     `json:"longest_streak_ms"`
	EndedDurationMS int64     `json:"ended_duration_ms"`
	WasRecord       bool      `json:"was_record"`
}

// Service отвечает за чтение, обновление и срыв профиля.
type Service struct {
	repo Repository
	log  *slog.Logger
}

// New создаёт новый экземпляр Service.
func New(repo Repository, log *slog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// GetResolved возвращает профиль с разрешёнными числовыми полями.
func (s *Service) GetResolved(ctx context.Context, userUID string) (*models.ResolvedProfile, error) {
	const op = "services.profile.GetResolved"

	p, err := s.repo.GetProfile(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return Resolve(p), nil
}

// Resolve разрешает числовые поля профиля по фиксированному приоритету:
// значение колонки, затем legacy-мешок онбординга, затем дефолт.
func Resolve(p *models.Profile) *models.ResolvedProfile {
	return &models.ResolvedProfile{
		UserUID:         p.UserUID,
		QuitDate:        p.QuitDate,
		LongestStreakMS: p.LongestStreakMS,
		WeeklySpend:     resolveNumber(p.WeeklySpend, p.OnboardingData, onboardingWeeklySpendKey, DefaultWeeklySpend),
		DailySugarGrams: resolveNumber(p.DailySugarGrams, p.OnboardingData, onboardingSugarGramsKey, DefaultDailySugarGrams),
		DailyCalories:   resolveNumber(p.DailyCalories, p.OnboardingData, onboardingCaloriesKey, DefaultDailyCalories),
		ReminderEnabled: p.ReminderEnabled,
		ReminderTime:    p.ReminderTime,
	}
}

// resolveNumber выбирает первое доступное значение: колонка, мешок, дефолт.
// Мешок приходит из JSONB, числа в нём декодируются как float64.
func resolveNumber(column *float64, bag map[string]any, key string, def float64) float64 {
	if column != nil {
		return *column
	}
	if raw, ok := bag[key]; ok {
		if v, ok := raw.(float64); ok {
			return v
		}
	}
	return def
}

// Update применяет частичное обновление профиля и возвращает число
// изменённых записей.
func (s *Service) Update(ctx context.Context, userUID string, upd models.DummyProfileUpdate) (int, error) {
	const op = "services.profile.Update"

	count, err := s.repo.UpdateProfileFields(ctx, userUID, upd)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

// Relapse фиксирует срыв. Состояние сначала подтверждается базой и только
// потом отдаётся клиенту: локальных оптимистичных значений здесь нет, клиент
// показывает ровно то, что сохранил сервер. Запись в историю забегов ведётся
// по принципу best-effort и не может провалить срыв.
func (s *Service) Relapse(ctx context.Context, userUID string, now time.Time) (*RelapseResult, error) {
	const op = "services.profile.Relapse"

	current, err := s.repo.GetProfile(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	wasRecord := streak.IsNewRecord(current.QuitDate, current.LongestStreakMS, now)
	next, endedMS := streak.RecordRelapse(models.QuitStreak{
		QuitDate:        current.QuitDate,
		LongestStreakMS: current.LongestStreakMS,
	}, now)

	confirmed, err := s.repo.ApplyRelapse(ctx, userUID, next.QuitDate, endedMS)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.repo.InsertStreakRun(ctx, models.StreakRun{
		UserUID:    userUID,
		StartedAt:  current.QuitDate,
		EndedAt:    now,
		DurationMS: endedMS,
	}); err != nil {
		s.log.Warn("failed to record streak run", sl.Err(err))
	}

	return &RelapseResult{
		QuitDate:        confirmed.QuitDate,
		LongestStreakMS: confirmed.LongestStreakMS,
		EndedDurationMS: endedMS,
		WasRecord:       wasRecord,
	}, nil
}
