package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nosugarclub/nosugar-api/internal/models"
)

// CreateProfile создаёт запись профиля для нового пользователя.
// Момент регистрации считается началом первого стрика.
func (s *Storage) CreateProfile(ctx context.Context, userUID string, quitDate time.Time) error {
	const op = "storage.CreateProfile"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO profiles (user_uid, quit_date, longest_streak_ms)
			  VALUES ($1, $2, 0)`
	if _, err := s.DB.ExecContext(ctx, query, userUID, quitDate); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetProfile возвращает профиль пользователя вместе с legacy-мешком онбординга.
func (s *Storage) GetProfile(ctx context.Context, userUID string) (*models.Profile, error) {
	const op = "storage.GetProfile"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT user_uid, quit_date, longest_streak_ms, weekly_spend,
			      daily_sugar_grams, daily_calories, onboarding_data,
			      reminder_enabled, reminder_time, updated_at
			  FROM profiles
			  WHERE user_uid = $1`
	p := &models.Profile{}
	row := s.DB.QueryRowContext(ctx, query, userUID)

	var weeklySpend, dailySugarGrams, dailyCalories sql.NullFloat64
	var reminderTime sql.NullString
	var onboardingRaw []byte
	if err := row.Scan(&p.UserUID, &p.QuitDate, &p.LongestStreakMS, &weeklySpend,
		&dailySugarGrams, &dailyCalories, &onboardingRaw,
		&p.ReminderEnabled, &reminderTime, &p.UpdatedAt); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if weeklySpend.Valid {
		p.WeeklySpend = &weeklySpend.Float64
	}
	if dailySugarGrams.Valid {
		p.DailySugarGrams = &dailySugarGrams.Float64
	}
	if dailyCalories.Valid {
		p.DailyCalories = &dailyCalories.Float64
	}
	if reminderTime.Valid {
		p.ReminderTime = reminderTime.String
	}
	if len(onboardingRaw) > 0 {
		if err := json.Unmarshal(onboardingRaw, &p.OnboardingData); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}
	return p, nil
}

// UpdateProfileFields обновляет присланные поля профиля, не трогая остальные,
// и возвращает количество обновлённых строк.
func (s *Storage) UpdateProfileFields(ctx context.Context, userUID string, upd models.DummyProfileUpdate) (int, error) {
	const op = "storage.UpdateProfileFields"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE profiles
			  SET weekly_spend      = COALESCE($1, weekly_spend),
			      daily_sugar_grams = COALESCE($2, daily_sugar_grams),
			      daily_calories    = COALESCE($3, daily_calories),
			      reminder_enabled  = COALESCE($4, reminder_enabled),
			      reminder_time     = COALESCE($5, reminder_time),
			      updated_at        = NOW()
			  WHERE user_uid = $6`
	result, err := s.DB.ExecContext(ctx, query,
		upd.WeeklySpend, upd.DailySugarGrams, upd.DailyCalories,
		upd.ReminderEnabled, upd.ReminderTime, userUID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// ApplyRelapse записывает срыв: новая quit_date и монотонное обновление
// рекорда на стороне базы. Возвращает фактически сохранённые значения —
// вызывающая сторона не применяет локальное состояние до этого ответа.
func (s *Storage) ApplyRelapse(ctx context.Context, userUID string, quitDate time.Time, endedDurationMS int64) (*models.QuitStreak, error) {
	const op = "storage.ApplyRelapse"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE profiles
			  SET quit_date         = $1,
			      longest_streak_ms = GREATEST(longest_streak_ms, $2),
			      updated_at        = NOW()
			  WHERE user_uid = $3
			  RETURNING quit_date, longest_streak_ms`
	result := &models.QuitStreak{}
	if err := s.DB.QueryRowContext(ctx, query, quitDate, endedDurationMS, userUID).
		Scan(&result.QuitDate, &result.LongestStreakMS); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// FindUsersWithReminder возвращает пользователей с включённым ежедневным
// напоминанием для публикации в очередь.
func (s *Storage) FindUsersWithReminder(ctx context.Context) ([]*models.ReminderInfo, error) {
	const op = "storage.FindUsersWithReminder"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT p.user_uid, u.email, p.reminder_time
			  FROM profiles p
			  JOIN users u ON u.uid = p.user_uid
			  WHERE p.reminder_enabled = TRUE AND p.reminder_time IS NOT NULL`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.ReminderInfo
	for rows.Next() {
		var info models.ReminderInfo
		if err = rows.Scan(&info.UserUID, &info.Email, &info.ReminderTime); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &info)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
