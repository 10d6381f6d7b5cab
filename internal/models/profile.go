// Package models содержит доменные структуры профиля пользователя —
// удалённую запись, переживающую переустановку приложения, — а также
// вспомогательные типы для приёма данных из JSON-запросов.
package models

import "time"

// Profile представляет удалённую запись профиля, хранимую в таблице profiles.
// Числовые поля опциональны: отсутствующее значение колонки может быть
// восстановлено из legacy-мешка OnboardingData либо заменено дефолтом —
// приоритет разрешения фиксирован в сервисе профиля.
type Profile struct {
	UserUID         string         // Владелец записи
	QuitDate        time.Time      // Момент последнего объявления "я чист"
	LongestStreakMS int64          // Рекордная длительность стрика, монотонно неубывающая
	WeeklySpend     *float64       // Недельные траты на сладкое
	DailySugarGrams *float64       // Дневное потребление сахара в граммах
	DailyCalories   *float64       // Дневные калории из сахара
	OnboardingData  map[string]any // Свободный мешок ответов онбординга (legacy)
	ReminderEnabled bool           // Включено ли ежедневное напоминание
	ReminderTime    string         // Локальное время напоминания, формат 15:04
	UpdatedAt       time.Time
}

// ResolvedProfile — профиль после трёхступенчатого разрешения числовых полей
// (колонка → мешок онбординга → дефолт). Поля всегда заполнены.
type ResolvedProfile struct {
	UserUID         string    `json:"user_uid"`
	QuitDate        time.Time `json:"quit_date"`
	LongestStreakMS int64     `json:"longest_streak_ms"`
	WeeklySpend     float64   `json:"weekly_spend"`
	DailySugarGrams float64   `json:"daily_sugar_grams"`
	DailyCalories   float64   `json:"daily_calories"`
	ReminderEnabled bool      `json:"reminder_enabled"`
	ReminderTime    string    `json:"reminder_time"`
}

// DummyProfileUpdate используется для приёма обновления профиля из JSON-запроса.
// Указатели отличают "поле не прислано" от нулевого значения.
type DummyProfileUpdate struct {
	WeeklySpend     *float64 `json:"weekly_spend" validate:"omitempty,gte=0"`
	DailySugarGrams *float64 `json:"daily_sugar_grams" validate:"omitempty,gte=0"`
	DailyCalories   *float64 `json:"daily_calories" validate:"omitempty,gte=0"`
	ReminderEnabled *bool    `json:"reminder_enabled"`
	ReminderTime    *string  `json:"reminder_time" validate:"omitempty,datetime=15:04"`
}
