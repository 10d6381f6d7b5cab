// Package models содержит доменные типы двух независимых стриков.
//
// QuitStreak и CheckinStreak намеренно не имеют общего базового типа:
// у них одна шкала времени, но разные триггеры сброса и разные хранилища
// (профиль в PostgreSQL против локальных ключей устройства в Redis),
// и случайное смешение этих понятий — источник ошибок.
package models

import "time"

// QuitStreak — непрерывная длительность с момента объявленного отказа
// от сахара. Сбрасывается только явным срывом.
type QuitStreak struct {
	QuitDate        time.Time `json:"quit_date"`         // Момент начала текущего стрика
	LongestStreakMS int64     `json:"longest_streak_ms"` // Рекорд за всё время, в миллисекундах
}

// StreakRun — завершённый забег для таблицы streak_history (best-effort).
type StreakRun struct {
	ID         int       // Идентификатор записи
	UserUID    string    // Владелец
	StartedAt  time.Time // Начало забега
	EndedAt    time.Time // Конец забега (момент срыва)
	DurationMS int64     // Длительность в миллисекундах
}

// DummyStreakOpen используется для приёма запроса ежедневного открытия
// приложения. Таймзона клиента нужна для вычисления локальной полуночи.
type DummyStreakOpen struct {
	DeviceID string `json:"device_id" validate:"required,max=128"` // Идентификатор установки
	Timezone string `json:"timezone" validate:"required,timezone"` // IANA-таймзона клиента
}

// DummyRelapse используется для приёма запроса о срыве.
type DummyRelapse struct {
	Note string `json:"note" validate:"max=500"` // Необязательная заметка о срыве
}
