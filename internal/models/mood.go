// Package models содержит модель записи настроения — строку append-only
// таблицы mood_logs.
package models

import "time"

// MoodLog представляет одну запись настроения пользователя.
type MoodLog struct {
	ID       int       // Идентификатор записи
	UserUID  string    // Владелец записи
	Mood     string    // Код настроения: great, good, okay, bad, awful
	Note     string    // Произвольная заметка, может быть пустой
	LoggedAt time.Time // Момент записи
}

// DummyMoodLog используется для приёма записи настроения из JSON-запроса.
type DummyMoodLog struct {
	Mood string `json:"mood" validate:"required,oneof=great good okay bad awful"` // Код настроения
	Note string `json:"note" validate:"max=500"`                                  // Заметка
}
