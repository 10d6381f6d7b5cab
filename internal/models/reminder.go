// Package models содержит структуру сообщения ежедневного напоминания,
// публикуемого планировщиком в очередь и доставляемого сендером.
package models

// ReminderInfo — полезная нагрузка сообщения о ежедневном напоминании.
type ReminderInfo struct {
	UserUID      string `json:"user_uid"`      // Получатель
	Email        string `json:"email"`         // Почта получателя
	ReminderTime string `json:"reminder_time"` // Локальное время напоминания, 15:04
}
