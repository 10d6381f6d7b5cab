// Package scheduler содержит логику планировщика ежедневных напоминаний.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/streadway/amqp"

	"github.com/nosugarclub/nosugar-api/internal/lib/rabbitmq"
	"github.com/nosugarclub/nosugar-api/internal/lib/sl"
	"github.com/nosugarclub/nosugar-api/internal/models"
)

// ReminderRepository возвращает пользователей с включённым напоминанием.
type ReminderRepository interface {
	FindUsersWithReminder(ctx context.Context) ([]*models.ReminderInfo, error)
}

// Service раз в минуту находит пользователей, чьё время напоминания
// наступило, и публикует для каждого сообщение в очередь.
type Service struct {
	repo ReminderRepository
	log  *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo ReminderRepository, log *slog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log,
	}
}

// Run запускает цикл планировщика до отмены контекста.
func (s *Service) Run(ctx context.Context, channel *amqp.Channel) {
	s.publishDueReminders(ctx, channel, time.Now().UTC())

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			s.publishDueReminders(ctx, channel, now.UTC())
		case <-ctx.Done():
			return
		}
	}
}

func (s *Service) publishDueReminders(ctx context.Context, channel *amqp.Channel, now time.Time) {
	reminders, err := s.repo.FindUsersWithReminder(ctx)
	if err != nil {
		s.log.Error("failed to find users with reminders", sl.Err(err))
		return
	}
	if len(reminders) == 0 {
		return
	}

	currentMinute := now.Format("15:04")
	published := 0
	for _, reminder := range reminders {
		if reminder.ReminderTime != currentMinute {
			continue
		}
		if err := rabbitmq.PublishMessage(channel, rabbitmq.RemindersExchange, "daily", reminder); err != nil {
			s.log.Error("failed to publish reminder", sl.Err(err))
			continue
		}
		published++
	}
	if published > 0 {
		s.log.Info("published due reminders", "count", published)
	}
}
