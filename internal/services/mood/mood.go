// Package mood содержит бизнес-логику дневника настроения.
package mood

import (
	"context"
	"fmt"
	"time"

	"github.com/nosugarclub/nosugar-api/internal/models"
)

// Repository описывает контракт хранилища записей настроения.
type Repository interface {
	InsertMoodLog(ctx context.Context, userUID, mood, note string, loggedAt time.Time) (int, error)
	ListMoodLogs(ctx context.Context, userUID string, limit, offset int) ([]*models.MoodLog, error)
}

// Service отвечает за создание и чтение записей настроения.
type Service struct {
	repo Repository
}

// New создаёт новый экземпляр Service.
func New(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create сохраняет запись настроения и возвращает её идентификатор.
func (s *Service) Create(ctx context.Context, userUID string, req models.DummyMoodLog) (int, error) {
	const op = "services.mood.Create"

	id, err := s.repo.InsertMoodLog(ctx, userUID, req.Mood, req.Note, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// List возвращает записи настроения пользователя, новые первыми.
func (s *Service) List(ctx context.Context, userUID string, limit, offset int) ([]*models.MoodLog, error) {
	const op = "services.mood.List"

	logs, err := s.repo.ListMoodLogs(ctx, userUID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return logs, nil
}
