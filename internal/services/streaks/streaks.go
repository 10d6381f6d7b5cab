// Package streaks связывает движок ежедневных отметок и квит-стрик профиля
// в операции, доступные HTTP-слою.
package streaks

import (
	"context"
	"fmt"
	"time"

	"github.com/nosugarclub/nosugar-api/internal/lib/timex"
	"github.com/nosugarclub/nosugar-api/internal/models"
	"github.com/nosugarclub/nosugar-api/internal/streak"
)

// Repository описывает контракт хранилища для операций стрика.
type Repository interface {
	GetProfile(ctx context.Context, userUID string) (*models.Profile, error)
	ListStreakRuns(ctx context.Context, userUID string, limit, offset int) ([]*models.StreakRun, error)
}

// Status — сводка обоих стриков для главного экрана.
type Status struct {
	QuitDate          time.Time       `json:"quit_date"`
	CurrentDurationMS int64           `json:"current_duration_ms"`
	BestDurationMS    int64           `json:"best_duration_ms"`
	IsRecord          bool            `json:"is_record"`
	Elapsed           timex.Breakdown `json:"elapsed"`
	Milestone         timex.Progress  `json:"milestone"`
}

// Service отвечает за операции над стриками.
type Service struct {
	engine *streak.Engine
	repo   Repository
}

// New создаёт новый экземпляр Service.
func New(engine *streak.Engine, repo Repository) *Service {
	return &Service{engine: engine, repo: repo}
}

// Open обрабатывает ежедневное открытие приложения. Таймзона клиента нужна
// для вычисления локальной полуночи.
func (s *Service) Open(ctx context.Context, userUID string, req models.DummyStreakOpen) (*streak.OpenResult, error) {
	const op = "services.streaks.Open"

	loc, err := time.LoadLocation(req.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	result, err := s.engine.OnAppOpen(ctx, userUID, req.DeviceID, time.Now(), loc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// GetStatus возвращает сводку квит-стрика пользователя на момент now.
func (s *Service) GetStatus(ctx context.Context, userUID string, now time.Time) (*Status, error) {
	const op = "services.streaks.GetStatus"

	p, err := s.repo.GetProfile(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	currentMS := streak.CurrentDurationMS(p.QuitDate, now)
	days := int(currentMS / (24 * time.Hour).Milliseconds())
	return &Status{
		QuitDate:          p.QuitDate,
		CurrentDurationMS: currentMS,
		BestDurationMS:    streak.BestDurationMS(p.QuitDate, p.LongestStreakMS, now),
		IsRecord:          streak.IsNewRecord(p.QuitDate, p.LongestStreakMS, now),
		Elapsed:           timex.Elapsed(p.QuitDate, now),
		Milestone:         timex.MilestoneProgress(days, timex.DefaultMilestones),
	}, nil
}

// History возвращает завершённые забеги пользователя, новые первыми.
func (s *Service) History(ctx context.Context, userUID string, limit, offset int) ([]*models.StreakRun, error) {
	const op = "services.streaks.History"

	runs, err := s.repo.ListStreakRuns(ctx, userUID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return runs, nil
}
