package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/nosugarclub/nosugar-api/internal/models"
)

// InsertMoodLog добавляет запись настроения и возвращает её ID.
// Таблица append-only, записи не редактируются и не удаляются.
func (s *Storage) InsertMoodLog(ctx context.Context, userUID, mood, note string, loggedAt time.Time) (int, error) {
	const op = "storage.InsertMoodLog"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO mood_logs (user_uid, mood, note, logged_at)
			  VALUES ($1, $2, $3, $4)
			  RETURNING id`
	var newID int
	if err := s.DB.QueryRowContext(ctx, query, userUID, mood, note, loggedAt).Scan(&newID); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// ListMoodLogs возвращает записи настроения пользователя с пагинацией,
// от новых к старым.
func (s *Storage) ListMoodLogs(ctx context.Context, userUID string, limit, offset int) ([]*models.MoodLog, error) {
	const op = "storage.ListMoodLogs"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, mood, note, logged_at
			  FROM mood_logs
			  WHERE user_uid = $1
			  ORDER BY logged_at DESC
			  LIMIT $2 OFFSET $3`
	rows, err := s.DB.QueryContext(ctx, query, userUID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.MoodLog
	for rows.Next() {
		var entry models.MoodLog
		if err = rows.Scan(&entry.ID, &entry.UserUID, &entry.Mood, &entry.Note, &entry.LoggedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &entry)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
