package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/nosugarclub/nosugar-api/internal/models"
)

// pgUndefinedTable — код ошибки PostgreSQL undefined_table.
const pgUndefinedTable = "42P01"

// isUndefinedTable отличает отсутствующую таблицу streak_history от прочих
// ошибок: таблица best-effort, в старых развертываниях её может не быть.
func isUndefinedTable(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUndefinedTable
}

// InsertStreakRun записывает завершённый забег в streak_history.
// Отсутствие таблицы не считается ошибкой.
func (s *Storage) InsertStreakRun(ctx context.Context, run models.StreakRun) error {
	const op = "storage.InsertStreakRun"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO streak_history (user_uid, started_at, ended_at, duration_ms)
			  VALUES ($1, $2, $3, $4)`
	if _, err := s.DB.ExecContext(ctx, query,
		run.UserUID, run.StartedAt, run.EndedAt, run.DurationMS); err != nil {
		if isUndefinedTable(err) {
			return nil
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ListStreakRuns возвращает завершённые забеги пользователя, от новых к старым.
// Отсутствие таблицы эквивалентно отсутствию данных.
func (s *Storage) ListStreakRuns(ctx context.Context, userUID string, limit, offset int) ([]*models.StreakRun, error) {
	const op = "storage.ListStreakRuns"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, started_at, ended_at, duration_ms
			  FROM streak_history
			  WHERE user_uid = $1
			  ORDER BY ended_at DESC
			  LIMIT $2 OFFSET $3`
	rows, err := s.DB.QueryContext(ctx, query, userUID, limit, offset)
	if err != nil {
		if isUndefinedTable(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.StreakRun
	for rows.Next() {
		var run models.StreakRun
		if err = rows.Scan(&run.ID, &run.UserUID, &run.StartedAt, &run.EndedAt, &run.DurationMS); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &run)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
