package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/nosugarclub/nosugar-api/internal/models"
)

// RegisterUser сохраняет нового пользователя в базу данных и возвращает его ID.
func (s *Storage) RegisterUser(ctx context.Context, user models.User) (string, error) {
	const op = "storage.RegisterUser"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newID string
	query := `INSERT INTO users (email, username, password_hash)
			  VALUES ($1, $2, $3)
			  RETURNING uid;`
	if err := s.DB.QueryRowContext(ctx, query,
		user.Email, user.Username, user.PasswordHash).Scan(&newID); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// GetUserByUsername возвращает пользователя по его username.
func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	const op = "storage.GetUserByUsername"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uid, email, username, password_hash, created_at
			  FROM users
			  WHERE username = $1`
	u := &models.User{}
	row := s.DB.QueryRowContext(ctx, query, username)

	if err := row.Scan(&u.UUID, &u.Email, &u.Username, &u.PasswordHash, &u.CreatedAt); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// GetUserByEmail возвращает пользователя по его email. Используется при входе
// через сторонний id-токен, где известна только почта.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.GetUserByEmail"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uid, email, username, password_hash, created_at
			  FROM users
			  WHERE email = $1`
	u := &models.User{}
	row := s.DB.QueryRowContext(ctx, query, email)

	if err := row.Scan(&u.UUID, &u.Email, &u.Username, &u.PasswordHash, &u.CreatedAt); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// StoreRefreshToken сохраняет хэш refresh-токена пользователя.
func (s *Storage) StoreRefreshToken(ctx context.Context, userUID, tokenHash string, expiresAt time.Time) error {
	const op = "storage.StoreRefreshToken"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO refresh_tokens (user_uid, token_hash, expires_at)
			  VALUES ($1, $2, $3)`
	if _, err := s.DB.ExecContext(ctx, query, userUID, tokenHash, expiresAt); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// FindRefreshToken возвращает владельца и срок действия refresh-токена по его хэшу.
func (s *Storage) FindRefreshToken(ctx context.Context, tokenHash string) (string, time.Time, error) {
	const op = "storage.FindRefreshToken"
	select {
	case <-ctx.Done():
		return "", time.Time{}, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT user_uid, expires_at FROM refresh_tokens WHERE token_hash = $1`
	var userUID string
	var expiresAt time.Time
	if err := s.DB.QueryRowContext(ctx, query, tokenHash).Scan(&userUID, &expiresAt); err != nil {
		return "", time.Time{}, fmt.Errorf("%s: %w", op, err)
	}
	return userUID, expiresAt, nil
}

// DeleteRefreshToken удаляет refresh-токен по его хэшу (ротация).
func (s *Storage) DeleteRefreshToken(ctx context.Context, tokenHash string) error {
	const op = "storage.DeleteRefreshToken"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM refresh_tokens WHERE token_hash = $1`
	if _, err := s.DB.ExecContext(ctx, query, tokenHash); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// DeleteRefreshTokensForUser удаляет все refresh-токены пользователя (выход).
func (s *Storage) DeleteRefreshTokensForUser(ctx context.Context, userUID string) error {
	const op = "storage.DeleteRefreshTokensForUser"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM refresh_tokens WHERE user_uid = $1`
	if _, err := s.DB.ExecContext(ctx, query, userUID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetUser возвращает пользователя по его UID.
func (s *Storage) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	const op = "storage.GetUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uid, email, username, password_hash, created_at
			  FROM users
			  WHERE uid = $1`
	u := &models.User{}
	row := s.DB.QueryRowContext(ctx, query, userUID)

	if err := row.Scan(&u.UUID, &u.Email, &u.Username, &u.PasswordHash, &u.CreatedAt); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}
