// Package auth содержит бизнес-логику регистрации, входа и ротации токенов.
package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nosugarclub/nosugar-api/internal/lib/jwt"
	"github.com/nosugarclub/nosugar-api/internal/lib/password"
	"github.com/nosugarclub/nosugar-api/internal/models"
)

// ErrInvalidCredentials возвращается и для неизвестного пользователя, и для
// неверного пароля. Одинаковое сообщение не даёт перебирать логины.
var ErrInvalidCredentials = errors.New("invalid login credentials")

// ErrInvalidRefreshToken возвращается для неизвестного или истёкшего refresh-токена.
var ErrInvalidRefreshToken = errors.New("invalid refresh token")

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	RegisterUser(ctx context.Context, user models.User) (string, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUser(ctx context.Context, userUID string) (*models.User, error)
	CreateProfile(ctx context.Context, userUID string, quitDate time.Time) error
	StoreRefreshToken(ctx context.Context, userUID, tokenHash string, expiresAt time.Time) error
	FindRefreshToken(ctx context.Context, tokenHash string) (string, time.Time, error)
	DeleteRefreshToken(ctx context.Context, tokenHash string) error
	DeleteRefreshTokensForUser(ctx context.Context, userUID string) error
}

// IDTokenVerifier проверяет внешний id-токен и возвращает почту его владельца.
type IDTokenVerifier interface {
	Verify(ctx context.Context, idToken string) (email string, err error)
}

// TokenPair содержит пару access/refresh, выдаваемую клиенту.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	UserUID      string
	Username     string
}

// Service отвечает за регистрацию, вход и ротацию refresh-токенов.
type Service struct {
	users      UserRepository
	jwtMaker   jwt.Maker
	verifier   IDTokenVerifier
	refreshTTL time.Duration
}

// New создаёт новый экземпляр Service.
func New(users UserRepository, jwtMaker jwt.Maker, verifier IDTokenVerifier, refreshTTL time.Duration) *Service {
	return &Service{
		users:      users,
		jwtMaker:   jwtMaker,
		verifier:   verifier,
		refreshTTL: refreshTTL,
	}
}

// Register создаёт нового пользователя и его профиль. Дата отказа от сахара в
// профиле выставляется на момент регистрации, пока пользователь не укажет свою.
func (s *Service) Register(ctx context.Context, email, username, rawPassword string) (string, error) {
	const op = "services.auth.Register"

	hashed, err := password.GetHash(rawPassword)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	uid, err := s.users.RegisterUser(ctx, models.User{
		Email:        email,
		Username:     username,
		PasswordHash: hashed,
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if err := s.users.CreateProfile(ctx, uid, time.Now().UTC()); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return uid, nil
}

// LoginWithPassword проверяет пароль и выдаёт пару токенов. Для неизвестного
// пользователя и для неверного пароля возвращается одна и та же ошибка.
func (s *Service) LoginWithPassword(ctx context.Context, username, rawPassword string) (*TokenPair, error) {
	const op = "services.auth.LoginWithPassword"

	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}
	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}
	pair, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return pair, nil
}

// LoginWithIDToken проверяет внешний id-токен и выдаёт пару токенов по почте
// его владельца.
func (s *Service) LoginWithIDToken(ctx context.Context, idToken string) (*TokenPair, error) {
	const op = "services.auth.LoginWithIDToken"

	email, err := s.verifier.Verify(ctx, idToken)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}
	pair, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return pair, nil
}

// Refresh меняет refresh-токен на новую пару токенов. Старый токен удаляется,
// повторное использование невозможно.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	const op = "services.auth.Refresh"

	tokenHash := hashRefreshToken(refreshToken)
	userUID, expiresAt, err := s.users.FindRefreshToken(ctx, tokenHash)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidRefreshToken)
	}
	if time.Now().After(expiresAt) {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidRefreshToken)
	}
	if err := s.users.DeleteRefreshToken(ctx, tokenHash); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	user, err := s.users.GetUser(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	pair, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return pair, nil
}

// SignOut удаляет все refresh-токены пользователя.
func (s *Service) SignOut(ctx context.Context, userUID string) error {
	const op = "services.auth.SignOut"

	if err := s.users.DeleteRefreshTokensForUser(ctx, userUID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *Service) issueTokens(ctx context.Context, user *models.User) (*TokenPair, error) {
	access, err := s.jwtMaker.GenerateToken(user.Username, user.UUID)
	if err != nil {
		return nil, err
	}
	refresh := uuid.NewString()
	expiresAt := time.Now().Add(s.refreshTTL)
	if err := s.users.StoreRefreshToken(ctx, user.UUID, hashRefreshToken(refresh), expiresAt); err != nil {
		return nil, err
	}
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		UserUID:      user.UUID,
		Username:     user.Username,
	}, nil
}

// В базе хранится только хэш refresh-токена, сам токен знает лишь клиент.
func hashRefreshToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
