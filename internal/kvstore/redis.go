// Package kvstore реализует простое строковое ключ-значение хранилище
// на Redis для локального состояния устройств: маркеры чек-ин стрика,
// водяной знак празднования, версия схемы и настройка напоминаний.
//
// Транзакций нет, вызывающая сторона обязана переживать разрыв между
// записью и последующим чтением.
package kvstore

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/nosugarclub/nosugar-api/internal/config"
)

// Store инкапсулирует клиент Redis.
type Store struct {
	Db *redis.Client
}

// InitServer подключается к Redis и проверяет соединение.
func InitServer(ctx context.Context, cfg config.RedisConnection) (*Store, error) {
	const op = "kvstore.InitServer"
	db := redis.NewClient(&redis.Options{
		Addr:         cfg.AddressRedis,
		Password:     cfg.Password,
		DB:           cfg.DB,
		Username:     cfg.User,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.TimeoutRedis,
		WriteTimeout: cfg.TimeoutRedis,
	})

	if err := db.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Store{Db: db}, nil
}

// Get возвращает значение ключа. Второй результат false, если ключа нет.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	const op = "kvstore.Get"
	val, err := s.Db.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%s: %w", op, err)
	}
	return val, true, nil
}

// Set сохраняет строковое значение ключа без срока жизни.
func (s *Store) Set(ctx context.Context, key, value string) error {
	const op = "kvstore.Set"
	if err := s.Db.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Del удаляет ключ.
func (s *Store) Del(ctx context.Context, key string) error {
	const op = "kvstore.Del"
	if err := s.Db.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// MultiDel удаляет набор ключей одним вызовом.
func (s *Store) MultiDel(ctx context.Context, keys ...string) error {
	const op = "kvstore.MultiDel"
	if len(keys) == 0 {
		return nil
	}
	if err := s.Db.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
