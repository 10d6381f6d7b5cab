// Package nosugarapi собирает основной HTTP-сервис трекера.
package nosugarapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/nosugarclub/nosugar-api/internal/billing"
	"github.com/nosugarclub/nosugar-api/internal/config"
	"github.com/nosugarclub/nosugar-api/internal/kvstore"
	"github.com/nosugarclub/nosugar-api/internal/lib/idtoken"
	"github.com/nosugarclub/nosugar-api/internal/lib/jwt"
	"github.com/nosugarclub/nosugar-api/internal/migrations"
	authservice "github.com/nosugarclub/nosugar-api/internal/services/auth"
	moodservice "github.com/nosugarclub/nosugar-api/internal/services/mood"
	profileservice "github.com/nosugarclub/nosugar-api/internal/services/profile"
	streaksservice "github.com/nosugarclub/nosugar-api/internal/services/streaks"
	"github.com/nosugarclub/nosugar-api/internal/storage/repository"
	"github.com/nosugarclub/nosugar-api/internal/streak"
)

// App представляет основное HTTP-приложение.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	kv     *kvstore.Store
}

// New создает новый экземпляр приложения.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	kv, err := kvstore.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	verifier := idtoken.NewVerifier(cfg.JWTSecretKey)
	billingClient := billing.NewClient(cfg.Billing)

	authService := authservice.New(db, jwtMaker, verifier, cfg.RefreshTTL)
	profileService := profileservice.New(db, logger)
	moodService := moodservice.New(db)
	streakEngine := streak.NewEngine(kv, logger)
	streaksService := streaksservice.New(streakEngine, db)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, &Services{
		JWTMaker: jwtMaker,
		Auth:     authService,
		Profile:  profileService,
		Mood:     moodService,
		Streaks:  streaksService,
		Billing:  billingClient,
		Config:   cfg,
	})

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		kv:     kv,
	}, nil
}

// Run запускает HTTP-сервер и останавливает его при отмене контекста.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.db.DB.Close()
		return err
	}
}
