// Package nosugarapi предоставляет маршруты основного приложения.
package nosugarapi

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/nosugarclub/nosugar-api/internal/billing"
	"github.com/nosugarclub/nosugar-api/internal/config"
	"github.com/nosugarclub/nosugar-api/internal/http/handlers/auth/login"
	"github.com/nosugarclub/nosugar-api/internal/http/handlers/auth/logout"
	"github.com/nosugarclub/nosugar-api/internal/http/handlers/auth/refresh"
	"github.com/nosugarclub/nosugar-api/internal/http/handlers/auth/register"
	billingofferings "github.com/nosugarclub/nosugar-api/internal/http/handlers/billing/offerings"
	billingpurchase "github.com/nosugarclub/nosugar-api/internal/http/handlers/billing/purchase"
	billingrestore "github.com/nosugarclub/nosugar-api/internal/http/handlers/billing/restore"
	billingwebhook "github.com/nosugarclub/nosugar-api/internal/http/handlers/billing/webhook"
	gateevaluate "github.com/nosugarclub/nosugar-api/internal/http/handlers/gate/evaluate"
	"github.com/nosugarclub/nosugar-api/internal/http/handlers/health"
	moodcreate "github.com/nosugarclub/nosugar-api/internal/http/handlers/mood/create"
	moodlist "github.com/nosugarclub/nosugar-api/internal/http/handlers/mood/list"
	profileread "github.com/nosugarclub/nosugar-api/internal/http/handlers/profile/read"
	profileupdate "github.com/nosugarclub/nosugar-api/internal/http/handlers/profile/update"
	streakhistory "github.com/nosugarclub/nosugar-api/internal/http/handlers/streak/history"
	streakopen "github.com/nosugarclub/nosugar-api/internal/http/handlers/streak/open"
	streakrelapse "github.com/nosugarclub/nosugar-api/internal/http/handlers/streak/relapse"
	streakstatus "github.com/nosugarclub/nosugar-api/internal/http/handlers/streak/status"
	"github.com/nosugarclub/nosugar-api/internal/http/middlewarectx"
	"github.com/nosugarclub/nosugar-api/internal/lib/jwt"
	authservice "github.com/nosugarclub/nosugar-api/internal/services/auth"
	moodservice "github.com/nosugarclub/nosugar-api/internal/services/mood"
	profileservice "github.com/nosugarclub/nosugar-api/internal/services/profile"
	streaksservice "github.com/nosugarclub/nosugar-api/internal/services/streaks"
)

// Services перечисляет зависимости HTTP-слоя.
type Services struct {
	JWTMaker jwt.Maker
	Auth     *authservice.Service
	Profile  *profileservice.Service
	Mood     *moodservice.Service
	Streaks  *streaksservice.Service
	Billing  *billing.Client
	Config   *config.Config
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, deps *Services) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/register", register.New(logger, deps.Auth).ServeHTTP)
		r.Post("/login", login.New(logger, deps.Auth).ServeHTTP)
		r.Post("/refresh", refresh.New(logger, deps.Auth).ServeHTTP)
		r.Post("/gate/evaluate", gateevaluate.New(logger).ServeHTTP)
		r.Get("/billing/offerings", billingofferings.New(logger, deps.Billing).ServeHTTP)
		r.Get("/health", health.New(logger).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(deps.JWTMaker, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))
			r.Post("/logout", logout.New(logger, deps.Auth).ServeHTTP)
			r.Get("/profile", profileread.New(logger, deps.Profile).ServeHTTP)
			r.Patch("/profile", profileupdate.New(logger, deps.Profile).ServeHTTP)
			r.Post("/streaks/open", streakopen.New(logger, deps.Streaks).ServeHTTP)
			r.Post("/streaks/relapse", streakrelapse.New(logger, deps.Profile).ServeHTTP)
			r.Get("/streaks/status", streakstatus.New(logger, deps.Streaks).ServeHTTP)
			r.Get("/streaks/history", streakhistory.New(logger, deps.Streaks).ServeHTTP)
			r.Post("/moods", moodcreate.New(logger, deps.Mood).ServeHTTP)
			r.Get("/moods", moodlist.New(logger, deps.Mood).ServeHTTP)
			r.Post("/billing/purchase", billingpurchase.New(logger, deps.Billing).ServeHTTP)
			r.Post("/billing/restore", billingrestore.New(logger, deps.Billing).ServeHTTP)
		})

		// Webhook endpoint (без аутентификации)
		r.Post("/billing/webhook", billingwebhook.New(logger, deps.Config.WebhookSecret).ServeHTTP)
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
