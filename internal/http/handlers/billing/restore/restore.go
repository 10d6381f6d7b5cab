// Package restore реализует HTTP-обработчик восстановления покупок.
package restore

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/nosugarclub/nosugar-api/internal/billing"
	"github.com/nosugarclub/nosugar-api/internal/http/middlewarectx"
	"github.com/nosugarclub/nosugar-api/internal/http/response"
	"github.com/nosugarclub/nosugar-api/internal/lib/sl"
)

// Handler обрабатывает HTTP-запросы восстановления покупок.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс клиента платёжного провайдера.
type Service interface {
	Restore(ctx context.Context, appUserID string) (*billing.Subscriber, error)
	IsPro(sub *billing.Subscriber, now time.Time) bool
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Восстановление покупок
// @Description Повторно применяет прошлые покупки пользователя и возвращает итоговый статус подписки.
// @Tags Billing
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} map[string]any "Итоговый статус подписки"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка платёжного провайдера"
// @Router /billing/restore [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.billing.restore"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	sub, err := h.service.Restore(r.Context(), userUID)
	if err != nil {
		log.Error("failed to restore purchases", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not restore purchases"))
		return
	}

	isPro := h.service.IsPro(sub, time.Now())
	log.Info("purchases restored", slog.String("user_uid", userUID), slog.Bool("is_pro", isPro))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"is_pro":     isPro,
		"subscriber": sub,
	}))
}
