// Package history реализует HTTP-обработчик истории завершённых забегов.
//
// История ведётся по принципу best-effort: при недоступности данных
// возвращается пустой список, а не ошибка.
package history

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/nosugarclub/nosugar-api/internal/http/middlewarectx"
	"github.com/nosugarclub/nosugar-api/internal/http/response"
	"github.com/nosugarclub/nosugar-api/internal/lib/sl"
	"github.com/nosugarclub/nosugar-api/internal/models"
)

// Handler обрабатывает HTTP-запросы истории забегов.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики истории забегов.
type Service interface {
	History(ctx context.Context, userUID string, limit, offset int) ([]*models.StreakRun, error)
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary История завершённых забегов
// @Description Возвращает завершённые забеги пользователя, новые первыми.
// @Tags Streaks
// @Produce  json
// @Security BearerAuth
// @Param limit query int false "Максимум записей, по умолчанию 20"
// @Param offset query int false "Смещение, по умолчанию 0"
// @Success 200 {object} map[string]any "Список забегов"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /streaks/history [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.streak.history"

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

	limit := queryInt(r, "limit", 20)
	offset := queryInt(r, "offset", 0)

	runs, err := h.service.History(r.Context(), userUID, limit, offset)
	if err != nil {
		log.Error("failed to list streak runs", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list streak runs"))
		return
	}
	if runs == nil {
		runs = []*models.StreakRun{}
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"runs":  runs,
		"count": len(runs),
	}))
}

func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return def
	}
	return v
}
