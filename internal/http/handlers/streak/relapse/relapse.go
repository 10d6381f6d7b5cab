// Package relapse реализует HTTP-обработчик фиксации срыва.
//
// Стрик обнуляется на сервере, клиенту возвращаются подтверждённые базой
// значения. Обработчик не обещает успех заранее: пока база не ответила,
// клиент продолжает показывать старое состояние.
package relapse

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/nosugarclub/nosugar-api/internal/http/middlewarectx"
	"github.com/nosugarclub/nosugar-api/internal/http/response"
	"github.com/nosugarclub/nosugar-api/internal/lib/sl"
	"github.com/nosugarclub/nosugar-api/internal/metrics"
	"github.com/nosugarclub/nosugar-api/internal/models"
	"github.com/nosugarclub/nosugar-api/internal/services/profile"
)

// Handler обрабатывает HTTP-запросы фиксации срыва.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики срыва.
type Service interface {
	Relapse(ctx context.Context, userUID string, now time.Time) (*profile.RelapseResult, error)
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Фиксация срыва
// @Description Обнуляет квит-стрик и возвращает подтверждённое сервером состояние.
// @Tags Streaks
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body models.DummyRelapse true "Необязательная заметка о срыве"
// @Success 200 {object} map[string]any "Подтверждённое состояние стрика"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера, стрик не изменён"
// @Router /streaks/relapse [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.streak.relapse"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyRelapse
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Error("failed to decode request body", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid request body"))
			return
		}
		if err := h.validate.Struct(req); err != nil {
			log.Error("validation failed", sl.Err(err))
			w.WriteHeader(http.StatusUnprocessableEntity)
			render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
			return
		}
	}

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	result, err := h.service.Relapse(r.Context(), userUID, time.Now().UTC())
	if err != nil {
		log.Error("failed to record relapse", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not record relapse"))
		return
	}
	metrics.Relapses.Inc()

	log.Info("relapse recorded",
		slog.String("user_uid", userUID),
		slog.Int64("ended_duration_ms", result.EndedDurationMS),
		slog.Bool("was_record", result.WasRecord))
	render.JSON(w, r, response.OKWithData(result))
}
