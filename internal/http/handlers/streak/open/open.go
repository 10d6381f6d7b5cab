// Package open реализует HTTP-обработчик ежедневного открытия приложения.
//
// Handler принимает идентификатор установки и таймзону клиента, прогоняет
// состояние отметок устройства через движок и возвращает число дней,
// признак сброса и сигнал праздничного экрана.
package open

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/nosugarclub/nosugar-api/internal/http/middlewarectx"
	"github.com/nosugarclub/nosugar-api/internal/http/response"
	"github.com/nosugarclub/nosugar-api/internal/lib/sl"
	"github.com/nosugarclub/nosugar-api/internal/metrics"
	"github.com/nosugarclub/nosugar-api/internal/models"
	"github.com/nosugarclub/nosugar-api/internal/streak"
)

// Handler обрабатывает HTTP-запросы ежедневного открытия.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики ежедневного открытия.
type Service interface {
	Open(ctx context.Context, userUID string, req models.DummyStreakOpen) (*streak.OpenResult, error)
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
// @Summary Ежедневное открытие приложения
// @Description Обновляет стрик ежедневных отметок устройства и возвращает его состояние.
// @Tags Streaks
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body models.DummyStreakOpen true "Идентификатор установки и таймзона"
// @Success 200 {object} map[string]any "Состояние стрика отметок"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /streaks/open [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.streak.open"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyStreakOpen
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

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	result, err := h.service.Open(r.Context(), userUID, req)
	if err != nil {
		log.Error("failed to process app open", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not process app open"))
		return
	}
	if result.StreakReset {
		metrics.StreakResets.Inc()
	}
	if result.Celebrate {
		metrics.Celebrations.Inc()
	}

	log.Info("app open processed",
		slog.String("device_id", req.DeviceID),
		slog.Int("checkin_days", result.CheckinDays),
		slog.Bool("streak_reset", result.StreakReset))
	render.JSON(w, r, response.OKWithData(result))
}
