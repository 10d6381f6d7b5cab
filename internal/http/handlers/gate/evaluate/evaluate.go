// Package evaluate реализует HTTP-обработчик навигационного шлюза.
//
// Клиент присылает запрошенный маршрут вместе со снимками сессии и статуса
// подписки, сервер возвращает решение: ждать, перенаправить или отрисовать.
// Решение детерминировано, один и тот же вход всегда даёт один и тот же выход.
package evaluate

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/nosugarclub/nosugar-api/internal/entitlement"
	"github.com/nosugarclub/nosugar-api/internal/gate"
	"github.com/nosugarclub/nosugar-api/internal/http/response"
	"github.com/nosugarclub/nosugar-api/internal/lib/sl"
	"github.com/nosugarclub/nosugar-api/internal/metrics"
	"github.com/nosugarclub/nosugar-api/internal/session"
)

// Request — структура входных данных для решения шлюза.
type Request struct {
	Route   string `json:"route" validate:"required,oneof=landing auth paywall tabs"`
	Session struct {
		UserID  string `json:"user_id"`
		Present bool   `json:"present"`
		Settled bool   `json:"settled"`
	} `json:"session"`
	Entitlement struct {
		IsPro         bool `json:"is_pro"`
		IsDetermined  bool `json:"is_determined"`
		IsSyncingUser bool `json:"is_syncing_user"`
	} `json:"entitlement"`
}

// Handler обрабатывает HTTP-запросы навигационного шлюза.
type Handler struct {
	log      *slog.Logger
	validate *validator.Validate
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger) *Handler {
	return &Handler{
		log:      log,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Решение навигационного шлюза
// @Description Возвращает решение по запрошенному маршруту: await, redirect или render.
// @Tags Gate
// @Accept  json
// @Produce  json
// @Param request body Request true "Маршрут и снимки состояния клиента"
// @Success 200 {object} map[string]any "Решение шлюза"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /gate/evaluate [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.gate.evaluate"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
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

	decision := gate.Decide(
		session.Snapshot{
			UserID:  req.Session.UserID,
			Present: req.Session.Present,
			Settled: req.Session.Settled,
		},
		entitlement.Status{
			IsPro:         req.Entitlement.IsPro,
			IsDetermined:  req.Entitlement.IsDetermined,
			IsSyncingUser: req.Entitlement.IsSyncingUser,
		},
		gate.Route(req.Route),
	)
	metrics.GateDecisions.WithLabelValues(string(decision.Outcome), string(decision.Target)).Inc()

	log.Info("gate decision made",
		slog.String("route", req.Route),
		slog.String("outcome", string(decision.Outcome)),
		slog.String("target", string(decision.Target)))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"outcome": decision.Outcome,
		"target":  decision.Target,
	}))
}
