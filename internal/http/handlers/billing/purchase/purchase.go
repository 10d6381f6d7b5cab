// Package purchase реализует HTTP-обработчик покупки пакета подписки.
package purchase

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/nosugarclub/nosugar-api/internal/billing"
	"github.com/nosugarclub/nosugar-api/internal/http/middlewarectx"
	"github.com/nosugarclub/nosugar-api/internal/http/response"
	"github.com/nosugarclub/nosugar-api/internal/lib/sl"
)

// Request — структура входных данных для покупки.
type Request struct {
	ProductIdentifier string `json:"product_identifier" validate:"required"`
	Receipt           string `json:"receipt" validate:"required"`
}

// Handler обрабатывает HTTP-запросы покупки.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс клиента платёжного провайдера.
type Service interface {
	Purchase(ctx context.Context, req billing.PurchaseRequest) (*billing.Subscriber, error)
	IsPro(sub *billing.Subscriber, now time.Time) bool
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
// @Summary Покупка пакета подписки
// @Description Проводит покупку через платёжного провайдера и возвращает итоговый статус подписки.
// @Tags Billing
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body Request true "Идентификатор продукта и чек покупки"
// @Success 200 {object} map[string]any "Итоговый статус подписки"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка платёжного провайдера"
// @Router /billing/purchase [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.billing.purchase"

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

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	sub, err := h.service.Purchase(r.Context(), billing.PurchaseRequest{
		AppUserID:         userUID,
		ProductIdentifier: req.ProductIdentifier,
		Receipt:           req.Receipt,
	})
	if err != nil {
		log.Error("failed to complete purchase", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not complete purchase"))
		return
	}

	isPro := h.service.IsPro(sub, time.Now())
	log.Info("purchase completed", slog.String("user_uid", userUID), slog.Bool("is_pro", isPro))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"is_pro":     isPro,
		"subscriber": sub,
	}))
}
