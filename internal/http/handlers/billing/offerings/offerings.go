// Package offerings реализует HTTP-обработчик витрины пакетов подписки.
//
// Витрина доступна и анонимным установкам: пейволл показывается до входа.
// При таймауте провайдера клиент получает явный признак retryable и может
// повторить запрос без изменений.
package offerings

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/nosugarclub/nosugar-api/internal/billing"
	"github.com/nosugarclub/nosugar-api/internal/http/response"
	"github.com/nosugarclub/nosugar-api/internal/lib/sl"
)

// Handler обрабатывает HTTP-запросы витрины пакетов.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс клиента платёжного провайдера.
type Service interface {
	Offerings(ctx context.Context, appUserID string) (*billing.OfferingsResponse, error)
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Витрина пакетов подписки
// @Description Возвращает доступные пакеты подписки для установки. При таймауте провайдера ответ содержит признак retryable.
// @Tags Billing
// @Produce  json
// @Param device_id query string true "Идентификатор установки"
// @Success 200 {object} map[string]any "Витрина пакетов"
// @Failure 400 {object} response.ErrorResponse "Не указан device_id"
// @Failure 504 {object} response.ErrorResponse "Провайдер не ответил вовремя"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /billing/offerings [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.billing.offerings"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	deviceID := r.URL.Query().Get("device_id")
	if deviceID == "" {
		log.Error("device_id query parameter is missing")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("device_id is required"))
		return
	}

	resp, err := h.service.Offerings(r.Context(), deviceID)
	if err != nil {
		if errors.Is(err, billing.ErrOfferingsTimeout) {
			log.Error("offerings request timed out", sl.Err(err))
			w.WriteHeader(http.StatusGatewayTimeout)
			render.JSON(w, r, response.Response{
				Status: response.StatusError,
				Error:  "offerings request timed out",
				Data:   map[string]any{"retryable": true},
			})
			return
		}
		log.Error("failed to fetch offerings", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not fetch offerings"))
		return
	}

	render.JSON(w, r, response.OKWithData(resp))
}
