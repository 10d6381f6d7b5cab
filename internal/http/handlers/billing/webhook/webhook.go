// Package webhook реализует приём событий подписки от платёжного провайдера.
package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/nosugarclub/nosugar-api/internal/billing"
	"github.com/nosugarclub/nosugar-api/internal/lib/sl"
)

// Handler обрабатывает webhook-события платёжного провайдера.
type Handler struct {
	log           *slog.Logger
	webhookSecret string
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, secret string) *Handler {
	return &Handler{
		log:           log,
		webhookSecret: secret,
	}
}

// Проверка подписи webhook (X-Api-Signature)
func (h *Handler) verifySignature(body []byte, signature string) bool {
	mac := hmac.New(sha256.New, []byte(h.webhookSecret))
	mac.Write(body)
	expectedSig := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expectedSig), []byte(signature))
}

// ServeHTTP godoc
// @Summary Webhook платёжного провайдера
// @Description Принимает события подписки. Подпись проверяется по заголовку X-Api-Signature.
// @Tags Billing
// @Accept  json
// @Success 200 "Событие принято"
// @Failure 400 "Некорректное тело запроса"
// @Failure 401 "Неверная подпись"
// @Router /billing/webhook [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.billing.webhook"
	log := h.log.With(slog.String("op", op))

	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Error("failed to read webhook body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	signature := r.Header.Get("X-Api-Signature")
	if signature == "" || !h.verifySignature(body, signature) {
		log.Error("invalid or missing webhook signature")
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	var event billing.WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		log.Error("failed to unmarshal webhook event", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	// Источник истины о подписке остаётся у провайдера, клиенты узнают о
	// смене статуса при следующей синхронизации. Событие фиксируется в логах.
	log.Info("billing event received",
		slog.String("type", event.Type),
		slog.String("app_user_id", event.AppUserID),
		slog.String("product_id", event.ProductIdentifier))
	w.WriteHeader(http.StatusOK)
}
