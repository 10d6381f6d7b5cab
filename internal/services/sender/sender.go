// Package sender отправляет ежедневные напоминания через push-шлюз.
package sender

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/nosugarclub/nosugar-api/internal/config"
	"github.com/nosugarclub/nosugar-api/internal/lib/sl"
	"github.com/nosugarclub/nosugar-api/internal/models"
)

// Service принимает сообщения напоминаний из очереди и пересылает их
// во внешний push-шлюз.
type Service struct {
	gatewayURL string
	gatewayKey string
	httpClient *http.Client
	log        *slog.Logger
}

// New создает новый экземпляр Service.
func New(cfg config.PushGateway, log *slog.Logger) *Service {
	return &Service{
		gatewayURL: cfg.PushGatewayURL,
		gatewayKey: cfg.PushGatewayKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		log:        log,
	}
}

type pushRequest struct {
	UserUID string `json:"user_uid"`
	Title   string `json:"title"`
	Body    string `json:"body"`
}

// SendDailyReminder обрабатывает одно сообщение очереди reminder.daily.
// Ошибка возвращает сообщение в очередь для повтора.
func (s *Service) SendDailyReminder(body []byte) error {
	const op = "services.sender.SendDailyReminder"

	var reminder models.ReminderInfo
	if err := json.Unmarshal(body, &reminder); err != nil {
		s.log.Error("failed to unmarshal reminder message", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	payload, err := json.Marshal(pushRequest{
		UserUID: reminder.UserUID,
		Title:   "Как прошёл день без сахара?",
		Body:    "Загляните в приложение и отметьте настроение.",
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	req, err := http.NewRequest(http.MethodPost, s.gatewayURL+"/v1/push", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Authorization", "Bearer "+s.gatewayKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.log.Error("failed to reach push gateway", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		s.log.Error("push gateway rejected reminder", "status", resp.Status, "user_uid", reminder.UserUID)
		return fmt.Errorf("%s: unexpected status %s", op, resp.Status)
	}
	return nil
}
