// Package billing реализует HTTP-клиент платёжного провайдера подписок.
package billing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/nosugarclub/nosugar-api/internal/config"
)

// OfferingsTimeout ограничивает ожидание витрины пакетов. Провайдер может
// зависнуть на холодном старте, поэтому запрос обрезается жёстко, а вызывающая
// сторона получает ошибку, пригодную для повтора.
const OfferingsTimeout = 15 * time.Second

// ErrOfferingsTimeout возвращается, когда провайдер не успел отдать витрину.
// Вызывающая сторона может повторить запрос без каких-либо изменений.
var ErrOfferingsTimeout = errors.New("offerings request timed out")

// Client общается с платёжным провайдером по его REST API.
type Client struct {
	apiURL     string
	apiKey     string
	entitle    string
	httpClient *http.Client
}

// NewClient создаёт клиента платёжного провайдера по настройкам приложения.
func NewClient(cfg config.Billing) *Client {
	timeout := cfg.OfferingsTimeout
	if timeout <= 0 {
		timeout = OfferingsTimeout
	}
	return &Client{
		apiURL:     cfg.BillingAPIURL,
		apiKey:     cfg.BillingAPIKey,
		entitle:    cfg.EntitlementName,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// EntitlementName возвращает имя права, дающего статус pro.
func (c *Client) EntitlementName() string {
	return c.entitle
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, c.apiURL+path, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return errors.New("unexpected status: " + resp.Status)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Identify связывает анонимного подписчика устройства с учётной записью и
// возвращает объединённое состояние подписчика.
func (c *Client) Identify(ctx context.Context, deviceID, userUID string) (*Subscriber, error) {
	const op = "billing.Identify"

	req, err := c.newRequest(ctx, http.MethodPost, "/subscribers/identify", IdentifyRequest{
		AppUserID:    deviceID,
		NewAppUserID: userUID,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var resp SubscriberResponse
	if err := c.do(req, &resp); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &resp.Subscriber, nil
}

// Subscriber возвращает текущее состояние подписчика.
func (c *Client) Subscriber(ctx context.Context, appUserID string) (*Subscriber, error) {
	const op = "billing.Subscriber"

	req, err := c.newRequest(ctx, http.MethodGet, "/subscribers/"+appUserID, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var resp SubscriberResponse
	if err := c.do(req, &resp); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &resp.Subscriber, nil
}

// Offerings возвращает витрину пакетов подписки. Запрос жёстко ограничен по
// времени, и при срабатывании лимита возвращается ErrOfferingsTimeout.
func (c *Client) Offerings(ctx context.Context, appUserID string) (*OfferingsResponse, error) {
	const op = "billing.Offerings"

	ctx, cancel := context.WithTimeout(ctx, c.httpClient.Timeout)
	defer cancel()

	req, err := c.newRequest(ctx, http.MethodGet, "/subscribers/"+appUserID+"/offerings", nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var resp OfferingsResponse
	if err := c.do(req, &resp); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%s: %w", op, ErrOfferingsTimeout)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &resp, nil
}

// Purchase проводит покупку пакета и возвращает обновлённого подписчика.
func (c *Client) Purchase(ctx context.Context, reqParams PurchaseRequest) (*Subscriber, error) {
	const op = "billing.Purchase"

	req, err := c.newRequest(ctx, http.MethodPost, "/receipts", reqParams)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var resp SubscriberResponse
	if err := c.do(req, &resp); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &resp.Subscriber, nil
}

// Restore повторно применяет прошлые покупки подписчика.
func (c *Client) Restore(ctx context.Context, appUserID string) (*Subscriber, error) {
	const op = "billing.Restore"

	req, err := c.newRequest(ctx, http.MethodPost, "/subscribers/"+appUserID+"/restore", nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var resp SubscriberResponse
	if err := c.do(req, &resp); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &resp.Subscriber, nil
}

// IsPro сообщает, даёт ли состояние подписчика статус pro.
func (c *Client) IsPro(sub *Subscriber, now time.Time) bool {
	if sub == nil {
		return false
	}
	ent, ok := sub.Entitlements[c.entitle]
	if !ok {
		return false
	}
	return ent.Active(now)
}
