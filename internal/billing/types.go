package billing

import "time"

// Subscriber описывает состояние подписчика на стороне платёжного провайдера.
type Subscriber struct {
	AppUserID    string                 `json:"app_user_id"`
	Entitlements map[string]Entitlement `json:"entitlements"`
	FirstSeen    time.Time              `json:"first_seen"`
}

// Entitlement описывает одно активное право подписчика.
type Entitlement struct {
	ProductIdentifier string     `json:"product_identifier"`
	PurchaseDate      time.Time  `json:"purchase_date"`
	ExpiresDate       *time.Time `json:"expires_date,omitempty"`
}

// Active сообщает, действует ли право в момент now.
func (e Entitlement) Active(now time.Time) bool {
	return e.ExpiresDate == nil || e.ExpiresDate.After(now)
}

// Package описывает один вариант покупки внутри витрины.
type Package struct {
	Identifier        string `json:"identifier"`
	ProductIdentifier string `json:"platform_product_identifier"`
	PriceString       string `json:"price_string"`
	PeriodUnit        string `json:"period_unit"`
}

// Offering описывает витрину пакетов подписки.
type Offering struct {
	Identifier string    `json:"identifier"`
	Packages   []Package `json:"packages"`
}

// OfferingsResponse представляет ответ провайдера на запрос витрины.
type OfferingsResponse struct {
	CurrentOfferingID string     `json:"current_offering_id"`
	Offerings         []Offering `json:"offerings"`
}

// IdentifyRequest связывает анонимный идентификатор устройства с учётной записью.
type IdentifyRequest struct {
	AppUserID    string `json:"app_user_id"`
	NewAppUserID string `json:"new_app_user_id"`
}

// PurchaseRequest описывает запрос на покупку пакета.
type PurchaseRequest struct {
	AppUserID         string `json:"app_user_id"`
	ProductIdentifier string `json:"product_identifier"`
	Receipt           string `json:"fetch_token"`
}

// SubscriberResponse представляет ответ провайдера с состоянием подписчика.
type SubscriberResponse struct {
	Subscriber Subscriber `json:"subscriber"`
}

// WebhookEvent представляет событие подписки, присылаемое провайдером.
type WebhookEvent struct {
	Type              string `json:"type"`
	AppUserID         string `json:"app_user_id"`
	ProductIdentifier string `json:"product_id"`
	EventTimestampMS  int64  `json:"event_timestamp_ms"`
	ExpirationAtMS    *int64 `json:"expiration_at_ms,omitempty"`
}
