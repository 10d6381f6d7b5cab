// Package entitlement отслеживает подписочный статус пользователя,
// полученный от биллинг-коллаборатора.
//
// Ключевой инвариант: пока статус не подтверждён для текущей личности
// (или идёт пере-идентификация), он неизвестен — а не "бесплатный".
// Преждевременный дефолт isPro=false даёт платящему пользователю
// видимую вспышку чужого экрана.
package entitlement

import "sync"

// Status — снимок подписочного статуса.
type Status struct {
	IsPro         bool // Достоверен только при IsDetermined
	IsDetermined  bool // Биллинг подтвердил статус для текущей личности
	IsSyncingUser bool // Идёт пере-идентификация при смене личности
}

// Known сообщает, можно ли доверять полю IsPro.
func (s Status) Known() bool {
	return s.IsDetermined && !s.IsSyncingUser
}

// Tracker хранит статус подписки, привязанный к личности пользователя.
// Ответы биллинга для вытесненной личности отбрасываются.
type Tracker struct {
	mu     sync.Mutex
	userID string
	status Status
}

// NewTracker создает трекер в неопределённом состоянии.
func NewTracker() *Tracker {
	return &Tracker{}
}

// BeginIdentify фиксирует смену личности: статус сбрасывается в неизвестный
// и помечается синхронизация, пока не придёт ответ для нового пользователя.
// Повторный Identify той же личности состояние не трогает.
func (t *Tracker) BeginIdentify(userID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.userID == userID && t.status.IsDetermined {
		return
	}
	t.userID = userID
	t.status = Status{IsSyncingUser: true}
}

// ApplyResult применяет ответ биллинга. Ответ для личности, которая уже
// вытеснена более поздним BeginIdentify, игнорируется.
func (t *Tracker) ApplyResult(userID string, isPro bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.userID != userID {
		return
	}
	t.status = Status{IsPro: isPro, IsDetermined: true}
}

// Reset возвращает трекер в неопределённое состояние (выход пользователя).
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.userID = ""
	t.status = Status{}
}

// Status возвращает текущий снимок статуса.
func (t *Tracker) Status() Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}
