package session

import "sync"

// Handoff переносит одноразовые флаги через границу выхода и повторного
// монтирования клиента: подавление принудительного лендинга и сохранённое
// сообщение об ошибке входа ("нет подходящего профиля" должно пережить
// размонтирование, вызванное выходом).
//
// Дисциплина строгая: установить один раз, прочитать один раз — чтение
// очищает флаг. Экземпляр передаётся через корень композиции, пакетных
// глобалов нет.
type Handoff struct {
	mu              sync.Mutex
	suppressLanding bool
	loginError      string
	hasLoginError   bool
}

// NewHandoff создает пустой набор одноразовых флагов.
func NewHandoff() *Handoff {
	return &Handoff{}
}

// SetSuppressLanding взводит флаг "не показывать принудительный лендинг".
func (h *Handoff) SetSuppressLanding() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.suppressLanding = true
}

// TakeSuppressLanding возвращает и сбрасывает флаг подавления лендинга.
func (h *Handoff) TakeSuppressLanding() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	val := h.suppressLanding
	h.suppressLanding = false
	return val
}

// SetLoginError сохраняет сообщение об ошибке входа для показа после ремаунта.
func (h *Handoff) SetLoginError(msg string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.loginError = msg
	h.hasLoginError = true
}

// TakeLoginError возвращает и очищает сохранённое сообщение об ошибке входа.
func (h *Handoff) TakeLoginError() (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	msg, ok := h.loginError, h.hasLoginError
	h.loginError = ""
	h.hasLoginError = false
	return msg, ok
}
