// Package session реализует стор текущей сессии аутентификации.
//
// Стор стартует в неустановившемся состоянии: до прихода первого
// уведомления (включая "сессии нет") никакие навигационные решения
// приниматься не должны. Каждое уведомление порождает новый снимок,
// прежние снимки никогда не мутируются.
package session

import (
	"sync"
	"time"
)

// LogoutSettleDelay — окно нестабильности после явного выхода.
// Переход present→absent нельзя немедленно считать поводом для редиректа:
// навигация, запущенная до очистки сессии, должна успеть завершиться.
// Вход задержки не требует.
const LogoutSettleDelay = 400 * time.Millisecond

// EventKind — тип уведомления об изменении сессии.
type EventKind string

const (
	// EventInitial — первое уведомление при старте, сессия может отсутствовать.
	EventInitial EventKind = "initial"
	// EventSignedIn — пользователь вошёл.
	EventSignedIn EventKind = "signed_in"
	// EventSignedOut — пользователь вышел.
	EventSignedOut EventKind = "signed_out"
	// EventTokenRefreshed — токен обновлён, личность не изменилась.
	EventTokenRefreshed EventKind = "token_refreshed"
)

// Event — уведомление об изменении сессии от коллаборатора аутентификации.
type Event struct {
	Kind   EventKind
	UserID string // Пустой, если сессии нет
}

// Snapshot — неизменяемый снимок состояния сессии.
type Snapshot struct {
	UserID  string
	Present bool
	Settled bool // true после первого уведомления, каким бы оно ни было
}

// Store хранит текущий снимок сессии и рассылает уведомления подписчикам
// в порядке поступления событий.
type Store struct {
	mu            sync.Mutex
	snap          Snapshot
	unstableUntil time.Time
	closed        bool
	subscribers   []func(Snapshot)

	now func() time.Time // подменяется в тестах
}

// New создает стор в неустановившемся состоянии.
func New() *Store {
	return &Store{
		now: time.Now,
	}
}

// Apply применяет уведомление об изменении сессии. События применяются
// в порядке вызова; после Close события игнорируются, чтобы запоздавший
// результат не перезаписал состояние умершего стора.
func (s *Store) Apply(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	wasPresent := s.snap.Present

	next := Snapshot{Settled: true}
	switch ev.Kind {
	case EventSignedIn, EventTokenRefreshed:
		next.Present = ev.UserID != ""
		next.UserID = ev.UserID
	case EventSignedOut:
		next.Present = false
	case EventInitial:
		next.Present = ev.UserID != ""
		next.UserID = ev.UserID
	}

	if wasPresent && !next.Present {
		s.unstableUntil = s.now().Add(LogoutSettleDelay)
	}

	s.snap = next

	// Подписчики уведомляются под блокировкой: порядок доставки обязан
	// совпадать с порядком событий. Колбэки не должны вызывать стор повторно.
	for _, fn := range s.subscribers {
		fn(next)
	}
}

// Snapshot возвращает текущий снимок сессии.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

// StableAbsent сообщает, можно ли доверять отсутствию сессии для редиректа:
// состояние установилось, сессии нет и окно нестабильности после выхода
// уже закрылось.
func (s *Store) StableAbsent() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.snap.Settled || s.snap.Present {
		return false
	}
	return !s.now().Before(s.unstableUntil)
}

// Subscribe регистрирует подписчика на каждое изменение снимка.
func (s *Store) Subscribe(fn func(Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

// Close останавливает стор: последующие события не применяются.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}
