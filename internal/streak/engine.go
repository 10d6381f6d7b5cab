// Package streak реализует движок двух независимых стриков.
//
// Квит-стрик (длительность без сахара) живёт в удалённом профиле и
// сбрасывается только явным срывом. Чек-ин стрик (подряд идущие ежедневные
// открытия приложения) живёт в локальных ключах устройства и сбрасывается
// сутками бездействия. Срыв никогда не сбрасывает чек-ин стрик, бездействие
// никогда не сбрасывает квит-стрик.
package streak

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/nosugarclub/nosugar-api/internal/lib/sl"
	"github.com/nosugarclub/nosugar-api/internal/lib/timex"
	"github.com/nosugarclub/nosugar-api/internal/models"
)

// SchemaVersion — версия схемы локальных ключей чек-ин стрика.
// Поднимается при каждом изменении семантики сброса: расхождение версии
// принудительно переинициализирует маркер старта.
const SchemaVersion = "2"

// InactivityWindow — окно бездействия, после которого чек-ин стрик
// начинается заново.
const InactivityWindow = 24 * time.Hour

// celebrationDateLayout — локальная календарная дата водяного знака
// празднования. Сознательно строка даты, а не счётчик дней: поведение
// исходной версии сохранено, см. заметку в тестах о смене таймзоны.
const celebrationDateLayout = "2006-01-02"

// KV — локальное ключ-значение хранилище состояния устройства.
type KV interface {
	// Get возвращает значение ключа, false — если ключа нет.
	Get(ctx context.Context, key string) (string, bool, error)
	// Set сохраняет значение ключа.
	Set(ctx context.Context, key, value string) error
	// MultiDel удаляет набор ключей.
	MultiDel(ctx context.Context, keys ...string) error
}

// OpenResult — результат ежедневного открытия приложения.
type OpenResult struct {
	CheckinDays   int  `json:"checkin_days"`   // Текущая длина чек-ин стрика в днях
	StreakReset   bool `json:"streak_reset"`   // Стрик сброшен бездействием, показать разовое уведомление
	Celebrate     bool `json:"celebrate"`      // Показать празднование
	CelebrateDays int  `json:"celebrate_days"` // Сколько дней празднуем
}

// deviceKeys — имена локальных ключей одного устройства.
// Чек-ин стрик живёт в собственном пространстве имён, отдельном от
// квит-стрика в профиле.
type deviceKeys struct {
	owner          string
	version        string
	start          string
	lastActivity   string
	celebratedOn   string
	celebratedDays string
}

func keysFor(deviceID string) deviceKeys {
	prefix := "checkin:" + deviceID
	return deviceKeys{
		owner:          prefix + ":owner",
		version:        prefix + ":version",
		start:          prefix + ":start",
		lastActivity:   prefix + ":last_activity",
		celebratedOn:   prefix + ":celebrated_on",
		celebratedDays: prefix + ":celebrated_days",
	}
}

// Engine обновляет чек-ин стрик устройства и считает производные значения
// квит-стрика.
type Engine struct {
	kv  KV
	log *slog.Logger
}

// NewEngine создает движок поверх локального хранилища.
func NewEngine(kv KV, log *slog.Logger) *Engine {
	return &Engine{
		kv:  kv,
		log: log,
	}
}

// OnAppOpen фиксирует ежедневное открытие приложения и возвращает
// состояние чек-ин стрика.
//
// Последовательность шагов — одна логическая единица: ошибки записи
// маркеров всплывают до вычисления производных значений, частично
// записанное состояние наружу не отдаётся. Единственное исключение —
// водяной знак празднования: его потеря некритична и самовосстановима,
// ошибки глотаются с деградацией к дефолтам.
func (e *Engine) OnAppOpen(ctx context.Context, userID, deviceID string, now time.Time, loc *time.Location) (*OpenResult, error) {
	const op = "streak.OnAppOpen"
	keys := keysFor(deviceID)

	// Шаг 1: чужой владелец — вычистить всё состояние чек-ин стрика.
	// Жёсткий инвариант против протекания стрика между аккаунтами.
	owner, ownerFound, err := e.kv.Get(ctx, keys.owner)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if ownerFound && owner != userID {
		e.log.Info("device owner changed, purging check-in state",
			slog.String("device_id", deviceID))
		if err = e.kv.MultiDel(ctx, keys.start, keys.lastActivity,
			keys.celebratedOn, keys.celebratedDays); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	// Шаг 2: пометить владельца.
	if err = e.kv.Set(ctx, keys.owner, userID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	// Шаг 3: миграция схемы — при расхождении версии переинициализируется
	// только маркер старта.
	version, versionFound, err := e.kv.Get(ctx, keys.version)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !versionFound || version != SchemaVersion {
		if err = e.kv.MultiDel(ctx, keys.start); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if err = e.kv.Set(ctx, keys.version, SchemaVersion); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	result := &OpenResult{}

	// Шаг 4: сутки бездействия сбрасывают чек-ин стрик. Квит-стрик
	// при этом не трогается.
	lastActivity, lastFound, err := e.getTime(ctx, keys.lastActivity)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if lastFound && now.Sub(lastActivity) > InactivityWindow {
		if err = e.setTime(ctx, keys.start, now); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result.StreakReset = true
	}

	// Шаг 5: первый запуск — инициализировать маркер старта.
	start, startFound, err := e.getTime(ctx, keys.start)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !startFound {
		start = now
		if err = e.setTime(ctx, keys.start, now); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	// Шаг 6: отметить активность.
	if err = e.setTime(ctx, keys.lastActivity, now); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	// Шаг 7: длина стрика в календарных днях по локальной полуночи.
	result.CheckinDays = timex.CalendarDaysSince(start, now, loc)

	// Шаг 8: празднование — не чаще раза в календарный день и только
	// при настоящем росте счётчика.
	e.maybeCelebrate(ctx, keys, now, loc, result)

	return result, nil
}

// maybeCelebrate применяет правило празднования. Ошибки локального хранилища
// здесь деградируют к дефолтам ("ещё не праздновали"), не срывая открытие.
func (e *Engine) maybeCelebrate(ctx context.Context, keys deviceKeys, now time.Time, loc *time.Location, result *OpenResult) {
	if result.CheckinDays < 1 {
		return
	}

	today := now.In(loc).Format(celebrationDateLayout)

	celebratedOn, _, err := e.kv.Get(ctx, keys.celebratedOn)
	if err != nil {
		e.log.Warn("failed to read celebration date, assuming none", sl.Err(err))
		celebratedOn = ""
	}
	if celebratedOn == today {
		return
	}

	celebratedDays := 0
	rawDays, daysFound, err := e.kv.Get(ctx, keys.celebratedDays)
	if err != nil {
		e.log.Warn("failed to read celebration count, assuming zero", sl.Err(err))
	} else if daysFound {
		if parsed, parseErr := strconv.Atoi(rawDays); parseErr == nil {
			celebratedDays = parsed
		}
	}
	if result.CheckinDays <= celebratedDays {
		return
	}

	result.Celebrate = true
	result.CelebrateDays = result.CheckinDays

	if err = e.kv.Set(ctx, keys.celebratedOn, today); err != nil {
		e.log.Warn("failed to persist celebration date", sl.Err(err))
	}
	if err = e.kv.Set(ctx, keys.celebratedDays, strconv.Itoa(result.CheckinDays)); err != nil {
		e.log.Warn("failed to persist celebration count", sl.Err(err))
	}
}

func (e *Engine) getTime(ctx context.Context, key string) (time.Time, bool, error) {
	raw, found, err := e.kv.Get(ctx, key)
	if err != nil || !found {
		return time.Time{}, false, err
	}
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("malformed timestamp in %s: %w", key, err)
	}
	return time.UnixMilli(ms), true, nil
}

func (e *Engine) setTime(ctx context.Context, key string, t time.Time) error {
	return e.kv.Set(ctx, key, strconv.FormatInt(t.UnixMilli(), 10))
}

// RecordRelapse вычисляет новое состояние квит-стрика после срыва:
// рекорд монотонно подтягивается длительностью завершённого забега,
// новый стрик начинается с now. Чистая функция — сохранение результата
// и правило "не применять локально до подтверждения записи" лежат на
// вызывающей стороне.
func RecordRelapse(q models.QuitStreak, now time.Time) (models.QuitStreak, int64) {
	ended := CurrentDurationMS(q.QuitDate, now)
	longest := q.LongestStreakMS
	if ended > longest {
		longest = ended
	}
	return models.QuitStreak{QuitDate: now, LongestStreakMS: longest}, ended
}

// CurrentDurationMS — длительность текущего квит-стрика в миллисекундах,
// отрицательное время отсекается в ноль.
func CurrentDurationMS(quitDate, now time.Time) int64 {
	ms := now.Sub(quitDate).Milliseconds()
	if ms < 0 {
		return 0
	}
	return ms
}

// BestDurationMS — лучшая из текущей и рекордной длительностей.
func BestDurationMS(quitDate time.Time, longestMS int64, now time.Time) int64 {
	current := CurrentDurationMS(quitDate, now)
	if current > longestMS {
		return current
	}
	return longestMS
}

// IsNewRecord сообщает, идёт ли прямо сейчас новый рекорд.
func IsNewRecord(quitDate time.Time, longestMS int64, now time.Time) bool {
	current := CurrentDurationMS(quitDate, now)
	return current > 0 && current > longestMS
}
