// Package timex содержит чистые функции временной арифметики для стриков:
// разложение прошедшего интервала на компоненты, подсчёт календарных дней
// между датами и прогресс до следующего рубежа.
//
// Вся внутренняя арифметика ведётся в миллисекундах, границы календарного дня
// считаются по локальной полуночи переданной time.Location — обе стороны
// любого сравнения "в один день" должны использовать одну и ту же локацию.
package timex

import (
	"math"
	"time"
)

// DefaultMilestones — лестница рубежей в днях, по возрастанию.
var DefaultMilestones = []int{3, 7, 14, 21, 30, 60, 90, 100, 180, 365}

// Breakdown представляет прошедший интервал, разложенный на компоненты.
// Разложение чисто арифметическое (24h/60m/60s), без учёта календарных месяцев.
type Breakdown struct {
	Days         int
	Hours        int
	Minutes      int
	Seconds      int
	TotalMinutes int64
	TotalSeconds int64
}

// Progress описывает положение счётчика дней между двумя рубежами лестницы.
// Previous — последний достигнутый рубеж (0, если счётчик ниже первого),
// Next — следующий рубеж, Fraction — доля пройденного сегмента в [0, 1].
type Progress struct {
	Previous int
	Next     int
	Fraction float64
}

// Elapsed раскладывает интервал между start и end на дни, часы, минуты
// и секунды. Если end раньше start, интервал считается нулевым.
func Elapsed(start, end time.Time) Breakdown {
	total := end.Sub(start)
	if total < 0 {
		total = 0
	}

	totalSeconds := int64(total / time.Second)
	return Breakdown{
		Days:         int(totalSeconds / 86400),
		Hours:        int(totalSeconds % 86400 / 3600),
		Minutes:      int(totalSeconds % 3600 / 60),
		Seconds:      int(totalSeconds % 60),
		TotalMinutes: totalSeconds / 60,
		TotalSeconds: totalSeconds,
	}
}

// StartOfDay возвращает локальную полночь дня, в который попадает t
// в локации loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}

// CalendarDaysBetween возвращает целое число календарных дней между a и b
// в локации loc. Результат отрицателен, если b раньше a — знак важен,
// например, при проверке "дата раньше даты срыва".
//
// Разница считается между локальными полуночами с округлением, чтобы переход
// на летнее время (23- или 25-часовые сутки) не сдвигал счётчик.
func CalendarDaysBetween(a, b time.Time, loc *time.Location) int {
	dayA := StartOfDay(a, loc)
	dayB := StartOfDay(b, loc)
	return int(math.Round(dayB.Sub(dayA).Hours() / 24))
}

// CalendarDaysSince — вариант CalendarDaysBetween для прошедших интервалов,
// отсекающий отрицательные значения в ноль.
func CalendarDaysSince(a, b time.Time, loc *time.Location) int {
	days := CalendarDaysBetween(a, b, loc)
	if days < 0 {
		return 0
	}
	return days
}

// MilestoneProgress возвращает положение счётчика дней count в лестнице
// рубежей ladder (отсортирована по возрастанию).
//
// Next — первый рубеж строго больше count, Previous — последний рубеж <= count.
// Граница принадлежит началу верхнего сегмента: count, равный рубежу, даёт
// Fraction == 0 сегмента до следующего рубежа. За пределами лестницы
// Previous == Next и Fraction == 1.
func MilestoneProgress(count int, ladder []int) Progress {
	if count < 0 {
		count = 0
	}

	prev := 0
	next := 0
	for _, m := range ladder {
		if m <= count {
			prev = m
			continue
		}
		next = m
		break
	}
	if next == 0 {
		// Счётчик за последним рубежом лестницы.
		return Progress{Previous: prev, Next: prev, Fraction: 1}
	}

	fraction := float64(count-prev) / float64(next-prev)
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	return Progress{Previous: prev, Next: next, Fraction: fraction}
}
