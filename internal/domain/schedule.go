package domain

import (
	"time"

	"github.com/m04kA/SMC-SchedulingService/pkg/types"
)

// BreakPeriod перерыв внутри рабочего дня (обед, пересменка)
type BreakPeriod struct {
	Start types.TimeString
	End   types.TimeString
	Label string
}

// DaySchedule weekly working hours of a provider for one day of week.
// Invariant (enforced at write time): if IsOpen, OpenTime < CloseTime and
// breaks are sorted, non-overlapping and inside the open hours.
type DaySchedule struct {
	Weekday   time.Weekday
	IsOpen    bool
	OpenTime  *types.TimeString
	CloseTime *types.TimeString
	Breaks    []BreakPeriod
}

// HolidayRecurrence recurrence pattern of a holiday
type HolidayRecurrence string

const (
	RecurrenceNone    HolidayRecurrence = "none"
	RecurrenceYearly  HolidayRecurrence = "yearly"
	RecurrenceMonthly HolidayRecurrence = "monthly"
)

// Holiday closes the provider for matching dates. A holiday never carries
// hours, only closure. Recurring holidays are evaluated against the queried
// date by pattern rule, never materialized per year.
type Holiday struct {
	ID         int64
	ProviderID int64
	Date       time.Time
	Recurrence HolidayRecurrence
	Reason     string
}

// Matches reports whether the holiday applies to the given date
func (h Holiday) Matches(date time.Time) bool {
	switch h.Recurrence {
	case RecurrenceYearly:
		return h.Date.Month() == date.Month() && h.Date.Day() == date.Day()
	case RecurrenceMonthly:
		return h.Date.Day() == date.Day()
	default:
		return h.Date.Year() == date.Year() &&
			h.Date.Month() == date.Month() &&
			h.Date.Day() == date.Day()
	}
}

// ScheduleException date-specific override with the highest precedence:
// it replaces both the weekly schedule and any holiday for its date.
// Nil open/close times mean the provider is fully closed that date.
type ScheduleException struct {
	ID         int64
	ProviderID int64
	Date       time.Time
	OpenTime   *types.TimeString
	CloseTime  *types.TimeString
	Breaks     []BreakPeriod
	Reason     string
}

// IsClosure reports whether the exception closes the whole date
func (e ScheduleException) IsClosure() bool {
	return e.OpenTime == nil && e.CloseTime == nil
}

// ProviderSchedule полное расписание провайдера: недельная сетка,
// праздники и точечные исключения. Плоские value-записи, без графа сущностей.
type ProviderSchedule struct {
	ProviderID int64
	Weekly     []DaySchedule
	Holidays   []Holiday
	Exceptions []ScheduleException
}

// WeeklyFor возвращает недельное расписание на день недели (nil, если не задано)
func (s ProviderSchedule) WeeklyFor(weekday time.Weekday) *DaySchedule {
	for i := range s.Weekly {
		if s.Weekly[i].Weekday == weekday {
			return &s.Weekly[i]
		}
	}
	return nil
}

// ExceptionFor возвращает исключение на конкретную дату (nil, если нет)
func (s ProviderSchedule) ExceptionFor(date time.Time) *ScheduleException {
	for i := range s.Exceptions {
		if sameDate(s.Exceptions[i].Date, date) {
			return &s.Exceptions[i]
		}
	}
	return nil
}

// HolidayFor возвращает первый праздник, подходящий под дату (nil, если нет)
func (s ProviderSchedule) HolidayFor(date time.Time) *Holiday {
	for i := range s.Holidays {
		if s.Holidays[i].Matches(date) {
			return &s.Holidays[i]
		}
	}
	return nil
}

// EffectiveDay fully resolved open/closed state and hours for one calendar
// date after layering weekly schedule, holidays and exceptions.
type EffectiveDay struct {
	Date          time.Time
	IsOpen        bool
	OpenTime      *types.TimeString
	CloseTime     *types.TimeString
	Breaks        []BreakPeriod
	ClosureReason string
}

// sameDate сравнивает только календарные даты, игнорируя время
func sameDate(a, b time.Time) bool {
	y1, m1, d1 := a.Date()
	y2, m2, d2 := b.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// SameDate экспортированная проверка совпадения календарных дат
func SameDate(a, b time.Time) bool {
	return sameDate(a, b)
}

// DateOnly обнуляет время, оставляя только календарную дату
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
