package calendar

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/pkg/types"
)

// Service разрешает эффективное состояние дня провайдера на произвольную дату.
// Слои в порядке приоритета: исключение > праздник > недельное расписание.
// Слои не сливаются частично: побеждает ровно один.
// Resolve чистый и безопасен для любого числа конкурентных вызовов.
type Service struct{}

// NewService создает календарный сервис
func NewService() *Service {
	return &Service{}
}

// Resolve вычисляет эффективный день для даты.
// 1. Берем недельное расписание по дню недели (нет записи = закрыто).
// 2. Праздник, подходящий под дату, закрывает день с причиной "Holiday: <reason>".
//    Праздники никогда не несут часы работы, только закрытие.
// 3. Исключение на точную дату безусловно перекрывает результат: nil open/close =
//    закрыто с причиной исключения, иначе открыто с часами исключения и его
//    перерывами (пустыми, если не заданы).
func (s *Service) Resolve(schedule domain.ProviderSchedule, date time.Time) domain.EffectiveDay {
	day := domain.EffectiveDay{Date: domain.DateOnly(date)}

	if weekly := schedule.WeeklyFor(date.Weekday()); weekly != nil && weekly.IsOpen {
		day.IsOpen = true
		day.OpenTime = weekly.OpenTime
		day.CloseTime = weekly.CloseTime
		day.Breaks = weekly.Breaks
	}

	if holiday := schedule.HolidayFor(date); holiday != nil {
		day = domain.EffectiveDay{
			Date:          day.Date,
			IsOpen:        false,
			ClosureReason: fmt.Sprintf("Holiday: %s", holiday.Reason),
		}
	}

	if exc := schedule.ExceptionFor(date); exc != nil {
		if exc.IsClosure() {
			return domain.EffectiveDay{
				Date:          day.Date,
				IsOpen:        false,
				ClosureReason: exc.Reason,
			}
		}

		breaks := exc.Breaks
		if breaks == nil {
			breaks = []domain.BreakPeriod{}
		}
		return domain.EffectiveDay{
			Date:      day.Date,
			IsOpen:    true,
			OpenTime:  exc.OpenTime,
			CloseTime: exc.CloseTime,
			Breaks:    breaks,
		}
	}

	return day
}

// ValidateDaySchedule проверяет инварианты недельного дня.
// Вызывается на этапе записи расписания, до сохранения.
func ValidateDaySchedule(day domain.DaySchedule) error {
	if !day.IsOpen {
		return nil
	}

	if day.OpenTime == nil || day.CloseTime == nil {
		return fmt.Errorf("%w: open day requires both open and close times", ErrScheduleInconsistency)
	}
	if !day.OpenTime.IsBefore(*day.CloseTime) {
		return fmt.Errorf("%w: open time %s must be before close time %s",
			ErrScheduleInconsistency, *day.OpenTime, *day.CloseTime)
	}

	return validateBreaks(day.Breaks, *day.OpenTime, *day.CloseTime)
}

// ValidateException проверяет инварианты исключения.
// Исключение задает либо оба времени, либо ни одного (полное закрытие).
func ValidateException(exc domain.ScheduleException) error {
	if exc.IsClosure() {
		if len(exc.Breaks) > 0 {
			return fmt.Errorf("%w: closed exception cannot carry breaks", ErrScheduleInconsistency)
		}
		return nil
	}

	if exc.OpenTime == nil || exc.CloseTime == nil {
		return fmt.Errorf("%w: exception must set both open and close times or neither",
			ErrScheduleInconsistency)
	}
	if !exc.OpenTime.IsBefore(*exc.CloseTime) {
		return fmt.Errorf("%w: exception open time %s must be before close time %s",
			ErrScheduleInconsistency, *exc.OpenTime, *exc.CloseTime)
	}

	return validateBreaks(exc.Breaks, *exc.OpenTime, *exc.CloseTime)
}

// ValidateHoliday проверяет корректность праздника
func ValidateHoliday(holiday domain.Holiday) error {
	switch holiday.Recurrence {
	case domain.RecurrenceNone, domain.RecurrenceYearly, domain.RecurrenceMonthly:
	default:
		return fmt.Errorf("%w: unknown holiday recurrence %q", ErrScheduleInconsistency, holiday.Recurrence)
	}
	if holiday.Date.IsZero() {
		return fmt.Errorf("%w: holiday requires a date", ErrScheduleInconsistency)
	}
	return nil
}

// validateBreaks проверяет, что перерывы отсортированы, не пересекаются
// и не выходят за границы open/close.
func validateBreaks(breaks []domain.BreakPeriod, open, close types.TimeString) error {
	for i, brk := range breaks {
		if !brk.Start.IsBefore(brk.End) {
			return fmt.Errorf("%w: break %q start %s must be before end %s",
				ErrScheduleInconsistency, brk.Label, brk.Start, brk.End)
		}
		if brk.Start.IsBefore(open) || brk.End.IsAfter(close) {
			return fmt.Errorf("%w: break %q crosses the open/close boundary",
				ErrScheduleInconsistency, brk.Label)
		}
		if i > 0 && breaks[i-1].End.IsAfter(brk.Start) {
			return fmt.Errorf("%w: breaks must be sorted and non-overlapping",
				ErrScheduleInconsistency)
		}
	}
	return nil
}
