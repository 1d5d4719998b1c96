package models

import (
	"errors"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/pkg/types"
)

var (
	// ErrInvalidDate возвращается при некорректной дате
	ErrInvalidDate = errors.New("invalid date")

	// ErrInvalidTime возвращается при некорректном времени
	ErrInvalidTime = errors.New("invalid time")
)

// Request модели

// BreakDTO перерыв внутри рабочего дня
type BreakDTO struct {
	Start string `json:"start"` // "13:00"
	End   string `json:"end"`   // "14:00"
	Label string `json:"label,omitempty"`
}

// DayScheduleDTO день недельной сетки
type DayScheduleDTO struct {
	Weekday   int        `json:"weekday"` // 0 = воскресенье ... 6 = суббота
	IsOpen    bool       `json:"isOpen"`
	OpenTime  *string    `json:"openTime,omitempty"`  // "09:00"
	CloseTime *string    `json:"closeTime,omitempty"` // "18:00"
	Breaks    []BreakDTO `json:"breaks,omitempty"`
}

// HolidayDTO праздник (закрытие без часов работы)
type HolidayDTO struct {
	Date       string `json:"date"` // "2026-01-01"
	Recurrence string `json:"recurrence,omitempty"`
	Reason     string `json:"reason"`
}

// ExceptionDTO точечное исключение на дату.
// Нулевые open/close означают полное закрытие на дату.
type ExceptionDTO struct {
	Date      string     `json:"date"`
	OpenTime  *string    `json:"openTime,omitempty"`
	CloseTime *string    `json:"closeTime,omitempty"`
	Breaks    []BreakDTO `json:"breaks,omitempty"`
	Reason    string     `json:"reason,omitempty"`
}

// UpdateScheduleRequest запрос на полную замену расписания провайдера
type UpdateScheduleRequest struct {
	UserID     int64            `json:"userId"`
	ProviderID int64            `json:"providerId"`
	Weekly     []DayScheduleDTO `json:"weekly"`
	Holidays   []HolidayDTO     `json:"holidays,omitempty"`
	Exceptions []ExceptionDTO   `json:"exceptions,omitempty"`
}

// ToDomainSchedule конвертирует request в доменное расписание
func (r *UpdateScheduleRequest) ToDomainSchedule() (*domain.ProviderSchedule, error) {
	schedule := &domain.ProviderSchedule{ProviderID: r.ProviderID}

	for _, dto := range r.Weekly {
		day := domain.DaySchedule{
			Weekday: time.Weekday(dto.Weekday),
			IsOpen:  dto.IsOpen,
		}

		var err error
		if day.OpenTime, err = toDomainTime(dto.OpenTime); err != nil {
			return nil, err
		}
		if day.CloseTime, err = toDomainTime(dto.CloseTime); err != nil {
			return nil, err
		}
		if day.Breaks, err = toDomainBreaks(dto.Breaks); err != nil {
			return nil, err
		}

		schedule.Weekly = append(schedule.Weekly, day)
	}

	for _, dto := range r.Holidays {
		date, err := parseDate(dto.Date)
		if err != nil {
			return nil, err
		}

		recurrence := domain.HolidayRecurrence(dto.Recurrence)
		if dto.Recurrence == "" {
			recurrence = domain.RecurrenceNone
		}

		schedule.Holidays = append(schedule.Holidays, domain.Holiday{
			ProviderID: r.ProviderID,
			Date:       date,
			Recurrence: recurrence,
			Reason:     dto.Reason,
		})
	}

	for _, dto := range r.Exceptions {
		date, err := parseDate(dto.Date)
		if err != nil {
			return nil, err
		}

		exception := domain.ScheduleException{
			ProviderID: r.ProviderID,
			Date:       date,
			Reason:     dto.Reason,
		}
		if exception.OpenTime, err = toDomainTime(dto.OpenTime); err != nil {
			return nil, err
		}
		if exception.CloseTime, err = toDomainTime(dto.CloseTime); err != nil {
			return nil, err
		}
		if exception.Breaks, err = toDomainBreaks(dto.Breaks); err != nil {
			return nil, err
		}

		schedule.Exceptions = append(schedule.Exceptions, exception)
	}

	return schedule, nil
}

// Response модели

// ScheduleResponse полное расписание провайдера
type ScheduleResponse struct {
	ProviderID int64            `json:"providerId"`
	Weekly     []DayScheduleDTO `json:"weekly"`
	Holidays   []HolidayDTO     `json:"holidays"`
	Exceptions []ExceptionDTO   `json:"exceptions"`
}

// EffectiveDayResponse разрешенное состояние дня на дату
type EffectiveDayResponse struct {
	Date          string     `json:"date"`
	IsOpen        bool       `json:"isOpen"`
	OpenTime      *string    `json:"openTime,omitempty"`
	CloseTime     *string    `json:"closeTime,omitempty"`
	Breaks        []BreakDTO `json:"breaks,omitempty"`
	ClosureReason string     `json:"closureReason,omitempty"`
}

// Методы конвертации

// FromDomainSchedule конвертирует доменное расписание в DTO
func FromDomainSchedule(s *domain.ProviderSchedule) *ScheduleResponse {
	if s == nil {
		return nil
	}

	resp := &ScheduleResponse{
		ProviderID: s.ProviderID,
		Weekly:     make([]DayScheduleDTO, 0, len(s.Weekly)),
		Holidays:   make([]HolidayDTO, 0, len(s.Holidays)),
		Exceptions: make([]ExceptionDTO, 0, len(s.Exceptions)),
	}

	for _, day := range s.Weekly {
		resp.Weekly = append(resp.Weekly, DayScheduleDTO{
			Weekday:   int(day.Weekday),
			IsOpen:    day.IsOpen,
			OpenTime:  fromDomainTime(day.OpenTime),
			CloseTime: fromDomainTime(day.CloseTime),
			Breaks:    fromDomainBreaks(day.Breaks),
		})
	}

	for _, holiday := range s.Holidays {
		resp.Holidays = append(resp.Holidays, HolidayDTO{
			Date:       holiday.Date.Format(domain.DateFormat),
			Recurrence: string(holiday.Recurrence),
			Reason:     holiday.Reason,
		})
	}

	for _, exception := range s.Exceptions {
		resp.Exceptions = append(resp.Exceptions, ExceptionDTO{
			Date:      exception.Date.Format(domain.DateFormat),
			OpenTime:  fromDomainTime(exception.OpenTime),
			CloseTime: fromDomainTime(exception.CloseTime),
			Breaks:    fromDomainBreaks(exception.Breaks),
			Reason:    exception.Reason,
		})
	}

	return resp
}

// FromDomainEffectiveDay конвертирует эффективный день в DTO
func FromDomainEffectiveDay(day domain.EffectiveDay) *EffectiveDayResponse {
	return &EffectiveDayResponse{
		Date:          day.Date.Format(domain.DateFormat),
		IsOpen:        day.IsOpen,
		OpenTime:      fromDomainTime(day.OpenTime),
		CloseTime:     fromDomainTime(day.CloseTime),
		Breaks:        fromDomainBreaks(day.Breaks),
		ClosureReason: day.ClosureReason,
	}
}

func parseDate(value string) (time.Time, error) {
	date, err := time.Parse(domain.DateFormat, value)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return date, nil
}

func toDomainTime(value *string) (*types.TimeString, error) {
	if value == nil {
		return nil, nil
	}
	ts, err := types.NewTimeStringFromString(*value)
	if err != nil {
		return nil, ErrInvalidTime
	}
	return &ts, nil
}

func fromDomainTime(ts *types.TimeString) *string {
	if ts == nil {
		return nil
	}
	value := ts.String()
	return &value
}

func toDomainBreaks(dtos []BreakDTO) ([]domain.BreakPeriod, error) {
	breaks := make([]domain.BreakPeriod, 0, len(dtos))
	for _, dto := range dtos {
		start, err := types.NewTimeStringFromString(dto.Start)
		if err != nil {
			return nil, ErrInvalidTime
		}
		end, err := types.NewTimeStringFromString(dto.End)
		if err != nil {
			return nil, ErrInvalidTime
		}
		breaks = append(breaks, domain.BreakPeriod{Start: start, End: end, Label: dto.Label})
	}
	return breaks, nil
}

func fromDomainBreaks(breaks []domain.BreakPeriod) []BreakDTO {
	dtos := make([]BreakDTO, 0, len(breaks))
	for _, brk := range breaks {
		dtos = append(dtos, BreakDTO{
			Start: brk.Start.String(),
			End:   brk.End.String(),
			Label: brk.Label,
		})
	}
	return dtos
}
