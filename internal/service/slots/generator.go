package slots

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/pkg/types"
)

// Generator генерирует кандидатов слотов для разрешенного дня.
// Чистый и безопасный для конкурентных вызовов: результат - снимок,
// который может устареть, как только другой запрос выиграет холд.
type Generator struct{}

// NewGenerator создает генератор слотов
func NewGenerator() *Generator {
	return &Generator{}
}

// Generate возвращает упорядоченный конечный список времен начала слотов.
//
// Кандидаты идут с шагом granularityMinutes от открытия, пока
// start + serviceDuration <= close. Кандидат, пересекающий перерыв любой
// положительной длиной, отбрасывается целиком (не укорачивается).
// MinAdvanceBookingHours отсекает кандидатов раньше now + minHours,
// MaxAdvanceBookingDays - даты дальше now.Date + maxDays.
// Для закрытого дня список пуст.
func (g *Generator) Generate(
	day domain.EffectiveDay,
	serviceDurationMinutes int,
	granularityMinutes int,
	now time.Time,
	policy domain.BookingPolicy,
) ([]types.TimeString, error) {
	if serviceDurationMinutes <= 0 {
		return nil, fmt.Errorf("slots: service duration must be positive, got %d", serviceDurationMinutes)
	}
	if granularityMinutes <= 0 {
		return nil, fmt.Errorf("slots: granularity must be positive, got %d", granularityMinutes)
	}

	if !day.IsOpen || day.OpenTime == nil || day.CloseTime == nil {
		return []types.TimeString{}, nil
	}

	// Дата за пределами окна максимального заблаговременного бронирования
	if policy.MaxAdvanceBookingDays > 0 {
		maxDate := domain.DateOnly(now).AddDate(0, 0, policy.MaxAdvanceBookingDays)
		if domain.DateOnly(day.Date).After(maxDate) {
			return []types.TimeString{}, nil
		}
	}

	// Минимально допустимый момент начала слота
	minStartAt := now.Add(time.Duration(policy.MinAdvanceBookingHours) * time.Hour)

	openTime := *day.OpenTime
	closeTime := *day.CloseTime

	candidates := make([]types.TimeString, 0)
	current := openTime

	for current.IsBefore(closeTime) {
		slotEnd, err := current.AddMinutes(serviceDurationMinutes)
		if err != nil {
			// Слот вышел за пределы суток - дальше кандидатов нет
			break
		}
		if slotEnd.IsAfter(closeTime) {
			break
		}

		if !intersectsBreak(current, slotEnd, day.Breaks) {
			startAt, err := current.OnDate(day.Date)
			if err != nil {
				return nil, fmt.Errorf("slots: invalid candidate start %s: %v", current, err)
			}
			if !startAt.Before(minStartAt) {
				candidates = append(candidates, current)
			}
		}

		next, err := current.AddMinutes(granularityMinutes)
		if err != nil {
			break
		}
		current = next
	}

	return candidates, nil
}

// intersectsBreak проверяет пересечение слота с любым перерывом.
// Полуоткрытые интервалы: слот, граничащий с перерывом, не пересекается.
func intersectsBreak(start, end types.TimeString, breaks []domain.BreakPeriod) bool {
	for _, brk := range breaks {
		if domain.IntervalsOverlap(start, end, brk.Start, brk.End) {
			return true
		}
	}
	return false
}
