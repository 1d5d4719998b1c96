package lifecycle

import (
	"fmt"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

// transitions таблица допустимых переходов статусов.
// Терминальные статусы (completed, cancelled, no_show, rescheduled)
// переходов не имеют: из них выйти нельзя.
var transitions = map[domain.BookingStatus][]domain.BookingStatus{
	domain.StatusRequested: {
		domain.StatusConfirmed,
		domain.StatusCancelled,
		domain.StatusRescheduled,
	},
	domain.StatusConfirmed: {
		domain.StatusCompleted,
		domain.StatusCancelled,
		domain.StatusNoShow,
		domain.StatusRescheduled,
	},
}

// CanTransition проверяет допустимость перехода from -> to
func CanTransition(from, to domain.BookingStatus) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// checkTransition возвращает типизированную ошибку для недопустимого перехода
func checkTransition(from, to domain.BookingStatus) error {
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}
