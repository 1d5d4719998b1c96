package reschedule_booking

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("booking not found")

	// ErrAccessDenied возвращается, когда у пользователя нет прав доступа
	ErrAccessDenied = errors.New("access denied")

	// ErrStaffNotFound возвращается, когда целевой сотрудник не найден
	ErrStaffNotFound = errors.New("staff member not found")

	// ErrInvalidTransition возвращается, когда бронирование в терминальном статусе
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrReschedulingDisabled возвращается, когда политика запрещает перенос
	ErrReschedulingDisabled = errors.New("rescheduling is not allowed by policy")

	// ErrRescheduleWindowClosed возвращается, когда окно переноса закрыто
	ErrRescheduleWindowClosed = errors.New("reschedule window is closed")

	// ErrSlotUnavailable возвращается, когда целевой слот занят
	ErrSlotUnavailable = errors.New("target slot is unavailable")

	// ErrConflict возвращается при конкурентном изменении бронирования
	ErrConflict = errors.New("booking was modified concurrently")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("usecase: internal error")
)
