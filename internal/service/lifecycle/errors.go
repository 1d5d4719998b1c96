package lifecycle

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("booking not found")

	// ErrProviderNotFound возвращается, когда провайдер не найден
	ErrProviderNotFound = errors.New("provider not found")

	// ErrServiceNotFound возвращается, когда услуга не найдена
	ErrServiceNotFound = errors.New("service not found")

	// ErrStaffNotFound возвращается, когда сотрудник не найден или неактивен
	ErrStaffNotFound = errors.New("staff member not found")

	// ErrAccessDenied возвращается, когда у пользователя нет прав доступа
	ErrAccessDenied = errors.New("access denied")

	// ErrInvalidTransition возвращается при недопустимом переходе статуса
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrHoldNotUsable возвращается, когда холд истек, потреблен или снят
	ErrHoldNotUsable = errors.New("hold is not usable")

	// ErrBookingInPast возвращается при операции над бронированием,
	// время которого уже прошло
	ErrBookingInPast = errors.New("booking time is in the past")

	// ErrBookingNotStarted возвращается, когда операция требует,
	// чтобы время бронирования уже наступило
	ErrBookingNotStarted = errors.New("booking has not started yet")

	// ErrBookingNotFinished возвращается, когда операция требует,
	// чтобы время бронирования уже закончилось
	ErrBookingNotFinished = errors.New("booking has not finished yet")

	// ErrReschedulingDisabled возвращается, когда политика услуги
	// запрещает перенос
	ErrReschedulingDisabled = errors.New("rescheduling is not allowed by policy")

	// ErrRescheduleWindowClosed возвращается, когда до начала бронирования
	// осталось меньше окна переноса
	ErrRescheduleWindowClosed = errors.New("reschedule window is closed")

	// ErrSlotUnavailable возвращается, когда целевой слот переноса занят
	ErrSlotUnavailable = errors.New("target slot is unavailable")

	// ErrVersionConflict возвращается при конкурентном изменении бронирования
	ErrVersionConflict = errors.New("booking was modified concurrently")

	// ErrInvalidStatus возвращается при недопустимом значении статуса
	ErrInvalidStatus = errors.New("invalid booking status")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("lifecycle: internal error")
)
