package holds

import "errors"

var (
	// ErrAlreadyHeld возвращается, когда интервал пересекается с активным холдом
	ErrAlreadyHeld = errors.New("holds: slot is already held")

	// ErrAlreadyBooked возвращается, когда интервал пересекается с активным бронированием
	ErrAlreadyBooked = errors.New("holds: slot is already booked")

	// ErrOutsideSchedule возвращается, когда интервал вне рабочих часов провайдера
	ErrOutsideSchedule = errors.New("holds: slot is outside the provider schedule")

	// ErrHoldNotFound возвращается, когда холд не найден
	ErrHoldNotFound = errors.New("holds: hold not found")

	// ErrHoldNotActive возвращается при попытке использовать неактивный холд
	ErrHoldNotActive = errors.New("holds: hold is not active")

	// ErrHoldExpired возвращается при попытке потребить истекший холд
	ErrHoldExpired = errors.New("holds: hold has expired")

	// ErrNotHoldOwner возвращается при попытке снять чужой холд
	ErrNotHoldOwner = errors.New("holds: hold belongs to another user")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("holds: invalid input data")

	// ErrInternal возвращается при внутренних ошибках арбитра
	ErrInternal = errors.New("holds: internal error")
)
