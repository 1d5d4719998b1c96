package get_available_dates

import "time"

// Request модель запроса доступности по диапазону дат
type Request struct {
	ProviderID int64     // ID провайдера
	ServiceID  int64     // ID услуги
	StaffID    *int64    // ID сотрудника (nil = хотя бы один свободный)
	FromDate   time.Time // Начало диапазона (включительно)
	ToDate     time.Time // Конец диапазона (включительно)
}

// DateAvailability доступность одной даты
type DateAvailability struct {
	Date            string // "2026-03-15"
	HasAvailability bool   // Есть ли хотя бы один свободный слот
}

// Response модель ответа по диапазону дат
type Response struct {
	ProviderID int64
	ServiceID  int64
	Dates      []DateAvailability
}
