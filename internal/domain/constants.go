package domain

// Default policy values
const (
	DefaultMinAdvanceBookingHours    = 1
	DefaultMaxAdvanceBookingDays     = 90
	DefaultCancellationWindowHours   = 24
	DefaultCancellationFeePercentage = 0.0
	DefaultRescheduleWindowHours     = 24
	DefaultGranularityMinutes        = 30
)

// Business validation constants
const (
	MinGranularityMinutes = 5
	MaxGranularityMinutes = 240
	MinServiceDuration    = 5
	MaxServiceDuration    = 480 // 8 hours

	// MaxDateRangeDays максимальная длина диапазона для запроса доступных дат
	MaxDateRangeDays = 30

	MaxCancellationReasonLength = 500
	MaxRescheduleReasonLength   = 500
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// OccupyingStatuses статусы бронирований, занимающих слоты.
// Используются при подсчете доступности.
var OccupyingStatuses = []BookingStatus{
	StatusRequested,
	StatusConfirmed,
}

// TerminalStatuses статусы, из которых нет переходов
var TerminalStatuses = []BookingStatus{
	StatusCompleted,
	StatusCancelled,
	StatusNoShow,
	StatusRescheduled,
}
