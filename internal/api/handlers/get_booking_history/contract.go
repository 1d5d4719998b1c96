package get_booking_history

import (
	"context"

	"github.com/m04kA/SMC-SchedulingService/internal/service/lifecycle/models"
)

// BookingService сервис жизненного цикла бронирований
type BookingService interface {
	GetHistory(ctx context.Context, bookingID int64, userID int64) ([]models.HistoryEntryResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
