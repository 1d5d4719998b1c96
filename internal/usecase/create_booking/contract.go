package create_booking

import (
	"context"

	"github.com/m04kA/SMC-SchedulingService/internal/service/lifecycle/models"
)

// LifecycleService сервис жизненного цикла бронирований
type LifecycleService interface {
	CreateFromHold(ctx context.Context, req *models.CreateFromHoldRequest) (*models.BookingResponse, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
