package availability

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/integrations/providerservice"
	"github.com/m04kA/SMC-SchedulingService/pkg/types"
)

// ScheduleRepository доступ к расписанию провайдера
type ScheduleRepository interface {
	GetProviderSchedule(ctx context.Context, providerID int64) (*domain.ProviderSchedule, error)
}

// BookingRepository доступ к бронированиям
type BookingRepository interface {
	GetByProviderWithFilter(ctx context.Context, filter domain.ProviderBookingsFilter) ([]*domain.Booking, error)
}

// HoldReader доступ к активным холдам (владелец холдов - арбитр)
type HoldReader interface {
	ListByProviderDate(ctx context.Context, providerID int64, date time.Time) ([]*domain.SlotHold, error)
}

// CatalogClient клиент каталога провайдеров
type CatalogClient interface {
	GetProvider(ctx context.Context, providerID int64) (*providerservice.Provider, error)
	GetService(ctx context.Context, providerID, serviceID int64) (*providerservice.Service, error)
}

// Calendar разрешает эффективный день из слоев расписания
type Calendar interface {
	Resolve(schedule domain.ProviderSchedule, date time.Time) domain.EffectiveDay
}

// SlotGenerator генерирует кандидатов слотов
type SlotGenerator interface {
	Generate(day domain.EffectiveDay, serviceDurationMinutes, granularityMinutes int,
		now time.Time, policy domain.BookingPolicy) ([]types.TimeString, error)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}

// MetricsCollector счетчики проекции (опционально)
type MetricsCollector interface {
	AddSlotsGenerated(n int)
}

// NoopMetrics заглушка метрик, когда сбор выключен
type NoopMetrics struct{}

func (NoopMetrics) AddSlotsGenerated(int) {}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
