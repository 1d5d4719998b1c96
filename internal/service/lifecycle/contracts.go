package lifecycle

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/events"
	"github.com/m04kA/SMC-SchedulingService/internal/integrations/providerservice"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	GetByCustomerID(ctx context.Context, customerID int64, status *domain.BookingStatus) ([]*domain.Booking, error)
	GetByProviderWithFilter(ctx context.Context, filter domain.ProviderBookingsFilter) ([]*domain.Booking, error)
	UpdateStatus(ctx context.Context, id int64, fromVersion int64, update domain.BookingStatusUpdate) error
	AddHistoryEntry(ctx context.Context, bookingID int64, status domain.BookingStatus, description string) error
	GetHistory(ctx context.Context, bookingID int64) ([]*domain.BookingHistoryEntry, error)
}

// HoldConsumer потребляет холд при создании бронирования.
// Get читает холд для проверок до потребления, Reinstate возвращает
// потребленный холд в active, если запись бронирования не удалась.
type HoldConsumer interface {
	Get(ctx context.Context, holdID string) (*domain.SlotHold, error)
	Consume(ctx context.Context, holdID string) (*domain.SlotHold, error)
	Reinstate(ctx context.Context, holdID string) error
}

// CatalogClient клиент каталога провайдеров
type CatalogClient interface {
	GetProvider(ctx context.Context, providerID int64) (*providerservice.Provider, error)
	GetService(ctx context.Context, providerID, serviceID int64) (*providerservice.Service, error)
}

// ScheduleResolver разрешает эффективный день провайдера
// (для проверки целевого слота переноса)
type ScheduleResolver interface {
	EffectiveDay(ctx context.Context, providerID int64, date time.Time) (domain.EffectiveDay, error)
}

// HoldReader активные холды провайдера на дату
type HoldReader interface {
	ListByProviderDate(ctx context.Context, providerID int64, date time.Time) ([]*domain.SlotHold, error)
}

// EventPublisher публикует доменные события жизненного цикла
type EventPublisher interface {
	Publish(event events.Event)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
	DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
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

// MetricsCollector счетчики переходов статусов (опционально)
type MetricsCollector interface {
	IncBookingTransition(status string)
}

// NoopMetrics заглушка метрик, когда сбор выключен
type NoopMetrics struct{}

func (NoopMetrics) IncBookingTransition(string) {}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
