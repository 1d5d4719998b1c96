package holds

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

// HoldStore хранилище холдов. Арбитр - единственный владелец холдов:
// никакой другой компонент не пишет в это хранилище.
type HoldStore interface {
	Create(ctx context.Context, hold *domain.SlotHold) error
	GetByID(ctx context.Context, id string) (*domain.SlotHold, error)
	// ListByProviderDate возвращает холды провайдера на дату в состоянии active
	// (включая истекшие, но еще не вычищенные).
	ListByProviderDate(ctx context.Context, providerID int64, date time.Time) ([]*domain.SlotHold, error)
	// ListActive возвращает все холды в состоянии active (для фоновой вычистки)
	ListActive(ctx context.Context) ([]*domain.SlotHold, error)
	// UpdateState переводит холд из состояния from в to.
	// Возвращает ErrHoldNotFound, если холда нет, и ErrHoldNotActive,
	// если его текущее состояние не совпадает с from.
	UpdateState(ctx context.Context, id string, from, to domain.HoldState) error
}

// BookingReader доступ к бронированиям для проверки занятости интервала
type BookingReader interface {
	GetByProviderWithFilter(ctx context.Context, filter domain.ProviderBookingsFilter) ([]*domain.Booking, error)
}

// ScheduleResolver вычисляет эффективный день провайдера
type ScheduleResolver interface {
	EffectiveDay(ctx context.Context, providerID int64, date time.Time) (domain.EffectiveDay, error)
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

// MetricsCollector счетчики холдов (опционально)
type MetricsCollector interface {
	IncHoldAcquired()
	IncHoldRejected(reason string)
	AddHoldsReclaimed(n int)
}

// NoopMetrics заглушка метрик, когда сбор выключен
type NoopMetrics struct{}

func (NoopMetrics) IncHoldAcquired()       {}
func (NoopMetrics) IncHoldRejected(string) {}
func (NoopMetrics) AddHoldsReclaimed(int)  {}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
