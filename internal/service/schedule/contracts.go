package schedule

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/integrations/providerservice"
)

// ScheduleRepository интерфейс репозитория расписаний
type ScheduleRepository interface {
	GetProviderSchedule(ctx context.Context, providerID int64) (*domain.ProviderSchedule, error)
	ReplaceSchedule(ctx context.Context, schedule *domain.ProviderSchedule) error
}

// CatalogClient клиент каталога провайдеров
type CatalogClient interface {
	GetProvider(ctx context.Context, providerID int64) (*providerservice.Provider, error)
}

// Calendar разрешает эффективный день из слоев расписания
type Calendar interface {
	Resolve(schedule domain.ProviderSchedule, date time.Time) domain.EffectiveDay
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
	DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
