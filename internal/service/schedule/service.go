package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	providerClient "github.com/m04kA/SMC-SchedulingService/internal/integrations/providerservice"
	"github.com/m04kA/SMC-SchedulingService/internal/service/calendar"
	"github.com/m04kA/SMC-SchedulingService/internal/service/schedule/models"
)

// Service сервис расписаний провайдеров.
// Все инварианты расписания (open < close, перерывы внутри часов, согласованные
// исключения) проверяются здесь на этапе записи: читающие пути (календарь,
// генератор слотов) этим инвариантам доверяют.
type Service struct {
	scheduleRepo ScheduleRepository
	catalog      CatalogClient
	calendar     Calendar
	txManager    TransactionManager
	logger       Logger
}

// NewService создает сервис расписаний
func NewService(
	scheduleRepo ScheduleRepository,
	catalog CatalogClient,
	calendar Calendar,
	txManager TransactionManager,
	logger Logger,
) *Service {
	return &Service{
		scheduleRepo: scheduleRepo,
		catalog:      catalog,
		calendar:     calendar,
		txManager:    txManager,
		logger:       logger,
	}
}

// GetProviderSchedule получает полное расписание провайдера
// Публичный метод - доступен всем
func (s *Service) GetProviderSchedule(ctx context.Context, providerID int64) (*models.ScheduleResponse, error) {
	s.logger.Info("GetProviderSchedule: fetching schedule for provider=%d", providerID)

	schedule, err := s.scheduleRepo.GetProviderSchedule(ctx, providerID)
	if err != nil {
		s.logger.Error("GetProviderSchedule: repository error for provider=%d: %v", providerID, err)
		return nil, fmt.Errorf("%w: GetProviderSchedule - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainSchedule(schedule), nil
}

// UpdateProviderSchedule полностью заменяет расписание провайдера.
// Доступно только менеджерам провайдера. Расписание валидируется целиком
// до записи: ни одна некорректная строка не попадает в хранилище.
func (s *Service) UpdateProviderSchedule(ctx context.Context, req *models.UpdateScheduleRequest) (*models.ScheduleResponse, error) {
	s.logger.Info("UpdateProviderSchedule: updating schedule for provider=%d by user=%d",
		req.ProviderID, req.UserID)

	provider, err := s.catalog.GetProvider(ctx, req.ProviderID)
	if err != nil {
		if errors.Is(err, providerClient.ErrProviderNotFound) {
			s.logger.Warn("UpdateProviderSchedule: provider id=%d not found", req.ProviderID)
			return nil, ErrProviderNotFound
		}
		s.logger.Error("UpdateProviderSchedule: failed to get provider id=%d: %v", req.ProviderID, err)
		return nil, fmt.Errorf("%w: failed to get provider: %v", ErrInternal, err)
	}

	if !provider.IsManager(req.UserID) {
		s.logger.Warn("UpdateProviderSchedule: user=%d is not a manager of provider=%d",
			req.UserID, req.ProviderID)
		return nil, ErrAccessDenied
	}

	schedule, err := req.ToDomainSchedule()
	if err != nil {
		s.logger.Warn("UpdateProviderSchedule: invalid schedule for provider=%d: %v", req.ProviderID, err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := validateSchedule(schedule); err != nil {
		s.logger.Warn("UpdateProviderSchedule: schedule validation failed for provider=%d: %v",
			req.ProviderID, err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	// Замена расписания идет в транзакции: читатели никогда не видят
	// полупустое расписание между delete и insert
	err = s.txManager.Do(ctx, func(txCtx context.Context) error {
		return s.scheduleRepo.ReplaceSchedule(txCtx, schedule)
	})
	if err != nil {
		s.logger.Error("UpdateProviderSchedule: failed to replace schedule for provider=%d: %v",
			req.ProviderID, err)
		return nil, fmt.Errorf("%w: UpdateProviderSchedule - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("UpdateProviderSchedule: schedule replaced for provider=%d (%d weekly, %d holidays, %d exceptions)",
		req.ProviderID, len(schedule.Weekly), len(schedule.Holidays), len(schedule.Exceptions))

	updated, err := s.scheduleRepo.GetProviderSchedule(ctx, req.ProviderID)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to reload schedule: %v", ErrInternal, err)
	}
	return models.FromDomainSchedule(updated), nil
}

// EffectiveDay разрешает состояние дня провайдера на дату.
// Используется арбитром холдов и проверкой целевого слота переноса.
func (s *Service) EffectiveDay(ctx context.Context, providerID int64, date time.Time) (domain.EffectiveDay, error) {
	schedule, err := s.scheduleRepo.GetProviderSchedule(ctx, providerID)
	if err != nil {
		return domain.EffectiveDay{}, fmt.Errorf("%w: EffectiveDay - repository error: %v", ErrInternal, err)
	}
	return s.calendar.Resolve(*schedule, date), nil
}

// validateSchedule прогоняет все слои расписания через календарные валидаторы.
// Дубликаты дней недели и исключений на одну дату тоже отклоняются.
func validateSchedule(schedule *domain.ProviderSchedule) error {
	seenWeekdays := make(map[time.Weekday]bool)
	for _, day := range schedule.Weekly {
		if day.Weekday < time.Sunday || day.Weekday > time.Saturday {
			return fmt.Errorf("invalid weekday %d", day.Weekday)
		}
		if seenWeekdays[day.Weekday] {
			return fmt.Errorf("duplicate weekday %s", day.Weekday)
		}
		seenWeekdays[day.Weekday] = true

		if err := calendar.ValidateDaySchedule(day); err != nil {
			return err
		}
	}

	for _, holiday := range schedule.Holidays {
		if err := calendar.ValidateHoliday(holiday); err != nil {
			return err
		}
	}

	seenDates := make(map[string]bool)
	for _, exception := range schedule.Exceptions {
		key := exception.Date.Format(domain.DateFormat)
		if seenDates[key] {
			return fmt.Errorf("duplicate exception for date %s", key)
		}
		seenDates[key] = true

		if err := calendar.ValidateException(exception); err != nil {
			return err
		}
	}

	return nil
}
