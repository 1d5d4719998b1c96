package get_available_slots

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/service/availability"
)

// UseCase use case для получения сетки слотов на дату
type UseCase struct {
	availabilityService AvailabilityService
	timeProvider        TimeProvider
	logger              Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	availabilityService AvailabilityService,
	logger Logger,
) *UseCase {
	return &UseCase{
		availabilityService: availabilityService,
		timeProvider:        &RealTimeProvider{},
		logger:              logger,
	}
}

// Execute выполняет use case получения доступных слотов
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetAvailableSlots: provider=%d, service=%d, staff=%v, date=%s",
		req.ProviderID, req.ServiceID, req.StaffID, req.Date.Format(domain.DateFormat))

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetAvailableSlots: validation failed: %v", err)
		return nil, err
	}

	// 2. Дата в прошлом не проецируется
	if err := validateDateNotInPast(req.Date, uc.timeProvider.Now()); err != nil {
		uc.logger.Warn("GetAvailableSlots: date %s is in the past", req.Date.Format(domain.DateFormat))
		return nil, err
	}

	// 3. Проекция доступности
	slots, err := uc.availabilityService.Project(ctx, &availability.ProjectRequest{
		ProviderID: req.ProviderID,
		ServiceID:  req.ServiceID,
		StaffID:    req.StaffID,
		Date:       req.Date,
	})
	if err != nil {
		switch {
		case errors.Is(err, availability.ErrProviderNotFound):
			return nil, ErrProviderNotFound
		case errors.Is(err, availability.ErrServiceNotFound):
			return nil, ErrServiceNotFound
		case errors.Is(err, availability.ErrStaffNotFound):
			return nil, ErrStaffNotFound
		case errors.Is(err, availability.ErrInvalidInput):
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		uc.logger.Error("GetAvailableSlots: projection failed: %v", err)
		return nil, fmt.Errorf("%w: projection failed: %v", ErrInternal, err)
	}

	// 4. Конвертируем в response
	respSlots := make([]Slot, 0, len(slots))
	for _, slot := range slots {
		respSlots = append(respSlots, Slot{
			StartTime:       slot.StartTime,
			DurationMinutes: slot.DurationMinutes,
			IsAvailable:     slot.IsAvailable,
		})
	}

	uc.logger.Info("GetAvailableSlots: %d slots for provider=%d, service=%d, date=%s",
		len(respSlots), req.ProviderID, req.ServiceID, req.Date.Format(domain.DateFormat))

	return &Response{
		Date:       req.Date,
		ProviderID: req.ProviderID,
		ServiceID:  req.ServiceID,
		StaffID:    req.StaffID,
		Slots:      respSlots,
	}, nil
}
