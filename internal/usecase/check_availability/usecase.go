package check_availability

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/service/availability"
)

// UseCase use case точечной проверки доступности времени начала
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

// Execute выполняет точечную проверку доступности
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CheckAvailability: provider=%d, service=%d, staff=%v, date=%s, time=%s",
		req.ProviderID, req.ServiceID, req.StaffID, req.Date.Format(domain.DateFormat), req.StartTime)

	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CheckAvailability: validation failed: %v", err)
		return nil, err
	}

	if domain.DateOnly(req.Date).Before(domain.DateOnly(uc.timeProvider.Now())) {
		uc.logger.Warn("CheckAvailability: date %s is in the past", req.Date.Format(domain.DateFormat))
		return nil, ErrInvalidDate
	}

	result, err := uc.availabilityService.Check(ctx, &availability.CheckRequest{
		ProviderID: req.ProviderID,
		ServiceID:  req.ServiceID,
		StaffID:    req.StaffID,
		Date:       req.Date,
		StartTime:  req.StartTime,
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
		uc.logger.Error("CheckAvailability: check failed: %v", err)
		return nil, fmt.Errorf("%w: check failed: %v", ErrInternal, err)
	}

	uc.logger.Info("CheckAvailability: provider=%d, date=%s, time=%s -> available=%t",
		req.ProviderID, req.Date.Format(domain.DateFormat), req.StartTime, result.IsAvailable)

	return &Response{
		StartTime:   result.StartTime,
		IsAvailable: result.IsAvailable,
		Reason:      result.Reason,
	}, nil
}

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.ProviderID <= 0 {
		return fmt.Errorf("%w: providerID must be positive", ErrInvalidInput)
	}
	if req.ServiceID <= 0 {
		return fmt.Errorf("%w: serviceID must be positive", ErrInvalidInput)
	}
	if req.StaffID != nil && *req.StaffID <= 0 {
		return fmt.Errorf("%w: staffID must be positive", ErrInvalidInput)
	}
	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}
	if req.StartTime == "" {
		return fmt.Errorf("%w: startTime is required", ErrInvalidInput)
	}
	if _, err := req.StartTime.Minutes(); err != nil {
		return fmt.Errorf("%w: invalid startTime format", ErrInvalidInput)
	}
	return nil
}
