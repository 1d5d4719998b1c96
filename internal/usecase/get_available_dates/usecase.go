package get_available_dates

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/service/availability"
)

// UseCase use case обзора доступности по диапазону дат
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

// Execute выполняет use case обзора доступности по датам
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetAvailableDates: provider=%d, service=%d, staff=%v, range=%s..%s",
		req.ProviderID, req.ServiceID, req.StaffID,
		req.FromDate.Format(domain.DateFormat), req.ToDate.Format(domain.DateFormat))

	if err := uc.validateRequest(req); err != nil {
		uc.logger.Warn("GetAvailableDates: validation failed: %v", err)
		return nil, err
	}

	dates, err := uc.availabilityService.AvailableDates(ctx, &availability.DatesRequest{
		ProviderID: req.ProviderID,
		ServiceID:  req.ServiceID,
		StaffID:    req.StaffID,
		FromDate:   req.FromDate,
		ToDate:     req.ToDate,
	})
	if err != nil {
		switch {
		case errors.Is(err, availability.ErrProviderNotFound):
			return nil, ErrProviderNotFound
		case errors.Is(err, availability.ErrServiceNotFound):
			return nil, ErrServiceNotFound
		case errors.Is(err, availability.ErrStaffNotFound):
			return nil, ErrStaffNotFound
		}
		uc.logger.Error("GetAvailableDates: projection failed: %v", err)
		return nil, fmt.Errorf("%w: projection failed: %v", ErrInternal, err)
	}

	respDates := make([]DateAvailability, 0, len(dates))
	for _, d := range dates {
		respDates = append(respDates, DateAvailability{
			Date:            d.Date,
			HasAvailability: d.HasAvailability,
		})
	}

	uc.logger.Info("GetAvailableDates: %d dates for provider=%d, service=%d",
		len(respDates), req.ProviderID, req.ServiceID)

	return &Response{
		ProviderID: req.ProviderID,
		ServiceID:  req.ServiceID,
		Dates:      respDates,
	}, nil
}

// validateRequest валидирует входные данные запроса.
// Диапазон ограничен MaxDateRangeDays, прошедшие даты отклоняются целиком.
func (uc *UseCase) validateRequest(req *Request) error {
	if req.ProviderID <= 0 {
		return fmt.Errorf("%w: providerID must be positive", ErrInvalidInput)
	}
	if req.ServiceID <= 0 {
		return fmt.Errorf("%w: serviceID must be positive", ErrInvalidInput)
	}
	if req.StaffID != nil && *req.StaffID <= 0 {
		return fmt.Errorf("%w: staffID must be positive", ErrInvalidInput)
	}
	if req.FromDate.IsZero() || req.ToDate.IsZero() {
		return fmt.Errorf("%w: fromDate and toDate are required", ErrInvalidInput)
	}

	from := domain.DateOnly(req.FromDate)
	to := domain.DateOnly(req.ToDate)

	if to.Before(from) {
		return fmt.Errorf("%w: toDate is before fromDate", ErrInvalidDateRange)
	}
	if from.Before(domain.DateOnly(uc.timeProvider.Now())) {
		return fmt.Errorf("%w: fromDate is in the past", ErrInvalidDateRange)
	}
	if int(to.Sub(from).Hours()/24)+1 > domain.MaxDateRangeDays {
		return fmt.Errorf("%w: at most %d days per request", ErrDateRangeTooWide, domain.MaxDateRangeDays)
	}

	return nil
}
