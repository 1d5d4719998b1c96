package reschedule_booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/service/lifecycle"
	"github.com/m04kA/SMC-SchedulingService/internal/service/lifecycle/models"
)

// UseCase use case переноса бронирования на новое время
type UseCase struct {
	lifecycleService LifecycleService
	logger           Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	lifecycleService LifecycleService,
	logger Logger,
) *UseCase {
	return &UseCase{
		lifecycleService: lifecycleService,
		logger:           logger,
	}
}

// Execute выполняет use case переноса бронирования
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("RescheduleBooking: booking=%d, user=%d, newDate=%s, newTime=%s",
		req.BookingID, req.UserID, req.NewDate.Format(domain.DateFormat), req.NewStartTime)

	if err := validateRequest(req); err != nil {
		uc.logger.Warn("RescheduleBooking: validation failed: %v", err)
		return nil, err
	}

	booking, err := uc.lifecycleService.Reschedule(ctx, req.BookingID, &models.RescheduleBookingRequest{
		UserID:       req.UserID,
		NewDate:      req.NewDate,
		NewStartTime: req.NewStartTime,
		NewStaffID:   req.NewStaffID,
	})
	if err != nil {
		switch {
		case errors.Is(err, lifecycle.ErrBookingNotFound):
			return nil, ErrBookingNotFound
		case errors.Is(err, lifecycle.ErrAccessDenied):
			return nil, ErrAccessDenied
		case errors.Is(err, lifecycle.ErrStaffNotFound):
			return nil, ErrStaffNotFound
		case errors.Is(err, lifecycle.ErrInvalidTransition):
			return nil, fmt.Errorf("%w: %v", ErrInvalidTransition, err)
		case errors.Is(err, lifecycle.ErrReschedulingDisabled):
			return nil, ErrReschedulingDisabled
		case errors.Is(err, lifecycle.ErrRescheduleWindowClosed):
			return nil, ErrRescheduleWindowClosed
		case errors.Is(err, lifecycle.ErrSlotUnavailable):
			return nil, ErrSlotUnavailable
		case errors.Is(err, lifecycle.ErrVersionConflict):
			return nil, ErrConflict
		case errors.Is(err, lifecycle.ErrInvalidInput):
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		uc.logger.Error("RescheduleBooking: failed for booking=%d: %v", req.BookingID, err)
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	uc.logger.Info("RescheduleBooking: booking=%d rescheduled to new booking=%d", req.BookingID, booking.ID)
	return booking, nil
}

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.UserID <= 0 {
		return fmt.Errorf("%w: userID must be positive", ErrInvalidInput)
	}
	if req.BookingID <= 0 {
		return fmt.Errorf("%w: bookingID must be positive", ErrInvalidInput)
	}
	if req.NewDate.IsZero() {
		return fmt.Errorf("%w: newDate is required", ErrInvalidInput)
	}
	if req.NewStartTime == "" {
		return fmt.Errorf("%w: newStartTime is required", ErrInvalidInput)
	}
	if _, err := req.NewStartTime.Minutes(); err != nil {
		return fmt.Errorf("%w: invalid newStartTime format", ErrInvalidInput)
	}
	if req.NewStaffID != nil && *req.NewStaffID <= 0 {
		return fmt.Errorf("%w: newStaffID must be positive", ErrInvalidInput)
	}
	return nil
}
