package create_booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-SchedulingService/internal/service/lifecycle"
	"github.com/m04kA/SMC-SchedulingService/internal/service/lifecycle/models"
)

// UseCase use case создания бронирования из холда.
// Вся атомарность (CAS-потребление холда, сериализуемая транзакция записи)
// живет в lifecycle-сервисе; use case валидирует вход и нормализует ошибки.
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

// Execute выполняет use case создания бронирования
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateBooking: user=%d, hold=%s, service=%d", req.UserID, req.HoldID, req.ServiceID)

	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateBooking: validation failed: %v", err)
		return nil, err
	}

	booking, err := uc.lifecycleService.CreateFromHold(ctx, &models.CreateFromHoldRequest{
		HoldID:     req.HoldID,
		CustomerID: req.UserID,
		ServiceID:  req.ServiceID,
	})
	if err != nil {
		switch {
		case errors.Is(err, lifecycle.ErrHoldNotUsable):
			uc.logger.Warn("CreateBooking: hold=%s not usable: %v", req.HoldID, err)
			return nil, fmt.Errorf("%w: %v", ErrHoldNotUsable, err)
		case errors.Is(err, lifecycle.ErrServiceNotFound):
			return nil, ErrServiceNotFound
		case errors.Is(err, lifecycle.ErrAccessDenied):
			return nil, ErrAccessDenied
		case errors.Is(err, lifecycle.ErrInvalidInput):
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		uc.logger.Error("CreateBooking: failed: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	uc.logger.Info("CreateBooking: successfully created booking id=%d from hold=%s", booking.ID, req.HoldID)
	return booking, nil
}

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.UserID <= 0 {
		return fmt.Errorf("%w: userID must be positive", ErrInvalidInput)
	}
	if req.HoldID == "" {
		return fmt.Errorf("%w: holdID is required", ErrInvalidInput)
	}
	if req.ServiceID <= 0 {
		return fmt.Errorf("%w: serviceID must be positive", ErrInvalidInput)
	}
	return nil
}
