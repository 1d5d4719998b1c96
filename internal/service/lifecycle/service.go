package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/events"
	bookingRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/booking"
	providerClient "github.com/m04kA/SMC-SchedulingService/internal/integrations/providerservice"
	"github.com/m04kA/SMC-SchedulingService/internal/service/availability"
	"github.com/m04kA/SMC-SchedulingService/internal/service/holds"
	"github.com/m04kA/SMC-SchedulingService/internal/service/lifecycle/models"
	"github.com/m04kA/SMC-SchedulingService/pkg/types"
)

// Service сервис жизненного цикла бронирований.
// Владеет конечным автоматом статусов: все переходы проходят через него,
// пишутся с optimistic-проверкой версии и фиксируются в истории.
type Service struct {
	bookingRepo  BookingRepository
	holdConsumer HoldConsumer
	catalog      CatalogClient
	schedule     ScheduleResolver
	holdReader   HoldReader
	txManager    TransactionManager
	publisher    EventPublisher
	timeProvider TimeProvider
	metrics      MetricsCollector
	logger       Logger
}

// NewService создает сервис жизненного цикла бронирований
func NewService(
	bookingRepo BookingRepository,
	holdConsumer HoldConsumer,
	catalog CatalogClient,
	schedule ScheduleResolver,
	holdReader HoldReader,
	txManager TransactionManager,
	publisher EventPublisher,
	metrics MetricsCollector,
	logger Logger,
) *Service {
	if metrics == nil {
		metrics = NoopMetrics{}
	}
	return &Service{
		bookingRepo:  bookingRepo,
		holdConsumer: holdConsumer,
		catalog:      catalog,
		schedule:     schedule,
		holdReader:   holdReader,
		txManager:    txManager,
		publisher:    publisher,
		timeProvider: &RealTimeProvider{},
		metrics:      metrics,
		logger:       logger,
	}
}

// CreateFromHold создает бронирование из активного холда.
// Это единственный путь создания: интервал берется из холда, политика
// снимается с услуги на момент создания и больше не меняется.
//
// Холд потребляется CAS-переходом Active -> Consumed только после всех
// проверок (владелец, годность, услуга): отказ до потребления не оставляет
// следов. Из двух конкурентных запросов с одним holdID выигрывает ровно
// один; если запись бронирования упала уже после потребления, холд
// компенсационно возвращается в active.
func (s *Service) CreateFromHold(ctx context.Context, req *models.CreateFromHoldRequest) (*models.BookingResponse, error) {
	s.logger.Info("CreateFromHold: creating booking from hold=%s for customer=%d, service=%d",
		req.HoldID, req.CustomerID, req.ServiceID)

	if err := validateCreateFromHold(req); err != nil {
		return nil, err
	}

	hold, err := s.holdConsumer.Get(ctx, req.HoldID)
	if err != nil {
		if errors.Is(err, holds.ErrHoldNotFound) {
			s.logger.Warn("CreateFromHold: hold=%s not found", req.HoldID)
			return nil, fmt.Errorf("%w: %v", ErrHoldNotUsable, err)
		}
		s.logger.Error("CreateFromHold: failed to get hold=%s: %v", req.HoldID, err)
		return nil, fmt.Errorf("%w: CreateFromHold - failed to get hold: %v", ErrInternal, err)
	}

	if hold.HolderID != req.CustomerID {
		s.logger.Warn("CreateFromHold: hold=%s belongs to holder=%d, not customer=%d",
			req.HoldID, hold.HolderID, req.CustomerID)
		return nil, ErrAccessDenied
	}

	now := s.timeProvider.Now()
	if !hold.IsActive(now) {
		s.logger.Warn("CreateFromHold: hold=%s is not usable, state=%s", req.HoldID, hold.State)
		return nil, fmt.Errorf("%w: hold is expired or inactive", ErrHoldNotUsable)
	}

	service, err := s.catalog.GetService(ctx, hold.ProviderID, req.ServiceID)
	if err != nil {
		if errors.Is(err, providerClient.ErrServiceNotFound) {
			s.logger.Warn("CreateFromHold: service=%d not found for provider=%d", req.ServiceID, hold.ProviderID)
			return nil, ErrServiceNotFound
		}
		s.logger.Error("CreateFromHold: failed to get service=%d: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: CreateFromHold - failed to get service: %v", ErrInternal, err)
	}

	// CAS Active -> Consumed: гонку за один холд выигрывает ровно один запрос
	if _, err := s.holdConsumer.Consume(ctx, req.HoldID); err != nil {
		switch {
		case errors.Is(err, holds.ErrHoldNotFound),
			errors.Is(err, holds.ErrHoldNotActive),
			errors.Is(err, holds.ErrHoldExpired):
			s.logger.Warn("CreateFromHold: hold=%s is not usable: %v", req.HoldID, err)
			return nil, fmt.Errorf("%w: %v", ErrHoldNotUsable, err)
		}
		s.logger.Error("CreateFromHold: failed to consume hold=%s: %v", req.HoldID, err)
		return nil, fmt.Errorf("%w: CreateFromHold - failed to consume hold: %v", ErrInternal, err)
	}

	booking := &domain.Booking{
		ProviderID:      hold.ProviderID,
		StaffID:         hold.StaffID,
		ServiceID:       service.ID,
		CustomerID:      req.CustomerID,
		BookingDate:     hold.Date,
		StartTime:       hold.StartTime,
		DurationMinutes: hold.DurationMinutes,
		Status:          domain.StatusRequested,
		Policy:          availability.PolicyFromCatalog(service.Policy),
	}

	var created *domain.Booking
	err = s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		created, err = s.bookingRepo.Create(txCtx, booking)
		if err != nil {
			return err
		}
		return s.bookingRepo.AddHistoryEntry(txCtx, created.ID, domain.StatusRequested,
			fmt.Sprintf("booking created from hold %s", hold.ID))
	})
	if err != nil {
		// Компенсация: возвращаем холд в active, чтобы клиент не потерял
		// слот из-за сбоя записи
		if rerr := s.holdConsumer.Reinstate(ctx, req.HoldID); rerr != nil {
			s.logger.Error("CreateFromHold: failed to reinstate hold=%s: %v", req.HoldID, rerr)
		}
		s.logger.Error("CreateFromHold: failed to create booking from hold=%s: %v", req.HoldID, err)
		return nil, fmt.Errorf("%w: CreateFromHold - failed to create booking: %v", ErrInternal, err)
	}

	s.metrics.IncBookingTransition(string(domain.StatusRequested))
	s.publisher.Publish(events.Event{
		Type:       events.TypeBookingCreated,
		BookingID:  created.ID,
		ProviderID: created.ProviderID,
		CustomerID: created.CustomerID,
		CreatedAt:  now,
	})

	s.logger.Info("CreateFromHold: booking id=%d created from hold=%s", created.ID, req.HoldID)
	return models.FromDomainBooking(created), nil
}

// GetByID получает бронирование по ID
// Проверяет права доступа - пользователь может видеть только своё бронирование
// или если он является менеджером провайдера
func (s *Service) GetByID(ctx context.Context, id int64, userID int64) (*models.BookingResponse, error) {
	s.logger.Info("GetByID: fetching booking id=%d for user=%d", id, userID)

	booking, err := s.getBooking(ctx, "GetByID", id)
	if err != nil {
		return nil, err
	}

	if err := s.checkUserAccess(ctx, booking, userID); err != nil {
		s.logger.Warn("GetByID: access denied for user=%d to booking id=%d", userID, id)
		return nil, err
	}

	return models.FromDomainBooking(booking), nil
}

// GetHistory получает историю статусов бронирования
func (s *Service) GetHistory(ctx context.Context, bookingID int64, userID int64) ([]models.HistoryEntryResponse, error) {
	s.logger.Info("GetHistory: fetching history for booking id=%d, user=%d", bookingID, userID)

	booking, err := s.getBooking(ctx, "GetHistory", bookingID)
	if err != nil {
		return nil, err
	}

	if err := s.checkUserAccess(ctx, booking, userID); err != nil {
		return nil, err
	}

	entries, err := s.bookingRepo.GetHistory(ctx, bookingID)
	if err != nil {
		s.logger.Error("GetHistory: repository error for booking id=%d: %v", bookingID, err)
		return nil, fmt.Errorf("%w: GetHistory - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainHistory(entries), nil
}

// GetUserBookings получает историю бронирований пользователя
// Опционально фильтрует по статусу
func (s *Service) GetUserBookings(ctx context.Context, req *models.GetUserBookingsRequest) (*models.BookingListResponse, error) {
	s.logger.Info("GetUserBookings: fetching bookings for user=%d, status=%v", req.UserID, req.Status)

	var domainStatus *domain.BookingStatus
	if req.Status != nil {
		status, err := models.ToDomainBookingStatus(*req.Status)
		if err != nil {
			s.logger.Warn("GetUserBookings: invalid status=%s for user=%d", *req.Status, req.UserID)
			return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
		}
		domainStatus = &status
	}

	bookings, err := s.bookingRepo.GetByCustomerID(ctx, req.UserID, domainStatus)
	if err != nil {
		s.logger.Error("GetUserBookings: repository error for user=%d: %v", req.UserID, err)
		return nil, fmt.Errorf("%w: GetUserBookings - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetUserBookings: successfully fetched %d bookings for user=%d", len(bookings), req.UserID)
	return models.FromDomainBookingList(bookings), nil
}

// GetProviderBookings получает бронирования провайдера с гибкой фильтрацией
// Поддерживает фильтрацию по сотруднику, периоду и статусу
// Доступно только менеджерам провайдера
func (s *Service) GetProviderBookings(ctx context.Context, req *models.GetProviderBookingsRequest) (*models.BookingListResponse, error) {
	s.logger.Info("GetProviderBookings: fetching bookings for provider=%d, user=%d", req.ProviderID, req.UserID)

	if err := s.checkManagerAccess(ctx, req.ProviderID, req.UserID); err != nil {
		return nil, err
	}

	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("GetProviderBookings: invalid filter for provider=%d: %v", req.ProviderID, err)
		return nil, fmt.Errorf("%w: invalid filter", ErrInvalidInput)
	}

	bookings, err := s.bookingRepo.GetByProviderWithFilter(ctx, filter)
	if err != nil {
		s.logger.Error("GetProviderBookings: repository error for provider=%d: %v", req.ProviderID, err)
		return nil, fmt.Errorf("%w: GetProviderBookings - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetProviderBookings: successfully fetched %d bookings for provider=%d", len(bookings), req.ProviderID)
	return models.FromDomainBookingList(bookings), nil
}

// Confirm подтверждает запрошенное бронирование (requested -> confirmed)
// Доступно только менеджерам провайдера
func (s *Service) Confirm(ctx context.Context, bookingID int64, userID int64) (*models.BookingResponse, error) {
	s.logger.Info("Confirm: confirming booking id=%d by user=%d", bookingID, userID)

	booking, err := s.getBooking(ctx, "Confirm", bookingID)
	if err != nil {
		return nil, err
	}

	if err := s.checkManagerAccess(ctx, booking.ProviderID, userID); err != nil {
		s.logger.Warn("Confirm: access denied for user=%d to booking id=%d", userID, bookingID)
		return nil, err
	}

	if err := checkTransition(booking.Status, domain.StatusConfirmed); err != nil {
		s.logger.Warn("Confirm: booking id=%d cannot be confirmed from status=%s", bookingID, booking.Status)
		return nil, err
	}

	err = s.transition(ctx, booking, domain.BookingStatusUpdate{Status: domain.StatusConfirmed},
		fmt.Sprintf("confirmed by provider manager %d", userID))
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(events.Event{
		Type:       events.TypeBookingConfirmed,
		BookingID:  booking.ID,
		ProviderID: booking.ProviderID,
		CustomerID: booking.CustomerID,
		CreatedAt:  s.timeProvider.Now(),
	})

	s.logger.Info("Confirm: booking id=%d confirmed", bookingID)
	return s.reload(ctx, bookingID)
}

// Cancel отменяет бронирование
// Клиент может отменить только своё бронирование (cancelled_by=customer),
// менеджер провайдера - любое бронирование провайдера (cancelled_by=provider).
// При отмене внутри окна CancellationWindowHours возвращается процент штрафа
// из снимка политики бронирования.
func (s *Service) Cancel(ctx context.Context, bookingID int64, req *models.CancelBookingRequest) (*models.CancelBookingResponse, error) {
	s.logger.Info("Cancel: cancelling booking id=%d by user=%d", bookingID, req.UserID)

	booking, err := s.getBooking(ctx, "Cancel", bookingID)
	if err != nil {
		return nil, err
	}

	if err := checkTransition(booking.Status, domain.StatusCancelled); err != nil {
		s.logger.Warn("Cancel: booking id=%d cannot be cancelled, status=%s", bookingID, booking.Status)
		return nil, err
	}

	now := s.timeProvider.Now()
	startAt, err := booking.StartAt()
	if err != nil {
		s.logger.Error("Cancel: corrupt start time for booking id=%d: %v", bookingID, err)
		return nil, fmt.Errorf("%w: Cancel - corrupt start time: %v", ErrInternal, err)
	}
	if startAt.Before(now) {
		s.logger.Warn("Cancel: booking id=%d already started at %s", bookingID, startAt.Format(time.RFC3339))
		return nil, ErrBookingInPast
	}

	// Определяем, кто отменяет, в зависимости от прав доступа
	var cancelledBy domain.CancelledBy
	if booking.CustomerID == req.UserID {
		cancelledBy = domain.CancelledByCustomer
	} else {
		if err := s.checkManagerAccess(ctx, booking.ProviderID, req.UserID); err != nil {
			s.logger.Warn("Cancel: access denied for user=%d to cancel booking id=%d", req.UserID, bookingID)
			return nil, ErrAccessDenied
		}
		cancelledBy = domain.CancelledByProvider
	}

	// Штраф берется только при отмене клиентом подтвержденного бронирования
	// внутри окна отмены
	fee := 0.0
	if cancelledBy == domain.CancelledByCustomer &&
		booking.Status == domain.StatusConfirmed &&
		booking.Policy.InsideCancellationWindow(startAt, now) {
		fee = booking.Policy.CancellationFeePercentage
	}

	update := domain.BookingStatusUpdate{
		Status:             domain.StatusCancelled,
		CancellationReason: &req.CancellationReason,
		CancelledBy:        &cancelledBy,
		CancelledAt:        &now,
	}
	err = s.transition(ctx, booking, update,
		fmt.Sprintf("cancelled by %s: %s", cancelledBy, req.CancellationReason))
	if err != nil {
		return nil, err
	}

	event := events.Event{
		Type:       events.TypeBookingCancelled,
		BookingID:  booking.ID,
		ProviderID: booking.ProviderID,
		CustomerID: booking.CustomerID,
		Reason:     req.CancellationReason,
		CreatedAt:  now,
	}
	if fee > 0 {
		event.FeePercentage = &fee
	}
	s.publisher.Publish(event)

	s.logger.Info("Cancel: booking id=%d cancelled by %s, fee=%.1f%%", bookingID, cancelledBy, fee)
	return &models.CancelBookingResponse{FeePercentage: fee}, nil
}

// Reschedule переносит бронирование на новое время.
// Исходная запись никогда не мутируется в новое время: создается новое
// бронирование с тем же снимком политики, а исходное переводится в
// rescheduled и связывается с новым через RescheduledToID.
func (s *Service) Reschedule(ctx context.Context, bookingID int64, req *models.RescheduleBookingRequest) (*models.BookingResponse, error) {
	s.logger.Info("Reschedule: rescheduling booking id=%d to %s %s by user=%d",
		bookingID, req.NewDate.Format(domain.DateFormat), req.NewStartTime, req.UserID)

	booking, err := s.getBooking(ctx, "Reschedule", bookingID)
	if err != nil {
		return nil, err
	}

	if err := s.checkUserAccess(ctx, booking, req.UserID); err != nil {
		s.logger.Warn("Reschedule: access denied for user=%d to booking id=%d", req.UserID, bookingID)
		return nil, err
	}

	if err := checkTransition(booking.Status, domain.StatusRescheduled); err != nil {
		s.logger.Warn("Reschedule: booking id=%d cannot be rescheduled, status=%s", bookingID, booking.Status)
		return nil, err
	}

	if !booking.Policy.AllowRescheduling {
		s.logger.Warn("Reschedule: rescheduling disabled by policy for booking id=%d", bookingID)
		return nil, ErrReschedulingDisabled
	}

	now := s.timeProvider.Now()
	startAt, err := booking.StartAt()
	if err != nil {
		return nil, fmt.Errorf("%w: Reschedule - corrupt start time: %v", ErrInternal, err)
	}
	// Окно переноса считается от исходного времени начала
	if booking.Policy.InsideRescheduleWindow(startAt, now) {
		s.logger.Warn("Reschedule: window closed for booking id=%d (start=%s)",
			bookingID, startAt.Format(time.RFC3339))
		return nil, ErrRescheduleWindowClosed
	}

	newStaffID := booking.StaffID
	if req.NewStaffID != nil {
		provider, err := s.catalog.GetProvider(ctx, booking.ProviderID)
		if err != nil {
			if errors.Is(err, providerClient.ErrProviderNotFound) {
				return nil, ErrProviderNotFound
			}
			return nil, fmt.Errorf("%w: Reschedule - failed to get provider: %v", ErrInternal, err)
		}
		if !provider.HasStaff(*req.NewStaffID) {
			s.logger.Warn("Reschedule: staff=%d not found for provider=%d", *req.NewStaffID, booking.ProviderID)
			return nil, ErrStaffNotFound
		}
		newStaffID = req.NewStaffID
	}

	if err := s.checkTargetSlot(ctx, booking, req.NewDate, req.NewStartTime, newStaffID, now); err != nil {
		return nil, err
	}

	newBooking := &domain.Booking{
		ProviderID:      booking.ProviderID,
		StaffID:         newStaffID,
		ServiceID:       booking.ServiceID,
		CustomerID:      booking.CustomerID,
		BookingDate:     domain.DateOnly(req.NewDate),
		StartTime:       req.NewStartTime,
		DurationMinutes: booking.DurationMinutes,
		// Новое бронирование наследует статус исходного: подтвержденное
		// остается подтвержденным после переноса
		Status:            booking.Status,
		Policy:            booking.Policy,
		PreviousBookingID: &booking.ID,
	}

	var created *domain.Booking
	err = s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		created, err = s.bookingRepo.Create(txCtx, newBooking)
		if err != nil {
			return err
		}

		update := domain.BookingStatusUpdate{
			Status:          domain.StatusRescheduled,
			RescheduledToID: &created.ID,
		}
		if err := s.bookingRepo.UpdateStatus(txCtx, booking.ID, booking.Version, update); err != nil {
			return err
		}

		if err := s.bookingRepo.AddHistoryEntry(txCtx, booking.ID, domain.StatusRescheduled,
			fmt.Sprintf("rescheduled to booking %d", created.ID)); err != nil {
			return err
		}
		return s.bookingRepo.AddHistoryEntry(txCtx, created.ID, created.Status,
			fmt.Sprintf("created by reschedule of booking %d", booking.ID))
	})
	if err != nil {
		if errors.Is(err, bookingRepo.ErrStaleVersion) {
			s.logger.Warn("Reschedule: version conflict for booking id=%d", bookingID)
			return nil, ErrVersionConflict
		}
		s.logger.Error("Reschedule: transaction failed for booking id=%d: %v", bookingID, err)
		return nil, fmt.Errorf("%w: Reschedule - transaction failed: %v", ErrInternal, err)
	}

	s.metrics.IncBookingTransition(string(domain.StatusRescheduled))
	s.publisher.Publish(events.Event{
		Type:         events.TypeBookingRescheduled,
		BookingID:    booking.ID,
		ProviderID:   booking.ProviderID,
		CustomerID:   booking.CustomerID,
		NewBookingID: &created.ID,
		CreatedAt:    now,
	})

	s.logger.Info("Reschedule: booking id=%d rescheduled to new booking id=%d", bookingID, created.ID)
	return models.FromDomainBooking(created), nil
}

// Complete завершает подтвержденное бронирование (confirmed -> completed)
// Доступно только менеджерам провайдера и только после окончания услуги
func (s *Service) Complete(ctx context.Context, bookingID int64, userID int64) (*models.BookingResponse, error) {
	s.logger.Info("Complete: completing booking id=%d by user=%d", bookingID, userID)

	booking, err := s.getBooking(ctx, "Complete", bookingID)
	if err != nil {
		return nil, err
	}

	if err := s.checkManagerAccess(ctx, booking.ProviderID, userID); err != nil {
		return nil, err
	}

	if err := checkTransition(booking.Status, domain.StatusCompleted); err != nil {
		s.logger.Warn("Complete: booking id=%d cannot be completed from status=%s", bookingID, booking.Status)
		return nil, err
	}

	endAt, err := booking.EndAt()
	if err != nil {
		return nil, fmt.Errorf("%w: Complete - corrupt end time: %v", ErrInternal, err)
	}
	if s.timeProvider.Now().Before(endAt) {
		s.logger.Warn("Complete: booking id=%d has not finished yet (end=%s)",
			bookingID, endAt.Format(time.RFC3339))
		return nil, ErrBookingNotFinished
	}

	err = s.transition(ctx, booking, domain.BookingStatusUpdate{Status: domain.StatusCompleted},
		fmt.Sprintf("completed by provider manager %d", userID))
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(events.Event{
		Type:       events.TypeBookingCompleted,
		BookingID:  booking.ID,
		ProviderID: booking.ProviderID,
		CustomerID: booking.CustomerID,
		CreatedAt:  s.timeProvider.Now(),
	})

	s.logger.Info("Complete: booking id=%d completed", bookingID)
	return s.reload(ctx, bookingID)
}

// MarkNoShow отмечает неявку клиента (confirmed -> no_show)
// Доступно только менеджерам провайдера и только после времени начала
func (s *Service) MarkNoShow(ctx context.Context, bookingID int64, userID int64) (*models.BookingResponse, error) {
	s.logger.Info("MarkNoShow: marking booking id=%d as no-show by user=%d", bookingID, userID)

	booking, err := s.getBooking(ctx, "MarkNoShow", bookingID)
	if err != nil {
		return nil, err
	}

	if err := s.checkManagerAccess(ctx, booking.ProviderID, userID); err != nil {
		return nil, err
	}

	if err := checkTransition(booking.Status, domain.StatusNoShow); err != nil {
		s.logger.Warn("MarkNoShow: booking id=%d cannot be marked from status=%s", bookingID, booking.Status)
		return nil, err
	}

	startAt, err := booking.StartAt()
	if err != nil {
		return nil, fmt.Errorf("%w: MarkNoShow - corrupt start time: %v", ErrInternal, err)
	}
	if s.timeProvider.Now().Before(startAt) {
		s.logger.Warn("MarkNoShow: booking id=%d has not started yet (start=%s)",
			bookingID, startAt.Format(time.RFC3339))
		return nil, ErrBookingNotStarted
	}

	err = s.transition(ctx, booking, domain.BookingStatusUpdate{Status: domain.StatusNoShow},
		fmt.Sprintf("marked as no-show by provider manager %d", userID))
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(events.Event{
		Type:       events.TypeBookingNoShow,
		BookingID:  booking.ID,
		ProviderID: booking.ProviderID,
		CustomerID: booking.CustomerID,
		CreatedAt:  s.timeProvider.Now(),
	})

	s.logger.Info("MarkNoShow: booking id=%d marked as no-show", bookingID)
	return s.reload(ctx, bookingID)
}

// Вспомогательные методы

// getBooking загружает бронирование, нормализуя ошибку not found
func (s *Service) getBooking(ctx context.Context, op string, id int64) (*domain.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("%s: booking id=%d not found", op, id)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("%s: repository error for booking id=%d: %v", op, id, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}
	return booking, nil
}

// reload перечитывает бронирование после перехода
func (s *Service) reload(ctx context.Context, id int64) (*models.BookingResponse, error) {
	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to reload booking: %v", ErrInternal, err)
	}
	return models.FromDomainBooking(booking), nil
}

// transition выполняет versioned-переход статуса и запись истории в транзакции
func (s *Service) transition(ctx context.Context, booking *domain.Booking, update domain.BookingStatusUpdate, description string) error {
	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		if err := s.bookingRepo.UpdateStatus(txCtx, booking.ID, booking.Version, update); err != nil {
			return err
		}
		return s.bookingRepo.AddHistoryEntry(txCtx, booking.ID, update.Status, description)
	})
	if err != nil {
		if errors.Is(err, bookingRepo.ErrStaleVersion) {
			s.logger.Warn("transition: version conflict for booking id=%d", booking.ID)
			return ErrVersionConflict
		}
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			return ErrBookingNotFound
		}
		s.logger.Error("transition: failed for booking id=%d: %v", booking.ID, err)
		return fmt.Errorf("%w: transition failed: %v", ErrInternal, err)
	}

	s.metrics.IncBookingTransition(string(update.Status))
	return nil
}

// checkTargetSlot проверяет целевой слот переноса: рабочие часы, окна
// заблаговременности и отсутствие пересечений с занятостью (исходное
// бронирование при этом не считается конфликтом).
func (s *Service) checkTargetSlot(
	ctx context.Context,
	booking *domain.Booking,
	newDate time.Time,
	newStart types.TimeString,
	newStaffID *int64,
	now time.Time,
) error {
	newEnd, err := newStart.AddMinutes(booking.DurationMinutes)
	if err != nil {
		return fmt.Errorf("%w: interval crosses midnight", ErrInvalidInput)
	}

	day, err := s.schedule.EffectiveDay(ctx, booking.ProviderID, newDate)
	if err != nil {
		return fmt.Errorf("%w: failed to resolve schedule: %v", ErrInternal, err)
	}
	if !dayAccommodates(day, newStart, newEnd) {
		s.logger.Warn("checkTargetSlot: slot %s-%s outside schedule for provider=%d on %s",
			newStart, newEnd, booking.ProviderID, newDate.Format(domain.DateFormat))
		return ErrSlotUnavailable
	}

	newStartAt, err := newStart.OnDate(newDate)
	if err != nil {
		return fmt.Errorf("%w: invalid start time", ErrInvalidInput)
	}
	minStartAt := now.Add(time.Duration(booking.Policy.MinAdvanceBookingHours) * time.Hour)
	if newStartAt.Before(minStartAt) {
		return ErrSlotUnavailable
	}
	maxDate := domain.DateOnly(now).AddDate(0, 0, booking.Policy.MaxAdvanceBookingDays)
	if domain.DateOnly(newDate).After(maxDate) {
		return ErrSlotUnavailable
	}

	date := domain.DateOnly(newDate)
	occupying, err := s.bookingRepo.GetByProviderWithFilter(ctx, domain.ProviderBookingsFilter{
		ProviderID:    booking.ProviderID,
		StartDate:     &date,
		EndDate:       &date,
		OnlyOccupying: true,
	})
	if err != nil {
		return fmt.Errorf("%w: failed to get bookings: %v", ErrInternal, err)
	}
	for _, other := range occupying {
		if other.ID == booking.ID {
			continue
		}
		if !other.Occupies() || !other.BlocksStaff(newStaffID) {
			continue
		}
		otherEnd, err := other.EndTime()
		if err != nil {
			continue
		}
		if domain.IntervalsOverlap(newStart, newEnd, other.StartTime, otherEnd) {
			s.logger.Info("checkTargetSlot: slot %s-%s conflicts with booking id=%d", newStart, newEnd, other.ID)
			return ErrSlotUnavailable
		}
	}

	activeHolds, err := s.holdReader.ListByProviderDate(ctx, booking.ProviderID, newDate)
	if err != nil {
		return fmt.Errorf("%w: failed to list holds: %v", ErrInternal, err)
	}
	for _, hold := range activeHolds {
		if !hold.IsActive(now) || !hold.BlocksStaff(newStaffID) {
			continue
		}
		holdEnd, err := hold.EndTime()
		if err != nil {
			continue
		}
		if domain.IntervalsOverlap(newStart, newEnd, hold.StartTime, holdEnd) {
			s.logger.Info("checkTargetSlot: slot %s-%s conflicts with hold %s", newStart, newEnd, hold.ID)
			return ErrSlotUnavailable
		}
	}

	return nil
}

// dayAccommodates проверяет, что интервал попадает в рабочие часы дня
// и не пересекает перерыв
func dayAccommodates(day domain.EffectiveDay, start, end types.TimeString) bool {
	if !day.IsOpen || day.OpenTime == nil || day.CloseTime == nil {
		return false
	}
	if start.IsBefore(*day.OpenTime) || end.IsAfter(*day.CloseTime) {
		return false
	}
	for _, brk := range day.Breaks {
		if domain.IntervalsOverlap(start, end, brk.Start, brk.End) {
			return false
		}
	}
	return true
}

// checkUserAccess проверяет, что пользователь имеет доступ к бронированию
// Пользователь может видеть своё бронирование или если он менеджер провайдера
func (s *Service) checkUserAccess(ctx context.Context, booking *domain.Booking, userID int64) error {
	if booking.CustomerID == userID {
		return nil
	}

	if err := s.checkManagerAccess(ctx, booking.ProviderID, userID); err != nil {
		// Ошибка уже залогирована в checkManagerAccess
		return ErrAccessDenied
	}

	return nil
}

// checkManagerAccess проверяет, что пользователь является менеджером провайдера
func (s *Service) checkManagerAccess(ctx context.Context, providerID int64, userID int64) error {
	provider, err := s.catalog.GetProvider(ctx, providerID)
	if err != nil {
		if errors.Is(err, providerClient.ErrProviderNotFound) {
			s.logger.Warn("checkManagerAccess: provider id=%d not found", providerID)
			return ErrProviderNotFound
		}
		s.logger.Error("checkManagerAccess: failed to get provider id=%d: %v", providerID, err)
		return fmt.Errorf("%w: checkManagerAccess - failed to get provider: %v", ErrInternal, err)
	}

	if !provider.IsManager(userID) {
		s.logger.Warn("checkManagerAccess: user=%d is not a manager of provider=%d", userID, providerID)
		return ErrAccessDenied
	}

	return nil
}

// validateCreateFromHold валидирует запрос на создание из холда
func validateCreateFromHold(req *models.CreateFromHoldRequest) error {
	if req.HoldID == "" {
		return fmt.Errorf("%w: holdId is required", ErrInvalidInput)
	}
	if req.CustomerID <= 0 {
		return fmt.Errorf("%w: customerId must be positive", ErrInvalidInput)
	}
	if req.ServiceID <= 0 {
		return fmt.Errorf("%w: serviceId must be positive", ErrInvalidInput)
	}
	return nil
}
