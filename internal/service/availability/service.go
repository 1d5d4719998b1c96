package availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/integrations/providerservice"
	"github.com/m04kA/SMC-SchedulingService/pkg/types"
)

// Service проектор доступности: строит сетку кандидатов через календарь и
// генератор и вычитает занятые интервалы (бронирования + активные холды).
//
// Все операции чистые по отношению к состоянию: результат - снимок на момент
// вызова, который может устареть, как только другой запрос выиграет холд.
type Service struct {
	scheduleRepo ScheduleRepository
	bookingRepo  BookingRepository
	holdReader   HoldReader
	catalog      CatalogClient
	calendar     Calendar
	generator    SlotGenerator
	timeProvider TimeProvider
	metrics      MetricsCollector
	logger       Logger
}

// NewService создает проектор доступности
func NewService(
	scheduleRepo ScheduleRepository,
	bookingRepo BookingRepository,
	holdReader HoldReader,
	catalog CatalogClient,
	calendar Calendar,
	generator SlotGenerator,
	metrics MetricsCollector,
	logger Logger,
) *Service {
	if metrics == nil {
		metrics = NoopMetrics{}
	}
	return &Service{
		scheduleRepo: scheduleRepo,
		bookingRepo:  bookingRepo,
		holdReader:   holdReader,
		catalog:      catalog,
		calendar:     calendar,
		generator:    generator,
		timeProvider: &RealTimeProvider{},
		metrics:      metrics,
		logger:       logger,
	}
}

// Project строит упорядоченную сетку слотов на дату с пометкой доступности.
// При staffID = nil слот доступен, если целиком свободен хотя бы один
// активный сотрудник провайдера.
func (s *Service) Project(ctx context.Context, req *ProjectRequest) ([]domain.Slot, error) {
	env, err := s.loadEnvironment(ctx, req.ProviderID, req.ServiceID, req.StaffID)
	if err != nil {
		return nil, err
	}

	now := s.timeProvider.Now()
	day := s.calendar.Resolve(*env.schedule, req.Date)

	candidates, err := s.generator.Generate(day, env.service.DurationMinutes, env.granularity, now, env.policy)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to generate slots: %v", ErrInternal, err)
	}
	s.metrics.AddSlotsGenerated(len(candidates))

	if len(candidates) == 0 {
		return []domain.Slot{}, nil
	}

	occupancy, err := s.loadOccupancy(ctx, req.ProviderID, req.Date)
	if err != nil {
		return nil, err
	}

	slots := make([]domain.Slot, 0, len(candidates))
	for _, start := range candidates {
		end, err := start.AddMinutes(env.service.DurationMinutes)
		if err != nil {
			continue
		}
		slots = append(slots, domain.Slot{
			StartTime:       start,
			DurationMinutes: env.service.DurationMinutes,
			IsAvailable:     s.intervalFree(start, end, req.StaffID, env.staffIDs, occupancy, now),
			StaffID:         req.StaffID,
		})
	}

	return slots, nil
}

// Check точечная проверка: свободно ли именно это время начала.
// Время должно совпадать с одним из кандидатов дня (выравнивание по сетке
// и окна заблаговременности действуют те же, что и в Project).
func (s *Service) Check(ctx context.Context, req *CheckRequest) (*CheckResult, error) {
	env, err := s.loadEnvironment(ctx, req.ProviderID, req.ServiceID, req.StaffID)
	if err != nil {
		return nil, err
	}

	now := s.timeProvider.Now()
	day := s.calendar.Resolve(*env.schedule, req.Date)

	if !day.IsOpen {
		return &CheckResult{StartTime: req.StartTime, IsAvailable: false, Reason: day.ClosureReason}, nil
	}

	candidates, err := s.generator.Generate(day, env.service.DurationMinutes, env.granularity, now, env.policy)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to generate slots: %v", ErrInternal, err)
	}

	isCandidate := false
	for _, c := range candidates {
		if c == req.StartTime {
			isCandidate = true
			break
		}
	}
	if !isCandidate {
		return &CheckResult{StartTime: req.StartTime, IsAvailable: false}, nil
	}

	end, err := req.StartTime.AddMinutes(env.service.DurationMinutes)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid start time %s", ErrInvalidInput, req.StartTime)
	}

	occupancy, err := s.loadOccupancy(ctx, req.ProviderID, req.Date)
	if err != nil {
		return nil, err
	}

	return &CheckResult{
		StartTime:   req.StartTime,
		IsAvailable: s.intervalFree(req.StartTime, end, req.StaffID, env.staffIDs, occupancy, now),
	}, nil
}

// AvailableDates отвечает "есть ли хотя бы один доступный слот" на каждую
// дату диапазона. Бронирования выбираются одним запросом на весь диапазон
// и раскладываются по датам, чтобы не делать O(days) запросов.
func (s *Service) AvailableDates(ctx context.Context, req *DatesRequest) ([]domain.DateAvailability, error) {
	env, err := s.loadEnvironment(ctx, req.ProviderID, req.ServiceID, req.StaffID)
	if err != nil {
		return nil, err
	}

	now := s.timeProvider.Now()

	from := domain.DateOnly(req.FromDate)
	to := domain.DateOnly(req.ToDate)

	bookings, err := s.bookingRepo.GetByProviderWithFilter(ctx, domain.ProviderBookingsFilter{
		ProviderID:    req.ProviderID,
		StartDate:     &from,
		EndDate:       &to,
		OnlyOccupying: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get bookings: %v", ErrInternal, err)
	}

	bookingsByDate := make(map[string][]*domain.Booking)
	for _, b := range bookings {
		key := b.BookingDate.Format(domain.DateFormat)
		bookingsByDate[key] = append(bookingsByDate[key], b)
	}

	result := make([]domain.DateAvailability, 0)
	for date := from; !date.After(to); date = date.AddDate(0, 0, 1) {
		day := s.calendar.Resolve(*env.schedule, date)

		candidates, err := s.generator.Generate(day, env.service.DurationMinutes, env.granularity, now, env.policy)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to generate slots: %v", ErrInternal, err)
		}

		has := false
		if len(candidates) > 0 {
			holdsForDate, err := s.holdReader.ListByProviderDate(ctx, req.ProviderID, date)
			if err != nil {
				return nil, fmt.Errorf("%w: failed to list holds: %v", ErrInternal, err)
			}
			occupancy := occupancy{
				bookings: bookingsByDate[date.Format(domain.DateFormat)],
				holds:    holdsForDate,
			}
			for _, start := range candidates {
				end, err := start.AddMinutes(env.service.DurationMinutes)
				if err != nil {
					continue
				}
				if s.intervalFree(start, end, req.StaffID, env.staffIDs, occupancy, now) {
					has = true
					break
				}
			}
		}

		result = append(result, domain.DateAvailability{
			Date:            date.Format(domain.DateFormat),
			HasAvailability: has,
		})
	}

	return result, nil
}

// environment контекст проекции: каталог, политика и расписание провайдера
type environment struct {
	provider    *providerservice.Provider
	service     *providerservice.Service
	schedule    *domain.ProviderSchedule
	policy      domain.BookingPolicy
	granularity int
	staffIDs    []int64
}

// loadEnvironment загружает провайдера, услугу и расписание, валидируя staffID
func (s *Service) loadEnvironment(ctx context.Context, providerID, serviceID int64, staffID *int64) (*environment, error) {
	provider, err := s.catalog.GetProvider(ctx, providerID)
	if err != nil {
		if errors.Is(err, providerservice.ErrProviderNotFound) {
			return nil, ErrProviderNotFound
		}
		return nil, fmt.Errorf("%w: failed to get provider: %v", ErrInternal, err)
	}

	if staffID != nil && !provider.HasStaff(*staffID) {
		return nil, ErrStaffNotFound
	}

	service, err := s.catalog.GetService(ctx, providerID, serviceID)
	if err != nil {
		if errors.Is(err, providerservice.ErrServiceNotFound) {
			return nil, ErrServiceNotFound
		}
		return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
	}

	schedule, err := s.scheduleRepo.GetProviderSchedule(ctx, providerID)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get schedule: %v", ErrInternal, err)
	}

	granularity := provider.GranularityMinutes
	if granularity <= 0 {
		granularity = domain.DefaultGranularityMinutes
	}

	return &environment{
		provider:    provider,
		service:     service,
		schedule:    schedule,
		policy:      PolicyFromCatalog(service.Policy),
		granularity: granularity,
		staffIDs:    provider.ActiveStaffIDs(),
	}, nil
}

// occupancy занятость даты: активные бронирования и холды
type occupancy struct {
	bookings []*domain.Booking
	holds    []*domain.SlotHold
}

// loadOccupancy загружает занятость провайдера на дату
func (s *Service) loadOccupancy(ctx context.Context, providerID int64, date time.Time) (occupancy, error) {
	d := domain.DateOnly(date)

	bookings, err := s.bookingRepo.GetByProviderWithFilter(ctx, domain.ProviderBookingsFilter{
		ProviderID:    providerID,
		StartDate:     &d,
		EndDate:       &d,
		OnlyOccupying: true,
	})
	if err != nil {
		return occupancy{}, fmt.Errorf("%w: failed to get bookings: %v", ErrInternal, err)
	}

	holds, err := s.holdReader.ListByProviderDate(ctx, providerID, date)
	if err != nil {
		return occupancy{}, fmt.Errorf("%w: failed to list holds: %v", ErrInternal, err)
	}

	return occupancy{bookings: bookings, holds: holds}, nil
}

// intervalFree проверяет доступность интервала.
// При заданном staffID интервал свободен, если его не блокирует ни одно
// бронирование/холд этого сотрудника (или без сотрудника). При staffID = nil
// интервал свободен, если свободен хотя бы один сотрудник; у провайдера без
// сотрудников ресурс один - сам провайдер.
func (s *Service) intervalFree(
	start, end types.TimeString,
	staffID *int64,
	staffIDs []int64,
	occ occupancy,
	now time.Time,
) bool {
	if staffID != nil {
		return s.staffFree(start, end, staffID, occ, now)
	}

	if len(staffIDs) == 0 {
		return s.staffFree(start, end, nil, occ, now)
	}

	for _, id := range staffIDs {
		candidate := id
		if s.staffFree(start, end, &candidate, occ, now) {
			return true
		}
	}
	return false
}

// staffFree проверяет, что интервал конкретного сотрудника не занят.
// Полуоткрытые интервалы: back-to-back бронирования не конфликтуют.
func (s *Service) staffFree(start, end types.TimeString, staffID *int64, occ occupancy, now time.Time) bool {
	for _, b := range occ.bookings {
		if !b.Occupies() || !b.BlocksStaff(staffID) {
			continue
		}
		bookingEnd, err := b.EndTime()
		if err != nil {
			continue
		}
		if domain.IntervalsOverlap(start, end, b.StartTime, bookingEnd) {
			return false
		}
	}

	for _, h := range occ.holds {
		if !h.IsActive(now) || !h.BlocksStaff(staffID) {
			continue
		}
		holdEnd, err := h.EndTime()
		if err != nil {
			continue
		}
		if domain.IntervalsOverlap(start, end, h.StartTime, holdEnd) {
			return false
		}
	}

	return true
}

// PolicyFromCatalog конвертирует политику каталога в доменную,
// подставляя дефолтную при её отсутствии.
func PolicyFromCatalog(p *providerservice.BookingPolicy) domain.BookingPolicy {
	if p == nil {
		return domain.DefaultBookingPolicy()
	}
	return domain.BookingPolicy{
		MinAdvanceBookingHours:    p.MinAdvanceBookingHours,
		MaxAdvanceBookingDays:     p.MaxAdvanceBookingDays,
		CancellationWindowHours:   p.CancellationWindowHours,
		CancellationFeePercentage: p.CancellationFeePercentage,
		AllowRescheduling:         p.AllowRescheduling,
		RescheduleWindowHours:     p.RescheduleWindowHours,
		DepositRequired:           p.DepositRequired,
		DepositPercentage:         p.DepositPercentage,
	}
}
