package availability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/integrations/providerservice"
	"github.com/m04kA/SMC-SchedulingService/internal/service/calendar"
	"github.com/m04kA/SMC-SchedulingService/internal/service/slots"
	"github.com/m04kA/SMC-SchedulingService/pkg/types"
)

// Фейки хранилищ; календарь и генератор используются настоящие - они чистые

type fakeScheduleRepo struct {
	schedule *domain.ProviderSchedule
}

func (f *fakeScheduleRepo) GetProviderSchedule(_ context.Context, _ int64) (*domain.ProviderSchedule, error) {
	return f.schedule, nil
}

type fakeBookingRepo struct {
	bookings []*domain.Booking
}

func (f *fakeBookingRepo) GetByProviderWithFilter(_ context.Context, filter domain.ProviderBookingsFilter) ([]*domain.Booking, error) {
	var result []*domain.Booking
	for _, b := range f.bookings {
		if filter.StartDate != nil && b.BookingDate.Before(domain.DateOnly(*filter.StartDate)) {
			continue
		}
		if filter.EndDate != nil && b.BookingDate.After(domain.DateOnly(*filter.EndDate)) {
			continue
		}
		if filter.OnlyOccupying && !b.Occupies() {
			continue
		}
		result = append(result, b)
	}
	return result, nil
}

type fakeHoldReader struct {
	holds []*domain.SlotHold
}

func (f *fakeHoldReader) ListByProviderDate(_ context.Context, _ int64, _ time.Time) ([]*domain.SlotHold, error) {
	return f.holds, nil
}

type fakeCatalog struct {
	provider    *providerservice.Provider
	providerErr error
	service     *providerservice.Service
}

func (f *fakeCatalog) GetProvider(_ context.Context, _ int64) (*providerservice.Provider, error) {
	if f.providerErr != nil {
		return nil, f.providerErr
	}
	return f.provider, nil
}

func (f *fakeCatalog) GetService(_ context.Context, _, _ int64) (*providerservice.Service, error) {
	return f.service, nil
}

type fixedClock struct {
	now time.Time
}

func (f *fixedClock) Now() time.Time {
	return f.now
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func tsOf(s string) types.TimeString {
	return types.TimeString(s)
}

func tspOf(s string) *types.TimeString {
	v := types.TimeString(s)
	return &v
}

// 2026-03-16 - понедельник; рабочие часы 09:00-12:00, шаг сетки 60 минут
var (
	projDate = time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC)
	projNow  = time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
)

type projEnv struct {
	svc      *Service
	bookings *fakeBookingRepo
	holds    *fakeHoldReader
	catalog  *fakeCatalog
	schedule *fakeScheduleRepo
}

func newProjEnv(t *testing.T) *projEnv {
	t.Helper()

	scheduleRepo := &fakeScheduleRepo{
		schedule: &domain.ProviderSchedule{
			ProviderID: 1,
			Weekly: []domain.DaySchedule{
				{Weekday: time.Monday, IsOpen: true, OpenTime: tspOf("09:00"), CloseTime: tspOf("12:00")},
			},
		},
	}
	bookings := &fakeBookingRepo{}
	holdReader := &fakeHoldReader{}
	catalog := &fakeCatalog{
		provider: &providerservice.Provider{
			ID:                 1,
			GranularityMinutes: 60,
			Staff: []providerservice.Staff{
				{ID: 1, Name: "Anna", Active: true},
				{ID: 2, Name: "Boris", Active: true},
				{ID: 3, Name: "Former", Active: false},
			},
		},
		service: &providerservice.Service{
			ID:              10,
			ProviderID:      1,
			DurationMinutes: 60,
			Policy:          &providerservice.BookingPolicy{MaxAdvanceBookingDays: 90},
		},
	}

	svc := NewService(scheduleRepo, bookings, holdReader, catalog, calendar.NewService(), slots.NewGenerator(), nil, nopLogger{})
	svc.timeProvider = &fixedClock{now: projNow}

	return &projEnv{svc: svc, bookings: bookings, holds: holdReader, catalog: catalog, schedule: scheduleRepo}
}

func availability(slots []domain.Slot) map[string]bool {
	out := make(map[string]bool, len(slots))
	for _, s := range slots {
		out[s.StartTime.String()] = s.IsAvailable
	}
	return out
}

func TestService_Project_AllFree(t *testing.T) {
	env := newProjEnv(t)

	result, err := env.svc.Project(context.Background(), &ProjectRequest{ProviderID: 1, ServiceID: 10, Date: projDate})
	require.NoError(t, err)

	assert.Equal(t, map[string]bool{"09:00": true, "10:00": true, "11:00": true}, availability(result))
}

func TestService_Project_BackToBackBookingDoesNotBlock(t *testing.T) {
	env := newProjEnv(t)
	env.bookings.bookings = []*domain.Booking{
		{ID: 1, ProviderID: 1, BookingDate: projDate, StartTime: "09:00", DurationMinutes: 60, Status: domain.StatusConfirmed},
	}

	result, err := env.svc.Project(context.Background(), &ProjectRequest{ProviderID: 1, ServiceID: 10, Date: projDate})
	require.NoError(t, err)

	// Бронирование 09:00-10:00 закрывает только свой слот: 10:00 граничит и свободен
	assert.Equal(t, map[string]bool{"09:00": false, "10:00": true, "11:00": true}, availability(result))
}

func TestService_Project_AnyStaffSemantics(t *testing.T) {
	env := newProjEnv(t)
	staff1 := int64(1)
	staff2 := int64(2)
	env.bookings.bookings = []*domain.Booking{
		{ID: 1, ProviderID: 1, StaffID: &staff1, BookingDate: projDate, StartTime: "09:00", DurationMinutes: 60, Status: domain.StatusRequested},
	}

	// Без фильтра сотрудника слот доступен, пока свободен хотя бы один сотрудник
	result, err := env.svc.Project(context.Background(), &ProjectRequest{ProviderID: 1, ServiceID: 10, Date: projDate})
	require.NoError(t, err)
	assert.True(t, availability(result)["09:00"])

	// Для занятого сотрудника слот закрыт
	result, err = env.svc.Project(context.Background(), &ProjectRequest{ProviderID: 1, ServiceID: 10, StaffID: &staff1, Date: projDate})
	require.NoError(t, err)
	assert.False(t, availability(result)["09:00"])

	result, err = env.svc.Project(context.Background(), &ProjectRequest{ProviderID: 1, ServiceID: 10, StaffID: &staff2, Date: projDate})
	require.NoError(t, err)
	assert.True(t, availability(result)["09:00"])
}

func TestService_Project_AnyStaffBookingBlocksEveryone(t *testing.T) {
	env := newProjEnv(t)
	env.bookings.bookings = []*domain.Booking{
		{ID: 1, ProviderID: 1, BookingDate: projDate, StartTime: "10:00", DurationMinutes: 60, Status: domain.StatusConfirmed},
	}

	result, err := env.svc.Project(context.Background(), &ProjectRequest{ProviderID: 1, ServiceID: 10, Date: projDate})
	require.NoError(t, err)

	// Бронирование без сотрудника блокирует интервал для всех
	assert.False(t, availability(result)["10:00"])
}

func TestService_Project_ActiveHoldBlocks(t *testing.T) {
	env := newProjEnv(t)
	env.holds.holds = []*domain.SlotHold{
		{
			ID: "hold-1", ProviderID: 1, Date: projDate,
			StartTime: "11:00", DurationMinutes: 60,
			State: domain.HoldStateActive, ExpiresAt: projNow.Add(5 * time.Minute),
		},
		{
			ID: "hold-2", ProviderID: 1, Date: projDate,
			StartTime: "09:00", DurationMinutes: 60,
			State: domain.HoldStateActive, ExpiresAt: projNow.Add(-time.Minute),
		},
	}

	result, err := env.svc.Project(context.Background(), &ProjectRequest{ProviderID: 1, ServiceID: 10, Date: projDate})
	require.NoError(t, err)

	// Активный холд блокирует, истекший - нет
	assert.Equal(t, map[string]bool{"09:00": true, "10:00": true, "11:00": false}, availability(result))
}

func TestService_Project_StaffNotFound(t *testing.T) {
	env := newProjEnv(t)

	inactive := int64(3)
	_, err := env.svc.Project(context.Background(), &ProjectRequest{ProviderID: 1, ServiceID: 10, StaffID: &inactive, Date: projDate})
	assert.ErrorIs(t, err, ErrStaffNotFound)

	missing := int64(99)
	_, err = env.svc.Project(context.Background(), &ProjectRequest{ProviderID: 1, ServiceID: 10, StaffID: &missing, Date: projDate})
	assert.ErrorIs(t, err, ErrStaffNotFound)
}

func TestService_Project_ProviderNotFound(t *testing.T) {
	env := newProjEnv(t)
	env.catalog.providerErr = providerservice.ErrProviderNotFound

	_, err := env.svc.Project(context.Background(), &ProjectRequest{ProviderID: 1, ServiceID: 10, Date: projDate})
	assert.ErrorIs(t, err, ErrProviderNotFound)
}

func TestService_Check(t *testing.T) {
	env := newProjEnv(t)
	env.bookings.bookings = []*domain.Booking{
		{ID: 1, ProviderID: 1, BookingDate: projDate, StartTime: "10:00", DurationMinutes: 60, Status: domain.StatusConfirmed},
	}

	// Свободный кандидат
	result, err := env.svc.Check(context.Background(), &CheckRequest{
		ProviderID: 1, ServiceID: 10, Date: projDate, StartTime: tsOf("09:00"),
	})
	require.NoError(t, err)
	assert.True(t, result.IsAvailable)

	// Занятый кандидат
	result, err = env.svc.Check(context.Background(), &CheckRequest{
		ProviderID: 1, ServiceID: 10, Date: projDate, StartTime: tsOf("10:00"),
	})
	require.NoError(t, err)
	assert.False(t, result.IsAvailable)

	// Время вне сетки кандидатов недоступно, даже если интервал свободен
	result, err = env.svc.Check(context.Background(), &CheckRequest{
		ProviderID: 1, ServiceID: 10, Date: projDate, StartTime: tsOf("09:30"),
	})
	require.NoError(t, err)
	assert.False(t, result.IsAvailable)
}

func TestService_Check_ClosedDayCarriesReason(t *testing.T) {
	env := newProjEnv(t)
	env.schedule.schedule.Holidays = []domain.Holiday{
		{Date: projDate, Recurrence: domain.RecurrenceNone, Reason: "New Year"},
	}

	result, err := env.svc.Check(context.Background(), &CheckRequest{
		ProviderID: 1, ServiceID: 10, Date: projDate, StartTime: tsOf("09:00"),
	})
	require.NoError(t, err)
	assert.False(t, result.IsAvailable)
	assert.Equal(t, "Holiday: New Year", result.Reason)
}

func TestService_AvailableDates(t *testing.T) {
	env := newProjEnv(t)

	// Вторник закрыт (в недельной сетке только понедельник); понедельник 03-23
	// полностью занят бронированиями
	nextMonday := projDate.AddDate(0, 0, 7)
	env.bookings.bookings = []*domain.Booking{
		{ID: 1, ProviderID: 1, BookingDate: nextMonday, StartTime: "09:00", DurationMinutes: 60, Status: domain.StatusConfirmed},
		{ID: 2, ProviderID: 1, BookingDate: nextMonday, StartTime: "10:00", DurationMinutes: 60, Status: domain.StatusConfirmed},
		{ID: 3, ProviderID: 1, BookingDate: nextMonday, StartTime: "11:00", DurationMinutes: 60, Status: domain.StatusRequested},
	}

	result, err := env.svc.AvailableDates(context.Background(), &DatesRequest{
		ProviderID: 1, ServiceID: 10,
		FromDate: projDate,
		ToDate:   nextMonday,
	})
	require.NoError(t, err)
	require.Len(t, result, 8)

	byDate := make(map[string]bool, len(result))
	for _, d := range result {
		byDate[d.Date] = d.HasAvailability
	}

	assert.True(t, byDate["2026-03-16"])
	// Будни без недельной записи закрыты
	assert.False(t, byDate["2026-03-17"])
	assert.False(t, byDate["2026-03-20"])
	// Полностью занятый понедельник
	assert.False(t, byDate["2026-03-23"])
}
