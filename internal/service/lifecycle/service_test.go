package lifecycle

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/events"
	bookingRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/booking"
	"github.com/m04kA/SMC-SchedulingService/internal/integrations/providerservice"
	"github.com/m04kA/SMC-SchedulingService/internal/service/holds"
	"github.com/m04kA/SMC-SchedulingService/internal/service/lifecycle/models"
	"github.com/m04kA/SMC-SchedulingService/pkg/types"
)

// Фейки

type fakeBookingRepository struct {
	mu        sync.Mutex
	nextID    int64
	rows      map[int64]*domain.Booking
	history   map[int64][]*domain.BookingHistoryEntry
	createErr error
}

func newFakeBookingRepository() *fakeBookingRepository {
	return &fakeBookingRepository{
		rows:    make(map[int64]*domain.Booking),
		history: make(map[int64][]*domain.BookingHistoryEntry),
	}
}

func (f *fakeBookingRepository) Create(_ context.Context, b *domain.Booking) (*domain.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.createErr != nil {
		return nil, f.createErr
	}
	f.nextID++
	stored := *b
	stored.ID = f.nextID
	stored.Version = 1
	f.rows[stored.ID] = &stored

	out := stored
	return &out, nil
}

func (f *fakeBookingRepository) GetByID(_ context.Context, id int64) (*domain.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	row, ok := f.rows[id]
	if !ok {
		return nil, bookingRepo.ErrBookingNotFound
	}
	out := *row
	return &out, nil
}

func (f *fakeBookingRepository) GetByCustomerID(_ context.Context, customerID int64, status *domain.BookingStatus) ([]*domain.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var result []*domain.Booking
	for _, row := range f.rows {
		if row.CustomerID != customerID {
			continue
		}
		if status != nil && row.Status != *status {
			continue
		}
		out := *row
		result = append(result, &out)
	}
	return result, nil
}

func (f *fakeBookingRepository) GetByProviderWithFilter(_ context.Context, filter domain.ProviderBookingsFilter) ([]*domain.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var result []*domain.Booking
	for _, row := range f.rows {
		if row.ProviderID != filter.ProviderID {
			continue
		}
		if filter.StartDate != nil && row.BookingDate.Before(domain.DateOnly(*filter.StartDate)) {
			continue
		}
		if filter.EndDate != nil && row.BookingDate.After(domain.DateOnly(*filter.EndDate)) {
			continue
		}
		if filter.Status != nil && row.Status != *filter.Status {
			continue
		}
		if filter.OnlyOccupying && !row.Occupies() {
			continue
		}
		out := *row
		result = append(result, &out)
	}
	return result, nil
}

func (f *fakeBookingRepository) UpdateStatus(_ context.Context, id int64, fromVersion int64, update domain.BookingStatusUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	row, ok := f.rows[id]
	if !ok {
		return bookingRepo.ErrBookingNotFound
	}
	if row.Version != fromVersion {
		return bookingRepo.ErrStaleVersion
	}

	row.Status = update.Status
	if update.CancellationReason != nil {
		row.CancellationReason = update.CancellationReason
	}
	if update.CancelledBy != nil {
		row.CancelledBy = update.CancelledBy
	}
	if update.CancelledAt != nil {
		row.CancelledAt = update.CancelledAt
	}
	if update.RescheduledToID != nil {
		row.RescheduledToID = update.RescheduledToID
	}
	row.Version++
	return nil
}

func (f *fakeBookingRepository) AddHistoryEntry(_ context.Context, bookingID int64, status domain.BookingStatus, description string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.history[bookingID] = append(f.history[bookingID], &domain.BookingHistoryEntry{
		BookingID:   bookingID,
		Status:      status,
		Description: description,
	})
	return nil
}

func (f *fakeBookingRepository) GetHistory(_ context.Context, bookingID int64) ([]*domain.BookingHistoryEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.history[bookingID], nil
}

// fakeHoldConsumer повторяет CAS-семантику арбитра над одним холдом
type fakeHoldConsumer struct {
	mu     sync.Mutex
	hold   *domain.SlotHold
	getErr error
}

func (f *fakeHoldConsumer) Get(_ context.Context, _ string) (*domain.SlotHold, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.getErr != nil {
		return nil, f.getErr
	}
	if f.hold == nil {
		return nil, holds.ErrHoldNotFound
	}
	out := *f.hold
	return &out, nil
}

func (f *fakeHoldConsumer) Consume(_ context.Context, _ string) (*domain.SlotHold, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.hold == nil {
		return nil, holds.ErrHoldNotFound
	}
	if f.hold.State != domain.HoldStateActive {
		return nil, holds.ErrHoldNotActive
	}
	f.hold.State = domain.HoldStateConsumed
	out := *f.hold
	return &out, nil
}

func (f *fakeHoldConsumer) Reinstate(_ context.Context, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.hold == nil {
		return holds.ErrHoldNotFound
	}
	if f.hold.State != domain.HoldStateConsumed {
		return holds.ErrHoldNotActive
	}
	f.hold.State = domain.HoldStateActive
	return nil
}

func (f *fakeHoldConsumer) state() domain.HoldState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hold.State
}

type fakeCatalog struct {
	provider   *providerservice.Provider
	service    *providerservice.Service
	serviceErr error
}

func (f *fakeCatalog) GetProvider(_ context.Context, _ int64) (*providerservice.Provider, error) {
	return f.provider, nil
}

func (f *fakeCatalog) GetService(_ context.Context, _, _ int64) (*providerservice.Service, error) {
	if f.serviceErr != nil {
		return nil, f.serviceErr
	}
	return f.service, nil
}

type fakeDayResolver struct{}

func (fakeDayResolver) EffectiveDay(_ context.Context, _ int64, date time.Time) (domain.EffectiveDay, error) {
	open := tsOf("09:00")
	closeTime := tsOf("18:00")
	return domain.EffectiveDay{
		Date:      domain.DateOnly(date),
		IsOpen:    true,
		OpenTime:  &open,
		CloseTime: &closeTime,
	}, nil
}

type fakeHoldReader struct {
	holds []*domain.SlotHold
}

func (f *fakeHoldReader) ListByProviderDate(_ context.Context, _ int64, _ time.Time) ([]*domain.SlotHold, error) {
	return f.holds, nil
}

type passthroughTxManager struct{}

func (passthroughTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (passthroughTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (passthroughTxManager) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type capturePublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (c *capturePublisher) Publish(event events.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
}

func (c *capturePublisher) last() events.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.events[len(c.events)-1]
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

// Фикстуры

const (
	customerID    = int64(100)
	managerID     = int64(500)
	strangerID    = int64(900)
	providerID    = int64(1)
	serviceID     = int64(10)
	activeStaffID = int64(7)
)

func tsOf(s string) types.TimeString {
	return types.TimeString(s)
}

func testPolicy() domain.BookingPolicy {
	return domain.BookingPolicy{
		MinAdvanceBookingHours:    1,
		MaxAdvanceBookingDays:     90,
		CancellationWindowHours:   24,
		CancellationFeePercentage: 10.0,
		AllowRescheduling:         true,
		RescheduleWindowHours:     2,
	}
}

type testEnv struct {
	svc       *Service
	repo      *fakeBookingRepository
	publisher *capturePublisher
	clock     *fixedClock
	consumer  *fakeHoldConsumer
	catalog   *fakeCatalog
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	repo := newFakeBookingRepository()
	publisher := &capturePublisher{}
	clock := &fixedClock{now: time.Date(2026, 3, 16, 8, 0, 0, 0, time.UTC)}

	catalogPolicy := providerservice.BookingPolicy{
		MinAdvanceBookingHours:    1,
		MaxAdvanceBookingDays:     90,
		CancellationWindowHours:   24,
		CancellationFeePercentage: 10.0,
		AllowRescheduling:         true,
		RescheduleWindowHours:     2,
	}
	catalog := &fakeCatalog{
		provider: &providerservice.Provider{
			ID:         providerID,
			ManagerIDs: []int64{managerID},
			Staff:      []providerservice.Staff{{ID: activeStaffID, Name: "Anna", Active: true}},
		},
		service: &providerservice.Service{ID: serviceID, ProviderID: providerID, DurationMinutes: 60, Policy: &catalogPolicy},
	}
	consumer := &fakeHoldConsumer{}

	svc := NewService(
		repo,
		consumer,
		catalog,
		fakeDayResolver{},
		&fakeHoldReader{},
		passthroughTxManager{},
		publisher,
		nil,
		nopLogger{},
	)
	svc.timeProvider = clock

	return &testEnv{svc: svc, repo: repo, publisher: publisher, clock: clock, consumer: consumer, catalog: catalog}
}

// seedHold кладет активный неистекший холд владельца в фейковый арбитр
func (e *testEnv) seedHold(holderID int64) {
	e.consumer.hold = &domain.SlotHold{
		ID:              "hold-1",
		ProviderID:      providerID,
		Date:            bookingDay,
		StartTime:       tsOf("10:00"),
		DurationMinutes: 60,
		HolderID:        holderID,
		State:           domain.HoldStateActive,
		ExpiresAt:       e.clock.now.Add(5 * time.Minute),
	}
}

// seedBooking кладет бронирование в репозиторий напрямую, минуя холды
func (e *testEnv) seedBooking(t *testing.T, status domain.BookingStatus, date time.Time, start string) *domain.Booking {
	t.Helper()

	created, err := e.repo.Create(context.Background(), &domain.Booking{
		ProviderID:      providerID,
		ServiceID:       serviceID,
		CustomerID:      customerID,
		BookingDate:     domain.DateOnly(date),
		StartTime:       tsOf(start),
		DurationMinutes: 60,
		Status:          status,
		Policy:          testPolicy(),
	})
	require.NoError(t, err)
	return created
}

var bookingDay = time.Date(2026, 3, 17, 0, 0, 0, 0, time.UTC)

// Тесты

func TestService_CreateFromHold(t *testing.T) {
	env := newTestEnv(t)
	env.seedHold(customerID)

	resp, err := env.svc.CreateFromHold(context.Background(), &models.CreateFromHoldRequest{
		HoldID:     "hold-1",
		CustomerID: customerID,
		ServiceID:  serviceID,
	})
	require.NoError(t, err)

	assert.Equal(t, string(domain.StatusRequested), resp.Status)
	assert.Equal(t, "10:00", resp.StartTime)
	assert.Equal(t, "2026-03-17", resp.BookingDate)
	// Политика снимается с услуги в момент создания
	assert.Equal(t, 10.0, resp.Policy.CancellationFeePercentage)
	assert.True(t, resp.Policy.AllowRescheduling)

	// Холд потреблен успешным созданием
	assert.Equal(t, domain.HoldStateConsumed, env.consumer.state())

	event := env.publisher.last()
	assert.Equal(t, events.TypeBookingCreated, event.Type)
	assert.Equal(t, resp.ID, event.BookingID)

	history, err := env.repo.GetHistory(context.Background(), resp.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, domain.StatusRequested, history[0].Status)
}

func TestService_CreateFromHold_ForeignAttemptKeepsHold(t *testing.T) {
	env := newTestEnv(t)
	env.seedHold(customerID)

	// Чужая попытка отклоняется и не трогает холд
	_, err := env.svc.CreateFromHold(context.Background(), &models.CreateFromHoldRequest{
		HoldID:     "hold-1",
		CustomerID: strangerID,
		ServiceID:  serviceID,
	})
	assert.ErrorIs(t, err, ErrAccessDenied)
	assert.Equal(t, domain.HoldStateActive, env.consumer.state())

	// Владелец после этого бронирует как ни в чем не бывало
	resp, err := env.svc.CreateFromHold(context.Background(), &models.CreateFromHoldRequest{
		HoldID:     "hold-1",
		CustomerID: customerID,
		ServiceID:  serviceID,
	})
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusRequested), resp.Status)
}

func TestService_CreateFromHold_UnknownServiceKeepsHold(t *testing.T) {
	env := newTestEnv(t)
	env.seedHold(customerID)
	env.catalog.serviceErr = providerservice.ErrServiceNotFound

	_, err := env.svc.CreateFromHold(context.Background(), &models.CreateFromHoldRequest{
		HoldID:     "hold-1",
		CustomerID: customerID,
		ServiceID:  serviceID,
	})
	assert.ErrorIs(t, err, ErrServiceNotFound)
	assert.Equal(t, domain.HoldStateActive, env.consumer.state())

	// С верной услугой тот же холд все еще годен
	env.catalog.serviceErr = nil
	_, err = env.svc.CreateFromHold(context.Background(), &models.CreateFromHoldRequest{
		HoldID:     "hold-1",
		CustomerID: customerID,
		ServiceID:  serviceID,
	})
	assert.NoError(t, err)
}

func TestService_CreateFromHold_CreateFailureReinstatesHold(t *testing.T) {
	env := newTestEnv(t)
	env.seedHold(customerID)
	env.repo.createErr = errors.New("connection reset")

	_, err := env.svc.CreateFromHold(context.Background(), &models.CreateFromHoldRequest{
		HoldID:     "hold-1",
		CustomerID: customerID,
		ServiceID:  serviceID,
	})
	assert.ErrorIs(t, err, ErrInternal)

	// Холд компенсационно возвращен в active, повтор проходит
	assert.Equal(t, domain.HoldStateActive, env.consumer.state())

	env.repo.createErr = nil
	_, err = env.svc.CreateFromHold(context.Background(), &models.CreateFromHoldRequest{
		HoldID:     "hold-1",
		CustomerID: customerID,
		ServiceID:  serviceID,
	})
	assert.NoError(t, err)
}

func TestService_CreateFromHold_HoldNotUsable(t *testing.T) {
	env := newTestEnv(t)

	// Снятый холд
	env.seedHold(customerID)
	env.consumer.hold.State = domain.HoldStateReleased
	_, err := env.svc.CreateFromHold(context.Background(), &models.CreateFromHoldRequest{
		HoldID:     "hold-1",
		CustomerID: customerID,
		ServiceID:  serviceID,
	})
	assert.ErrorIs(t, err, ErrHoldNotUsable)

	// Истекший холд
	env.seedHold(customerID)
	env.consumer.hold.ExpiresAt = env.clock.now.Add(-time.Minute)
	_, err = env.svc.CreateFromHold(context.Background(), &models.CreateFromHoldRequest{
		HoldID:     "hold-1",
		CustomerID: customerID,
		ServiceID:  serviceID,
	})
	assert.ErrorIs(t, err, ErrHoldNotUsable)

	// Несуществующий холд
	env.consumer.hold = nil
	_, err = env.svc.CreateFromHold(context.Background(), &models.CreateFromHoldRequest{
		HoldID:     "hold-1",
		CustomerID: customerID,
		ServiceID:  serviceID,
	})
	assert.ErrorIs(t, err, ErrHoldNotUsable)
}

func TestService_Confirm(t *testing.T) {
	env := newTestEnv(t)
	booking := env.seedBooking(t, domain.StatusRequested, bookingDay, "10:00")

	// Посторонний пользователь не может подтвердить
	_, err := env.svc.Confirm(context.Background(), booking.ID, strangerID)
	assert.ErrorIs(t, err, ErrAccessDenied)

	resp, err := env.svc.Confirm(context.Background(), booking.ID, managerID)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusConfirmed), resp.Status)
	assert.Equal(t, events.TypeBookingConfirmed, env.publisher.last().Type)

	// Повторное подтверждение - недопустимый переход
	_, err = env.svc.Confirm(context.Background(), booking.ID, managerID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestService_Cancel_CustomerInsideWindowPaysFee(t *testing.T) {
	env := newTestEnv(t)
	booking := env.seedBooking(t, domain.StatusConfirmed, bookingDay, "10:00")

	// 14 часов до начала - внутри 24-часового окна отмены
	env.clock.now = time.Date(2026, 3, 16, 20, 0, 0, 0, time.UTC)

	resp, err := env.svc.Cancel(context.Background(), booking.ID, &models.CancelBookingRequest{
		UserID:             customerID,
		CancellationReason: "passenger changed plans",
	})
	require.NoError(t, err)
	assert.Equal(t, 10.0, resp.FeePercentage)

	event := env.publisher.last()
	assert.Equal(t, events.TypeBookingCancelled, event.Type)
	require.NotNil(t, event.FeePercentage)
	assert.Equal(t, 10.0, *event.FeePercentage)

	stored, err := env.repo.GetByID(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, stored.Status)
	require.NotNil(t, stored.CancelledBy)
	assert.Equal(t, domain.CancelledByCustomer, *stored.CancelledBy)
}

func TestService_Cancel_OutsideWindowNoFee(t *testing.T) {
	env := newTestEnv(t)
	booking := env.seedBooking(t, domain.StatusConfirmed, bookingDay, "10:00")

	// Трое суток до начала - окно отмены еще не действует
	env.clock.now = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

	resp, err := env.svc.Cancel(context.Background(), booking.ID, &models.CancelBookingRequest{
		UserID:             customerID,
		CancellationReason: "no longer needed",
	})
	require.NoError(t, err)
	assert.Zero(t, resp.FeePercentage)
	assert.Nil(t, env.publisher.last().FeePercentage)
}

func TestService_Cancel_ProviderNeverPaysFee(t *testing.T) {
	env := newTestEnv(t)
	booking := env.seedBooking(t, domain.StatusConfirmed, bookingDay, "10:00")

	// Внутри окна, но отменяет менеджер провайдера
	env.clock.now = time.Date(2026, 3, 16, 20, 0, 0, 0, time.UTC)

	resp, err := env.svc.Cancel(context.Background(), booking.ID, &models.CancelBookingRequest{
		UserID:             managerID,
		CancellationReason: "staff illness",
	})
	require.NoError(t, err)
	assert.Zero(t, resp.FeePercentage)

	stored, err := env.repo.GetByID(context.Background(), booking.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.CancelledBy)
	assert.Equal(t, domain.CancelledByProvider, *stored.CancelledBy)
}

func TestService_Cancel_PastBooking(t *testing.T) {
	env := newTestEnv(t)
	booking := env.seedBooking(t, domain.StatusConfirmed, bookingDay, "10:00")

	env.clock.now = time.Date(2026, 3, 17, 11, 0, 0, 0, time.UTC)

	_, err := env.svc.Cancel(context.Background(), booking.ID, &models.CancelBookingRequest{
		UserID:             customerID,
		CancellationReason: "too late",
	})
	assert.ErrorIs(t, err, ErrBookingInPast)
}

func TestService_Cancel_TerminalBooking(t *testing.T) {
	env := newTestEnv(t)
	booking := env.seedBooking(t, domain.StatusCompleted, bookingDay, "10:00")

	_, err := env.svc.Cancel(context.Background(), booking.ID, &models.CancelBookingRequest{
		UserID:             customerID,
		CancellationReason: "x",
	})
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestService_Reschedule(t *testing.T) {
	env := newTestEnv(t)
	booking := env.seedBooking(t, domain.StatusConfirmed, bookingDay, "10:00")

	newDate := time.Date(2026, 3, 18, 0, 0, 0, 0, time.UTC)
	resp, err := env.svc.Reschedule(context.Background(), booking.ID, &models.RescheduleBookingRequest{
		UserID:       customerID,
		NewDate:      newDate,
		NewStartTime: tsOf("14:00"),
	})
	require.NoError(t, err)

	// Новое бронирование наследует статус и политику исходного
	assert.Equal(t, string(domain.StatusConfirmed), resp.Status)
	assert.Equal(t, "2026-03-18", resp.BookingDate)
	assert.Equal(t, "14:00", resp.StartTime)
	require.NotNil(t, resp.PreviousBookingID)
	assert.Equal(t, booking.ID, *resp.PreviousBookingID)

	// Исходное переведено в rescheduled и связано с новым
	old, err := env.repo.GetByID(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRescheduled, old.Status)
	require.NotNil(t, old.RescheduledToID)
	assert.Equal(t, resp.ID, *old.RescheduledToID)

	event := env.publisher.last()
	assert.Equal(t, events.TypeBookingRescheduled, event.Type)
	require.NotNil(t, event.NewBookingID)
	assert.Equal(t, resp.ID, *event.NewBookingID)
}

func TestService_Reschedule_TargetSlotOccupied(t *testing.T) {
	env := newTestEnv(t)
	booking := env.seedBooking(t, domain.StatusConfirmed, bookingDay, "10:00")

	newDate := time.Date(2026, 3, 18, 0, 0, 0, 0, time.UTC)
	env.seedBooking(t, domain.StatusConfirmed, newDate, "14:00")

	_, err := env.svc.Reschedule(context.Background(), booking.ID, &models.RescheduleBookingRequest{
		UserID:       customerID,
		NewDate:      newDate,
		NewStartTime: tsOf("14:30"),
	})
	assert.ErrorIs(t, err, ErrSlotUnavailable)
}

func TestService_Reschedule_UnknownStaff(t *testing.T) {
	env := newTestEnv(t)
	booking := env.seedBooking(t, domain.StatusConfirmed, bookingDay, "10:00")

	newDate := time.Date(2026, 3, 18, 0, 0, 0, 0, time.UTC)
	ghost := int64(99)
	_, err := env.svc.Reschedule(context.Background(), booking.ID, &models.RescheduleBookingRequest{
		UserID:       customerID,
		NewDate:      newDate,
		NewStartTime: tsOf("14:00"),
		NewStaffID:   &ghost,
	})
	assert.ErrorIs(t, err, ErrStaffNotFound)

	// Действующий сотрудник из каталога проходит
	staff := activeStaffID
	resp, err := env.svc.Reschedule(context.Background(), booking.ID, &models.RescheduleBookingRequest{
		UserID:       customerID,
		NewDate:      newDate,
		NewStartTime: tsOf("14:00"),
		NewStaffID:   &staff,
	})
	require.NoError(t, err)
	require.NotNil(t, resp.StaffID)
	assert.Equal(t, activeStaffID, *resp.StaffID)
}

func TestService_Reschedule_WindowClosed(t *testing.T) {
	env := newTestEnv(t)
	booking := env.seedBooking(t, domain.StatusConfirmed, bookingDay, "10:00")

	// Час до начала при окне переноса в 2 часа
	env.clock.now = time.Date(2026, 3, 17, 9, 0, 0, 0, time.UTC)

	_, err := env.svc.Reschedule(context.Background(), booking.ID, &models.RescheduleBookingRequest{
		UserID:       customerID,
		NewDate:      time.Date(2026, 3, 18, 0, 0, 0, 0, time.UTC),
		NewStartTime: tsOf("14:00"),
	})
	assert.ErrorIs(t, err, ErrRescheduleWindowClosed)
}

func TestService_Reschedule_DisabledByPolicy(t *testing.T) {
	env := newTestEnv(t)

	created, err := env.repo.Create(context.Background(), &domain.Booking{
		ProviderID:      providerID,
		ServiceID:       serviceID,
		CustomerID:      customerID,
		BookingDate:     bookingDay,
		StartTime:       tsOf("10:00"),
		DurationMinutes: 60,
		Status:          domain.StatusConfirmed,
		Policy:          domain.BookingPolicy{AllowRescheduling: false, MaxAdvanceBookingDays: 90},
	})
	require.NoError(t, err)

	_, err = env.svc.Reschedule(context.Background(), created.ID, &models.RescheduleBookingRequest{
		UserID:       customerID,
		NewDate:      time.Date(2026, 3, 18, 0, 0, 0, 0, time.UTC),
		NewStartTime: tsOf("14:00"),
	})
	assert.ErrorIs(t, err, ErrReschedulingDisabled)
}

func TestService_Complete(t *testing.T) {
	env := newTestEnv(t)
	booking := env.seedBooking(t, domain.StatusConfirmed, bookingDay, "10:00")

	// Услуга еще не закончилась
	env.clock.now = time.Date(2026, 3, 17, 10, 30, 0, 0, time.UTC)
	_, err := env.svc.Complete(context.Background(), booking.ID, managerID)
	assert.ErrorIs(t, err, ErrBookingNotFinished)

	env.clock.now = time.Date(2026, 3, 17, 11, 30, 0, 0, time.UTC)
	resp, err := env.svc.Complete(context.Background(), booking.ID, managerID)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusCompleted), resp.Status)
	assert.Equal(t, events.TypeBookingCompleted, env.publisher.last().Type)
}

func TestService_MarkNoShow(t *testing.T) {
	env := newTestEnv(t)
	booking := env.seedBooking(t, domain.StatusConfirmed, bookingDay, "10:00")

	// Время начала еще не наступило
	env.clock.now = time.Date(2026, 3, 17, 9, 0, 0, 0, time.UTC)
	_, err := env.svc.MarkNoShow(context.Background(), booking.ID, managerID)
	assert.ErrorIs(t, err, ErrBookingNotStarted)

	env.clock.now = time.Date(2026, 3, 17, 10, 15, 0, 0, time.UTC)
	resp, err := env.svc.MarkNoShow(context.Background(), booking.ID, managerID)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusNoShow), resp.Status)
	assert.Equal(t, events.TypeBookingNoShow, env.publisher.last().Type)
}

func TestService_GetByID_Access(t *testing.T) {
	env := newTestEnv(t)
	booking := env.seedBooking(t, domain.StatusRequested, bookingDay, "10:00")

	_, err := env.svc.GetByID(context.Background(), booking.ID, customerID)
	assert.NoError(t, err)

	_, err = env.svc.GetByID(context.Background(), booking.ID, managerID)
	assert.NoError(t, err)

	_, err = env.svc.GetByID(context.Background(), booking.ID, strangerID)
	assert.ErrorIs(t, err, ErrAccessDenied)

	_, err = env.svc.GetByID(context.Background(), 9999, customerID)
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestService_GetUserBookings_InvalidStatus(t *testing.T) {
	env := newTestEnv(t)

	bad := "pending"
	_, err := env.svc.GetUserBookings(context.Background(), &models.GetUserBookingsRequest{
		UserID: customerID,
		Status: &bad,
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
