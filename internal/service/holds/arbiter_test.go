package holds

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/pkg/types"
)

type fakeBookingReader struct {
	bookings []*domain.Booking
}

func (f *fakeBookingReader) GetByProviderWithFilter(_ context.Context, _ domain.ProviderBookingsFilter) ([]*domain.Booking, error) {
	return f.bookings, nil
}

type fakeScheduleResolver struct {
	day domain.EffectiveDay
}

func (f *fakeScheduleResolver) EffectiveDay(_ context.Context, _ int64, _ time.Time) (domain.EffectiveDay, error) {
	return f.day, nil
}

type fakeTimeProvider struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeTimeProvider) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeTimeProvider) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

type testLogger struct{}

func (testLogger) Info(string, ...interface{})  {}
func (testLogger) Warn(string, ...interface{})  {}
func (testLogger) Error(string, ...interface{}) {}

func tsp(s string) *types.TimeString {
	v := types.TimeString(s)
	return &v
}

var (
	holdDate = time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC)
	holdNow  = time.Date(2026, 3, 16, 8, 0, 0, 0, time.UTC)
)

func workingDay() domain.EffectiveDay {
	return domain.EffectiveDay{
		Date:      holdDate,
		IsOpen:    true,
		OpenTime:  tsp("09:00"),
		CloseTime: tsp("18:00"),
		Breaks: []domain.BreakPeriod{
			{Start: "13:00", End: "14:00", Label: "lunch"},
		},
	}
}

func newTestArbiter(t *testing.T, bookings []*domain.Booking) (*Arbiter, *MemoryStore, *fakeTimeProvider) {
	t.Helper()

	store := NewMemoryStore()
	clock := &fakeTimeProvider{now: holdNow}
	arbiter := NewArbiter(
		store,
		&fakeBookingReader{bookings: bookings},
		&fakeScheduleResolver{day: workingDay()},
		5*time.Minute,
		nil,
		testLogger{},
	)
	arbiter.timeProvider = clock
	return arbiter, store, clock
}

func acquireReq(start string) *AcquireRequest {
	return &AcquireRequest{
		ProviderID:      1,
		Date:            holdDate,
		StartTime:       types.TimeString(start),
		DurationMinutes: 60,
		HolderID:        100,
	}
}

func TestArbiter_TryAcquire_Success(t *testing.T) {
	arbiter, store, _ := newTestArbiter(t, nil)

	hold, err := arbiter.TryAcquire(context.Background(), acquireReq("10:00"))
	require.NoError(t, err)

	assert.NotEmpty(t, hold.ID)
	assert.Equal(t, domain.HoldStateActive, hold.State)
	assert.Equal(t, holdNow.Add(5*time.Minute), hold.ExpiresAt)

	stored, err := store.GetByID(context.Background(), hold.ID)
	require.NoError(t, err)
	assert.Equal(t, hold.ID, stored.ID)
}

func TestArbiter_TryAcquire_OverlapWithActiveHold(t *testing.T) {
	arbiter, _, _ := newTestArbiter(t, nil)
	ctx := context.Background()

	_, err := arbiter.TryAcquire(ctx, acquireReq("10:00"))
	require.NoError(t, err)

	// Частично пересекающийся интервал отклоняется
	_, err = arbiter.TryAcquire(ctx, acquireReq("10:30"))
	assert.ErrorIs(t, err, ErrAlreadyHeld)

	// Стык без пересечения проходит
	_, err = arbiter.TryAcquire(ctx, acquireReq("11:00"))
	assert.NoError(t, err)
}

func TestArbiter_TryAcquire_OverlapWithBooking(t *testing.T) {
	booking := &domain.Booking{
		ID:              1,
		ProviderID:      1,
		BookingDate:     holdDate,
		StartTime:       "10:00",
		DurationMinutes: 60,
		Status:          domain.StatusConfirmed,
	}
	arbiter, _, _ := newTestArbiter(t, []*domain.Booking{booking})

	_, err := arbiter.TryAcquire(context.Background(), acquireReq("10:30"))
	assert.ErrorIs(t, err, ErrAlreadyBooked)
}

func TestArbiter_TryAcquire_CancelledBookingDoesNotBlock(t *testing.T) {
	booking := &domain.Booking{
		ID:              1,
		ProviderID:      1,
		BookingDate:     holdDate,
		StartTime:       "12:00",
		DurationMinutes: 60,
		Status:          domain.StatusCancelled,
	}
	arbiter, _, _ := newTestArbiter(t, []*domain.Booking{booking})

	_, err := arbiter.TryAcquire(context.Background(), acquireReq("12:00"))
	assert.NoError(t, err)
}

func TestArbiter_TryAcquire_OutsideSchedule(t *testing.T) {
	arbiter, _, _ := newTestArbiter(t, nil)
	ctx := context.Background()

	// До открытия
	_, err := arbiter.TryAcquire(ctx, acquireReq("08:00"))
	assert.ErrorIs(t, err, ErrOutsideSchedule)

	// Интервал задевает перерыв
	_, err = arbiter.TryAcquire(ctx, acquireReq("12:30"))
	assert.ErrorIs(t, err, ErrOutsideSchedule)

	// Конец выходит за закрытие
	_, err = arbiter.TryAcquire(ctx, acquireReq("17:30"))
	assert.ErrorIs(t, err, ErrOutsideSchedule)
}

func TestArbiter_TryAcquire_StaffScoping(t *testing.T) {
	arbiter, _, _ := newTestArbiter(t, nil)
	ctx := context.Background()

	staff1 := int64(1)
	staff2 := int64(2)

	req1 := acquireReq("10:00")
	req1.StaffID = &staff1
	_, err := arbiter.TryAcquire(ctx, req1)
	require.NoError(t, err)

	// Другой сотрудник на тот же интервал свободен
	req2 := acquireReq("10:00")
	req2.StaffID = &staff2
	_, err = arbiter.TryAcquire(ctx, req2)
	assert.NoError(t, err)

	// Холд "на любого сотрудника" блокируется обоими
	req3 := acquireReq("10:00")
	_, err = arbiter.TryAcquire(ctx, req3)
	assert.ErrorIs(t, err, ErrAlreadyHeld)
}

func TestArbiter_TryAcquire_ExpiredHoldIsReclaimedLazily(t *testing.T) {
	arbiter, store, clock := newTestArbiter(t, nil)
	ctx := context.Background()

	first, err := arbiter.TryAcquire(ctx, acquireReq("10:00"))
	require.NoError(t, err)

	clock.Advance(6 * time.Minute)

	// Истекший холд вычищается при повторной попытке, интервал снова свободен
	second, err := arbiter.TryAcquire(ctx, acquireReq("10:00"))
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	reclaimed, err := store.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.HoldStateExpired, reclaimed.State)
}

func TestArbiter_TryAcquire_ExactlyOneWinner(t *testing.T) {
	arbiter, _, _ := newTestArbiter(t, nil)
	ctx := context.Background()

	const contenders = 16

	var wg sync.WaitGroup
	var mu sync.Mutex
	winners := 0
	losers := 0

	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func(holder int64) {
			defer wg.Done()
			req := acquireReq("15:00")
			req.HolderID = holder
			_, err := arbiter.TryAcquire(ctx, req)

			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				winners++
				return
			}
			assert.ErrorIs(t, err, ErrAlreadyHeld)
			losers++
		}(int64(i + 1))
	}
	wg.Wait()

	assert.Equal(t, 1, winners)
	assert.Equal(t, contenders-1, losers)
}

func TestArbiter_TryAcquire_InvalidInput(t *testing.T) {
	arbiter, _, _ := newTestArbiter(t, nil)
	ctx := context.Background()

	req := acquireReq("10:00")
	req.ProviderID = 0
	_, err := arbiter.TryAcquire(ctx, req)
	assert.ErrorIs(t, err, ErrInvalidInput)

	req = acquireReq("10:00")
	req.DurationMinutes = -30
	_, err = arbiter.TryAcquire(ctx, req)
	assert.ErrorIs(t, err, ErrInvalidInput)

	req = acquireReq("23:30")
	req.DurationMinutes = 60
	_, err = arbiter.TryAcquire(ctx, req)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestArbiter_Release(t *testing.T) {
	arbiter, store, _ := newTestArbiter(t, nil)
	ctx := context.Background()

	hold, err := arbiter.TryAcquire(ctx, acquireReq("10:00"))
	require.NoError(t, err)

	// Чужой пользователь снять холд не может
	err = arbiter.Release(ctx, hold.ID, hold.HolderID+1)
	assert.ErrorIs(t, err, ErrNotHoldOwner)

	require.NoError(t, arbiter.Release(ctx, hold.ID, hold.HolderID))

	released, err := store.GetByID(ctx, hold.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.HoldStateReleased, released.State)

	// Повторное снятие уже неактивного холда
	err = arbiter.Release(ctx, hold.ID, hold.HolderID)
	assert.ErrorIs(t, err, ErrHoldNotActive)

	err = arbiter.Release(ctx, "missing", hold.HolderID)
	assert.ErrorIs(t, err, ErrHoldNotFound)
}

func TestArbiter_Consume(t *testing.T) {
	arbiter, _, _ := newTestArbiter(t, nil)
	ctx := context.Background()

	hold, err := arbiter.TryAcquire(ctx, acquireReq("10:00"))
	require.NoError(t, err)

	consumed, err := arbiter.Consume(ctx, hold.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.HoldStateConsumed, consumed.State)

	// Потребить холд можно ровно один раз
	_, err = arbiter.Consume(ctx, hold.ID)
	assert.ErrorIs(t, err, ErrHoldNotActive)
}

func TestArbiter_Consume_Expired(t *testing.T) {
	arbiter, store, clock := newTestArbiter(t, nil)
	ctx := context.Background()

	hold, err := arbiter.TryAcquire(ctx, acquireReq("10:00"))
	require.NoError(t, err)

	clock.Advance(10 * time.Minute)

	_, err = arbiter.Consume(ctx, hold.ID)
	assert.ErrorIs(t, err, ErrHoldExpired)

	// Истечение фиксируется в хранилище
	expired, err := store.GetByID(ctx, hold.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.HoldStateExpired, expired.State)
}

func TestArbiter_ReclaimExpired(t *testing.T) {
	arbiter, store, clock := newTestArbiter(t, nil)
	ctx := context.Background()

	stale1, err := arbiter.TryAcquire(ctx, acquireReq("10:00"))
	require.NoError(t, err)
	stale2, err := arbiter.TryAcquire(ctx, acquireReq("11:00"))
	require.NoError(t, err)

	clock.Advance(6 * time.Minute)

	reclaimed, err := arbiter.ReclaimExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, reclaimed)

	for _, id := range []string{stale1.ID, stale2.ID} {
		expired, err := store.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, domain.HoldStateExpired, expired.State)
	}

	// Свежий холд sweeper не трогает
	fresh, err := arbiter.TryAcquire(ctx, acquireReq("16:00"))
	require.NoError(t, err)

	// Повторный запуск идемпотентен
	reclaimed, err = arbiter.ReclaimExpired(ctx)
	require.NoError(t, err)
	assert.Zero(t, reclaimed)

	kept, err := store.GetByID(ctx, fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.HoldStateActive, kept.State)
}

func TestArbiter_Reinstate(t *testing.T) {
	arbiter, store, _ := newTestArbiter(t, nil)
	ctx := context.Background()

	hold, err := arbiter.TryAcquire(ctx, acquireReq("10:00"))
	require.NoError(t, err)

	_, err = arbiter.Consume(ctx, hold.ID)
	require.NoError(t, err)

	require.NoError(t, arbiter.Reinstate(ctx, hold.ID))

	restored, err := store.GetByID(ctx, hold.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.HoldStateActive, restored.State)

	// Возвращенный холд снова можно потребить
	consumed, err := arbiter.Consume(ctx, hold.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.HoldStateConsumed, consumed.State)

	// Несуществующий холд возвращать нечего
	err = arbiter.Reinstate(ctx, "missing")
	assert.ErrorIs(t, err, ErrHoldNotFound)
}
