package holds

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/pkg/types"
)

// Arbiter арбитр холдов: единственная точка взаимного исключения движка.
// Из N одновременных попыток захватить пересекающиеся интервалы побеждает
// ровно одна, остальные получают типизированный отказ без повторов.
type Arbiter struct {
	store        HoldStore
	bookings     BookingReader
	schedule     ScheduleResolver
	holdDuration time.Duration
	timeProvider TimeProvider
	metrics      MetricsCollector
	logger       Logger

	// Мьютекс на провайдера: все проверки и запись холда для одного
	// провайдера сериализуются. Пересечения между провайдерами независимы.
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

// NewArbiter создает арбитр холдов
func NewArbiter(
	store HoldStore,
	bookings BookingReader,
	schedule ScheduleResolver,
	holdDuration time.Duration,
	metrics MetricsCollector,
	logger Logger,
) *Arbiter {
	if metrics == nil {
		metrics = NoopMetrics{}
	}
	return &Arbiter{
		store:        store,
		bookings:     bookings,
		schedule:     schedule,
		holdDuration: holdDuration,
		timeProvider: &RealTimeProvider{},
		metrics:      metrics,
		logger:       logger,
		locks:        make(map[int64]*sync.Mutex),
	}
}

// providerLock возвращает мьютекс провайдера, создавая его при первом обращении
func (a *Arbiter) providerLock(providerID int64) *sync.Mutex {
	a.mu.Lock()
	defer a.mu.Unlock()

	lock, ok := a.locks[providerID]
	if !ok {
		lock = &sync.Mutex{}
		a.locks[providerID] = lock
	}
	return lock
}

// TryAcquire атомарно пытается захватить холд на интервал.
//
// Холд выдается, только если в момент захвата интервал не пересекается ни с
// активным неистекшим холдом, ни с бронированием в статусе requested/confirmed
// для того же провайдера/сотрудника, и попадает в рабочие часы провайдера.
// Истекшие холды на контестируемую дату вычищаются лениво прямо здесь,
// поэтому попытка либо выигрывает, либо быстро проигрывает - без ожидания.
//
// Отказ не оставляет никаких следов в хранилище.
func (a *Arbiter) TryAcquire(ctx context.Context, req *AcquireRequest) (*domain.SlotHold, error) {
	if err := validateAcquireRequest(req); err != nil {
		return nil, err
	}

	now := a.timeProvider.Now()

	endTime, err := req.StartTime.AddMinutes(req.DurationMinutes)
	if err != nil {
		return nil, fmt.Errorf("%w: interval crosses midnight: %v", ErrInvalidInput, err)
	}

	// Проверка рабочих часов не требует блокировки: расписание меняется редко,
	// а финальную защиту дает проверка пересечений под замком.
	day, err := a.schedule.EffectiveDay(ctx, req.ProviderID, req.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to resolve schedule: %v", ErrInternal, err)
	}
	if !slotWithinDay(day, req.StartTime, endTime) {
		a.metrics.IncHoldRejected("outside_schedule")
		a.logger.Warn("TryAcquire: slot %s-%s outside schedule for provider=%d on %s",
			req.StartTime, endTime, req.ProviderID, req.Date.Format(domain.DateFormat))
		return nil, ErrOutsideSchedule
	}

	lock := a.providerLock(req.ProviderID)
	lock.Lock()
	defer lock.Unlock()

	// Ленивая вычистка истекших холдов на контестируемую дату
	if _, err := a.reclaimForProviderDate(ctx, req.ProviderID, req.Date, now); err != nil {
		return nil, err
	}

	// Пересечение с активными холдами
	activeHolds, err := a.store.ListByProviderDate(ctx, req.ProviderID, req.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list holds: %v", ErrInternal, err)
	}
	for _, hold := range activeHolds {
		if !hold.IsActive(now) || !hold.BlocksStaff(req.StaffID) {
			continue
		}
		holdEnd, err := hold.EndTime()
		if err != nil {
			continue
		}
		if domain.IntervalsOverlap(req.StartTime, endTime, hold.StartTime, holdEnd) {
			a.metrics.IncHoldRejected("already_held")
			a.logger.Info("TryAcquire: slot %s-%s already held (hold=%s) for provider=%d",
				req.StartTime, endTime, hold.ID, req.ProviderID)
			return nil, ErrAlreadyHeld
		}
	}

	// Пересечение с активными бронированиями
	date := domain.DateOnly(req.Date)
	bookings, err := a.bookings.GetByProviderWithFilter(ctx, domain.ProviderBookingsFilter{
		ProviderID:    req.ProviderID,
		StartDate:     &date,
		EndDate:       &date,
		OnlyOccupying: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list bookings: %v", ErrInternal, err)
	}
	for _, booking := range bookings {
		if !booking.Occupies() || !booking.BlocksStaff(req.StaffID) {
			continue
		}
		bookingEnd, err := booking.EndTime()
		if err != nil {
			continue
		}
		if domain.IntervalsOverlap(req.StartTime, endTime, booking.StartTime, bookingEnd) {
			a.metrics.IncHoldRejected("already_booked")
			a.logger.Info("TryAcquire: slot %s-%s already booked (booking=%d) for provider=%d",
				req.StartTime, endTime, booking.ID, req.ProviderID)
			return nil, ErrAlreadyBooked
		}
	}

	hold := &domain.SlotHold{
		ID:              uuid.NewString(),
		ProviderID:      req.ProviderID,
		StaffID:         req.StaffID,
		Date:            date,
		StartTime:       req.StartTime,
		DurationMinutes: req.DurationMinutes,
		HolderID:        req.HolderID,
		State:           domain.HoldStateActive,
		ExpiresAt:       now.Add(a.holdDuration),
		CreatedAt:       now,
	}

	if err := a.store.Create(ctx, hold); err != nil {
		return nil, fmt.Errorf("%w: failed to store hold: %v", ErrInternal, err)
	}

	a.metrics.IncHoldAcquired()
	a.logger.Info("TryAcquire: hold %s granted for provider=%d, slot=%s-%s, holder=%d, expires=%s",
		hold.ID, req.ProviderID, req.StartTime, endTime, req.HolderID,
		hold.ExpiresAt.Format(time.RFC3339))

	return hold, nil
}

// Release снимает холд по явной отмене оформления.
// Снять холд может только пользователь, который его захватил.
func (a *Arbiter) Release(ctx context.Context, holdID string, holderID int64) error {
	hold, err := a.store.GetByID(ctx, holdID)
	if err != nil {
		return err
	}
	if hold.HolderID != holderID {
		return ErrNotHoldOwner
	}

	if err := a.store.UpdateState(ctx, holdID, domain.HoldStateActive, domain.HoldStateReleased); err != nil {
		return err
	}
	a.logger.Info("Release: hold %s released by holder %d", holdID, holderID)
	return nil
}

// Get возвращает холд по идентификатору, не меняя его состояния.
// Lifecycle-сервис читает холд для проверок владельца и годности
// до потребления.
func (a *Arbiter) Get(ctx context.Context, holdID string) (*domain.SlotHold, error) {
	return a.store.GetByID(ctx, holdID)
}

// Consume потребляет холд при создании бронирования.
// Это единственный путь, через который холд превращается в бронирование:
// lifecycle-сервис вызывает Consume внутри транзакции создания.
func (a *Arbiter) Consume(ctx context.Context, holdID string) (*domain.SlotHold, error) {
	hold, err := a.store.GetByID(ctx, holdID)
	if err != nil {
		return nil, err
	}

	now := a.timeProvider.Now()
	if hold.State != domain.HoldStateActive {
		return nil, ErrHoldNotActive
	}
	if hold.IsExpired(now) {
		// Фиксируем истечение, чтобы sweeper не трогал холд повторно
		_ = a.store.UpdateState(ctx, holdID, domain.HoldStateActive, domain.HoldStateExpired)
		return nil, ErrHoldExpired
	}

	if err := a.store.UpdateState(ctx, holdID, domain.HoldStateActive, domain.HoldStateConsumed); err != nil {
		return nil, err
	}

	hold.State = domain.HoldStateConsumed
	a.logger.Info("Consume: hold %s consumed by booking creation", holdID)
	return hold, nil
}

// Reinstate возвращает потребленный холд в active (CAS Consumed -> Active).
// Компенсация для случая, когда запись бронирования упала уже после
// Consume: клиент не должен терять холд из-за сбоя хранилища.
// Срок действия не продлевается - просроченный холд вычистит sweeper.
func (a *Arbiter) Reinstate(ctx context.Context, holdID string) error {
	if err := a.store.UpdateState(ctx, holdID, domain.HoldStateConsumed, domain.HoldStateActive); err != nil {
		return err
	}
	a.logger.Info("Reinstate: hold %s returned to active", holdID)
	return nil
}

// ReclaimExpired идемпотентная вычистка всех истекших холдов.
// Запускается по таймеру из main и лениво при захвате контестируемого слота.
func (a *Arbiter) ReclaimExpired(ctx context.Context) (int, error) {
	now := a.timeProvider.Now()

	active, err := a.store.ListActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to list active holds: %v", ErrInternal, err)
	}

	reclaimed := 0
	for _, hold := range active {
		if !hold.IsExpired(now) {
			continue
		}
		err := a.store.UpdateState(ctx, hold.ID, domain.HoldStateActive, domain.HoldStateExpired)
		if err != nil {
			// Холд могли потребить или вычистить параллельно - это не ошибка sweeper'а
			continue
		}
		reclaimed++
	}

	if reclaimed > 0 {
		a.metrics.AddHoldsReclaimed(reclaimed)
		a.logger.Info("ReclaimExpired: reclaimed %d expired holds", reclaimed)
	}

	return reclaimed, nil
}

// reclaimForProviderDate вычищает истекшие холды провайдера на дату.
// Вызывается под замком провайдера.
func (a *Arbiter) reclaimForProviderDate(ctx context.Context, providerID int64, date time.Time, now time.Time) (int, error) {
	holds, err := a.store.ListByProviderDate(ctx, providerID, date)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to list holds: %v", ErrInternal, err)
	}

	reclaimed := 0
	for _, hold := range holds {
		if !hold.IsExpired(now) {
			continue
		}
		if err := a.store.UpdateState(ctx, hold.ID, domain.HoldStateActive, domain.HoldStateExpired); err == nil {
			reclaimed++
		}
	}

	if reclaimed > 0 {
		a.metrics.AddHoldsReclaimed(reclaimed)
	}

	return reclaimed, nil
}

// slotWithinDay проверяет, что интервал попадает в рабочие часы дня
// и не пересекает перерыв.
func slotWithinDay(day domain.EffectiveDay, start, end types.TimeString) bool {
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

// validateAcquireRequest валидирует запрос на захват холда
func validateAcquireRequest(req *AcquireRequest) error {
	if req.ProviderID <= 0 {
		return fmt.Errorf("%w: providerID must be positive", ErrInvalidInput)
	}
	if req.HolderID <= 0 {
		return fmt.Errorf("%w: holderID must be positive", ErrInvalidInput)
	}
	if req.DurationMinutes <= 0 {
		return fmt.Errorf("%w: durationMinutes must be positive", ErrInvalidInput)
	}
	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}
	if req.StaffID != nil && *req.StaffID <= 0 {
		return fmt.Errorf("%w: staffID must be positive", ErrInvalidInput)
	}
	return nil
}
