package events

import (
	"sync"
	"time"
)

// Типы событий жизненного цикла бронирований
const (
	TypeBookingCreated     = "booking.created"
	TypeBookingConfirmed   = "booking.confirmed"
	TypeBookingCancelled   = "booking.cancelled"
	TypeBookingRescheduled = "booking.rescheduled"
	TypeBookingCompleted   = "booking.completed"
	TypeBookingNoShow      = "booking.no_show"
)

// Event доменное событие для внешних коллабораторов (уведомления, платежи).
// Движок только формирует payload и отдает его подписчикам: доставка,
// шаблоны и повторы - ответственность потребителя.
type Event struct {
	Type       string
	BookingID  int64
	ProviderID int64
	CustomerID int64
	// FeePercentage заполняется для booking.cancelled, когда отмена попала
	// в окно CancellationWindowHours: расчет суммы делает платежный сервис.
	FeePercentage *float64
	// NewBookingID заполняется для booking.rescheduled
	NewBookingID *int64
	Reason       string
	CreatedAt    time.Time
}

// Handler реагирует на событие
type Handler func(event Event)

// Publisher интерфейс публикации событий (инжектится в lifecycle-сервис)
type Publisher interface {
	Publish(event Event)
}

// Bus in-process pub/sub для доменных событий
type Bus struct {
	subscribers map[string][]Handler
	mu          sync.RWMutex
}

// NewBus создает пустую шину событий
func NewBus() *Bus {
	return &Bus{subscribers: make(map[string][]Handler)}
}

// Subscribe регистрирует обработчик на тип события
func (b *Bus) Subscribe(eventType string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// Publish синхронно уведомляет подписчиков события.
// Модель конкурентности выбирает вызывающая сторона.
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	handlers := append([]Handler(nil), b.subscribers[event.Type]...)
	b.mu.RUnlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	for _, handler := range handlers {
		handler(event)
	}
}
