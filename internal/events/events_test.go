package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBus_PublishToSubscribers(t *testing.T) {
	bus := NewBus()

	var created []Event
	var cancelled []Event
	bus.Subscribe(TypeBookingCreated, func(e Event) { created = append(created, e) })
	bus.Subscribe(TypeBookingCreated, func(e Event) { created = append(created, e) })
	bus.Subscribe(TypeBookingCancelled, func(e Event) { cancelled = append(cancelled, e) })

	bus.Publish(Event{Type: TypeBookingCreated, BookingID: 1})

	// Оба подписчика на тип получают событие, чужой тип - нет
	assert.Len(t, created, 2)
	assert.Empty(t, cancelled)
	assert.Equal(t, int64(1), created[0].BookingID)
}

func TestBus_PublishWithoutSubscribers(t *testing.T) {
	bus := NewBus()

	assert.NotPanics(t, func() {
		bus.Publish(Event{Type: TypeBookingNoShow, BookingID: 7})
	})
}

func TestBus_PublishFillsCreatedAt(t *testing.T) {
	bus := NewBus()

	var got Event
	bus.Subscribe(TypeBookingConfirmed, func(e Event) { got = e })

	bus.Publish(Event{Type: TypeBookingConfirmed, BookingID: 3})
	assert.False(t, got.CreatedAt.IsZero())
}
