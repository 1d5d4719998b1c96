package domain

import (
	"time"

	"github.com/m04kA/SMC-SchedulingService/pkg/types"
)

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	StatusRequested   BookingStatus = "requested"
	StatusConfirmed   BookingStatus = "confirmed"
	StatusCompleted   BookingStatus = "completed"
	StatusCancelled   BookingStatus = "cancelled"
	StatusNoShow      BookingStatus = "no_show"
	StatusRescheduled BookingStatus = "rescheduled"
)

// CancelledBy identifies which side cancelled a booking
type CancelledBy string

const (
	CancelledByCustomer CancelledBy = "customer"
	CancelledByProvider CancelledBy = "provider"
)

// Booking represents a pending or confirmed appointment.
// The booking row is the single source of truth the availability projection
// consults: its time range plus an occupying status make a slot unavailable.
type Booking struct {
	ID              int64
	ProviderID      int64
	StaffID         *int64 // nil = any staff member (blocks the whole provider)
	ServiceID       int64
	CustomerID      int64
	BookingDate     time.Time
	StartTime       types.TimeString
	DurationMinutes int
	Status          BookingStatus

	// Policy snapshot copied from the service at creation time.
	// Later edits to the service's policy never affect this booking.
	Policy BookingPolicy

	// Reschedule linkage. A reschedule never mutates this row into the new
	// time: it creates a new booking and links the two records.
	PreviousBookingID *int64
	RescheduledToID   *int64

	CancellationReason *string
	CancelledBy        *CancelledBy
	CancelledAt        *time.Time

	// Version is the optimistic-concurrency token: every status write checks
	// and increments it, so concurrent transitions conflict deterministically.
	Version int64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// EndTime returns the wall-clock end of the booking
func (b *Booking) EndTime() (types.TimeString, error) {
	return b.StartTime.AddMinutes(b.DurationMinutes)
}

// StartAt returns the full start timestamp (date + start time)
func (b *Booking) StartAt() (time.Time, error) {
	return b.StartTime.OnDate(b.BookingDate)
}

// EndAt returns the full end timestamp (date + start time + duration)
func (b *Booking) EndAt() (time.Time, error) {
	start, err := b.StartAt()
	if err != nil {
		return time.Time{}, err
	}
	return start.Add(time.Duration(b.DurationMinutes) * time.Minute), nil
}

// Occupies reports whether the booking blocks its interval in availability
// projections: only requested and confirmed bookings occupy slots.
func (b *Booking) Occupies() bool {
	return b.Status == StatusRequested || b.Status == StatusConfirmed
}

// IsTerminal reports whether the booking reached a terminal state
func (b *Booking) IsTerminal() bool {
	switch b.Status {
	case StatusCompleted, StatusCancelled, StatusNoShow, StatusRescheduled:
		return true
	}
	return false
}

// BlocksStaff reports whether the booking occupies the given staff member.
// A booking without an assigned staff member blocks every staff member, and
// a query without a staff filter is blocked by any booking.
func (b *Booking) BlocksStaff(staffID *int64) bool {
	if b.StaffID == nil || staffID == nil {
		return true
	}
	return *b.StaffID == *staffID
}

// BookingStatusUpdate describes a single versioned status write. The write
// succeeds only if the stored row still carries the expected version.
type BookingStatusUpdate struct {
	Status             BookingStatus
	CancellationReason *string
	CancelledBy        *CancelledBy
	CancelledAt        *time.Time
	RescheduledToID    *int64
}

// BookingHistoryEntry is an append-only audit record of a status transition.
// History entries are never edited or removed.
type BookingHistoryEntry struct {
	ID          int64
	BookingID   int64
	Status      BookingStatus
	Description string
	CreatedAt   time.Time
}

// ProviderBookingsFilter фильтр для выборки бронирований провайдера
type ProviderBookingsFilter struct {
	ProviderID    int64          // Обязательный параметр
	StaffID       *int64         // Фильтр по сотруднику (опционально)
	StartDate     *time.Time     // Начало периода (опционально)
	EndDate       *time.Time     // Конец периода (опционально)
	Status        *BookingStatus // Фильтр по статусу (опционально)
	OnlyOccupying bool           // Только бронирования, занимающие слоты (requested/confirmed)
}
