package domain

import "time"

// BookingPolicy is the immutable booking-policy value attached to a service.
// A full copy is snapshotted onto each booking at creation time, so later
// policy edits never retroactively change existing bookings.
type BookingPolicy struct {
	MinAdvanceBookingHours    int
	MaxAdvanceBookingDays     int
	CancellationWindowHours   int
	CancellationFeePercentage float64
	AllowRescheduling         bool
	RescheduleWindowHours     int
	DepositRequired           bool
	DepositPercentage         float64
}

// DefaultBookingPolicy returns the policy applied when the provider catalog
// carries none for a service.
func DefaultBookingPolicy() BookingPolicy {
	return BookingPolicy{
		MinAdvanceBookingHours:    DefaultMinAdvanceBookingHours,
		MaxAdvanceBookingDays:     DefaultMaxAdvanceBookingDays,
		CancellationWindowHours:   DefaultCancellationWindowHours,
		CancellationFeePercentage: DefaultCancellationFeePercentage,
		AllowRescheduling:         true,
		RescheduleWindowHours:     DefaultRescheduleWindowHours,
	}
}

// InsideCancellationWindow reports whether now falls inside the cancellation
// window before the given start time (a fee applies for confirmed bookings).
func (p BookingPolicy) InsideCancellationWindow(startAt, now time.Time) bool {
	if p.CancellationWindowHours <= 0 {
		return false
	}
	windowStart := startAt.Add(-time.Duration(p.CancellationWindowHours) * time.Hour)
	return !now.Before(windowStart)
}

// InsideRescheduleWindow reports whether now is too close to the original
// start time for a reschedule to be allowed.
func (p BookingPolicy) InsideRescheduleWindow(startAt, now time.Time) bool {
	if p.RescheduleWindowHours <= 0 {
		return false
	}
	windowStart := startAt.Add(-time.Duration(p.RescheduleWindowHours) * time.Hour)
	return !now.Before(windowStart)
}
