package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/m04kA/SMC-SchedulingService/pkg/types"
)

func TestIntervalsOverlap(t *testing.T) {
	tests := []struct {
		name                       string
		start1, end1, start2, end2 types.TimeString
		want                       bool
	}{
		{name: "disjoint", start1: "09:00", end1: "10:00", start2: "11:00", end2: "12:00", want: false},
		{name: "back to back do not overlap", start1: "09:00", end1: "10:00", start2: "10:00", end2: "11:00", want: false},
		{name: "partial overlap", start1: "09:00", end1: "10:30", start2: "10:00", end2: "11:00", want: true},
		{name: "containment", start1: "09:00", end1: "12:00", start2: "10:00", end2: "11:00", want: true},
		{name: "identical", start1: "09:00", end1: "10:00", start2: "09:00", end2: "10:00", want: true},
		{name: "one minute overlap", start1: "09:00", end1: "10:01", start2: "10:00", end2: "11:00", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IntervalsOverlap(tt.start1, tt.end1, tt.start2, tt.end2))
			// overlap is symmetric
			assert.Equal(t, tt.want, IntervalsOverlap(tt.start2, tt.end2, tt.start1, tt.end1))
		})
	}
}

func TestBooking_Occupies(t *testing.T) {
	occupying := []BookingStatus{StatusRequested, StatusConfirmed}
	released := []BookingStatus{StatusCompleted, StatusCancelled, StatusNoShow, StatusRescheduled}

	for _, status := range occupying {
		b := Booking{Status: status}
		assert.True(t, b.Occupies(), "status %s must occupy its slot", status)
		assert.False(t, b.IsTerminal(), "status %s is not terminal", status)
	}
	for _, status := range released {
		b := Booking{Status: status}
		assert.False(t, b.Occupies(), "status %s must release its slot", status)
		assert.True(t, b.IsTerminal(), "status %s is terminal", status)
	}
}

func TestBooking_BlocksStaff(t *testing.T) {
	staff1 := int64(1)
	staff2 := int64(2)

	tests := []struct {
		name         string
		bookingStaff *int64
		queryStaff   *int64
		want         bool
	}{
		{name: "any-staff booking blocks specific staff", bookingStaff: nil, queryStaff: &staff1, want: true},
		{name: "specific booking blocks any-staff query", bookingStaff: &staff1, queryStaff: nil, want: true},
		{name: "same staff", bookingStaff: &staff1, queryStaff: &staff1, want: true},
		{name: "different staff", bookingStaff: &staff1, queryStaff: &staff2, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := Booking{StaffID: tt.bookingStaff}
			assert.Equal(t, tt.want, b.BlocksStaff(tt.queryStaff))
		})
	}
}

func TestBookingPolicy_InsideCancellationWindow(t *testing.T) {
	policy := BookingPolicy{CancellationWindowHours: 24}
	startAt := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

	// 25 hours before start is outside the window, no fee
	assert.False(t, policy.InsideCancellationWindow(startAt, startAt.Add(-25*time.Hour)))
	// exactly 24 hours before start the window already applies
	assert.True(t, policy.InsideCancellationWindow(startAt, startAt.Add(-24*time.Hour)))
	assert.True(t, policy.InsideCancellationWindow(startAt, startAt.Add(-time.Hour)))

	// zero window never applies
	noWindow := BookingPolicy{CancellationWindowHours: 0}
	assert.False(t, noWindow.InsideCancellationWindow(startAt, startAt.Add(-time.Minute)))
}

func TestBookingPolicy_InsideRescheduleWindow(t *testing.T) {
	policy := BookingPolicy{RescheduleWindowHours: 12}
	startAt := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

	assert.False(t, policy.InsideRescheduleWindow(startAt, startAt.Add(-13*time.Hour)))
	assert.True(t, policy.InsideRescheduleWindow(startAt, startAt.Add(-12*time.Hour)))
	assert.True(t, policy.InsideRescheduleWindow(startAt, startAt.Add(-time.Hour)))
}

func TestBooking_TimeAccessors(t *testing.T) {
	b := Booking{
		BookingDate:     time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
		StartTime:       "10:00",
		DurationMinutes: 90,
	}

	end, err := b.EndTime()
	assert.NoError(t, err)
	assert.Equal(t, "11:30", end.String())

	startAt, err := b.StartAt()
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC), startAt)

	endAt, err := b.EndAt()
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 15, 11, 30, 0, 0, time.UTC), endAt)
}

func TestHoliday_Matches(t *testing.T) {
	jan1 := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

	oneOff := Holiday{Date: jan1, Recurrence: RecurrenceNone}
	assert.True(t, oneOff.Matches(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.False(t, oneOff.Matches(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)))

	yearly := Holiday{Date: jan1, Recurrence: RecurrenceYearly}
	assert.True(t, yearly.Matches(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.False(t, yearly.Matches(time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)))

	monthly := Holiday{Date: jan1, Recurrence: RecurrenceMonthly}
	assert.True(t, monthly.Matches(time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)))
	assert.False(t, monthly.Matches(time.Date(2026, 7, 2, 0, 0, 0, 0, time.UTC)))
}
