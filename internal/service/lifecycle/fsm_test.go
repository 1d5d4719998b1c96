package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name string
		from domain.BookingStatus
		to   domain.BookingStatus
		want bool
	}{
		{name: "requested to confirmed", from: domain.StatusRequested, to: domain.StatusConfirmed, want: true},
		{name: "requested to cancelled", from: domain.StatusRequested, to: domain.StatusCancelled, want: true},
		{name: "requested to rescheduled", from: domain.StatusRequested, to: domain.StatusRescheduled, want: true},
		{name: "requested to completed", from: domain.StatusRequested, to: domain.StatusCompleted, want: false},
		{name: "requested to no_show", from: domain.StatusRequested, to: domain.StatusNoShow, want: false},
		{name: "confirmed to completed", from: domain.StatusConfirmed, to: domain.StatusCompleted, want: true},
		{name: "confirmed to cancelled", from: domain.StatusConfirmed, to: domain.StatusCancelled, want: true},
		{name: "confirmed to no_show", from: domain.StatusConfirmed, to: domain.StatusNoShow, want: true},
		{name: "confirmed to rescheduled", from: domain.StatusConfirmed, to: domain.StatusRescheduled, want: true},
		{name: "confirmed to requested", from: domain.StatusConfirmed, to: domain.StatusRequested, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}

func TestCanTransition_TerminalStatesHaveNoExits(t *testing.T) {
	terminal := []domain.BookingStatus{
		domain.StatusCompleted,
		domain.StatusCancelled,
		domain.StatusNoShow,
		domain.StatusRescheduled,
	}
	all := []domain.BookingStatus{
		domain.StatusRequested,
		domain.StatusConfirmed,
		domain.StatusCompleted,
		domain.StatusCancelled,
		domain.StatusNoShow,
		domain.StatusRescheduled,
	}

	for _, from := range terminal {
		for _, to := range all {
			assert.False(t, CanTransition(from, to), "%s -> %s must be forbidden", from, to)
		}
	}
}

func TestCheckTransition(t *testing.T) {
	assert.NoError(t, checkTransition(domain.StatusRequested, domain.StatusConfirmed))
	assert.ErrorIs(t, checkTransition(domain.StatusCompleted, domain.StatusCancelled), ErrInvalidTransition)
}
