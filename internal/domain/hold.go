package domain

import (
	"time"

	"github.com/m04kA/SMC-SchedulingService/pkg/types"
)

// HoldState lifecycle state of a slot hold
type HoldState string

const (
	HoldStateActive   HoldState = "active"
	HoldStateExpired  HoldState = "expired"
	HoldStateConsumed HoldState = "consumed"
	HoldStateReleased HoldState = "released"
)

// SlotHold is a short-lived exclusive reservation on a slot pending booking
// confirmation. Holds are owned exclusively by the arbiter: no other
// component mutates them directly.
type SlotHold struct {
	ID              string // uuid
	ProviderID      int64
	StaffID         *int64
	Date            time.Time
	StartTime       types.TimeString
	DurationMinutes int
	HolderID        int64
	State           HoldState
	ExpiresAt       time.Time
	CreatedAt       time.Time
}

// EndTime returns the wall-clock end of the held interval
func (h *SlotHold) EndTime() (types.TimeString, error) {
	return h.StartTime.AddMinutes(h.DurationMinutes)
}

// IsActive reports whether the hold still blocks its slot at the given moment
func (h *SlotHold) IsActive(now time.Time) bool {
	return h.State == HoldStateActive && now.Before(h.ExpiresAt)
}

// IsExpired reports whether the hold is active but past its expiry
func (h *SlotHold) IsExpired(now time.Time) bool {
	return h.State == HoldStateActive && !now.Before(h.ExpiresAt)
}

// BlocksStaff reports whether the hold occupies the given staff member.
// A hold without a staff member blocks every staff member.
func (h *SlotHold) BlocksStaff(staffID *int64) bool {
	if h.StaffID == nil || staffID == nil {
		return true
	}
	return *h.StaffID == *staffID
}
