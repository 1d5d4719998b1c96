package domain

import "github.com/m04kA/SMC-SchedulingService/pkg/types"

// Slot is a candidate appointment interval of exactly the service's duration,
// anchored to the generation granularity. Slots are ephemeral: computed on
// demand and never persisted.
type Slot struct {
	StartTime       types.TimeString
	DurationMinutes int
	IsAvailable     bool
	StaffID         *int64
}

// EndTime returns the wall-clock end of the slot
func (s *Slot) EndTime() (types.TimeString, error) {
	return s.StartTime.AddMinutes(s.DurationMinutes)
}

// DateAvailability answer element of a date-range availability query
type DateAvailability struct {
	Date            string
	HasAvailability bool
}

// IntervalsOverlap half-open interval overlap: two intervals overlap iff
// start1 < end2 AND start2 < end1. Back-to-back intervals do not overlap.
func IntervalsOverlap(start1, end1, start2, end2 types.TimeString) bool {
	return start1.IsBefore(end2) && start2.IsBefore(end1)
}
