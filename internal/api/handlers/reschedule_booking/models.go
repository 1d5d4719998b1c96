package reschedule_booking

import (
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	rescheduleBooking "github.com/m04kA/SMC-SchedulingService/internal/usecase/reschedule_booking"
	"github.com/m04kA/SMC-SchedulingService/pkg/types"
)

// RescheduleBookingRequest HTTP request model
type RescheduleBookingRequest struct {
	NewDate      string `json:"newDate"`
	NewStartTime string `json:"newStartTime"`
	NewStaffID   *int64 `json:"newStaffId,omitempty"`
}

// ToUseCaseRequest конвертирует HTTP request в модель use case
// (с парсингом даты)
func (r *RescheduleBookingRequest) ToUseCaseRequest(userID, bookingID int64) (*rescheduleBooking.Request, error) {
	newDate, err := time.Parse(domain.DateFormat, r.NewDate)
	if err != nil {
		return nil, err
	}

	return &rescheduleBooking.Request{
		UserID:       userID,
		BookingID:    bookingID,
		NewDate:      newDate,
		NewStartTime: types.TimeString(r.NewStartTime),
		NewStaffID:   r.NewStaffID,
	}, nil
}
