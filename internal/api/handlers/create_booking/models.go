package create_booking

import (
	createBooking "github.com/m04kA/SMC-SchedulingService/internal/usecase/create_booking"
)

// CreateBookingRequest HTTP request model.
// Слот к этому моменту уже удержан холдом: тело ссылается на холд,
// а не повторяет его параметры.
type CreateBookingRequest struct {
	HoldID    string `json:"holdId"`
	ServiceID int64  `json:"serviceId"`
}

// ToUseCaseRequest конвертирует HTTP request в модель use case
func (r *CreateBookingRequest) ToUseCaseRequest(userID int64) *createBooking.Request {
	return &createBooking.Request{
		UserID:    userID,
		HoldID:    r.HoldID,
		ServiceID: r.ServiceID,
	}
}
