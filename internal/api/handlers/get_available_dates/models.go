package get_available_dates

import (
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	getAvailableDates "github.com/m04kA/SMC-SchedulingService/internal/usecase/get_available_dates"
)

// AvailableDatesResponse HTTP response model
type AvailableDatesResponse struct {
	ProviderID int64           `json:"providerId"`
	ServiceID  int64           `json:"serviceId"`
	Dates      []DateAvailable `json:"dates"`
}

// DateAvailable доступность одной даты диапазона
type DateAvailable struct {
	Date            string `json:"date"`
	HasAvailability bool   `json:"hasAvailability"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getAvailableDates.Response) *AvailableDatesResponse {
	dates := make([]DateAvailable, len(resp.Dates))
	for i, d := range resp.Dates {
		dates[i] = DateAvailable{
			Date:            d.Date,
			HasAvailability: d.HasAvailability,
		}
	}

	return &AvailableDatesResponse{
		ProviderID: resp.ProviderID,
		ServiceID:  resp.ServiceID,
		Dates:      dates,
	}
}

// ToUseCaseRequest создает запрос use case из path и query параметров
func ToUseCaseRequest(providerID, serviceID int64, staffID *int64, fromStr, toStr string) (*getAvailableDates.Request, error) {
	from, err := time.Parse(domain.DateFormat, fromStr)
	if err != nil {
		return nil, err
	}
	to, err := time.Parse(domain.DateFormat, toStr)
	if err != nil {
		return nil, err
	}

	return &getAvailableDates.Request{
		ProviderID: providerID,
		ServiceID:  serviceID,
		StaffID:    staffID,
		FromDate:   from,
		ToDate:     to,
	}, nil
}
