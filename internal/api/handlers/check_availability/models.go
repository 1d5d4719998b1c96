package check_availability

import (
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	checkAvailability "github.com/m04kA/SMC-SchedulingService/internal/usecase/check_availability"
	"github.com/m04kA/SMC-SchedulingService/pkg/types"
)

// CheckAvailabilityResponse HTTP response model
type CheckAvailabilityResponse struct {
	StartTime   string `json:"startTime"`
	IsAvailable bool   `json:"isAvailable"`
	Reason      string `json:"reason,omitempty"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *checkAvailability.Response) *CheckAvailabilityResponse {
	return &CheckAvailabilityResponse{
		StartTime:   resp.StartTime.String(),
		IsAvailable: resp.IsAvailable,
		Reason:      resp.Reason,
	}
}

// ToUseCaseRequest создает запрос use case из path и query параметров
func ToUseCaseRequest(providerID, serviceID int64, staffID *int64, dateStr, startTimeStr string) (*checkAvailability.Request, error) {
	date, err := time.Parse(domain.DateFormat, dateStr)
	if err != nil {
		return nil, err
	}

	return &checkAvailability.Request{
		ProviderID: providerID,
		ServiceID:  serviceID,
		StaffID:    staffID,
		Date:       date,
		StartTime:  types.TimeString(startTimeStr),
	}, nil
}
