package update_provider_schedule

import (
	"github.com/m04kA/SMC-SchedulingService/internal/service/schedule/models"
)

// UpdateScheduleRequest HTTP request model: полная замена расписания
type UpdateScheduleRequest struct {
	Weekly     []models.DayScheduleDTO `json:"weekly"`
	Holidays   []models.HolidayDTO     `json:"holidays,omitempty"`
	Exceptions []models.ExceptionDTO   `json:"exceptions,omitempty"`
}

// ToServiceRequest конвертирует HTTP request в модель сервиса
func (r *UpdateScheduleRequest) ToServiceRequest(userID, providerID int64) *models.UpdateScheduleRequest {
	return &models.UpdateScheduleRequest{
		UserID:     userID,
		ProviderID: providerID,
		Weekly:     r.Weekly,
		Holidays:   r.Holidays,
		Exceptions: r.Exceptions,
	}
}
