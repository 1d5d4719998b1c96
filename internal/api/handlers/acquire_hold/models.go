package acquire_hold

import (
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/service/holds"
	"github.com/m04kA/SMC-SchedulingService/pkg/types"
)

// AcquireHoldRequest HTTP request model
type AcquireHoldRequest struct {
	ProviderID      int64  `json:"providerId"`
	StaffID         *int64 `json:"staffId,omitempty"`
	Date            string `json:"date"`
	StartTime       string `json:"startTime"`
	DurationMinutes int    `json:"durationMinutes"`
}

// ToServiceRequest конвертирует HTTP request в модель сервиса
// (с парсингом даты)
func (r *AcquireHoldRequest) ToServiceRequest(holderID int64) (*holds.AcquireRequest, error) {
	date, err := time.Parse(domain.DateFormat, r.Date)
	if err != nil {
		return nil, err
	}

	return &holds.AcquireRequest{
		ProviderID:      r.ProviderID,
		StaffID:         r.StaffID,
		Date:            date,
		StartTime:       types.TimeString(r.StartTime),
		DurationMinutes: r.DurationMinutes,
		HolderID:        holderID,
	}, nil
}

// HoldResponse HTTP response model
type HoldResponse struct {
	ID              string `json:"id"`
	ProviderID      int64  `json:"providerId"`
	StaffID         *int64 `json:"staffId,omitempty"`
	Date            string `json:"date"`
	StartTime       string `json:"startTime"`
	DurationMinutes int    `json:"durationMinutes"`
	State           string `json:"state"`
	ExpiresAt       string `json:"expiresAt"` // ISO 8601
}

// FromDomainHold конвертирует domain модель в HTTP response
func FromDomainHold(h *domain.SlotHold) *HoldResponse {
	return &HoldResponse{
		ID:              h.ID,
		ProviderID:      h.ProviderID,
		StaffID:         h.StaffID,
		Date:            h.Date.Format(domain.DateFormat),
		StartTime:       h.StartTime.String(),
		DurationMinutes: h.DurationMinutes,
		State:           string(h.State),
		ExpiresAt:       h.ExpiresAt.Format(time.RFC3339),
	}
}
