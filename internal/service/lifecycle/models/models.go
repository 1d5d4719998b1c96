package models

import (
	"errors"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/pkg/types"
)

var (
	// ErrInvalidStatus возвращается при некорректном статусе
	ErrInvalidStatus = errors.New("invalid booking status")
)

// Request модели

// CreateFromHoldRequest запрос на создание бронирования из холда.
// Интервал (провайдер, сотрудник, дата, время, длительность) берется из
// холда - клиент не может забронировать время, отличное от захваченного.
type CreateFromHoldRequest struct {
	HoldID     string `json:"holdId"`
	CustomerID int64  `json:"customerId"`
	ServiceID  int64  `json:"serviceId"`
}

// CancelBookingRequest запрос на отмену бронирования
type CancelBookingRequest struct {
	UserID             int64  `json:"userId"`
	CancellationReason string `json:"cancellationReason"`
}

// RescheduleBookingRequest запрос на перенос бронирования
type RescheduleBookingRequest struct {
	UserID       int64            `json:"userId"`
	NewDate      time.Time        `json:"newDate"`
	NewStartTime types.TimeString `json:"newStartTime"`
	NewStaffID   *int64           `json:"newStaffId,omitempty"` // nil = сохранить сотрудника исходного бронирования
}

// GetUserBookingsRequest запрос на получение бронирований пользователя
type GetUserBookingsRequest struct {
	UserID int64   `json:"userId"`
	Status *string `json:"status,omitempty"`
}

// GetProviderBookingsRequest запрос на получение бронирований провайдера
type GetProviderBookingsRequest struct {
	UserID        int64      `json:"userId"`
	ProviderID    int64      `json:"providerId"`
	StaffID       *int64     `json:"staffId,omitempty"`       // Фильтр по сотруднику (опционально)
	StartDate     *time.Time `json:"startDate,omitempty"`     // Начало периода (опционально)
	EndDate       *time.Time `json:"endDate,omitempty"`       // Конец периода (опционально)
	Status        *string    `json:"status,omitempty"`        // Фильтр по статусу (опционально)
	OnlyOccupying bool       `json:"onlyOccupying,omitempty"` // Только занимающие слоты (requested/confirmed)
}

// ToDomainFilter конвертирует request в domain фильтр
func (r *GetProviderBookingsRequest) ToDomainFilter() (domain.ProviderBookingsFilter, error) {
	filter := domain.ProviderBookingsFilter{
		ProviderID:    r.ProviderID,
		StaffID:       r.StaffID,
		StartDate:     r.StartDate,
		EndDate:       r.EndDate,
		OnlyOccupying: r.OnlyOccupying,
	}

	// Конвертируем статус если указан
	if r.Status != nil {
		status, err := ToDomainBookingStatus(*r.Status)
		if err != nil {
			return filter, err
		}
		filter.Status = &status
	}

	return filter, nil
}

// Response модели

// PolicySnapshot снимок политики бронирования в ответе
type PolicySnapshot struct {
	MinAdvanceBookingHours    int     `json:"minAdvanceBookingHours"`
	MaxAdvanceBookingDays     int     `json:"maxAdvanceBookingDays"`
	CancellationWindowHours   int     `json:"cancellationWindowHours"`
	CancellationFeePercentage float64 `json:"cancellationFeePercentage"`
	AllowRescheduling         bool    `json:"allowRescheduling"`
	RescheduleWindowHours     int     `json:"rescheduleWindowHours"`
	DepositRequired           bool    `json:"depositRequired"`
	DepositPercentage         float64 `json:"depositPercentage"`
}

// BookingResponse ответ с данными бронирования
type BookingResponse struct {
	ID              int64  `json:"id"`
	ProviderID      int64  `json:"providerId"`
	StaffID         *int64 `json:"staffId,omitempty"`
	ServiceID       int64  `json:"serviceId"`
	CustomerID      int64  `json:"customerId"`
	BookingDate     string `json:"bookingDate"` // "2026-03-15"
	StartTime       string `json:"startTime"`   // "10:00"
	DurationMinutes int    `json:"durationMinutes"`
	Status          string `json:"status"`

	Policy PolicySnapshot `json:"policy"`

	PreviousBookingID *int64 `json:"previousBookingId,omitempty"`
	RescheduledToID   *int64 `json:"rescheduledToId,omitempty"`

	CancellationReason *string `json:"cancellationReason,omitempty"`
	CancelledBy        *string `json:"cancelledBy,omitempty"`
	CancelledAt        *string `json:"cancelledAt,omitempty"` // ISO 8601 format

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BookingListResponse ответ со списком бронирований
type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
}

// CancelBookingResponse результат отмены: процент штрафа по политике.
// Сумму считает платежный сервис по событию booking.cancelled.
type CancelBookingResponse struct {
	FeePercentage float64 `json:"feePercentage"`
}

// HistoryEntryResponse запись истории статусов
type HistoryEntryResponse struct {
	Status      string    `json:"status"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Методы конвертации

// FromDomainBooking конвертирует domain модель в DTO
func FromDomainBooking(b *domain.Booking) *BookingResponse {
	if b == nil {
		return nil
	}

	resp := &BookingResponse{
		ID:                 b.ID,
		ProviderID:         b.ProviderID,
		StaffID:            b.StaffID,
		ServiceID:          b.ServiceID,
		CustomerID:         b.CustomerID,
		BookingDate:        b.BookingDate.Format(domain.DateFormat),
		StartTime:          b.StartTime.String(),
		DurationMinutes:    b.DurationMinutes,
		Status:             string(b.Status),
		Policy:             fromDomainPolicy(b.Policy),
		PreviousBookingID:  b.PreviousBookingID,
		RescheduledToID:    b.RescheduledToID,
		CancellationReason: b.CancellationReason,
		CreatedAt:          b.CreatedAt,
		UpdatedAt:          b.UpdatedAt,
	}

	if b.CancelledBy != nil {
		cancelledBy := string(*b.CancelledBy)
		resp.CancelledBy = &cancelledBy
	}

	// Конвертируем CancelledAt в строку ISO 8601
	if b.CancelledAt != nil {
		cancelledStr := b.CancelledAt.Format(time.RFC3339)
		resp.CancelledAt = &cancelledStr
	}

	return resp
}

// FromDomainBookingList конвертирует список domain моделей в DTO
func FromDomainBookingList(bookings []*domain.Booking) *BookingListResponse {
	if bookings == nil {
		return &BookingListResponse{
			Bookings: []BookingResponse{},
		}
	}

	resp := &BookingListResponse{
		Bookings: make([]BookingResponse, len(bookings)),
	}

	for i, booking := range bookings {
		if bookingResp := FromDomainBooking(booking); bookingResp != nil {
			resp.Bookings[i] = *bookingResp
		}
	}

	return resp
}

// FromDomainHistory конвертирует историю статусов в DTO
func FromDomainHistory(entries []*domain.BookingHistoryEntry) []HistoryEntryResponse {
	resp := make([]HistoryEntryResponse, 0, len(entries))
	for _, e := range entries {
		resp = append(resp, HistoryEntryResponse{
			Status:      string(e.Status),
			Description: e.Description,
			CreatedAt:   e.CreatedAt,
		})
	}
	return resp
}

// ToDomainBookingStatus конвертирует строку в domain.BookingStatus с валидацией
func ToDomainBookingStatus(status string) (domain.BookingStatus, error) {
	s := domain.BookingStatus(status)

	// Валидируем статус
	validStatuses := []domain.BookingStatus{
		domain.StatusRequested,
		domain.StatusConfirmed,
		domain.StatusCompleted,
		domain.StatusCancelled,
		domain.StatusNoShow,
		domain.StatusRescheduled,
	}

	for _, valid := range validStatuses {
		if s == valid {
			return s, nil
		}
	}

	return "", ErrInvalidStatus
}

func fromDomainPolicy(p domain.BookingPolicy) PolicySnapshot {
	return PolicySnapshot{
		MinAdvanceBookingHours:    p.MinAdvanceBookingHours,
		MaxAdvanceBookingDays:     p.MaxAdvanceBookingDays,
		CancellationWindowHours:   p.CancellationWindowHours,
		CancellationFeePercentage: p.CancellationFeePercentage,
		AllowRescheduling:         p.AllowRescheduling,
		RescheduleWindowHours:     p.RescheduleWindowHours,
		DepositRequired:           p.DepositRequired,
		DepositPercentage:         p.DepositPercentage,
	}
}
