package acquire_hold

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-SchedulingService/internal/api/handlers"
	"github.com/m04kA/SMC-SchedulingService/internal/api/middleware"
	"github.com/m04kA/SMC-SchedulingService/internal/service/holds"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidDate        = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgSlotHeld           = "слот уже удерживается другим пользователем"
	msgSlotBooked         = "слот уже забронирован"
	msgOutsideSchedule    = "слот вне расписания провайдера"
	msgInvalidInput       = "некорректные параметры холда"
)

type Handler struct {
	arbiter HoldArbiter
	logger  Logger
}

func NewHandler(arbiter HoldArbiter, logger Logger) *Handler {
	return &Handler{
		arbiter: arbiter,
		logger:  logger,
	}
}

// Handle POST /api/v1/holds
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	// Получаем userID из контекста (через middleware Auth)
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /holds - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req AcquireHoldRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /holds - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	serviceReq, err := req.ToServiceRequest(userID)
	if err != nil {
		h.logger.Warn("POST /holds - Invalid date: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	hold, err := h.arbiter.TryAcquire(r.Context(), serviceReq)
	if err != nil {
		switch {
		case errors.Is(err, holds.ErrAlreadyHeld):
			h.logger.Warn("POST /holds - Slot already held: provider_id=%d, date=%s, time=%s",
				req.ProviderID, req.Date, req.StartTime)
			handlers.RespondConflict(w, msgSlotHeld)

		case errors.Is(err, holds.ErrAlreadyBooked):
			h.logger.Warn("POST /holds - Slot already booked: provider_id=%d, date=%s, time=%s",
				req.ProviderID, req.Date, req.StartTime)
			handlers.RespondConflict(w, msgSlotBooked)

		case errors.Is(err, holds.ErrOutsideSchedule):
			h.logger.Warn("POST /holds - Slot outside schedule: provider_id=%d, date=%s, time=%s",
				req.ProviderID, req.Date, req.StartTime)
			handlers.RespondBadRequest(w, msgOutsideSchedule)

		case errors.Is(err, holds.ErrInvalidInput):
			h.logger.Warn("POST /holds - Invalid input: user_id=%d, error=%v", userID, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("POST /holds - Failed to acquire hold: user_id=%d, provider_id=%d, error=%v",
				userID, req.ProviderID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /holds - Hold acquired: hold_id=%s, user_id=%d, provider_id=%d, date=%s, time=%s",
		hold.ID, userID, req.ProviderID, req.Date, req.StartTime)
	handlers.RespondJSON(w, http.StatusCreated, FromDomainHold(hold))
}
