package release_hold

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-SchedulingService/internal/api/handlers"
	"github.com/m04kA/SMC-SchedulingService/internal/api/middleware"
	"github.com/m04kA/SMC-SchedulingService/internal/service/holds"
)

const (
	msgInvalidHoldID = "некорректный ID холда"
	msgMissingUserID = "отсутствует ID пользователя"
	msgHoldNotFound  = "холд не найден"
	msgHoldNotActive = "холд уже не активен"
	msgForbidden     = "доступ запрещен"
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

// Handle DELETE /api/v1/holds/{holdId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	holdID := vars["holdId"]

	if _, err := uuid.Parse(holdID); err != nil {
		h.logger.Warn("DELETE /holds/{id} - Invalid hold ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidHoldID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("DELETE /holds/{id} - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	err := h.arbiter.Release(r.Context(), holdID, userID)
	if err != nil {
		switch {
		case errors.Is(err, holds.ErrHoldNotFound):
			h.logger.Warn("DELETE /holds/{id} - Hold not found: hold_id=%s", holdID)
			handlers.RespondNotFound(w, msgHoldNotFound)

		case errors.Is(err, holds.ErrNotHoldOwner):
			h.logger.Warn("DELETE /holds/{id} - Not hold owner: hold_id=%s, user_id=%d", holdID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, holds.ErrHoldNotActive):
			h.logger.Warn("DELETE /holds/{id} - Hold not active: hold_id=%s", holdID)
			handlers.RespondConflict(w, msgHoldNotActive)

		default:
			h.logger.Error("DELETE /holds/{id} - Failed to release hold: hold_id=%s, error=%v", holdID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("DELETE /holds/{id} - Hold released: hold_id=%s, user_id=%d", holdID, userID)
	handlers.RespondJSON(w, http.StatusNoContent, nil)
}
