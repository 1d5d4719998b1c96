package get_available_dates

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-SchedulingService/internal/api/handlers"
	getAvailableDates "github.com/m04kA/SMC-SchedulingService/internal/usecase/get_available_dates"
)

const (
	msgInvalidProviderID = "некорректный ID провайдера"
	msgInvalidServiceID  = "некорректный ID услуги"
	msgInvalidStaffID    = "некорректный ID сотрудника"
	msgMissingRange      = "отсутствуют параметры from и to"
	msgInvalidDate       = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgProviderNotFound  = "провайдер не найден"
	msgServiceNotFound   = "услуга не найдена"
	msgStaffNotFound     = "сотрудник не найден"
	msgInvalidRange      = "некорректный диапазон дат"
	msgRangeTooWide      = "диапазон дат слишком широкий"
)

type Handler struct {
	useCase GetAvailableDatesUseCase
	logger  Logger
}

func NewHandler(useCase GetAvailableDatesUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/providers/{providerId}/available-dates?serviceId=X&from=YYYY-MM-DD&to=YYYY-MM-DD&staffId=Y
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	providerID, err := strconv.ParseInt(vars["providerId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /providers/{id}/available-dates - Invalid provider ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidProviderID)
		return
	}

	query := r.URL.Query()

	serviceID, err := strconv.ParseInt(query.Get("serviceId"), 10, 64)
	if err != nil {
		h.logger.Warn("GET /providers/{id}/available-dates - Invalid service ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidServiceID)
		return
	}

	var staffID *int64
	if raw := query.Get("staffId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			h.logger.Warn("GET /providers/{id}/available-dates - Invalid staff ID: %v", err)
			handlers.RespondBadRequest(w, msgInvalidStaffID)
			return
		}
		staffID = &id
	}

	fromStr := query.Get("from")
	toStr := query.Get("to")
	if fromStr == "" || toStr == "" {
		handlers.RespondBadRequest(w, msgMissingRange)
		return
	}

	useCaseReq, err := ToUseCaseRequest(providerID, serviceID, staffID, fromStr, toStr)
	if err != nil {
		h.logger.Warn("GET /providers/{id}/available-dates - Invalid date format: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, getAvailableDates.ErrProviderNotFound):
			h.logger.Warn("GET /providers/{id}/available-dates - Provider not found: provider_id=%d", providerID)
			handlers.RespondNotFound(w, msgProviderNotFound)

		case errors.Is(err, getAvailableDates.ErrServiceNotFound):
			h.logger.Warn("GET /providers/{id}/available-dates - Service not found: provider_id=%d, service_id=%d",
				providerID, serviceID)
			handlers.RespondNotFound(w, msgServiceNotFound)

		case errors.Is(err, getAvailableDates.ErrStaffNotFound):
			h.logger.Warn("GET /providers/{id}/available-dates - Staff not found: provider_id=%d", providerID)
			handlers.RespondNotFound(w, msgStaffNotFound)

		case errors.Is(err, getAvailableDates.ErrDateRangeTooWide):
			h.logger.Warn("GET /providers/{id}/available-dates - Range too wide: provider_id=%d, from=%s, to=%s",
				providerID, fromStr, toStr)
			handlers.RespondBadRequest(w, msgRangeTooWide)

		case errors.Is(err, getAvailableDates.ErrInvalidDateRange), errors.Is(err, getAvailableDates.ErrInvalidInput):
			h.logger.Warn("GET /providers/{id}/available-dates - Invalid range: provider_id=%d, error=%v",
				providerID, err)
			handlers.RespondBadRequest(w, msgInvalidRange)

		default:
			h.logger.Error("GET /providers/{id}/available-dates - Failed: provider_id=%d, error=%v", providerID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	response := FromUseCaseResponse(result)

	h.logger.Info("GET /providers/{id}/available-dates - Dates retrieved: provider_id=%d, from=%s, to=%s, dates=%d",
		providerID, fromStr, toStr, len(response.Dates))
	handlers.RespondJSON(w, http.StatusOK, response)
}
